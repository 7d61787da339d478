package repository

import (
	"context"
	"regexp"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/jmoiron/sqlx/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/leave-planner-api/internal/models"
	appErrors "github.com/noah-isme/leave-planner-api/pkg/errors"
)

func newPlannerRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	require.NoError(t, err)
	return sqlx.NewDb(db, "sqlmock"), mock, func() { db.Close() }
}

func TestSubjectRepositoryListByUser(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewSubjectRepository(db)

	now := time.Now()
	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "code", "target_attendance_percent", "created_at", "updated_at"}).
		AddRow("s1", "u1", "Data Structures", "CS101", 75.0, now, now).
		AddRow("s2", "u1", "Physics", "PHY", 0.0, now, now)
	mock.ExpectQuery(regexp.QuoteMeta("FROM subjects WHERE user_id = $1 ORDER BY created_at ASC, id ASC")).
		WithArgs("u1").
		WillReturnRows(rows)

	subjects, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, subjects, 2)
	assert.Equal(t, "CS101", subjects[0].Code)
	assert.Equal(t, 75.0, subjects[0].TargetAttendancePercent)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestAttendanceRepositorySubjectStats(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewAttendanceRepository(db)

	rows := sqlmock.NewRows([]string{"subject_id", "attended", "total"}).
		AddRow("s1", 30, 40).
		AddRow("s2", 0, 0)
	mock.ExpectQuery(regexp.QuoteMeta("COUNT(*) FILTER (WHERE status IN ('P', 'A')) AS total FROM attendance_entries WHERE user_id = $1 GROUP BY subject_id")).
		WithArgs("u1").
		WillReturnRows(rows)

	stats, err := repo.SubjectStats(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, models.SubjectAttendanceStats{SubjectID: "s1", Attended: 30, Total: 40}, stats[0])
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestScheduleRepositoryListByUser(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewScheduleRepository(db)

	rows := sqlmock.NewRows([]string{"id", "user_id", "weekday", "start_time", "end_time", "subject_id", "room"}).
		AddRow("slot-1", "u1", 0, "08:00", "09:00", "s1", nil).
		AddRow("slot-2", "u1", 2, "10:00", "11:00", "s1", "B-201")
	mock.ExpectQuery(regexp.QuoteMeta("FROM schedule_slots WHERE user_id = $1 ORDER BY weekday ASC, start_time ASC")).
		WithArgs("u1").
		WillReturnRows(rows)

	slots, err := repo.ListByUser(context.Background(), "u1")
	require.NoError(t, err)
	require.Len(t, slots, 2)
	assert.Nil(t, slots[0].Room)
	require.NotNil(t, slots[1].Room)
	assert.Equal(t, "B-201", *slots[1].Room)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCalendarRepositoryListHolidays(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewCalendarRepository(db)

	from := time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, 59)
	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "kind", "start_date", "end_date", "created_at"}).
		AddRow("h1", "u1", "Mid-term break", "BREAK", from.AddDate(0, 0, 14), from.AddDate(0, 0, 18), time.Now())
	mock.ExpectQuery(regexp.QuoteMeta("FROM academic_holidays WHERE user_id = $1 AND end_date >= $2 AND start_date <= $3 AND kind = ANY($4) ORDER BY start_date ASC")).
		WithArgs("u1", from, to, sqlmock.AnyArg()).
		WillReturnRows(rows)

	holidays, err := repo.ListHolidays(context.Background(), models.HolidayFilter{
		UserID: "u1",
		From:   &from,
		To:     &to,
		Kinds:  []models.HolidayKind{models.HolidayKindHoliday, models.HolidayKindBreak},
	})
	require.NoError(t, err)
	require.Len(t, holidays, 1)
	assert.Equal(t, models.HolidayKindBreak, holidays[0].Kind)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPlannerRunRepositoryCreateAndList(t *testing.T) {
	db, mock, cleanup := newPlannerRepoMock(t)
	defer cleanup()
	repo := NewPlannerRunRepository(db)

	mock.ExpectExec("INSERT INTO planner_runs").
		WithArgs(sqlmock.AnyArg(), "u1", sqlmock.AnyArg(), sqlmock.AnyArg(), 3, sqlmock.AnyArg(), false, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(1, 1))

	score := 42.0
	run := &models.PlannerRun{
		UserID:      "u1",
		StartDate:   time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC),
		Params:      types.JSONText(`{"search_days":60}`),
		WindowCount: 3,
		BestScore:   &score,
	}
	require.NoError(t, repo.Create(context.Background(), run))
	assert.NotEmpty(t, run.ID)
	assert.False(t, run.CreatedAt.IsZero())

	rows := sqlmock.NewRows([]string{"id", "user_id", "start_date", "params", "window_count", "best_score", "narrated", "created_at"}).
		AddRow(run.ID, "u1", run.StartDate, []byte(`{"search_days":60}`), 3, 42.0, false, run.CreatedAt)
	mock.ExpectQuery(regexp.QuoteMeta("FROM planner_runs WHERE user_id = $1 ORDER BY created_at DESC LIMIT 10 OFFSET 10")).
		WithArgs("u1").
		WillReturnRows(rows)
	mock.ExpectQuery(regexp.QuoteMeta("SELECT COUNT(*) FROM planner_runs WHERE user_id = $1")).
		WithArgs("u1").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(11))

	runs, total, err := repo.ListByUser(context.Background(), "u1", 2, 10)
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Equal(t, 11, total)
	require.NotNil(t, runs[0].BestScore)
	assert.Equal(t, 42.0, *runs[0].BestScore)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)

	var dest map[string]string
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", map[string]string{"a": "b"}, time.Minute))
	assert.NoError(t, repo.Close())
}
