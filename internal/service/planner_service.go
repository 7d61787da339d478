package service

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/jmoiron/sqlx/types"
	"go.uber.org/zap"

	"github.com/noah-isme/leave-planner-api/internal/dto"
	"github.com/noah-isme/leave-planner-api/internal/models"
	"github.com/noah-isme/leave-planner-api/internal/planner"
	appErrors "github.com/noah-isme/leave-planner-api/pkg/errors"
	"github.com/noah-isme/leave-planner-api/pkg/export"
	"github.com/noah-isme/leave-planner-api/pkg/logger"
)

type plannerSubjectRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.Subject, error)
}

type plannerAttendanceRepository interface {
	SubjectStats(ctx context.Context, userID string) ([]models.SubjectAttendanceStats, error)
}

type plannerScheduleRepository interface {
	ListByUser(ctx context.Context, userID string) ([]models.ScheduleSlot, error)
}

type plannerCalendarRepository interface {
	ListHolidays(ctx context.Context, filter models.HolidayFilter) ([]models.AcademicHoliday, error)
}

type plannerRunRepository interface {
	ListByUser(ctx context.Context, userID string, page, size int) ([]models.PlannerRun, int, error)
}

type plannerCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration)
}

type plannerNarrator interface {
	Narrate(ctx context.Context, summary string, windows []planner.Window) (string, bool)
}

type plannerRecorder interface {
	Record(run models.PlannerRun)
}

// PlannerRepositories groups the stores the planner reads from.
type PlannerRepositories struct {
	Subjects   plannerSubjectRepository
	Attendance plannerAttendanceRepository
	Schedule   plannerScheduleRepository
	Calendar   plannerCalendarRepository
	Runs       plannerRunRepository
}

// PlannerConfig holds engine defaults.
type PlannerConfig struct {
	GlobalThreshold float64
	SearchDays      int
	MinWindow       int
	MaxWindow       int
	TopN            int
	Workers         int
	CacheTTL        time.Duration
	Location        *time.Location
}

// Recommendation is a planner result plus the plain-text summary that fed the narrator.
type Recommendation struct {
	planner.Result
	SummaryText string `json:"summary_text"`
	StartDate   string `json:"start_date"`
	Narrated    bool   `json:"narrated"`
	Cached      bool   `json:"-"`
}

// ExportFile is a rendered export ready to be served.
type ExportFile struct {
	Filename    string
	ContentType string
	Data        []byte
}

// PlannerService loads attendance snapshots, runs the recommendation engine
// and decorates results with narration, caching and run history.
type PlannerService struct {
	repos     PlannerRepositories
	cache     plannerCache
	narrator  plannerNarrator
	recorder  plannerRecorder
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	config    PlannerConfig
	now       func() time.Time
}

// NewPlannerService constructs a PlannerService.
func NewPlannerService(repos PlannerRepositories, cache plannerCache, narrator plannerNarrator, recorder plannerRecorder, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg PlannerConfig) *PlannerService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if cfg.GlobalThreshold == 0 {
		cfg.GlobalThreshold = planner.DefaultGlobalThreshold
	}
	if cfg.SearchDays == 0 {
		cfg.SearchDays = planner.DefaultSearchDays
	}
	if cfg.MinWindow == 0 {
		cfg.MinWindow = planner.DefaultMinWindow
	}
	if cfg.MaxWindow == 0 {
		cfg.MaxWindow = planner.DefaultMaxWindow
	}
	if cfg.TopN == 0 {
		cfg.TopN = planner.DefaultTopN
	}
	if cfg.Workers <= 0 {
		cfg.Workers = planner.DefaultWorkers
	}
	if cfg.Location == nil {
		cfg.Location = time.UTC
	}
	return &PlannerService{
		repos:     repos,
		cache:     cache,
		narrator:  narrator,
		recorder:  recorder,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		config:    cfg,
		now:       time.Now,
	}
}

// Recommend finds safe leave windows over the user's stored attendance.
func (s *PlannerService) Recommend(ctx context.Context, userID string, req dto.RecommendRequest) (*Recommendation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid recommendation payload")
	}
	params, err := s.resolveParams(req.SearchParams)
	if err != nil {
		return nil, err
	}

	snap, err := s.loadSnapshot(ctx, userID, params)
	if err != nil {
		return nil, err
	}

	key := s.cacheKey(userID, snap, params, req.Narrate)
	var cached Recommendation
	if s.cache != nil && s.cache.Get(ctx, key, &cached) {
		cached.Cached = true
		s.record(userID, params, &cached)
		return &cached, nil
	}

	rec, err := s.run(ctx, snap, params, req.Narrate)
	if err != nil {
		return nil, err
	}
	// A fallback narration would otherwise pin the template text for the whole TTL.
	if s.cache != nil && (!req.Narrate || rec.Narrated) {
		s.cache.Set(ctx, key, rec, s.config.CacheTTL)
	}
	s.record(userID, params, rec)
	return rec, nil
}

// Simulate runs the engine over a snapshot supplied by the caller. Nothing is
// read from or written to storage.
func (s *PlannerService) Simulate(ctx context.Context, req dto.SimulateRequest) (*Recommendation, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid simulation payload")
	}
	params, err := s.resolveParams(req.SearchParams)
	if err != nil {
		return nil, err
	}

	snap := snapshot{
		Subjects:        make([]planner.Subject, len(req.Subjects)),
		Schedule:        req.WeeklySchedule,
		Overrides:       planner.CalendarOverrides{},
		GlobalThreshold: s.config.GlobalThreshold,
	}
	if req.GlobalThreshold != nil {
		snap.GlobalThreshold = *req.GlobalThreshold
	}
	for i, sub := range req.Subjects {
		snap.Subjects[i] = planner.Subject{ID: sub.ID, Name: sub.Name, Attended: sub.Attended, Total: sub.Total, Threshold: sub.Threshold}
	}

	lo, hi := horizon(params)
	for _, h := range req.Holidays {
		start, end, err := parseHolidayRange(h)
		if err != nil {
			return nil, err
		}
		addHolidayRange(snap.Overrides, start, end, lo, hi)
	}
	for date, raw := range req.Calendar {
		dt, ok := planner.ParseDayType(raw)
		if !ok {
			return nil, appErrors.Clone(appErrors.ErrInvalidParameters, fmt.Sprintf("calendar entry %s has unknown day type %q", date, raw))
		}
		snap.Overrides[date] = dt
	}

	return s.run(ctx, snap, params, req.Narrate)
}

// Export renders the user's current recommendations in the requested format.
func (s *PlannerService) Export(ctx context.Context, userID string, q dto.ExportQuery) (*ExportFile, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid export query")
	}
	renderer, ok := export.ForFormat(q.Format)
	if !ok {
		return nil, appErrors.ErrUnsupportedFormat
	}

	rec, err := s.Recommend(ctx, userID, dto.RecommendRequest{SearchParams: q.SearchParams})
	if err != nil {
		return nil, err
	}

	data := OptionsDataset(rec.Result)
	if renderer.Extension() == export.FormatHTML {
		data = ProjectionChartDataset(rec.Result)
	}
	out, err := renderer.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	return &ExportFile{
		Filename:    fmt.Sprintf("leave-options-%s.%s", rec.StartDate, renderer.Extension()),
		ContentType: renderer.ContentType(),
		Data:        out,
	}, nil
}

// Runs lists the user's recorded planner runs newest first.
func (s *PlannerService) Runs(ctx context.Context, userID string, q dto.RunQuery) ([]models.PlannerRun, *models.Pagination, error) {
	if err := s.validator.Struct(q); err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid run query")
	}
	if s.repos.Runs == nil {
		return nil, nil, appErrors.Clone(appErrors.ErrFeatureDisabled, "run history is not available")
	}
	page, size := q.Page, q.PageSize
	if page < 1 {
		page = 1
	}
	if size < 1 {
		size = 20
	}
	runs, total, err := s.repos.Runs.ListByUser(ctx, userID, page, size)
	if err != nil {
		return nil, nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list planner runs")
	}
	if runs == nil {
		runs = []models.PlannerRun{}
	}
	return runs, &models.Pagination{Page: page, PageSize: size, TotalCount: total}, nil
}

type snapshot struct {
	Subjects        []planner.Subject
	Schedule        planner.WeeklySchedule
	Overrides       planner.CalendarOverrides
	GlobalThreshold float64
}

func (s *PlannerService) run(ctx context.Context, snap snapshot, params planner.Params, narrate bool) (*Recommendation, error) {
	log := logger.FromContext(ctx, s.logger)

	engine, err := planner.NewEngine(snap.Subjects, snap.Schedule, snap.Overrides, snap.GlobalThreshold,
		planner.WithWorkers(s.config.Workers),
		planner.WithLogger(log),
	)
	if err != nil {
		s.metrics.ObservePlannerRun(OutcomeRejected, 0, 0)
		return nil, err
	}

	started := time.Now()
	windows, err := engine.FindSafeVacations(params)
	if err != nil {
		s.metrics.ObservePlannerRun(OutcomeRejected, 0, 0)
		return nil, err
	}
	outcome := OutcomeFound
	if len(windows) == 0 {
		outcome = OutcomeNone
	}
	s.metrics.ObservePlannerRun(outcome, len(windows), time.Since(started))

	summary := planner.BuildSummaryText(windows, engine.Subjects(), engine.GlobalThreshold())

	advice, narrated := FallbackNarration(windows), false
	if narrate && s.narrator != nil {
		text, fallback := s.narrator.Narrate(ctx, summary, windows)
		advice, narrated = text, !fallback
	}

	return &Recommendation{
		Result:      planner.BuildResult(windows, advice),
		SummaryText: summary,
		StartDate:   planner.DateKey(params.Start),
		Narrated:    narrated,
	}, nil
}

func (s *PlannerService) resolveParams(sp dto.SearchParams) (planner.Params, error) {
	params := planner.Params{
		Start:      s.today(),
		SearchDays: s.config.SearchDays,
		MinLen:     s.config.MinWindow,
		MaxLen:     s.config.MaxWindow,
		TopN:       s.config.TopN,
	}
	if sp.StartDate != "" {
		start, err := planner.ParseDate(sp.StartDate)
		if err != nil {
			return planner.Params{}, appErrors.Clone(appErrors.ErrInvalidParameters, "start_date must be YYYY-MM-DD")
		}
		params.Start = start
	}
	if sp.SearchDays != nil {
		params.SearchDays = *sp.SearchDays
	}
	if sp.MinWindow != nil {
		params.MinLen = *sp.MinWindow
	}
	if sp.MaxWindow != nil {
		params.MaxLen = *sp.MaxWindow
	}
	if sp.TopN != nil {
		params.TopN = *sp.TopN
	}
	if err := params.Validate(); err != nil {
		return planner.Params{}, err
	}
	return params, nil
}

// today is the current calendar date in the configured zone, as midnight UTC.
func (s *PlannerService) today() time.Time {
	now := s.now().In(s.config.Location)
	return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
}

func (s *PlannerService) loadSnapshot(ctx context.Context, userID string, params planner.Params) (snapshot, error) {
	snap := snapshot{
		Schedule:        planner.WeeklySchedule{},
		Overrides:       planner.CalendarOverrides{},
		GlobalThreshold: s.config.GlobalThreshold,
	}

	subjects, err := s.repos.Subjects.ListByUser(ctx, userID)
	if err != nil {
		return snap, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load subjects")
	}
	stats, err := s.repos.Attendance.SubjectStats(ctx, userID)
	if err != nil {
		return snap, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load attendance")
	}
	bySubject := make(map[string]models.SubjectAttendanceStats, len(stats))
	for _, st := range stats {
		bySubject[st.SubjectID] = st
	}
	snap.Subjects = make([]planner.Subject, 0, len(subjects))
	for _, sub := range subjects {
		st := bySubject[sub.ID]
		snap.Subjects = append(snap.Subjects, planner.Subject{
			ID:        sub.ID,
			Name:      sub.Name,
			Attended:  st.Attended,
			Total:     st.Total,
			Threshold: sub.TargetAttendancePercent,
		})
	}

	slots, err := s.repos.Schedule.ListByUser(ctx, userID)
	if err != nil {
		return snap, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load schedule")
	}
	seen := make(map[string]map[string]bool)
	for _, slot := range slots {
		day, ok := planner.WeekdayName(slot.Weekday)
		if !ok {
			s.logger.Warn("skipping schedule slot with invalid weekday", zap.String("slot_id", slot.ID), zap.Int("weekday", slot.Weekday))
			continue
		}
		if seen[day] == nil {
			seen[day] = make(map[string]bool)
		}
		if seen[day][slot.SubjectID] {
			continue
		}
		seen[day][slot.SubjectID] = true
		snap.Schedule[day] = append(snap.Schedule[day], slot.SubjectID)
	}

	lo, hi := horizon(params)
	holidays, err := s.repos.Calendar.ListHolidays(ctx, models.HolidayFilter{
		UserID: userID,
		From:   &lo,
		To:     &hi,
		Kinds:  []models.HolidayKind{models.HolidayKindHoliday, models.HolidayKindBreak},
	})
	if err != nil {
		return snap, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load academic calendar")
	}
	for _, h := range holidays {
		addHolidayRange(snap.Overrides, h.StartDate, h.EndDate, lo, hi)
	}

	return snap, nil
}

func (s *PlannerService) cacheKey(userID string, snap snapshot, params planner.Params, narrate bool) string {
	payload, _ := json.Marshal(struct {
		Snapshot snapshot
		Start    string
		Search   int
		Min      int
		Max      int
		Top      int
		Narrate  bool
	}{snap, planner.DateKey(params.Start), params.SearchDays, params.MinLen, params.MaxLen, params.TopN, narrate})
	sum := sha256.Sum256(payload)
	return fmt.Sprintf("planner:%s:%s", userID, hex.EncodeToString(sum[:]))
}

type runParams struct {
	SearchDays int  `json:"search_days"`
	MinWindow  int  `json:"min_window"`
	MaxWindow  int  `json:"max_window"`
	TopN       int  `json:"top_n"`
	Cached     bool `json:"cached"`
}

func (s *PlannerService) record(userID string, params planner.Params, rec *Recommendation) {
	if s.recorder == nil {
		return
	}
	raw, _ := json.Marshal(runParams{
		SearchDays: params.SearchDays,
		MinWindow:  params.MinLen,
		MaxWindow:  params.MaxLen,
		TopN:       params.TopN,
		Cached:     rec.Cached,
	})
	run := models.PlannerRun{
		UserID:      userID,
		StartDate:   params.Start,
		Params:      types.JSONText(raw),
		WindowCount: len(rec.VacationOptions),
		Narrated:    rec.Narrated,
	}
	if len(rec.VacationOptions) > 0 {
		best := rec.VacationOptions[0].Score
		run.BestScore = &best
	}
	s.recorder.Record(run)
}

func horizon(params planner.Params) (time.Time, time.Time) {
	lo := planner.TruncateDay(params.Start)
	return lo, lo.AddDate(0, 0, params.SearchDays-1)
}

func parseHolidayRange(h dto.HolidayRange) (time.Time, time.Time, error) {
	start, err := planner.ParseDate(h.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrInvalidParameters, fmt.Sprintf("holiday %q has an invalid start_date", h.Name))
	}
	end := start
	if h.EndDate != "" {
		if end, err = planner.ParseDate(h.EndDate); err != nil {
			return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrInvalidParameters, fmt.Sprintf("holiday %q has an invalid end_date", h.Name))
		}
	}
	return start, end, nil
}

// addHolidayRange marks every day of [start, end] that falls inside [lo, hi]
// as a holiday. An end before start marks the start day only.
func addHolidayRange(overrides planner.CalendarOverrides, start, end, lo, hi time.Time) {
	start, end = planner.TruncateDay(start), planner.TruncateDay(end)
	if end.Before(start) {
		end = start
	}
	if start.Before(lo) {
		start = lo
	}
	if end.After(hi) {
		end = hi
	}
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		overrides[planner.DateKey(d)] = planner.DayTypeHoliday
	}
}

// OptionsDataset flattens ranked options into one row per option and subject.
func OptionsDataset(result planner.Result) export.Dataset {
	headers := []string{"Rank", "Start", "End", "Leave Days", "Holidays", "Score", "Subject", "Current %", "Projected %", "Missed", "Buffer", "Safe"}
	rows := make([]map[string]string, 0)
	for _, opt := range result.VacationOptions {
		for _, id := range sortedProjectionIDs(opt.SubjectProjections) {
			p := opt.SubjectProjections[id]
			rows = append(rows, map[string]string{
				"Rank":        strconv.Itoa(opt.Rank),
				"Start":       opt.StartDate,
				"End":         opt.EndDate,
				"Leave Days":  strconv.Itoa(opt.LeaveDays),
				"Holidays":    strconv.Itoa(opt.Holidays),
				"Score":       strconv.FormatFloat(opt.Score, 'f', 2, 64),
				"Subject":     p.SubjectName,
				"Current %":   strconv.FormatFloat(p.CurrentPercentage, 'f', 2, 64),
				"Projected %": strconv.FormatFloat(p.ProjectedPercentage, 'f', 2, 64),
				"Missed":      strconv.Itoa(p.MissedLectures),
				"Buffer":      strconv.FormatFloat(p.ProjectedBuffer, 'f', 2, 64),
				"Safe":        strconv.FormatBool(p.Safe),
			})
		}
	}
	return export.Dataset{Title: "Safe leave options", Headers: headers, Rows: rows}
}

// ProjectionChartDataset lays out current and projected attendance per
// subject, one series per ranked option.
func ProjectionChartDataset(result planner.Result) export.Dataset {
	headers := []string{"Subject", "Current"}
	for _, opt := range result.VacationOptions {
		headers = append(headers, fmt.Sprintf("Option %d (%s)", opt.Rank, opt.StartDate))
	}
	data := export.Dataset{Title: "Projected attendance", Headers: headers}
	if len(result.VacationOptions) == 0 {
		return data
	}

	first := result.VacationOptions[0].SubjectProjections
	for _, id := range sortedProjectionIDs(first) {
		row := map[string]string{
			"Subject": first[id].SubjectName,
			"Current": strconv.FormatFloat(first[id].CurrentPercentage, 'f', 2, 64),
		}
		for i, opt := range result.VacationOptions {
			row[headers[i+2]] = strconv.FormatFloat(opt.SubjectProjections[id].ProjectedPercentage, 'f', 2, 64)
		}
		data.Rows = append(data.Rows, row)
	}
	return data
}

func sortedProjectionIDs(projections map[string]planner.SubjectImpact) []string {
	ids := make([]string, 0, len(projections))
	for id := range projections {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}
