package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/leave-planner-api/internal/dto"
	"github.com/noah-isme/leave-planner-api/internal/middleware"
	"github.com/noah-isme/leave-planner-api/internal/models"
	"github.com/noah-isme/leave-planner-api/internal/planner"
	"github.com/noah-isme/leave-planner-api/internal/service"
	appErrors "github.com/noah-isme/leave-planner-api/pkg/errors"
)

type plannerStub struct {
	userID    string
	recommend dto.RecommendRequest
	simulate  dto.SimulateRequest
	export    dto.ExportQuery
	runs      dto.RunQuery
	err       error
}

func (s *plannerStub) Recommend(ctx context.Context, userID string, req dto.RecommendRequest) (*service.Recommendation, error) {
	s.userID, s.recommend = userID, req
	if s.err != nil {
		return nil, s.err
	}
	return sampleRecommendation(), nil
}

func (s *plannerStub) Simulate(ctx context.Context, req dto.SimulateRequest) (*service.Recommendation, error) {
	s.simulate = req
	if s.err != nil {
		return nil, s.err
	}
	return sampleRecommendation(), nil
}

func (s *plannerStub) Export(ctx context.Context, userID string, q dto.ExportQuery) (*service.ExportFile, error) {
	s.userID, s.export = userID, q
	if s.err != nil {
		return nil, s.err
	}
	return &service.ExportFile{Filename: "leave-options-2025-01-06.csv", ContentType: "text/csv", Data: []byte("rank,start_date\n1,2025-01-06\n")}, nil
}

func (s *plannerStub) Runs(ctx context.Context, userID string, q dto.RunQuery) ([]models.PlannerRun, *models.Pagination, error) {
	s.userID, s.runs = userID, q
	if s.err != nil {
		return nil, nil, s.err
	}
	return []models.PlannerRun{{ID: "run-1", UserID: userID, StartDate: time.Date(2025, 1, 6, 0, 0, 0, 0, time.UTC), WindowCount: 1}}, &models.Pagination{Page: 1, PageSize: 20, TotalCount: 1}, nil
}

func sampleRecommendation() *service.Recommendation {
	return &service.Recommendation{
		Result: planner.Result{
			Success: true,
			VacationOptions: []planner.WindowSummary{{
				Rank: 1, StartDate: "2025-01-10", EndDate: "2025-01-12", TotalDays: 3, LeaveDays: 1, Holidays: 2, Score: 28.5,
			}},
			AIAdvice: "Best option: 2025-01-10 to 2025-01-12",
		},
		SummaryText: "CURRENT ATTENDANCE STATUS:",
		StartDate:   "2025-01-06",
		Narrated:    false,
		Cached:      true,
	}
}

func plannerRouter(h *PlannerHandler, authenticated bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	if authenticated {
		r.Use(func(c *gin.Context) {
			c.Set(middleware.ContextUserKey, &models.JWTClaims{UserID: "user-1", Role: models.RoleStudent})
			c.Next()
		})
	}
	r.POST("/planner/recommendations", h.Recommend)
	r.POST("/planner/simulate", h.Simulate)
	r.GET("/planner/recommendations/export", h.Export)
	r.GET("/planner/runs", h.Runs)
	return r
}

func TestPlannerRecommendReturnsResultAndMeta(t *testing.T) {
	stub := &plannerStub{}
	r := plannerRouter(&PlannerHandler{service: stub}, true)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/planner/recommendations", bytes.NewBufferString(`{"start_date":"2025-01-06","top_n":2,"narrate":true}`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "user-1", stub.userID)
	assert.Equal(t, "2025-01-06", stub.recommend.StartDate)
	require.NotNil(t, stub.recommend.TopN)
	assert.Equal(t, 2, *stub.recommend.TopN)
	assert.True(t, stub.recommend.Narrate)

	var body struct {
		Data planner.Result         `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.True(t, body.Data.Success)
	require.Len(t, body.Data.VacationOptions, 1)
	assert.Equal(t, "2025-01-10", body.Data.VacationOptions[0].StartDate)
	assert.Equal(t, true, body.Meta["cached"])
	assert.Equal(t, false, body.Meta["narrated"])
	assert.Equal(t, "2025-01-06", body.Meta["start_date"])
}

func TestPlannerRecommendAcceptsEmptyBody(t *testing.T) {
	stub := &plannerStub{}
	r := plannerRouter(&PlannerHandler{service: stub}, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/planner/recommendations", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, stub.recommend.StartDate)
}

func TestPlannerRecommendRequiresClaims(t *testing.T) {
	r := plannerRouter(&PlannerHandler{service: &plannerStub{}}, false)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/planner/recommendations", nil))

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestPlannerRecommendMapsServiceErrors(t *testing.T) {
	stub := &plannerStub{err: appErrors.Clone(appErrors.ErrInvalidParameters, "min_window must not exceed max_window")}
	r := plannerRouter(&PlannerHandler{service: stub}, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/planner/recommendations", nil))

	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "INVALID_PARAMETERS")
}

func TestPlannerSimulateBindsSnapshot(t *testing.T) {
	stub := &plannerStub{}
	r := plannerRouter(&PlannerHandler{service: stub}, false)

	payload := `{
		"start_date": "2025-01-06",
		"subjects": [{"id": "CS101", "name": "Data Structures", "attended": 36, "total": 40, "threshold": 75}],
		"weekly_schedule": {"Monday": ["CS101"]},
		"calendar": {"2025-01-07": "holiday"}
	}`
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/planner/simulate", bytes.NewBufferString(payload))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	require.Len(t, stub.simulate.Subjects, 1)
	assert.Equal(t, "CS101", stub.simulate.Subjects[0].ID)
	assert.Equal(t, []string{"CS101"}, stub.simulate.WeeklySchedule["Monday"])
	assert.Equal(t, "holiday", stub.simulate.Calendar["2025-01-07"])
}

func TestPlannerSimulateRejectsMalformedJSON(t *testing.T) {
	r := plannerRouter(&PlannerHandler{service: &plannerStub{}}, false)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/planner/simulate", bytes.NewBufferString(`{"subjects":`))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestPlannerExportStreamsAttachment(t *testing.T) {
	stub := &plannerStub{}
	r := plannerRouter(&PlannerHandler{service: stub}, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/planner/recommendations/export?format=csv&start_date=2025-01-06", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "csv", stub.export.Format)
	assert.Equal(t, "2025-01-06", stub.export.StartDate)
	assert.Equal(t, `attachment; filename="leave-options-2025-01-06.csv"`, w.Header().Get("Content-Disposition"))
	assert.Contains(t, w.Body.String(), "1,2025-01-06")
}

func TestPlannerExportUnsupportedFormat(t *testing.T) {
	stub := &plannerStub{err: appErrors.ErrUnsupportedFormat}
	r := plannerRouter(&PlannerHandler{service: stub}, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/planner/recommendations/export?format=xlsx", nil))

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "UNSUPPORTED_FORMAT")
}

func TestPlannerRunsPaginates(t *testing.T) {
	stub := &plannerStub{}
	r := plannerRouter(&PlannerHandler{service: stub}, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/planner/runs?page=1&page_size=20", nil))

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 20, stub.runs.PageSize)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Len(t, body["data"], 1)
	assert.EqualValues(t, 1, body["pagination"].(map[string]interface{})["total_count"])
}

func TestPlannerRunsFeatureDisabled(t *testing.T) {
	stub := &plannerStub{err: appErrors.ErrFeatureDisabled}
	r := plannerRouter(&PlannerHandler{service: stub}, true)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/planner/runs", nil))

	assert.Equal(t, http.StatusNotFound, w.Code)
}
