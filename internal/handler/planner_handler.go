package handler

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/leave-planner-api/internal/dto"
	"github.com/noah-isme/leave-planner-api/internal/models"
	"github.com/noah-isme/leave-planner-api/internal/service"
	appErrors "github.com/noah-isme/leave-planner-api/pkg/errors"
	"github.com/noah-isme/leave-planner-api/pkg/response"
)

type leavePlanner interface {
	Recommend(ctx context.Context, userID string, req dto.RecommendRequest) (*service.Recommendation, error)
	Simulate(ctx context.Context, req dto.SimulateRequest) (*service.Recommendation, error)
	Export(ctx context.Context, userID string, q dto.ExportQuery) (*service.ExportFile, error)
	Runs(ctx context.Context, userID string, q dto.RunQuery) ([]models.PlannerRun, *models.Pagination, error)
}

// PlannerHandler exposes leave-window recommendation endpoints.
type PlannerHandler struct {
	service leavePlanner
}

// NewPlannerHandler constructs the handler.
func NewPlannerHandler(svc *service.PlannerService) *PlannerHandler {
	return &PlannerHandler{service: svc}
}

// Recommend godoc
// @Summary Recommend safe leave windows
// @Description Scans the upcoming days for contiguous leave windows that keep every subject above its attendance threshold.
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.RecommendRequest false "Search overrides"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /planner/recommendations [post]
func (h *PlannerHandler) Recommend(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var req dto.RecommendRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid recommendation payload"))
			return
		}
	}
	rec, err := h.service.Recommend(c.Request.Context(), claims.UserID, req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec.Result, nil, recommendationMeta(rec))
}

// Simulate godoc
// @Summary Recommend leave windows for an inline snapshot
// @Description Stateless variant that takes subjects, weekly schedule and calendar in the request body.
// @Tags Planner
// @Accept json
// @Produce json
// @Param payload body dto.SimulateRequest true "Attendance snapshot"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /planner/simulate [post]
func (h *PlannerHandler) Simulate(c *gin.Context) {
	var req dto.SimulateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid simulation payload"))
		return
	}
	rec, err := h.service.Simulate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, rec.Result, nil, recommendationMeta(rec))
}

// Export godoc
// @Summary Export recommended leave windows
// @Tags Planner
// @Produce text/csv
// @Produce application/pdf
// @Produce text/html
// @Param format query string false "csv, pdf or html"
// @Param start_date query string false "First day of the search (YYYY-MM-DD)"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /planner/recommendations/export [get]
func (h *PlannerHandler) Export(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var q dto.ExportQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	file, err := h.service.Export(c.Request.Context(), claims.UserID, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Attachment(c, file.Filename, file.ContentType, file.Data)
}

// Runs godoc
// @Summary List recorded planner runs
// @Tags Planner
// @Produce json
// @Param page query int false "Page"
// @Param page_size query int false "Page size"
// @Success 200 {object} response.Envelope
// @Router /planner/runs [get]
func (h *PlannerHandler) Runs(c *gin.Context) {
	claims := claimsFromContext(c)
	if claims == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	var q dto.RunQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid run query"))
		return
	}
	runs, pagination, err := h.service.Runs(c.Request.Context(), claims.UserID, q)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, runs, pagination)
}

func recommendationMeta(rec *service.Recommendation) map[string]interface{} {
	return map[string]interface{}{
		"summary_text": rec.SummaryText,
		"start_date":   rec.StartDate,
		"cached":       rec.Cached,
		"narrated":     rec.Narrated,
	}
}
