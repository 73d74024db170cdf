package handlers

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	domainagg "github.com/yungbote/roadmap-backend/internal/domain/aggregates"
	types "github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/http/response"
	roadmapmod "github.com/yungbote/roadmap-backend/internal/modules/roadmap"
	"github.com/yungbote/roadmap-backend/internal/platform/ctxutil"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

// RoadmapUsecases is the part of roadmap.Usecases the HTTP layer calls.
type RoadmapUsecases interface {
	GenerateRoadmap(ctx context.Context, userID uuid.UUID, goalText string) (roadmapmod.RoadmapView, error)
	GetRoadmap(ctx context.Context, userID, roadmapID uuid.UUID) (roadmapmod.RoadmapView, error)
	GetActiveRoadmap(ctx context.Context, userID uuid.UUID) (roadmapmod.RoadmapView, error)
	ListRoadmaps(ctx context.Context, userID uuid.UUID, status types.Status, limit int) ([]roadmapmod.RoadmapSummary, error)
	ArchiveRoadmap(ctx context.Context, userID, roadmapID uuid.UUID) (domainagg.ArchiveRoadmapResult, error)
	SaveStepPlan(ctx context.Context, userID, stepID uuid.UUID, plan types.Plan) (roadmapmod.StepView, error)
	CompleteStep(ctx context.Context, userID, stepID uuid.UUID, plan types.Plan) (domainagg.CompleteStepResult, error)
	ListCatalog(ctx context.Context, f roadmapmod.CatalogFilter) (roadmapmod.CatalogPage, error)
}

type RoadmapHandler struct {
	log *logger.Logger
	uc  RoadmapUsecases
}

func NewRoadmapHandler(log *logger.Logger, uc RoadmapUsecases) *RoadmapHandler {
	RegisterValidators()
	return &RoadmapHandler{log: log.With("handler", "RoadmapHandler"), uc: uc}
}

type createRoadmapRequest struct {
	Goal string `json:"goal"`
}

type planRequest struct {
	Situation string `json:"situation" binding:"max=2000"`
	Trigger   string `json:"trigger" binding:"max=2000"`
	Action    string `json:"action" binding:"max=2000"`
}

func (r planRequest) plan() types.Plan {
	return types.Plan{Situation: r.Situation, Trigger: r.Trigger, Action: r.Action}
}

type listRoadmapsQuery struct {
	Status string `form:"status" binding:"omitempty,roadmap_status"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
}

// POST /api/roadmaps
func (h *RoadmapHandler) CreateRoadmap(c *gin.Context) {
	var req createRoadmapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	view, err := h.uc.GenerateRoadmap(c.Request.Context(), ctxutil.UserID(c.Request.Context()), req.Goal)
	if err != nil {
		h.fail(c, "CreateRoadmap", err)
		return
	}
	response.RespondCreated(c, gin.H{"roadmap": view})
}

// GET /api/roadmaps
func (h *RoadmapHandler) ListRoadmaps(c *gin.Context) {
	var q listRoadmapsQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	out, err := h.uc.ListRoadmaps(c.Request.Context(), ctxutil.UserID(c.Request.Context()), types.Status(q.Status), q.Limit)
	if err != nil {
		h.fail(c, "ListRoadmaps", err)
		return
	}
	response.RespondOK(c, gin.H{"roadmaps": out})
}

// GET /api/roadmaps/active
func (h *RoadmapHandler) GetActiveRoadmap(c *gin.Context) {
	view, err := h.uc.GetActiveRoadmap(c.Request.Context(), ctxutil.UserID(c.Request.Context()))
	if err != nil {
		h.fail(c, "GetActiveRoadmap", err)
		return
	}
	response.RespondOK(c, gin.H{"roadmap": view})
}

// GET /api/roadmaps/:id
func (h *RoadmapHandler) GetRoadmap(c *gin.Context) {
	id, ok := h.pathID(c, "invalid_roadmap_id")
	if !ok {
		return
	}
	view, err := h.uc.GetRoadmap(c.Request.Context(), ctxutil.UserID(c.Request.Context()), id)
	if err != nil {
		h.fail(c, "GetRoadmap", err)
		return
	}
	response.RespondOK(c, gin.H{"roadmap": view})
}

// POST /api/roadmaps/:id/archive
func (h *RoadmapHandler) ArchiveRoadmap(c *gin.Context) {
	id, ok := h.pathID(c, "invalid_roadmap_id")
	if !ok {
		return
	}
	out, err := h.uc.ArchiveRoadmap(c.Request.Context(), ctxutil.UserID(c.Request.Context()), id)
	if err != nil {
		h.fail(c, "ArchiveRoadmap", err)
		return
	}
	response.RespondOK(c, gin.H{"archive": out})
}

// PUT /api/roadmap-steps/:id/plan
func (h *RoadmapHandler) SaveStepPlan(c *gin.Context) {
	id, ok := h.pathID(c, "invalid_step_id")
	if !ok {
		return
	}
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	step, err := h.uc.SaveStepPlan(c.Request.Context(), ctxutil.UserID(c.Request.Context()), id, req.plan())
	if err != nil {
		h.fail(c, "SaveStepPlan", err)
		return
	}
	response.RespondOK(c, gin.H{"step": step})
}

// POST /api/roadmap-steps/:id/complete
func (h *RoadmapHandler) CompleteStep(c *gin.Context) {
	id, ok := h.pathID(c, "invalid_step_id")
	if !ok {
		return
	}
	var req planRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		bindError(c, err)
		return
	}
	out, err := h.uc.CompleteStep(c.Request.Context(), ctxutil.UserID(c.Request.Context()), id, req.plan())
	if err != nil {
		h.fail(c, "CompleteStep", err)
		return
	}
	response.RespondOK(c, gin.H{"completion": out})
}

func (h *RoadmapHandler) pathID(c *gin.Context, code string) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.RespondError(c, http.StatusBadRequest, code, err)
		return uuid.Nil, false
	}
	return id, true
}

func (h *RoadmapHandler) fail(c *gin.Context, op string, err error) {
	ae, details := mapError(err)
	if ae.Status >= http.StatusInternalServerError {
		fields := append([]interface{}{"op", op, "status", ae.Status, "error", err}, ctxutil.LogFields(c.Request.Context())...)
		h.log.Error("Request failed", fields...)
	}
	response.RespondAPIError(c, ae, details)
}
