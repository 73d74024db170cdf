package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/roadmap-backend/internal/domain/catalog"
	"github.com/yungbote/roadmap-backend/internal/http/response"
	roadmapmod "github.com/yungbote/roadmap-backend/internal/modules/roadmap"
)

type catalogQuery struct {
	Type   string `form:"type" binding:"omitempty,content_type"`
	Limit  int    `form:"limit" binding:"omitempty,min=1,max=100"`
	Offset int    `form:"offset" binding:"omitempty,min=0"`
}

// GET /api/catalog
func (h *RoadmapHandler) ListCatalog(c *gin.Context) {
	var q catalogQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		bindError(c, err)
		return
	}
	page, err := h.uc.ListCatalog(c.Request.Context(), roadmapmod.CatalogFilter{
		Type:   catalog.ContentType(q.Type),
		Limit:  q.Limit,
		Offset: q.Offset,
	})
	if err != nil {
		h.fail(c, "ListCatalog", err)
		return
	}
	response.RespondOK(c, page)
}
