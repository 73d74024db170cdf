package roadmap

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	catalogrepo "github.com/yungbote/roadmap-backend/internal/data/repos/catalog"
	types "github.com/yungbote/roadmap-backend/internal/domain/roadmap"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
)

const (
	defaultListLimit = 20
	maxListLimit     = 100
)

func (u Usecases) GetRoadmap(ctx context.Context, userID, roadmapID uuid.UUID) (RoadmapView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	rm, err := u.deps.Roadmaps.GetForUser(dbc, userID, roadmapID)
	if err != nil {
		return RoadmapView{}, fmt.Errorf("load roadmap: %w", err)
	}
	if rm == nil {
		return RoadmapView{}, types.NewStateError(types.StateNotFound, types.ReasonRoadmapNotFound, "")
	}
	return u.fullView(dbc, rm)
}

// GetActiveRoadmap returns the user's active roadmap, or a not_found
// StateError when there is none.
func (u Usecases) GetActiveRoadmap(ctx context.Context, userID uuid.UUID) (RoadmapView, error) {
	dbc := dbctx.Context{Ctx: ctx}
	rm, err := u.deps.Roadmaps.GetActiveByUser(dbc, userID)
	if err != nil {
		return RoadmapView{}, fmt.Errorf("load active roadmap: %w", err)
	}
	if rm == nil {
		return RoadmapView{}, types.NewStateError(types.StateNotFound, types.ReasonRoadmapNotFound, "")
	}
	return u.fullView(dbc, rm)
}

func (u Usecases) fullView(dbc dbctx.Context, rm *types.Roadmap) (RoadmapView, error) {
	steps, err := u.deps.Steps.GetByRoadmapIDs(dbc, []uuid.UUID{rm.ID})
	if err != nil {
		return RoadmapView{}, fmt.Errorf("load steps: %w", err)
	}
	content, err := u.loadContent(dbc, steps)
	if err != nil {
		return RoadmapView{}, fmt.Errorf("load step content: %w", err)
	}
	return roadmapView(rm, steps, content), nil
}

// ListRoadmaps lists the user's roadmaps newest first. An empty status lists
// every status.
func (u Usecases) ListRoadmaps(ctx context.Context, userID uuid.UUID, status types.Status, limit int) ([]RoadmapSummary, error) {
	switch status {
	case "", types.StatusActive, types.StatusCompleted, types.StatusArchived:
	default:
		return nil, fmt.Errorf("unknown roadmap status %q", status)
	}
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	dbc := dbctx.Context{Ctx: ctx}
	rows, err := u.deps.Roadmaps.ListByUser(dbc, userID, status, limit)
	if err != nil {
		return nil, fmt.Errorf("list roadmaps: %w", err)
	}
	ids := make([]uuid.UUID, len(rows))
	for i, r := range rows {
		ids[i] = r.ID
	}
	steps, err := u.deps.Steps.GetByRoadmapIDs(dbc, ids)
	if err != nil {
		return nil, fmt.Errorf("load steps: %w", err)
	}
	byRoadmap := make(map[uuid.UUID][]*types.RoadmapStep, len(rows))
	for _, s := range steps {
		byRoadmap[s.RoadmapID] = append(byRoadmap[s.RoadmapID], s)
	}
	out := make([]RoadmapSummary, 0, len(rows))
	for _, r := range rows {
		out = append(out, roadmapSummary(r, byRoadmap[r.ID]))
	}
	return out, nil
}

type CatalogFilter = catalogrepo.ListFilter

type CatalogPage struct {
	Items []ContentView `json:"items"`
	Total int64         `json:"total"`
}

func (u Usecases) ListCatalog(ctx context.Context, f CatalogFilter) (CatalogPage, error) {
	if f.Type != "" && !f.Type.Valid() {
		return CatalogPage{}, fmt.Errorf("unknown content type %q", f.Type)
	}
	if f.Limit <= 0 || f.Limit > maxListLimit {
		f.Limit = maxListLimit
	}
	dbc := dbctx.Context{Ctx: ctx}
	rows, err := u.deps.Content.List(dbc, f)
	if err != nil {
		return CatalogPage{}, fmt.Errorf("list catalog: %w", err)
	}
	total, err := u.deps.Content.Count(dbc)
	if err != nil {
		return CatalogPage{}, fmt.Errorf("count catalog: %w", err)
	}
	page := CatalogPage{Items: make([]ContentView, 0, len(rows)), Total: total}
	for _, r := range rows {
		page.Items = append(page.Items, *contentView(r))
	}
	return page, nil
}
