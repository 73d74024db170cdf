package catalog

import (
	"context"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"github.com/yungbote/roadmap-backend/internal/data/repos"
	types "github.com/yungbote/roadmap-backend/internal/domain/catalog"
	"github.com/yungbote/roadmap-backend/internal/platform/dbctx"
	"github.com/yungbote/roadmap-backend/internal/platform/embedding"
	"github.com/yungbote/roadmap-backend/internal/platform/logger"
)

// File is the on-disk catalog format.
type File struct {
	Items []Item `yaml:"items"`
}

type Item struct {
	Slug        string    `yaml:"slug"`
	Title       string    `yaml:"title"`
	Type        string    `yaml:"type"`
	Category    string    `yaml:"category"`
	Summary     string    `yaml:"summary"`
	Description string    `yaml:"description"`
	Application string    `yaml:"application"`
	Keywords    []string  `yaml:"keywords"`
	Embedding   []float32 `yaml:"embedding,omitempty"`
}

// EmbeddingText is what gets embedded for an item.
func (it Item) EmbeddingText() string {
	parts := []string{it.Title, it.Summary, it.Description, it.Application}
	if len(it.Keywords) > 0 {
		parts = append(parts, strings.Join(it.Keywords, ", "))
	}
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, "\n")
}

type ImporterDeps struct {
	DB      *gorm.DB
	Log     *logger.Logger
	Content repos.KnowledgeContentRepo
	// Embedder is required only when ImportOptions.Embed is set.
	Embedder embedding.Embedder
}

type ImportOptions struct {
	// Embed recomputes embeddings for every item. Otherwise items keep the
	// embedding given in the file, then the one already stored.
	Embed     bool
	BatchSize int
	DryRun    bool
}

type ImportReport struct {
	Parsed      int `json:"parsed"`
	Embedded    int `json:"embedded"`
	Kept        int `json:"kept_embedding"`
	NoEmbedding int `json:"without_embedding"`
	Written     int `json:"written"`
}

type Importer struct {
	deps ImporterDeps
}

func NewImporter(deps ImporterDeps) *Importer {
	if deps.Log == nil {
		deps.Log = logger.Nop()
	}
	deps.Log = deps.Log.With("service", "CatalogImporter")
	return &Importer{deps: deps}
}

// Parse decodes and validates a catalog file.
func Parse(r io.Reader) ([]*types.KnowledgeContent, []Item, error) {
	var f File
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil {
		return nil, nil, fmt.Errorf("decode catalog: %w", err)
	}
	rows := make([]*types.KnowledgeContent, 0, len(f.Items))
	seen := make(map[string]int, len(f.Items))
	for i, it := range f.Items {
		slug := strings.ToLower(strings.TrimSpace(it.Slug))
		if slug == "" {
			return nil, nil, fmt.Errorf("item %d: missing slug", i)
		}
		if prev, dup := seen[slug]; dup {
			return nil, nil, fmt.Errorf("item %d: slug %q already used by item %d", i, slug, prev)
		}
		seen[slug] = i
		if strings.TrimSpace(it.Title) == "" {
			return nil, nil, fmt.Errorf("item %q: missing title", slug)
		}
		typ, err := types.ParseContentType(it.Type)
		if err != nil {
			return nil, nil, fmt.Errorf("item %q: %w", slug, err)
		}
		kc := &types.KnowledgeContent{
			Slug:        slug,
			Title:       strings.TrimSpace(it.Title),
			Type:        typ,
			Category:    strings.TrimSpace(it.Category),
			Summary:     strings.TrimSpace(it.Summary),
			Description: strings.TrimSpace(it.Description),
			Application: strings.TrimSpace(it.Application),
		}
		kc.SetKeywords(it.Keywords)
		if len(it.Embedding) > 0 {
			if err := kc.SetVector(it.Embedding); err != nil {
				return nil, nil, fmt.Errorf("item %q: %w", slug, err)
			}
		}
		f.Items[i].Slug = slug
		rows = append(rows, kc)
	}
	return rows, f.Items, nil
}

func (im *Importer) Import(ctx context.Context, r io.Reader, opts ImportOptions) (ImportReport, error) {
	var rep ImportReport
	rows, items, err := Parse(r)
	if err != nil {
		return rep, err
	}
	rep.Parsed = len(rows)
	if len(rows) == 0 {
		return rep, nil
	}

	if opts.Embed {
		if im.deps.Embedder == nil {
			return rep, fmt.Errorf("embedding requested but no embedder configured")
		}
		n, err := im.embed(ctx, rows, items, opts.BatchSize)
		if err != nil {
			return rep, err
		}
		rep.Embedded = n
	} else {
		if err := im.keepStored(ctx, rows, &rep); err != nil {
			return rep, err
		}
	}
	for _, kc := range rows {
		if v, _ := kc.Vector(); len(v) == 0 {
			rep.NoEmbedding++
		}
	}
	if rep.NoEmbedding > 0 {
		im.deps.Log.Warn("Catalog items without embeddings will be skipped by matching", "count", rep.NoEmbedding)
	}

	if opts.DryRun {
		return rep, nil
	}
	err = im.deps.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return im.deps.Content.UpsertBySlug(dbctx.Context{Ctx: ctx, Tx: tx}, rows)
	})
	if err != nil {
		return rep, fmt.Errorf("upsert catalog: %w", err)
	}
	rep.Written = len(rows)
	im.deps.Log.Info("Catalog imported",
		"parsed", rep.Parsed,
		"embedded", rep.Embedded,
		"kept_embedding", rep.Kept,
		"without_embedding", rep.NoEmbedding,
	)
	return rep, nil
}

func (im *Importer) embed(ctx context.Context, rows []*types.KnowledgeContent, items []Item, batch int) (int, error) {
	if batch <= 0 {
		batch = 64
	}
	done := 0
	for start := 0; start < len(rows); start += batch {
		end := start + batch
		if end > len(rows) {
			end = len(rows)
		}
		texts := make([]string, 0, end-start)
		for _, it := range items[start:end] {
			texts = append(texts, it.EmbeddingText())
		}
		vecs, err := embedding.Batch(ctx, im.deps.Embedder, texts)
		if err != nil {
			return done, fmt.Errorf("embed items %d..%d: %w", start, end-1, err)
		}
		if len(vecs) != len(texts) {
			return done, fmt.Errorf("embed items %d..%d: got %d vectors", start, end-1, len(vecs))
		}
		for i, v := range vecs {
			if err := rows[start+i].SetVector(v); err != nil {
				return done, err
			}
			done++
		}
	}
	return done, nil
}

// keepStored copies stored embeddings onto rows the file left without one,
// so an upsert never blanks a vector.
func (im *Importer) keepStored(ctx context.Context, rows []*types.KnowledgeContent, rep *ImportReport) error {
	dbc := dbctx.Context{Ctx: ctx}
	for _, kc := range rows {
		if v, _ := kc.Vector(); len(v) > 0 {
			continue
		}
		existing, err := im.deps.Content.GetBySlug(dbc, kc.Slug)
		if err != nil {
			return fmt.Errorf("load %q: %w", kc.Slug, err)
		}
		if existing == nil {
			continue
		}
		if v, _ := existing.Vector(); len(v) > 0 {
			kc.Embedding = existing.Embedding
			rep.Kept++
		}
	}
	return nil
}
