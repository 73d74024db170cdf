package catalog

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// ContentType is the closed set of catalog item kinds.
type ContentType string

const (
	MentalModel   ContentType = "mental-model"
	CognitiveBias ContentType = "cognitive-bias"
	Fallacy       ContentType = "fallacy"
)

// ContentTypes lists every ContentType; switches over ContentType should cover all of them.
var ContentTypes = [...]ContentType{MentalModel, CognitiveBias, Fallacy}

func ParseContentType(raw string) (ContentType, error) {
	switch ContentType(strings.ToLower(strings.TrimSpace(raw))) {
	case MentalModel:
		return MentalModel, nil
	case CognitiveBias:
		return CognitiveBias, nil
	case Fallacy:
		return Fallacy, nil
	}
	return "", fmt.Errorf("unknown content type %q", raw)
}

func (t ContentType) Valid() bool {
	_, err := ParseContentType(string(t))
	return err == nil
}

// KnowledgeContent is an immutable catalog entry with its precomputed embedding.
type KnowledgeContent struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Slug        string         `gorm:"column:slug;not null;uniqueIndex" json:"slug"`
	Title       string         `gorm:"column:title;not null" json:"title"`
	Type        ContentType    `gorm:"column:type;type:text;not null;index" json:"type"`
	Category    string         `gorm:"column:category;index" json:"category,omitempty"`
	Summary     string         `gorm:"column:summary;type:text" json:"summary,omitempty"`
	Description string         `gorm:"column:description;type:text" json:"description,omitempty"`
	Application string         `gorm:"column:application;type:text" json:"application,omitempty"`
	Keywords    datatypes.JSON `gorm:"column:keywords;type:jsonb" json:"keywords,omitempty"`
	Embedding   datatypes.JSON `gorm:"column:embedding;type:jsonb" json:"-"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
}

func (KnowledgeContent) TableName() string { return "knowledge_content" }

func (k *KnowledgeContent) BeforeCreate(tx *gorm.DB) error {
	if k.ID == uuid.Nil {
		k.ID = uuid.New()
	}
	return nil
}

// Vector decodes the stored embedding. A missing embedding decodes to nil.
func (k *KnowledgeContent) Vector() ([]float32, error) {
	if k == nil || len(k.Embedding) == 0 || string(k.Embedding) == "null" {
		return nil, nil
	}
	var out []float32
	if err := json.Unmarshal(k.Embedding, &out); err != nil {
		return nil, fmt.Errorf("decode embedding for %s: %w", k.Slug, err)
	}
	return out, nil
}

func (k *KnowledgeContent) SetVector(v []float32) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return err
	}
	k.Embedding = datatypes.JSON(raw)
	return nil
}

func (k *KnowledgeContent) KeywordList() []string {
	if k == nil || len(k.Keywords) == 0 {
		return nil
	}
	var out []string
	if err := json.Unmarshal(k.Keywords, &out); err != nil {
		return nil
	}
	return out
}

func (k *KnowledgeContent) SetKeywords(words []string) {
	if words == nil {
		words = []string{}
	}
	raw, _ := json.Marshal(words)
	k.Keywords = datatypes.JSON(raw)
}
