package matching

import "github.com/yungbote/roadmap-backend/internal/platform/envutil"

const (
	hardMinSteps = 5
	hardMaxSteps = 7
)

type Config struct {
	MinSteps int
	MaxSteps int
	// MaxTypeShare caps the share of one content type in a roadmap while
	// enough diverse candidates clear SimilarityFloor.
	MaxTypeShare    float64
	SimilarityFloor float64
}

func DefaultConfig() Config {
	return Config{MinSteps: 5, MaxSteps: 7, MaxTypeShare: 0.7, SimilarityFloor: 0.25}
}

func ConfigFromEnv() Config {
	d := DefaultConfig()
	return Config{
		MinSteps:        envutil.Int("ROADMAP_MIN_STEPS", d.MinSteps),
		MaxSteps:        envutil.Int("ROADMAP_MAX_STEPS", d.MaxSteps),
		MaxTypeShare:    envutil.Float("ROADMAP_MAX_TYPE_SHARE", d.MaxTypeShare),
		SimilarityFloor: envutil.Float("ROADMAP_SIMILARITY_FLOOR", d.SimilarityFloor),
	}.normalized()
}

// normalized keeps step bounds inside what persistence accepts.
func (c Config) normalized() Config {
	if c.MinSteps < hardMinSteps || c.MinSteps > hardMaxSteps {
		c.MinSteps = hardMinSteps
	}
	if c.MaxSteps < c.MinSteps || c.MaxSteps > hardMaxSteps {
		c.MaxSteps = hardMaxSteps
	}
	if c.MaxTypeShare <= 0 || c.MaxTypeShare > 1 {
		c.MaxTypeShare = DefaultConfig().MaxTypeShare
	}
	if c.SimilarityFloor < -1 || c.SimilarityFloor > 1 {
		c.SimilarityFloor = DefaultConfig().SimilarityFloor
	}
	return c
}
