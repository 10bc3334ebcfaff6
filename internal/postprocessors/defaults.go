package postprocessors

import (
	"github.com/custodia-labs/docqa/internal/core/ports/driven"
)

// DefaultProcessors is the pipeline used when config names none.
var DefaultProcessors = []string{"drop_blank", "page_fill"}

// RegisterDefaults registers all built-in processors with the registry.
// Call this during application initialisation to enable standard processors.
func RegisterDefaults(r *Registry) {
	r.Register("drop_blank", buildDropBlank)
	r.Register("page_fill", buildPageFill)
}

// NewDefaultPipeline returns the built-in pipeline.
func NewDefaultPipeline() *Pipeline {
	return NewPipeline(&DropBlank{}, &PageFill{})
}

func buildDropBlank(_ map[string]any) (driven.ChunkProcessor, error) {
	return &DropBlank{}, nil
}

// buildPageFill creates a page numbering processor from generic config.
// Supported config keys:
//   - start (int): Number given to the first chunk (default: 1)
func buildPageFill(cfg map[string]any) (driven.ChunkProcessor, error) {
	p := &PageFill{}
	if cfg != nil {
		p.Start = getIntFromConfig(cfg, "start")
	}
	return p, nil
}

// getIntFromConfig safely extracts an int from generic config map.
// Handles int, int64, and float64 types that may come from TOML/JSON parsing.
func getIntFromConfig(cfg map[string]any, key string) int {
	val, ok := cfg[key]
	if !ok {
		return 0
	}

	switch v := val.(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}
