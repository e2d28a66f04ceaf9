// internal/mcp/tools_def.go
package mcp

import (
	_ "embed"
	"encoding/json"
	"sort"
	"sync"
)

// katalog tool ikut ter-embed di binary
//
//go:embed mcp-tools.json
var toolsJSON []byte

type ToolDef struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	Keywords      []string        `json:"keywords,omitempty"`
	InputSchema   json.RawMessage `json:"input_schema"`
	ExampleParams map[string]any  `json:"example_params,omitempty"`
}

type ToolCatalog struct {
	Tools []ToolDef `json:"tools"`
}

var (
	toolDefs     []ToolDef
	toolDefsOnce sync.Once
	toolDefsErr  error
)

func LoadToolDefs() ([]ToolDef, error) {
	toolDefsOnce.Do(func() {
		var cat ToolCatalog
		if err := json.Unmarshal(toolsJSON, &cat); err != nil {
			toolDefsErr = err
			return
		}
		toolDefs = cat.Tools
	})
	return toolDefs, toolDefsErr
}

// RegisteredToolDefs: katalog yang tool-nya benar-benar terdaftar di registry.
func RegisteredToolDefs() []ToolDef {
	defs, err := LoadToolDefs()
	if err != nil {
		return nil
	}
	out := make([]ToolDef, 0, len(defs))
	for _, d := range defs {
		if _, ok := Get(d.Name); ok {
			out = append(out, d)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
