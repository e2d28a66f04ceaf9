// internal/mcp/llm/planner.go
package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"
)

// ToolLite: representasi tool untuk prompt (tanpa import mcp untuk hindari cycle).
type ToolLite struct {
	Name          string          `json:"name"`
	Description   string          `json:"description"`
	InputSchema   json.RawMessage `json:"-"`
	ExampleParams map[string]any  `json:"example_params,omitempty"`
}

type schemaDoc struct {
	Properties map[string]json.RawMessage `json:"properties"`
	Required   []string                   `json:"required"`
}

// RoutePlanner memilih tool kalkulator untuk sebuah pertanyaan via LLM (JSON mode).
type RoutePlanner struct{ client Client }

func NewRoutePlanner(c Client) *RoutePlanner { return &RoutePlanner{client: c} }

const plannerSystemPrompt = `Anda adalah ROUTER untuk layanan kalkulator petroleum engineering.
Jawab HANYA dengan JSON object valid, tanpa markdown.
Aturan:
- Pilih HANYA tool yang ada di "tools". Jangan mengarang nama tool atau field params.
- nodal_analysis untuk titik operasi / IPR-VLP / skenario wellhead pressure.
- fit_ipr bila user hanya minta n, C, atau AOF dari well test.
- decline_forecast bila qi dan D disebut; decline_from_history bila yang disebut nama sumur dan histori.
- gaslift_sensitivity untuk GIR, dome pressure, valve gas lift.
- petro_interval untuk analisis log LAS; ofm_export untuk export OFM / Power BI.
- get_well_tests dan get_production hanya untuk menampilkan data mentah.
- Maksimal 4 routes. Angka dari pertanyaan dimasukkan ke params dengan satuan field (psi, STB/d, 1/bulan).
Skema keluaran:
{
  "mode": "mcp",
  "routes": [ { "kind": "mcp", "tool": "<nama tool>", "params": { } } ],
  "reason": "string singkat"
}`

// PlanRaw menyusun prompt dari daftar tool lalu mengembalikan JSON mentah dari model.
func (p *RoutePlanner) PlanRaw(ctx context.Context, tools []ToolLite, question string) (string, error) {
	type toolForLLM struct {
		Name        string         `json:"name"`
		Description string         `json:"description"`
		Fields      []string       `json:"fields,omitempty"`
		Required    []string       `json:"required,omitempty"`
		Example     map[string]any `json:"example_params,omitempty"`
	}
	llmTools := make([]toolForLLM, 0, len(tools))
	for _, t := range tools {
		var sc schemaDoc
		_ = json.Unmarshal(t.InputSchema, &sc)
		fields := make([]string, 0, len(sc.Properties))
		for k := range sc.Properties {
			fields = append(fields, k)
		}
		sort.Strings(fields)
		llmTools = append(llmTools, toolForLLM{
			Name:        t.Name,
			Description: t.Description,
			Fields:      fields,
			Required:    sc.Required,
			Example:     t.ExampleParams,
		})
	}

	payload := struct {
		Question string       `json:"question"`
		Tools    []toolForLLM `json:"tools"`
	}{Question: question, Tools: llmTools}
	ub, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("planner payload: %w", err)
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 8*time.Second)
		defer cancel()
	}

	raw, err := p.client.AnswerJSON(ctx, string(ub), plannerSystemPrompt)
	if err != nil {
		return "", fmt.Errorf("planner AnswerJSON: %w", err)
	}
	return strings.TrimSpace(raw), nil
}
