// mcp/protocol.go
// Envelope request/response router MCP

package mcp

import "encoding/json"

// ToolRequest: Tool eksplisit, atau Question untuk dipilihkan router.
// Params diteruskan apa adanya sebagai body JSON ke handler tool.
type ToolRequest struct {
	Tool     string          `json:"tool,omitempty"`
	Question string          `json:"question,omitempty"`
	Params   json.RawMessage `json:"params,omitempty"`
	Plan     *Plan           `json:"plan,omitempty"`
}

type ToolResponse struct {
	Success    bool         `json:"success"`
	Tool       string       `json:"tool,omitempty"`
	DecisionBy string       `json:"decision_by,omitempty"`
	Reason     string       `json:"reason,omitempty"`
	Data       any          `json:"data,omitempty"`
	Items      []ExecResult `json:"items,omitempty"`
	Error      string       `json:"error,omitempty"`
}
