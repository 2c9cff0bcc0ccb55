package switcher

import (
	"context"
	"encoding/json"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/extswitch/kit"
	"github.com/hazyhaar/extswitch/urlmatch"
)

// RegisterMCP registers extswitch tools on an MCP server. The tools are
// read-only inspection surfaces: previewing matches, listing profiles,
// reading the reconciler state, and checking patterns before saving them.
func (s *Switcher) RegisterMCP(srv *mcp.Server) {
	s.registerPreviewMatchTool(srv)
	s.registerListProfilesTool(srv)
	s.registerCurrentStateTool(srv)
	s.registerValidatePatternTool(srv)
}

func inputSchema(properties map[string]any, required []string) map[string]any {
	sch := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		sch["required"] = required
	}
	return sch
}

// --- preview_match ---

type previewMatchRequest struct {
	URL string `json:"url"`
}

func (s *Switcher) registerPreviewMatchTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "extswitch_preview_match",
		Description: "Resolve which profile group would activate for a URL, without toggling any extension. Returns the winning profile or null.",
		InputSchema: inputSchema(map[string]any{
			"url": map[string]any{"type": "string", "description": "Full URL to test (e.g. https://mail.example.com/inbox)"},
		}, []string{"url"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		rr := req.(*previewMatchRequest)
		return map[string]any{
			"url":     rr.URL,
			"profile": s.FindMatching(rr.URL),
		}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var rr previewMatchRequest
		if err := json.Unmarshal(req.Params.Arguments, &rr); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &rr}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- list_profiles ---

func (s *Switcher) registerListProfilesTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "extswitch_list_profiles",
		Description: "List all profile groups in priority order, including their conditions and extension states.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		return map[string]any{
			"global_enabled": s.GlobalEnabled(),
			"profiles":       s.Profiles(),
		}, nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- current_state ---

func (s *Switcher) registerCurrentStateTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "extswitch_current_state",
		Description: "Read the reconciler's match state: the active profile, the saved extension snapshot, and the last matched URL.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		return s.rec.CurrentState(), nil
	}

	decode := func(_ *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}

// --- validate_pattern ---

type validatePatternRequest struct {
	Pattern string `json:"pattern"`
	Type    string `json:"type"`
}

func (s *Switcher) registerValidatePatternTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "extswitch_validate_pattern",
		Description: "Check a match pattern before saving it. Returns an empty error string when the pattern is valid.",
		InputSchema: inputSchema(map[string]any{
			"pattern": map[string]any{"type": "string", "description": "The pattern text"},
			"type":    map[string]any{"type": "string", "enum": []any{"host-wildcard", "url-wildcard", "regex"}, "description": "Pattern dialect"},
		}, []string{"pattern", "type"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		rr := req.(*validatePatternRequest)
		msg := urlmatch.Validate(rr.Pattern, urlmatch.Type(rr.Type))
		return map[string]any{
			"valid": msg == "",
			"error": msg,
		}, nil
	}

	decode := func(req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		var rr validatePatternRequest
		if err := json.Unmarshal(req.Params.Arguments, &rr); err != nil {
			return nil, err
		}
		return &kit.MCPDecodeResult{Request: &rr}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decode)
}
