package switcher

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/hazyhaar/extswitch/navwatch"
	"github.com/hazyhaar/extswitch/profiles"
)

var testImpl = &mcp.Implementation{Name: "extswitch-test", Version: "0.1.0"}

func mcpSession(t *testing.T, states map[string]bool) (*Switcher, *mcp.ClientSession) {
	t.Helper()
	sw, _, _ := testSwitcher(t, states)

	srv := mcp.NewServer(testImpl, nil)
	sw.RegisterMCP(srv)

	serverT, clientT := mcp.NewInMemoryTransports()
	ctx := context.Background()

	go func() { _ = srv.Run(ctx, serverT) }()

	client := mcp.NewClient(testImpl, nil)
	session, err := client.Connect(ctx, clientT, nil)
	if err != nil {
		t.Fatalf("client connect: %v", err)
	}
	t.Cleanup(func() { session.Close() })
	return sw, session
}

func callTool(t *testing.T, session *mcp.ClientSession, name string, args any) string {
	t.Helper()
	result, err := session.CallTool(context.Background(), &mcp.CallToolParams{
		Name:      name,
		Arguments: args,
	})
	if err != nil {
		t.Fatalf("CallTool(%s): %v", name, err)
	}
	if err := result.GetError(); err != nil {
		t.Fatalf("CallTool(%s) tool error: %v", name, err)
	}
	if len(result.Content) == 0 {
		t.Fatalf("CallTool(%s): empty content", name)
	}
	tc, ok := result.Content[0].(*mcp.TextContent)
	if !ok {
		t.Fatalf("CallTool(%s): expected TextContent, got %T", name, result.Content[0])
	}
	return tc.Text
}

func TestMCP_PreviewMatch(t *testing.T) {
	sw, session := mcpSession(t, nil)
	if err := sw.CreateProfile(context.Background(), workProfile("", 5)); err != nil {
		t.Fatal(err)
	}

	text := callTool(t, session, "extswitch_preview_match", map[string]any{
		"url": "https://mail.work.example/inbox",
	})
	var out struct {
		Profile *profiles.ProfileGroup `json:"profile"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Profile == nil || out.Profile.Name != "work" {
		t.Errorf("preview: %+v", out.Profile)
	}

	text = callTool(t, session, "extswitch_preview_match", map[string]any{
		"url": "https://unrelated.example.org/",
	})
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Profile != nil {
		t.Errorf("unexpected match: %+v", out.Profile)
	}
}

func TestMCP_ListProfiles(t *testing.T) {
	sw, session := mcpSession(t, nil)
	ctx := context.Background()
	for _, p := range []*profiles.ProfileGroup{workProfile("", 1), workProfile("", 9)} {
		if err := sw.CreateProfile(ctx, p); err != nil {
			t.Fatal(err)
		}
	}

	text := callTool(t, session, "extswitch_list_profiles", map[string]any{})
	var out struct {
		GlobalEnabled bool                     `json:"global_enabled"`
		Profiles      []*profiles.ProfileGroup `json:"profiles"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.GlobalEnabled {
		t.Error("global flag should default to enabled")
	}
	if len(out.Profiles) != 2 {
		t.Fatalf("got %d profiles", len(out.Profiles))
	}
	if out.Profiles[0].Priority != 9 {
		t.Errorf("priority order: %+v", out.Profiles)
	}
}

func TestMCP_CurrentState(t *testing.T) {
	sw, session := mcpSession(t, map[string]bool{"ext-blocker": true, "ext-vpn": false})
	ctx := context.Background()
	if err := sw.CreateProfile(ctx, workProfile("", 5)); err != nil {
		t.Fatal(err)
	}
	sw.HandleNavigation(ctx, navwatch.Event{URL: "https://mail.work.example/"})

	text := callTool(t, session, "extswitch_current_state", map[string]any{})
	var out struct {
		ActiveProfileID string `json:"active_profile_id"`
		LastMatchedURL  string `json:"last_matched_url"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.ActiveProfileID == "" {
		t.Error("no active profile reported")
	}
	if out.LastMatchedURL != "https://mail.work.example/" {
		t.Errorf("last matched URL: %q", out.LastMatchedURL)
	}
}

func TestMCP_ValidatePattern(t *testing.T) {
	_, session := mcpSession(t, nil)

	text := callTool(t, session, "extswitch_validate_pattern", map[string]any{
		"pattern": "*.example.com", "type": "host-wildcard",
	})
	var out struct {
		Valid bool   `json:"valid"`
		Error string `json:"error"`
	}
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if !out.Valid || out.Error != "" {
		t.Errorf("valid pattern rejected: %+v", out)
	}

	text = callTool(t, session, "extswitch_validate_pattern", map[string]any{
		"pattern": "[broken", "type": "regex",
	})
	if err := json.Unmarshal([]byte(text), &out); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if out.Valid || out.Error == "" {
		t.Errorf("broken regex accepted: %+v", out)
	}
}
