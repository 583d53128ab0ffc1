package mcptool

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Kinsa/parking-attendant/internal/parking/service"
	"github.com/Kinsa/parking-attendant/internal/parking/store/memory"
)

func newTool(ms *memory.EntryStore) *LookupTool {
	return NewLookupTool(service.NewLookupService(ms, service.Options{
		Logger:   slog.New(slog.DiscardHandler),
		Location: time.UTC,
		Now:      func() time.Time { return time.Date(2026, 2, 15, 12, 0, 0, 0, time.UTC) },
	}))
}

// makeReq builds a mcp.CallToolRequest with the given arguments.
func makeReq(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

// resultText extracts the text content from a tool result.
func resultText(r *mcp.CallToolResult) string {
	if r == nil {
		return ""
	}
	for _, c := range r.Content {
		if tc, ok := c.(mcp.TextContent); ok {
			return tc.Text
		}
	}
	return ""
}

func TestLookupTool_Definition(t *testing.T) {
	def := newTool(memory.NewEntryStore()).Definition()
	assert.Equal(t, "vehicle_lookup", def.Name)
	assert.Contains(t, def.InputSchema.Required, "vrm")
	assert.Contains(t, def.InputSchema.Properties, "window")
}

func TestLookupTool_FindsSessions(t *testing.T) {
	ms := memory.NewEntryStore()
	ms.Append("AA 1234AB", "2026-02-15 11:00:00")
	tool := newTool(ms)

	r, err := tool.Handle(context.Background(), makeReq(map[string]any{
		"vrm":    "AA I234A8",
		"window": float64(120),
	}))
	require.NoError(t, err)
	require.False(t, r.IsError)

	text := resultText(r)
	assert.Contains(t, text, "1 result found.")
	assert.Contains(t, text, "AA 1234AB: partial session, entered 2026-02-15 11:00:00, ends 2026-02-15 13:00:00")
}

func TestLookupTool_NoMatch(t *testing.T) {
	r, err := newTool(memory.NewEntryStore()).Handle(context.Background(), makeReq(map[string]any{"vrm": "ZZ99"}))
	require.NoError(t, err)
	require.False(t, r.IsError)
	assert.Contains(t, resultText(r), "ZZ99: no session")
}

func TestLookupTool_Errors(t *testing.T) {
	tool := newTool(memory.NewEntryStore())

	tests := []struct {
		name string
		args map[string]any
		want string
	}{
		{"missing vrm", map[string]any{}, "'vrm' is required"},
		{"bad window", map[string]any{"vrm": "AA", "window": float64(1.5)}, "window"},
		{"bad window string", map[string]any{"vrm": "AA", "window": "-5"}, "window"},
		{"bad date", map[string]any{"vrm": "AA", "query_to": "tomorrow"}, "query_to"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, err := tool.Handle(context.Background(), makeReq(tt.args))
			require.NoError(t, err)
			require.True(t, r.IsError)
			assert.Contains(t, resultText(r), tt.want)
		})
	}
}
