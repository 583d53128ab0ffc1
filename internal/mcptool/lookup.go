// Package mcptool exposes the vehicle lookup to MCP clients over stdio.
package mcptool

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/Kinsa/parking-attendant/internal/parking/service"
	"github.com/Kinsa/parking-attendant/internal/parking/types"
)

// LookupTool handles the vehicle_lookup MCP tool.
type LookupTool struct {
	lookup *service.LookupService
}

func NewLookupTool(lookup *service.LookupService) *LookupTool {
	return &LookupTool{lookup: lookup}
}

// Definition returns the MCP tool definition for vehicle_lookup.
func (t *LookupTool) Definition() mcp.Tool {
	return mcp.NewTool("vehicle_lookup",
		mcp.WithDescription(
			"Find parking sessions for a vehicle registration mark. Tolerates camera misreads "+
				"(0/O/Q, 1/I, 8/B, 5/S, 2/Z), missing spaces and truncated plates. "+
				"Each session is partial (still within the paid window) or full (window elapsed).",
		),
		mcp.WithString("vrm",
			mcp.Required(),
			mcp.Description("Registration mark as read, e.g. 'AB12 CDE'"),
		),
		mcp.WithNumber("window",
			mcp.Description("Paid session length in minutes (default 120)"),
		),
		mcp.WithString("query_from",
			mcp.Description("Ignore entries before this time, YYYY-MM-DD HH:MM:SS"),
		),
		mcp.WithString("query_to",
			mcp.Description("Reference time, YYYY-MM-DD HH:MM:SS (default now)"),
		),
	)
}

// Handle processes the vehicle_lookup tool call. Caller mistakes come back
// as tool errors so the model can correct them.
func (t *LookupTool) Handle(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	vrm := req.GetString("vrm", "")
	if strings.TrimSpace(vrm) == "" {
		return mcp.NewToolResultError("'vrm' is required"), nil
	}

	resp, err := t.lookup.Lookup(ctx, types.LookupRequest{
		VRM:       vrm,
		Window:    windowArg(req),
		QueryFrom: req.GetString("query_from", ""),
		QueryTo:   req.GetString("query_to", ""),
	})
	if err != nil {
		if ve, ok := service.AsValidation(err); ok {
			return mcp.NewToolResultError(ve.Error()), nil
		}
		return mcp.NewToolResultError(fmt.Sprintf("lookup failed: %v", err)), nil
	}

	return mcp.NewToolResultText(formatLookup(resp)), nil
}

// windowArg accepts the window as a JSON number or a string. JSON numbers
// arrive as float64.
func windowArg(req mcp.CallToolRequest) string {
	switch v := req.GetArguments()["window"].(type) {
	case float64:
		if v == float64(int64(v)) {
			return strconv.FormatInt(int64(v), 10)
		}
		return strconv.FormatFloat(v, 'f', -1, 64)
	case string:
		return v
	default:
		return ""
	}
}

func formatLookup(resp types.LookupResponse) string {
	var b strings.Builder
	b.WriteString(resp.Message)
	b.WriteString("\n")
	for i, r := range resp.Results {
		if r.SessionStart == nil {
			fmt.Fprintf(&b, "\n[%d] %s: no session\n", i+1, r.VRM)
			continue
		}
		fmt.Fprintf(&b, "\n[%d] %s: %s session, entered %s, ends %s", i+1, r.VRM, r.Session, *r.SessionStart, *r.SessionEnd)
		if r.Distance != nil {
			fmt.Fprintf(&b, " (edit distance %d)", *r.Distance)
		}
		b.WriteString("\n")
	}
	return b.String()
}
