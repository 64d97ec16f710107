package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/mark3labs/mcp-go/mcp"

	"github.com/adamj-ops/liferx-sub001/internal/brain"
	"github.com/adamj-ops/liferx-sub001/internal/tools"
)

// handleListTools returns the registered tool names, one per line.
func (s *Server) handleListTools(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	names := s.gateway.Registry().Names()
	if len(names) == 0 {
		return mcp.NewToolResultText("No tools registered."), nil
	}
	return mcp.NewToolResultText(strings.Join(names, "\n")), nil
}

// handleDispatchTool runs one internal tool call through the gateway and
// returns the result envelope as JSON.
func (s *Server) handleDispatchTool(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	toolName, err := request.RequireString("tool")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: tool"), nil
	}

	args := map[string]any{}
	if raw := request.GetString("args", ""); raw != "" {
		if err := json.Unmarshal([]byte(raw), &args); err != nil {
			return mcp.NewToolResultError(fmt.Sprintf("args is not a JSON object: %v", err)), nil
		}
	}

	result := s.gateway.Dispatch(ctx, toolName, args, tools.RawContext{
		OrgID:       request.GetString("org_id", ""),
		SessionID:   request.GetString("session_id", ""),
		AllowWrites: request.GetBool("allow_writes", false),
	})

	out, err := json.MarshalIndent(result, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("encoding result: %v", err)), nil
	}
	if !result.Success {
		return mcp.NewToolResultError(string(out)), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

// handleSearchBrain performs semantic search over the org brain.
func (s *Server) handleSearchBrain(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := request.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError("missing required parameter: query"), nil
	}

	limit := request.GetInt("limit", 5)
	if limit <= 0 {
		limit = 5
	}
	orgID := request.GetString("org_id", "")
	if orgID == "" {
		orgID = s.defaultOrgID
	}

	hits, err := s.index.Search(ctx, orgID, query, limit)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("search failed: %v", err)), nil
	}
	if len(hits) == 0 {
		return mcp.NewToolResultText("No results found. The brain may be empty for this organization."), nil
	}

	return mcp.NewToolResultText(formatSearchHits(hits)), nil
}

// formatSearchHits converts brain hits into a rich text format for
// agent consumption.
func formatSearchHits(hits []brain.SearchHit) string {
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Found %d result(s):\n", len(hits)))

	for i, h := range hits {
		sb.WriteString(fmt.Sprintf("\n--- Result %d ---\n", i+1))
		sb.WriteString(fmt.Sprintf("Title: %s\n", h.Title))
		sb.WriteString(fmt.Sprintf("Type: %s\n", h.ItemType))
		sb.WriteString(fmt.Sprintf("Similarity: %.1f%%\n", h.Similarity*100))
		sb.WriteString("\n")
		sb.WriteString(h.Content)
		sb.WriteString("\n")
	}

	return sb.String()
}
