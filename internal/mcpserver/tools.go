package mcpserver

import "github.com/mark3labs/mcp-go/mcp"

// listToolsTool defines the list_tools MCP tool.
var listToolsTool = mcp.NewTool("list_tools",
	mcp.WithDescription("List the names of all internal tools available for dispatch."),
)

// dispatchToolTool defines the dispatch_tool MCP tool.
var dispatchToolTool = mcp.NewTool("dispatch_tool",
	mcp.WithDescription("Dispatch an internal tool by name. Returns the full result envelope including explainability and write records."),
	mcp.WithString("tool",
		mcp.Required(),
		mcp.Description("Registered tool name, e.g. guests.upsert_guest"),
	),
	mcp.WithString("args",
		mcp.Description("Tool arguments as a JSON object"),
	),
	mcp.WithString("org_id",
		mcp.Description("Organization UUID; defaults to the configured organization"),
	),
	mcp.WithString("session_id",
		mcp.Description("Session identifier for attribution"),
	),
	mcp.WithBoolean("allow_writes",
		mcp.Description("Allow the tool to persist changes; defaults to a dry run"),
	),
)

// searchBrainTool defines the search_brain MCP tool.
var searchBrainTool = mcp.NewTool("search_brain",
	mcp.WithDescription("Search the org brain semantically. Returns notes, decisions and memories ranked by similarity."),
	mcp.WithString("query",
		mcp.Required(),
		mcp.Description("Natural language search query"),
	),
	mcp.WithString("org_id",
		mcp.Description("Organization UUID; defaults to the configured organization"),
	),
	mcp.WithNumber("limit",
		mcp.Description("Maximum number of results to return (default 5)"),
	),
)
