// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the timestamped canvas tools via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/tscanvas/internal/canvas"
	"github.com/starford/tscanvas/internal/canvasservice"
)

const contractURI = "tscanvas://canvas-format"

// Server wraps the MCP server with the canvas tools.
type Server struct {
	mcp *server.MCPServer
	svc *canvasservice.Service
}

// New creates a new MCP server with all canvas tools registered.
func New(svc *canvasservice.Service) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"tscanvas",
		"1.0.0",
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_canvases",
		mcp.WithDescription("List all .canvas files in the vault and whether each is open."),
	), s.listCanvases)

	s.mcp.AddTool(mcp.NewTool("create_canvas",
		mcp.WithDescription("Create an empty canvas file and open it."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path for the new canvas (must end with .canvas)")),
	), s.createCanvas)

	s.mcp.AddTool(mcp.NewTool("open_canvas",
		mcp.WithDescription("Open a canvas and return its content. Timestamps are in the \"timestamp\" key "+
			"of each node and edge; see the get_canvas_contract tool."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Relative path to the canvas (e.g. boards/plan.canvas)")),
	), s.openCanvas)

	s.mcp.AddTool(mcp.NewTool("create_node",
		mcp.WithDescription("Add a text node to an open canvas. The node is stamped with the current time."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of an open canvas")),
		mcp.WithString("text", mcp.Description("Node text")),
		mcp.WithNumber("x", mcp.Description("Left position")),
		mcp.WithNumber("y", mcp.Description("Top position")),
	), s.createNode)

	s.mcp.AddTool(mcp.NewTool("create_edge",
		mcp.WithDescription("Connect two nodes of an open canvas. The edge is stamped with the current time."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of an open canvas")),
		mcp.WithString("from", mcp.Required(), mcp.Description("Source node id")),
		mcp.WithString("to", mcp.Required(), mcp.Description("Target node id")),
	), s.createEdge)

	s.mcp.AddTool(mcp.NewTool("get_menu",
		mcp.WithDescription("List the menu items of a node, an edge or the canvas quick settings."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of an open canvas")),
		mcp.WithString("kind", mcp.Required(), mcp.Enum("canvas", "node", "edge")),
		mcp.WithString("id", mcp.Description("Node or edge id; empty for the canvas")),
	), s.getMenu)

	s.mcp.AddTool(mcp.NewTool("menu_action",
		mcp.WithDescription("Run a menu item by title, e.g. \"Clear timestamp\" or \"Update timestamp\"."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of an open canvas")),
		mcp.WithString("kind", mcp.Required(), mcp.Enum("canvas", "node", "edge")),
		mcp.WithString("id", mcp.Description("Node or edge id; empty for the canvas")),
		mcp.WithString("title", mcp.Required(), mcp.Description("Menu item title")),
	), s.menuAction)

	s.mcp.AddTool(mcp.NewTool("toggle_timestamps",
		mcp.WithDescription("Hide or show every timestamp overlay. The flag is not persisted."),
		mcp.WithString("path", mcp.Required(), mcp.Description("Path of an open canvas")),
	), s.toggleTimestamps)

	s.mcp.AddTool(mcp.NewTool("get_settings",
		mcp.WithDescription("Return the settings panel fields and their current values."),
	), s.getSettings)

	s.mcp.AddTool(mcp.NewTool("set_date_format",
		mcp.WithDescription("Set the date format used for new timestamps. Existing stamps keep their text."),
		mcp.WithString("pattern", mcp.Required(), mcp.Description("Date pattern, e.g. YYYY-MM-DD HH:mm")),
	), s.setDateFormat)

	s.mcp.AddTool(mcp.NewTool("get_canvas_contract",
		mcp.WithDescription("Returns how timestamps are stored in canvas files and the date format tokens."),
	), s.getCanvasContract)

	s.mcp.AddResource(
		mcp.NewResource(contractURI, "Canvas Format Contract",
			mcp.WithResourceDescription("Timestamp extension data of .canvas files."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContractResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) *mcp.CallToolResult {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error())
	}
	return mcp.NewToolResultText(string(out))
}

func (s *Server) listCanvases(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	items, err := s.svc.List(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if items == nil {
		items = []canvasservice.CanvasItem{}
	}
	return jsonResult(items), nil
}

func (s *Server) createCanvas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.Create(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(d), nil
}

func (s *Server) openCanvas(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	d, err := s.svc.Open(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(d), nil
}

func (s *Server) createNode(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	nd, err := s.svc.CreateNode(ctx, path, canvas.NodeOptions{
		Text: req.GetString("text", ""),
		X:    req.GetFloat("x", 0),
		Y:    req.GetFloat("y", 0),
	})
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(nd), nil
}

func (s *Server) createEdge(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	from, err := req.RequireString("from")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	to, err := req.RequireString("to")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	ed, err := s.svc.CreateEdge(ctx, path, from, to)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(ed), nil
}

func target(req mcp.CallToolRequest) (string, canvasservice.Target, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return "", canvasservice.Target{}, err
	}
	kind, err := req.RequireString("kind")
	if err != nil {
		return "", canvasservice.Target{}, err
	}
	return path, canvasservice.Target{Kind: kind, ID: req.GetString("id", "")}, nil
}

func (s *Server) getMenu(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, t, err := target(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	items, err := s.svc.Menu(ctx, path, t)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(items), nil
}

func (s *Server) menuAction(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, t, err := target(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	title, err := req.RequireString("title")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.Click(ctx, path, t, title); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("ran %q on %s", title, t.Kind)), nil
}

func (s *Server) toggleTimestamps(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := req.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	hidden, err := s.svc.ToggleTimestamps(ctx, path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if hidden {
		return mcp.NewToolResultText("timestamps hidden"), nil
	}
	return mcp.NewToolResultText("timestamps shown"), nil
}

func (s *Server) getSettings(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return jsonResult(s.svc.Settings()), nil
}

func (s *Server) setDateFormat(_ context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	pattern, err := req.RequireString("pattern")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	if err := s.svc.SetSetting("dateFormat", pattern); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(fmt.Sprintf("date format set: %s", pattern)), nil
}

func (s *Server) getCanvasContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(CanvasFormatContract), nil
}

func (s *Server) readContractResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      contractURI,
			MIMEType: "text/markdown",
			Text:     CanvasFormatContract,
		},
	}, nil
}
