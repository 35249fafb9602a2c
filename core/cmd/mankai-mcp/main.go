// Command mankai-mcp exposes a running mankai server as MCP tools over stdio.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net"
	"os"
	"sync"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	mankai "github.com/grastello/Mankai/core"
)

// bridge forwards tool calls to the mankai server over one connection.
type bridge struct {
	mu   sync.Mutex
	conn net.Conn
}

// send sends a request to the mankai server and returns the response.
func (b *bridge) send(req map[string]any) (map[string]any, error) {
	req["id"] = mankai.NextID()
	b.mu.Lock()
	defer b.mu.Unlock()
	if err := mankai.WriteMsg(b.conn, req); err != nil {
		return nil, fmt.Errorf("write: %w", err)
	}
	resp, err := mankai.ReadMsg(b.conn)
	if err != nil {
		return nil, fmt.Errorf("read: %w", err)
	}
	return resp, nil
}

// formatResult turns a server response into an MCP tool result.
func formatResult(resp map[string]any) (*mcp.CallToolResult, error) {
	ok, _ := resp["ok"].(bool)
	if !ok {
		errMsg, _ := resp["error"].(string)
		if errMsg == "" {
			errMsg = "unknown error"
		}
		return mcp.NewToolResultError(errMsg), nil
	}
	out, err := json.MarshalIndent(resp["value"], "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal value: %w", err)
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (b *bridge) call(req map[string]any) (*mcp.CallToolResult, error) {
	resp, err := b.send(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return formatResult(resp)
}

func (b *bridge) handleEval(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	source, err := request.RequireString("source")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return b.call(map[string]any{"op": "eval", "source": source})
}

func (b *bridge) handleBindings(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return b.call(map[string]any{"op": "bindings"})
}

func (b *bridge) handleTraces(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	req := map[string]any{"op": "traces"}
	if limit := request.GetInt("limit", -1); limit >= 0 {
		req["limit"] = limit
	}
	return b.call(req)
}

func (b *bridge) handleReset(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return b.call(map[string]any{"op": "reset"})
}

func newMCPServer(b *bridge) *server.MCPServer {
	s := server.NewMCPServer(
		"mankai",
		"1.0.0",
		server.WithToolCapabilities(false),
	)

	s.AddTool(
		mcp.NewTool("mankai_eval",
			mcp.WithDescription("Evaluate a mankai program. Every top-level form is evaluated in order; a failing form does not stop the rest. Returns one result per form."),
			mcp.WithString("source",
				mcp.Required(),
				mcp.Description("Program text, e.g. (set! xs (list 1 2 3)) (car xs)"),
			),
		),
		b.handleEval,
	)

	s.AddTool(
		mcp.NewTool("mankai_bindings",
			mcp.WithDescription("List every variable bound with set!, with its printed value."),
		),
		b.handleBindings,
	)

	s.AddTool(
		mcp.NewTool("mankai_traces",
			mcp.WithDescription("Show recent evaluations, oldest first."),
			mcp.WithNumber("limit",
				mcp.Description("Maximum number of traces to return"),
			),
		),
		b.handleTraces,
	)

	s.AddTool(
		mcp.NewTool("mankai_reset",
			mcp.WithDescription("Discard all bindings and traces."),
		),
		b.handleReset,
	)
	return s
}

func main() {
	sockPath := os.Getenv("MANKAI_SOCK")
	if sockPath == "" {
		sockPath = "/tmp/mankai.sock"
	}

	conn, err := net.Dial("unix", sockPath)
	if err != nil {
		log.Fatalf("connect to %s: %v", sockPath, err)
	}
	defer conn.Close()
	log.Printf("connected to mankai server: %s", sockPath)

	if err := server.ServeStdio(newMCPServer(&bridge{conn: conn})); err != nil {
		log.Fatalf("server error: %v", err)
	}
}
