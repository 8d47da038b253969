// Package mcp exposes Claude usage readings over the Model Context
// Protocol so agent tooling can check remaining quota before spending it.
package mcp

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/claudebar/claudebar/pkg/credentials"
	"github.com/claudebar/claudebar/pkg/history"
	"github.com/claudebar/claudebar/pkg/usage"
)

// Fetcher retrieves one usage snapshot. Implemented by claude.Client.
type Fetcher interface {
	Fetch(ctx context.Context, creds credentials.Credentials) (usage.Snapshot, error)
}

// CredentialSource yields the stored credentials, or absent.
type CredentialSource interface {
	Load() (credentials.Credentials, bool)
}

// HistorySource reads recent persisted samples. May be nil.
type HistorySource interface {
	Recent(ctx context.Context, window usage.WindowID, limit int) ([]history.Sample, error)
}

// Server adapts the usage client to MCP over stdio.
type Server struct {
	mcpServer *server.MCPServer
	fetcher   Fetcher
	creds     CredentialSource
	samples   HistorySource
}

// NewServer creates a new MCP server instance.
func NewServer(fetcher Fetcher, creds CredentialSource, samples HistorySource) *Server {
	s := &Server{
		mcpServer: server.NewMCPServer(
			"claudebar",
			"1.0.0",
		),
		fetcher: fetcher,
		creds:   creds,
		samples: samples,
	}
	s.registerResources()
	s.registerTools()
	return s
}

// Serve starts the MCP server on stdio.
func (s *Server) Serve() error {
	return server.ServeStdio(s.mcpServer)
}

// --- Resources ---

func (s *Server) registerResources() {
	// claudebar://usage
	s.mcpServer.AddResource(mcp.NewResource(
		"claudebar://usage",
		"Current Claude Usage",
		mcp.WithResourceDescription("Live percent-used and reset times for the session, weekly, and Sonnet limits"),
		mcp.WithMIMEType("application/json"),
	), s.handleReadUsage)

	if s.samples != nil {
		// claudebar://history
		s.mcpServer.AddResource(mcp.NewResource(
			"claudebar://history",
			"Recent Usage Samples",
			mcp.WithResourceDescription("Recently recorded usage samples, newest first"),
			mcp.WithMIMEType("application/json"),
		), s.handleReadHistory)
	}
}

// --- Tools ---

func (s *Server) registerTools() {
	s.mcpServer.AddTool(mcp.NewTool(
		"get_usage",
		mcp.WithDescription("Fetch current Claude usage limits. Returns percent used and reset time for each window."),
	), s.handleGetUsage)
}

// --- Handlers ---

func (s *Server) fetchCurrent(ctx context.Context) (usage.Snapshot, error) {
	creds, ok := s.creds.Load()
	if !ok {
		return usage.Snapshot{}, fmt.Errorf("no credentials configured; run claudebar and open Settings")
	}
	return s.fetcher.Fetch(ctx, creds)
}

func snapshotPayload(snap usage.Snapshot) map[string]interface{} {
	out := make(map[string]interface{}, len(usage.Windows))
	for _, id := range usage.Windows {
		w := snap.Window(id)
		out[string(id)] = map[string]interface{}{
			"percent_used": w.PercentUsed,
			"resets_at":    w.ResetsAt,
		}
	}
	return out
}

func (s *Server) handleReadUsage(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	snap, err := s.fetchCurrent(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch usage: %w", err)
	}

	data, err := json.MarshalIndent(snapshotPayload(snap), "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal usage: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleReadHistory(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	out := make(map[string][]history.Sample, len(usage.Windows))
	for _, id := range usage.Windows {
		samples, err := s.samples.Recent(ctx, id, 60)
		if err != nil {
			return nil, fmt.Errorf("failed to read history: %w", err)
		}
		out[string(id)] = samples
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal history: %w", err)
	}

	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      request.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		},
	}, nil
}

func (s *Server) handleGetUsage(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	snap, err := s.fetchCurrent(ctx)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("usage fetch failed: %v", err)), nil
	}

	data, err := json.MarshalIndent(snapshotPayload(snap), "", "  ")
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("marshal failed: %v", err)), nil
	}

	return mcp.NewToolResultText(string(data)), nil
}
