package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

// ReloadInput is the input schema for the reload tool.
type ReloadInput struct {
	Check bool `json:"check,omitempty" jsonschema:"only notify viewers if the served file changed since the last notification"`
}

// ReloadOutput is the output schema for the reload tool.
type ReloadOutput struct {
	Notified bool `json:"notified"`
	Clients  int  `json:"clients"`
}

// StatusInput is the (empty) input schema for the status tool.
type StatusInput struct{}

// StatusOutput is the output schema for the status tool.
type StatusOutput struct {
	Path              string `json:"path"`
	LastModified      string `json:"last_modified,omitempty"`
	Clients           int    `json:"clients"`
	NotificationsSent int    `json:"notifications_sent"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reload",
		Description: "Tell every connected viewer to reload the served document",
	}, s.handleReload)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "status",
		Description: "Report the served document and connected viewers",
	}, s.handleStatus)
}

func (s *Server) handleReload(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReloadInput,
) (*mcp.CallToolResult, ReloadOutput, error) {
	notified := true
	if input.Check {
		changed, err := s.ports.Serve.Check(ctx)
		if err != nil {
			return nil, ReloadOutput{}, err
		}
		notified = changed
	} else if err := s.ports.Serve.ForceReload(ctx); err != nil {
		return nil, ReloadOutput{}, err
	}

	return nil, ReloadOutput{
		Notified: notified,
		Clients:  s.ports.Serve.Status().Clients,
	}, nil
}

func (s *Server) handleStatus(
	_ context.Context,
	_ *mcp.CallToolRequest,
	_ StatusInput,
) (*mcp.CallToolResult, StatusOutput, error) {
	st := s.ports.Serve.Status()
	out := StatusOutput{
		Path:              st.Path,
		Clients:           st.Clients,
		NotificationsSent: st.NotificationsSent,
	}
	if !st.LastModified.IsZero() {
		out.LastModified = st.LastModified.Format(time.RFC3339)
	}
	return nil, out, nil
}
