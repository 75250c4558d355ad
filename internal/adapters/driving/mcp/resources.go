package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
)

const (
	// uriScheme is the custom URI scheme for termsync resources.
	uriScheme = "termsync://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "status",
		Name:        "status",
		Description: "Current and last sync run",
		MIMEType:    "application/json",
	}, s.handleStatusResource)

	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "graphs/{graphId}/runs",
		Name:        "graph-runs",
		Description: "Recent sync runs that touched a specific graph",
		MIMEType:    "application/json",
	}, s.handleGraphRunsResource)
}

// handleStatusResource returns the engine status.
func (s *Server) handleStatusResource(
	_ context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	return jsonResource(req.Params.URI, s.ports.Engine.Status())
}

// handleGraphRunsResource returns the recorded runs for one graph.
func (s *Server) handleGraphRunsResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	graphID := extractGraphID(req.Params.URI)
	if graphID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	runs, err := s.ports.Engine.History(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}

	matched := make([]domain.SyncRun, 0)
	for _, run := range runs {
		if string(run.GraphID) == graphID {
			matched = append(matched, run)
		}
	}
	return jsonResource(req.Params.URI, matched)
}

func jsonResource(uri string, v any) (*mcp.ReadResourceResult, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling resource: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      uri,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// extractGraphID extracts the graph ID from a URI like termsync://graphs/{graphId}/runs.
func extractGraphID(uri string) string {
	const prefix = uriScheme + "graphs/"
	const suffix = "/runs"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	uri = strings.TrimPrefix(uri, prefix)
	if !strings.HasSuffix(uri, suffix) {
		return ""
	}

	return strings.TrimSuffix(uri, suffix)
}
