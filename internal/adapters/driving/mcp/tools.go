package mcp

import (
	"context"
	"fmt"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/domain"
)

// defaultStatusLimit is the number of runs sync_status returns by default.
const defaultStatusLimit = 10

// ReindexGraphInput is the input schema for the reindex_graph tool.
type ReindexGraphInput struct {
	GraphID string `json:"graph_id" jsonschema:"id of the graph whose documents are rebuilt"`
}

// FullReindexInput is the input schema for the full_reindex tool.
type FullReindexInput struct{}

// ReindexOutput reports the run a reindex tool produced.
type ReindexOutput struct {
	Run RunOutput `json:"run"`
}

// SyncStatusInput is the input schema for the sync_status tool.
type SyncStatusInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of runs to return (default 10)"`
}

// SyncStatusOutput is the output schema for the sync_status tool.
type SyncStatusOutput struct {
	Running bool        `json:"running"`
	Current *RunOutput  `json:"current,omitempty"`
	Runs    []RunOutput `json:"runs"`
	Count   int         `json:"count"`
}

// RunOutput is a sync run with times rendered as strings.
type RunOutput struct {
	ID          string `json:"id"`
	Kind        string `json:"kind"`
	GraphID     string `json:"graph_id,omitempty"`
	StartedAt   string `json:"started_at"`
	Duration    string `json:"duration,omitempty"`
	Upserts     int    `json:"upserts"`
	Deletes     int    `json:"deletes"`
	IndexErrors int    `json:"index_errors"`
	Error       string `json:"error,omitempty"`
}

func toRunOutput(run domain.SyncRun) RunOutput {
	out := RunOutput{
		ID:          run.ID,
		Kind:        string(run.Kind),
		GraphID:     string(run.GraphID),
		StartedAt:   run.StartedAt.UTC().Format(time.RFC3339),
		Upserts:     run.Upserts,
		Deletes:     run.Deletes,
		IndexErrors: run.IndexErrors,
		Error:       run.Error,
	}
	if !run.FinishedAt.IsZero() {
		out.Duration = run.Duration().Round(time.Millisecond).String()
	}
	return out
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reindex_graph",
		Description: "Rebuild the index documents of one terminology graph",
	}, s.handleReindexGraph)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "full_reindex",
		Description: "Rebuild the index documents of every terminology graph",
	}, s.handleFullReindex)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "sync_status",
		Description: "Show whether a sync is running and list recent sync runs",
	}, s.handleSyncStatus)
}

func (s *Server) handleReindexGraph(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ReindexGraphInput,
) (*mcp.CallToolResult, ReindexOutput, error) {
	if input.GraphID == "" {
		return nil, ReindexOutput{}, fmt.Errorf("%w: graph_id is required", domain.ErrInvalidInput)
	}
	if err := s.ports.Dispatcher.ReindexGraph(ctx, domain.GraphID(input.GraphID)); err != nil {
		return nil, ReindexOutput{}, err
	}
	return nil, s.lastRun(), nil
}

func (s *Server) handleFullReindex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ FullReindexInput,
) (*mcp.CallToolResult, ReindexOutput, error) {
	if err := s.ports.Dispatcher.FullReindex(ctx); err != nil {
		return nil, ReindexOutput{}, err
	}
	return nil, s.lastRun(), nil
}

func (s *Server) handleSyncStatus(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SyncStatusInput,
) (*mcp.CallToolResult, SyncStatusOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultStatusLimit
	}

	runs, err := s.ports.Engine.History(ctx, limit)
	if err != nil {
		return nil, SyncStatusOutput{}, err
	}

	status := s.ports.Engine.Status()
	output := SyncStatusOutput{
		Running: status.Running,
		Runs:    make([]RunOutput, len(runs)),
		Count:   len(runs),
	}
	if status.Current != nil {
		current := toRunOutput(*status.Current)
		output.Current = &current
	}
	for i := range runs {
		output.Runs[i] = toRunOutput(runs[i])
	}

	return nil, output, nil
}

func (s *Server) lastRun() ReindexOutput {
	status := s.ports.Engine.Status()
	if status.Last == nil {
		return ReindexOutput{}
	}
	return ReindexOutput{Run: toRunOutput(*status.Last)}
}
