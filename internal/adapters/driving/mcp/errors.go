// Package mcp provides an MCP (Model Context Protocol) server adapter for termsync.
// It lets AI assistants trigger reindexing and inspect sync history.
package mcp

import "errors"

var (
	// ErrMissingDispatcher is returned when the change dispatcher is not provided.
	ErrMissingDispatcher = errors.New("mcp: change dispatcher is required")

	// ErrMissingEngine is returned when the sync engine is not provided.
	ErrMissingEngine = errors.New("mcp: sync engine is required")
)
