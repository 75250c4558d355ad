package mcp

import (
	"github.com/MJU-PSI/yti-terminology-api-sub001/internal/core/ports/driving"
)

// Ports aggregates the driving ports the MCP server needs.
type Ports struct {
	// Dispatcher runs reindex requests under the single-writer lock.
	Dispatcher driving.ChangeDispatcher

	// Engine reports status and run history.
	Engine driving.SyncEngine
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Dispatcher == nil {
		return ErrMissingDispatcher
	}
	if p.Engine == nil {
		return ErrMissingEngine
	}
	return nil
}
