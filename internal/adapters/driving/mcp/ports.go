package mcp

import (
	"github.com/custodia-labs/triago-cli/internal/core/ports/driven"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driving"
)

// Ports aggregates all port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Detection triggers change-detection runs.
	Detection driving.DetectionEngine

	// Triage exposes the pending queue and confidence recalculation.
	Triage driving.TriageAdmin

	// Sources lists connected sources for the sources resource.
	Sources driven.SourceStore

	// OrgID scopes queue operations to the configured organisation.
	OrgID string
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Detection == nil {
		return ErrMissingDetectionEngine
	}
	if p.Triage == nil {
		return ErrMissingTriageAdmin
	}
	// Sources is optional; the sources resource degrades to an empty list.
	return nil
}
