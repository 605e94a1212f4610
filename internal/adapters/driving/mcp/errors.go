// Package mcp provides an MCP (Model Context Protocol) server adapter for Triago.
// It lets AI assistants trigger change detection and inspect the pending
// review queue.
package mcp

import "errors"

// ErrMissingDetectionEngine is returned when the detection engine is not provided.
var ErrMissingDetectionEngine = errors.New("mcp: detection engine is required")

// ErrMissingTriageAdmin is returned when the triage admin service is not provided.
var ErrMissingTriageAdmin = errors.New("mcp: triage admin service is required")
