package mcp

import (
	"context"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
)

// TriggerCheckInput is the input schema for the trigger_check tool.
type TriggerCheckInput struct {
	SourceID string `json:"source_id,omitempty" jsonschema:"the source to check; all due sources when omitted"`
	Force    bool   `json:"force,omitempty" jsonschema:"bypass the sync-frequency policy and check every active source"`
}

// TriggerCheckOutput is the output schema for the trigger_check tool.
type TriggerCheckOutput struct {
	Operations []OperationOutput `json:"operations"`
	Count      int               `json:"count"`
}

// OperationOutput represents a finalised sync operation.
type OperationOutput struct {
	ID             string `json:"id"`
	SourceID       string `json:"source_id"`
	State          string `json:"state"`
	ItemsProcessed int    `json:"items_processed"`
	ItemsCreated   int    `json:"items_created"`
	ItemsUpdated   int    `json:"items_updated"`
	ItemsFailed    int    `json:"items_failed"`
	Error          string `json:"error,omitempty"`
	StartedAt      string `json:"started_at"`
	FinishedAt     string `json:"finished_at,omitempty"`
}

// ResetCursorInput is the input schema for the reset_cursor tool.
type ResetCursorInput struct {
	SourceID string `json:"source_id" jsonschema:"the source whose change cursor is cleared, forcing a full rescan"`
}

// ResetCursorOutput is the output schema for the reset_cursor tool.
type ResetCursorOutput struct {
	SourceID string `json:"source_id"`
	Reset    bool   `json:"reset"`
}

// RecalculateInput is the input schema for the recalculate_confidence tool.
type RecalculateInput struct{}

// RecalculateOutput is the output schema for the recalculate_confidence tool.
type RecalculateOutput struct {
	Rescored int `json:"rescored"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "trigger_check",
		Description: "Run change detection for one source or all due sources",
	}, s.handleTriggerCheck)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "reset_cursor",
		Description: "Clear a source's change cursor to force a full rescan",
	}, s.handleResetCursor)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recalculate_confidence",
		Description: "Re-run the confidence scorer over all pending drafts",
	}, s.handleRecalculate)
}

// handleTriggerCheck handles the trigger_check tool invocation.
func (s *Server) handleTriggerCheck(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input TriggerCheckInput,
) (*mcp.CallToolResult, TriggerCheckOutput, error) {
	var ops []domain.SyncOperation

	if input.SourceID != "" {
		op, err := s.ports.Detection.DetectOne(ctx, input.SourceID, domain.SyncManual)
		if err != nil {
			return nil, TriggerCheckOutput{}, err
		}
		ops = []domain.SyncOperation{*op}
	} else {
		var err error
		ops, err = s.ports.Detection.DetectAll(ctx, domain.SyncManual, input.Force)
		if err != nil {
			return nil, TriggerCheckOutput{}, err
		}
	}

	output := TriggerCheckOutput{
		Operations: make([]OperationOutput, len(ops)),
		Count:      len(ops),
	}
	for i := range ops {
		output.Operations[i] = toOperationOutput(&ops[i])
	}

	return nil, output, nil
}

// handleResetCursor handles the reset_cursor tool invocation.
func (s *Server) handleResetCursor(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input ResetCursorInput,
) (*mcp.CallToolResult, ResetCursorOutput, error) {
	if err := s.ports.Detection.ResetCursor(ctx, input.SourceID); err != nil {
		return nil, ResetCursorOutput{}, err
	}
	return nil, ResetCursorOutput{SourceID: input.SourceID, Reset: true}, nil
}

// handleRecalculate handles the recalculate_confidence tool invocation.
func (s *Server) handleRecalculate(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ RecalculateInput,
) (*mcp.CallToolResult, RecalculateOutput, error) {
	count, err := s.ports.Triage.RecalculateConfidence(ctx, s.ports.OrgID)
	if err != nil {
		return nil, RecalculateOutput{}, err
	}
	return nil, RecalculateOutput{Rescored: count}, nil
}

func toOperationOutput(op *domain.SyncOperation) OperationOutput {
	out := OperationOutput{
		ID:             op.ID,
		SourceID:       op.SourceID,
		State:          string(op.State),
		ItemsProcessed: op.ItemsProcessed,
		ItemsCreated:   op.ItemsCreated,
		ItemsUpdated:   op.ItemsUpdated,
		ItemsFailed:    op.ItemsFailed,
		Error:          op.Error,
		StartedAt:      op.StartedAt.Format(time.RFC3339),
	}
	if !op.FinishedAt.IsZero() {
		out.FinishedAt = op.FinishedAt.Format(time.RFC3339)
	}
	return out
}
