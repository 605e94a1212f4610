package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/modelcontextprotocol/go-sdk/mcp"
)

const (
	// uriScheme is the custom URI scheme for Triago resources.
	uriScheme = "triago://"
)

// registerResources registers all resource handlers with the MCP server.
func (s *Server) registerResources() {
	// Static resource for the pending review queue.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "queue",
		Name:        "pending-queue",
		Description: "Draft documents awaiting human review, newest first",
		MIMEType:    "application/json",
	}, s.handleQueueResource)

	// Static resource for listing connected sources.
	s.server.AddResource(&mcp.Resource{
		URI:         uriScheme + "sources",
		Name:        "sources",
		Description: "List of all connected sources",
		MIMEType:    "application/json",
	}, s.handleSourcesResource)

	// Template for draft content.
	s.server.AddResourceTemplate(&mcp.ResourceTemplate{
		URITemplate: uriScheme + "drafts/{draftId}",
		Name:        "draft-content",
		Description: "Redacted markdown content of a pending draft",
		MIMEType:    "text/markdown",
	}, s.handleDraftContentResource)
}

// handleQueueResource returns the pending review queue.
func (s *Server) handleQueueResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	drafts, err := s.ports.Triage.PendingQueue(ctx, s.ports.OrgID)
	if err != nil {
		return nil, fmt.Errorf("listing pending drafts: %w", err)
	}

	// Build simplified queue entries; content is fetched per draft.
	type queueEntry struct {
		ID         string   `json:"id"`
		Title      string   `json:"title"`
		DocType    string   `json:"doc_type"`
		Summary    string   `json:"summary"`
		Confidence float64  `json:"confidence"`
		Level      string   `json:"level"`
		Topics     []string `json:"topics,omitempty"`
		IsUpdate   bool     `json:"is_update"`
	}

	entries := make([]queueEntry, len(drafts))
	for i := range drafts {
		entries[i] = queueEntry{
			ID:         drafts[i].ID,
			Title:      drafts[i].Title,
			DocType:    drafts[i].DocType,
			Summary:    drafts[i].Summary,
			Confidence: drafts[i].Confidence.Score,
			Level:      string(drafts[i].Confidence.Level),
			Topics:     drafts[i].Topics,
			IsUpdate:   drafts[i].IsUpdate,
		}
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling queue: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleSourcesResource returns a list of all connected sources.
func (s *Server) handleSourcesResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	if s.ports.Sources == nil {
		return &mcp.ReadResourceResult{
			Contents: []*mcp.ResourceContents{{
				URI:      req.Params.URI,
				MIMEType: "application/json",
				Text:     "[]",
			}},
		}, nil
	}

	sources, err := s.ports.Sources.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing sources: %w", err)
	}

	// Build simplified source list.
	type sourceInfo struct {
		ID          string `json:"id"`
		Name        string `json:"name"`
		Provider    string `json:"provider"`
		Active      bool   `json:"active"`
		LastChecked string `json:"last_checked,omitempty"`
	}

	infos := make([]sourceInfo, len(sources))
	for i, src := range sources {
		info := sourceInfo{
			ID:       src.ID,
			Name:     src.Name,
			Provider: string(src.Provider),
			Active:   src.Active,
		}
		if !src.LastCheckedAt.IsZero() {
			info.LastChecked = src.LastCheckedAt.UTC().Format("2006-01-02 15:04:05")
		}
		infos[i] = info
	}

	data, err := json.MarshalIndent(infos, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshalling sources: %w", err)
	}

	return &mcp.ReadResourceResult{
		Contents: []*mcp.ResourceContents{{
			URI:      req.Params.URI,
			MIMEType: "application/json",
			Text:     string(data),
		}},
	}, nil
}

// handleDraftContentResource returns the content of a pending draft.
func (s *Server) handleDraftContentResource(
	ctx context.Context,
	req *mcp.ReadResourceRequest,
) (*mcp.ReadResourceResult, error) {
	// Extract draftId from URI: triago://drafts/{draftId}
	draftID := extractDraftID(req.Params.URI)
	if draftID == "" {
		return nil, mcp.ResourceNotFoundError(req.Params.URI)
	}

	drafts, err := s.ports.Triage.PendingQueue(ctx, s.ports.OrgID)
	if err != nil {
		return nil, fmt.Errorf("listing pending drafts: %w", err)
	}

	for i := range drafts {
		if drafts[i].ID == draftID {
			return &mcp.ReadResourceResult{
				Contents: []*mcp.ResourceContents{{
					URI:      req.Params.URI,
					MIMEType: "text/markdown",
					Text:     drafts[i].Content,
				}},
			}, nil
		}
	}

	return nil, mcp.ResourceNotFoundError(req.Params.URI)
}

// extractDraftID extracts the draft ID from a URI like triago://drafts/{draftId}.
func extractDraftID(uri string) string {
	const prefix = uriScheme + "drafts/"

	if !strings.HasPrefix(uri, prefix) {
		return ""
	}

	return strings.TrimPrefix(uri, prefix)
}
