// Package textanalytics provides the entity recogniser adapter over the
// Azure AI Language PII detection API.
package textanalytics

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode/utf16"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driven"
)

// Ensure Recogniser implements the interface.
var _ driven.EntityRecogniser = (*Recogniser)(nil)

// Default configuration values.
const (
	DefaultAPIVersion = "2023-04-01"
	DefaultLanguage   = "en"
	DefaultTimeout    = 30 * time.Second
)

// stringIndexType pins the unit the service uses for entity offsets.
// Responses then report UTF-16 code units, which DetectEntities converts
// to byte offsets before handing spans to the masker.
const stringIndexType = "Utf16CodeUnit"

// Config holds configuration for the Azure Language service.
type Config struct {
	// Endpoint is the resource endpoint, e.g.
	// https://my-resource.cognitiveservices.azure.com (required).
	Endpoint string

	// APIKey is the resource key (required).
	APIKey string

	// APIVersion overrides the API version (default: 2023-04-01).
	APIVersion string

	// Timeout is the request timeout (default: 30s).
	Timeout time.Duration
}

// Recogniser detects PII entities using the Azure Language service.
type Recogniser struct {
	client     *http.Client
	endpoint   string
	apiKey     string
	apiVersion string
}

// analyzeRequest is the :analyze-text request format.
type analyzeRequest struct {
	Kind          string        `json:"kind"`
	AnalysisInput analysisInput `json:"analysisInput"`
	Parameters    piiParameters `json:"parameters"`
}

type analysisInput struct {
	Documents []inputDocument `json:"documents"`
}

type inputDocument struct {
	ID       string `json:"id"`
	Language string `json:"language"`
	Text     string `json:"text"`
}

type piiParameters struct {
	PIICategories   []string `json:"piiCategories,omitempty"`
	StringIndexType string   `json:"stringIndexType"`
}

// analyzeResponse is the :analyze-text response format.
type analyzeResponse struct {
	Results struct {
		Documents []struct {
			Entities []struct {
				Text            string  `json:"text"`
				Category        string  `json:"category"`
				Offset          int     `json:"offset"`
				Length          int     `json:"length"`
				ConfidenceScore float64 `json:"confidenceScore"`
			} `json:"entities"`
		} `json:"documents"`
		Errors []struct {
			Error struct {
				Message string `json:"message"`
			} `json:"error"`
		} `json:"errors"`
	} `json:"results"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error,omitempty"`
}

// Provider category names, mapped to and from domain categories.
var toProviderCategory = map[domain.PIICategory]string{
	domain.PIIPerson:       "Person",
	domain.PIIPhone:        "PhoneNumber",
	domain.PIIEmail:        "Email",
	domain.PIIAddress:      "Address",
	domain.PIIIPAddress:    "IPAddress",
	domain.PIIOrganisation: "Organization",
	domain.PIIURL:          "URL",
	domain.PIIDate:         "DateTime",
	domain.PIIQuantity:     "Quantity",
}

var fromProviderCategory = map[string]domain.PIICategory{
	"Person":       domain.PIIPerson,
	"PhoneNumber":  domain.PIIPhone,
	"Email":        domain.PIIEmail,
	"Address":      domain.PIIAddress,
	"IPAddress":    domain.PIIIPAddress,
	"Organization": domain.PIIOrganisation,
	"URL":          domain.PIIURL,
	"DateTime":     domain.PIIDate,
	"Quantity":     domain.PIIQuantity,
}

// New creates a new Azure Language recogniser.
func New(cfg Config) (*Recogniser, error) {
	if cfg.Endpoint == "" || cfg.APIKey == "" {
		return nil, fmt.Errorf("textanalytics: endpoint and API key are required: %w", domain.ErrInvalidInput)
	}
	if cfg.APIVersion == "" {
		cfg.APIVersion = DefaultAPIVersion
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	return &Recogniser{
		client:     &http.Client{Timeout: cfg.Timeout},
		endpoint:   strings.TrimRight(cfg.Endpoint, "/"),
		apiKey:     cfg.APIKey,
		apiVersion: cfg.APIVersion,
	}, nil
}

// DetectEntities returns sensitive spans of the given categories.
func (r *Recogniser) DetectEntities(ctx context.Context, text string, categories []domain.PIICategory, language string) ([]domain.PIIEntity, error) {
	if language == "" {
		language = DefaultLanguage
	}

	reqBody := analyzeRequest{
		Kind: "PiiEntityRecognition",
		AnalysisInput: analysisInput{
			Documents: []inputDocument{{ID: "1", Language: language, Text: text}},
		},
		Parameters: piiParameters{StringIndexType: stringIndexType},
	}
	for _, c := range categories {
		if name, ok := toProviderCategory[c]; ok {
			reqBody.Parameters.PIICategories = append(reqBody.Parameters.PIICategories, name)
		}
	}

	jsonBody, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/language/:analyze-text?api-version=%s", r.endpoint, r.apiVersion)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(jsonBody))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Ocp-Apim-Subscription-Key", r.apiKey)

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrRecogniserUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d: %s", domain.ErrRecogniserUnavailable, resp.StatusCode, string(body))
	}

	var parsed analyzeResponse
	if err := json.Unmarshal(body, &parsed); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != nil {
		return nil, fmt.Errorf("textanalytics error: %s", parsed.Error.Message)
	}
	if len(parsed.Results.Errors) > 0 {
		return nil, fmt.Errorf("textanalytics document error: %s", parsed.Results.Errors[0].Error.Message)
	}
	if len(parsed.Results.Documents) == 0 {
		return nil, nil
	}

	boundaries := utf16ByteOffsets(text)
	var entities []domain.PIIEntity
	for _, e := range parsed.Results.Documents[0].Entities {
		category, ok := fromProviderCategory[e.Category]
		if !ok {
			continue
		}
		start, end := e.Offset, e.Offset+e.Length
		if start < 0 || end < start || end >= len(boundaries) {
			continue
		}
		entities = append(entities, domain.PIIEntity{
			Text:       e.Text,
			Category:   category,
			Confidence: e.ConfidenceScore,
			Offset:     boundaries[start],
			Length:     boundaries[end] - boundaries[start],
		})
	}
	return entities, nil
}

// utf16ByteOffsets returns the byte offset of every UTF-16 code-unit
// boundary of text, with a final entry for the end of the string. Both
// halves of a surrogate pair map to the start of the rune.
func utf16ByteOffsets(text string) []int {
	offsets := make([]int, 0, len(text)+1)
	for i, r := range text {
		offsets = append(offsets, i)
		if utf16.RuneLen(r) == 2 {
			offsets = append(offsets, i)
		}
	}
	return append(offsets, len(text))
}

// Close releases resources.
func (r *Recogniser) Close() error {
	r.client.CloseIdleConnections()
	return nil
}
