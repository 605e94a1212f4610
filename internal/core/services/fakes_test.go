package services

import (
	"context"
	"errors"

	"github.com/custodia-labs/triago-cli/internal/core/domain"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driven"
)

// fakeLLM scripts completion responses for pipeline tests. When the
// script runs out it returns an error, exercising the fallback tiers.
type fakeLLM struct {
	responses []string
	calls     int
}

func (f *fakeLLM) Complete(_ context.Context, _ []driven.ChatMessage, _ driven.CompleteOptions) (driven.Completion, error) {
	f.calls++
	if len(f.responses) == 0 {
		return driven.Completion{}, errors.New("completion unavailable")
	}
	text := f.responses[0]
	f.responses = f.responses[1:]
	return driven.Completion{Text: text, TokensUsed: 42}, nil
}

func (f *fakeLLM) ModelName() string { return "fake-model" }
func (f *fakeLLM) Close() error      { return nil }

// fakeRecogniser scripts entity recognition results.
type fakeRecogniser struct {
	entities []domain.PIIEntity
	err      error
	calls    int
}

func (f *fakeRecogniser) DetectEntities(_ context.Context, _ string, _ []domain.PIICategory, _ string) ([]domain.PIIEntity, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return f.entities, nil
}

func (f *fakeRecogniser) Close() error { return nil }
