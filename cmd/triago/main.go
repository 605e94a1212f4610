// Command triago watches connected content sources for changes and
// triages the resulting draft documents for human review.
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"

	"github.com/custodia-labs/triago-cli/internal/adapters/driven/cache/ttl"
	"github.com/custodia-labs/triago-cli/internal/adapters/driven/config/file"
	"github.com/custodia-labs/triago-cli/internal/adapters/driven/llm/anthropic"
	"github.com/custodia-labs/triago-cli/internal/adapters/driven/llm/ollama"
	"github.com/custodia-labs/triago-cli/internal/adapters/driven/llm/openai"
	"github.com/custodia-labs/triago-cli/internal/adapters/driven/ner/textanalytics"
	"github.com/custodia-labs/triago-cli/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/triago-cli/internal/adapters/driving/cli"
	"github.com/custodia-labs/triago-cli/internal/connectors"
	"github.com/custodia-labs/triago-cli/internal/connectors/drive"
	"github.com/custodia-labs/triago-cli/internal/connectors/teams"
	"github.com/custodia-labs/triago-cli/internal/core/domain"
	"github.com/custodia-labs/triago-cli/internal/core/ports/driven"
	"github.com/custodia-labs/triago-cli/internal/core/services"
)

// version is set at build time via ldflags.
var version = "dev"

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	configStore, err := file.NewConfigStore("")
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	store, err := sqlite.NewStore(configStore.GetString(file.KeyDatabasePath))
	if err != nil {
		return fmt.Errorf("opening store: %w", err)
	}
	defer store.Close()

	factory := connectors.NewFactory(
		func(ctx context.Context, source domain.ConnectedSource, ts oauth2.TokenSource) (driven.SourceAdapter, error) {
			return drive.New(ctx, source, ts)
		},
		func(source domain.ConnectedSource, ts oauth2.TokenSource) (driven.SourceAdapter, error) {
			return teams.New(source, ts)
		},
	)

	completion, err := buildCompletionService(configStore)
	if err != nil {
		return fmt.Errorf("configuring completion service: %w", err)
	}
	if completion != nil {
		defer completion.Close()
	}

	var recogniser driven.EntityRecogniser
	if endpoint := configStore.GetString(file.KeyNEREndpoint); endpoint != "" {
		rec, err := textanalytics.New(textanalytics.Config{
			Endpoint: endpoint,
			APIKey:   configStore.GetString(file.KeyNERAPIKey),
		})
		if err != nil {
			return fmt.Errorf("configuring entity recogniser: %w", err)
		}
		defer rec.Close()
		recogniser = rec
	}

	cacheTTL := time.Duration(configStore.GetInt(file.KeyRedactionCacheTTL)) * time.Minute
	redactionCache := ttl.New(cacheTTL, 0)

	orgID := configStore.GetString(file.KeyOrgID)
	if orgID == "" {
		orgID = "default"
	}

	scorer := services.NewScorer()
	redactor := services.NewRedactor(recogniser, redactionCache)
	pipeline := services.NewPipeline(completion, redactor, scorer)
	differ := services.NewDiffSummariser(completion)
	tracker := services.NewStateTracker(store.FileStates())

	engine := services.NewDetectionEngine(
		orgID,
		store.Sources(),
		store.Drafts(),
		store.SyncOperations(),
		factory,
		tracker,
		differ,
		pipeline,
	)
	triage := services.NewTriageAdminService(store.Drafts(), scorer)

	cli.SetVersion(version)
	cli.SetServices(cli.Services{
		Detection: engine,
		Triage:    triage,
		Sources:   store.Sources(),
		Config:    configStore,
		OrgID:     orgID,
	})

	return cli.Execute()
}

// buildCompletionService selects the completion provider from config.
// Completion-backed stages degrade to their deterministic fallbacks when
// no provider is configured, so a nil service is fine.
func buildCompletionService(configStore *file.ConfigStore) (driven.CompletionService, error) {
	provider := configStore.GetString(file.KeyLLMProvider)
	if provider == "" && configStore.GetString(file.KeyOpenAIAPIKey) != "" {
		provider = "openai"
	}

	switch provider {
	case "":
		return nil, nil
	case "openai":
		return openai.New(openai.Config{
			APIKey:  configStore.GetString(file.KeyOpenAIAPIKey),
			BaseURL: configStore.GetString(file.KeyOpenAIBaseURL),
			Model:   configStore.GetString(file.KeyOpenAIModel),
		})
	case "anthropic":
		return anthropic.New(anthropic.Config{
			APIKey: configStore.GetString(file.KeyAnthropicAPIKey),
			Model:  configStore.GetString(file.KeyAnthropicModel),
		})
	case "ollama":
		return ollama.New(ollama.Config{
			BaseURL: configStore.GetString(file.KeyOllamaBaseURL),
			Model:   configStore.GetString(file.KeyOllamaModel),
		}), nil
	default:
		return nil, fmt.Errorf("unknown llm provider %q", provider)
	}
}
