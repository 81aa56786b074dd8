package cmd

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
	"go.uber.org/zap"
	"google.golang.org/genai"

	"github.com/spigell/scheme-navigator/internal/ai"
	"github.com/spigell/scheme-navigator/internal/ai/gemini"
	"github.com/spigell/scheme-navigator/internal/catalog"
	"github.com/spigell/scheme-navigator/internal/conversation"
	"github.com/spigell/scheme-navigator/internal/dialog"
	"github.com/spigell/scheme-navigator/internal/logger"
	"github.com/spigell/scheme-navigator/internal/retrieval"
	"github.com/spigell/scheme-navigator/internal/secrets"
)

const (
	providerHash   = "hash"
	providerGemini = "gemini"
)

// application holds everything a command needs once configuration is resolved.
type application struct {
	config  *Config
	logger  *zap.Logger
	entries []*catalog.Entry
	index   *retrieval.Index
	service *conversation.Service

	genai *genai.Client
}

// bootstrap builds the logger and reads the configuration. Commands that need
// more call the load* helpers.
func bootstrap() (*application, error) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, fmt.Errorf("creating a logger: %w", err)
	}

	config, err := getConfig()
	if err != nil {
		return nil, fmt.Errorf("getting a config: %w", err)
	}
	if config == nil {
		return nil, errors.New("config is required")
	}

	// do not bother error since there is a valid parseable config
	pretty, _ := json.MarshalIndent(redacted(config), "", "  ")
	log.Debug(fmt.Sprintf("starting with config: \n %s", pretty))

	return &application{config: config, logger: log}, nil
}

func redacted(c *Config) Config {
	out := *c
	if out.AI.Gemini.APIKey != "" {
		out.AI.Gemini.APIKey = "***"
	}
	return out
}

// newApplication wires the full conversation service.
func newApplication(ctx context.Context) (*application, error) {
	a, err := bootstrap()
	if err != nil {
		return nil, err
	}
	a.logger.Info("starting the scheme-navigator", zap.String("version", version))

	if err := a.loadCatalog(ctx); err != nil {
		return nil, err
	}
	if err := a.loadIndex(ctx); err != nil {
		return nil, err
	}

	a.service = conversation.New(conversation.Params{
		Entries:           a.entries,
		Index:             a.index,
		Store:             dialog.NewStore(a.config.Session.Timeout, nil, a.logger),
		Machine:           dialog.NewMachine(nil),
		Assistant:         a.newAssistant(ctx),
		Logger:            a.logger,
		MinimumConfidence: a.config.AI.MinimumConfidence,
		MaxResults:        a.config.Conversation.MaxResults,
	})
	return a, nil
}

func (a *application) loadCatalog(ctx context.Context) error {
	location := strings.TrimSpace(a.config.Catalog)
	if location == "" {
		return errors.New("catalog location is not configured")
	}

	var (
		entries []*catalog.Entry
		err     error
	)
	if catalog.IsRemote(location) {
		token := ""
		if a.config.CatalogTokenFile != "" {
			token, err = secrets.Load(secrets.Source{Name: "catalog token", File: a.config.CatalogTokenFile})
			if err != nil {
				return err
			}
		}
		entries, err = catalog.NewFetcher(a.logger, token).Fetch(ctx, location)
	} else {
		entries, err = catalog.LoadFile(location, a.logger)
	}
	if err != nil {
		return err
	}

	a.entries = entries
	return nil
}

// geminiClient lazily creates the shared Gemini client.
func (a *application) geminiClient(ctx context.Context) (*genai.Client, error) {
	if a.genai != nil {
		return a.genai, nil
	}

	apiKey, err := secrets.Load(secrets.Source{
		Name:  "gemini api key",
		Value: a.config.AI.Gemini.APIKey,
		File:  a.config.AI.Gemini.APIKeyFile,
		Env:   "GEMINI_API_KEY",
	})
	if err != nil {
		return nil, fmt.Errorf("%w (set ai.gemini.api-key-file or GEMINI_API_KEY_FILE)", err)
	}

	client, err := gemini.NewClient(ctx, apiKey)
	if err != nil {
		return nil, err
	}
	a.genai = client
	return client, nil
}

func (a *application) newEmbedder(ctx context.Context) (retrieval.Embedder, error) {
	cfg := a.config.Index

	var base retrieval.Embedder
	switch provider := strings.ToLower(strings.TrimSpace(cfg.Provider)); provider {
	case "", providerHash:
		base = retrieval.NewHashEmbedder(cfg.Dimensions)
	case providerGemini:
		client, err := a.geminiClient(ctx)
		if err != nil {
			return nil, err
		}
		base, err = gemini.NewEmbedder(client, a.config.AI.Gemini.EmbeddingModel, cfg.Dimensions, a.config.AI.Timeout)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported index provider: %s", cfg.Provider)
	}

	return retrieval.NewCachedEmbedder(base, cfg.CacheSize)
}

// loadIndex prefers a saved index and builds one from the catalog otherwise.
// A failed build leaves search on the plain filtering path.
func (a *application) loadIndex(ctx context.Context) error {
	embedder, err := a.newEmbedder(ctx)
	if err != nil {
		return fmt.Errorf("creating embedder: %w", err)
	}
	a.index = retrieval.New(embedder, a.logger)

	if path := a.config.Index.Path; path != "" {
		err := a.index.Load(path, a.entries)
		if err == nil {
			a.logger.Info("index loaded", zap.String("path", path), zap.Int("count", a.index.Len()))
			return nil
		}
		a.logger.Warn("saved index unavailable, rebuilding", zap.String("path", path), zap.Error(err))
	}

	if err := a.index.Build(ctx, a.entries); err != nil {
		a.logger.Warn("building index failed, search falls back to filtering", zap.Error(err))
	}
	return nil
}

// newAssistant returns the configured AI assistant. Any problem leaves the
// service on its deterministic path.
func (a *application) newAssistant(ctx context.Context) ai.Assistant {
	cfg := a.config.AI
	if !cfg.Enabled {
		return ai.Nop{}
	}

	provider := strings.TrimSpace(strings.ToLower(cfg.Provider))
	if provider != "" && provider != providerGemini {
		a.logger.Warn("skipping AI assistant", zap.String("reason", "unsupported provider"), zap.String("provider", cfg.Provider))
		return ai.Nop{}
	}

	client, err := a.geminiClient(ctx)
	if err != nil {
		a.logger.Warn("skipping AI assistant", zap.Error(err))
		return ai.Nop{}
	}

	genLogger := logger.WithProvider(a.logger, providerGemini, cfg.Gemini.Model)
	generator, err := gemini.NewGenerator(client, cfg.Gemini.Model, cfg.Timeout, genLogger)
	if err != nil {
		a.logger.Warn("skipping AI assistant", zap.Error(err))
		return ai.Nop{}
	}

	genLogger.Info("AI assistant enabled",
		zap.Float64("minimum_confidence", cfg.MinimumConfidence),
		zap.Duration("timeout", cfg.Timeout),
	)
	return gemini.NewAssistant(generator, genLogger, cfg.Gemini.MaxLogLength)
}
