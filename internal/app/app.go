// Package app is the composition root. It turns settings into adapters and
// wires them into the core services. Adapters are built on first use so that
// commands like "config show" never touch the camera, the serial port or a
// hosted model.
package app

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/pilah-labs/pilah/internal/adapters/driven/ai"
	"github.com/pilah-labs/pilah/internal/adapters/driven/config/file"
	"github.com/pilah-labs/pilah/internal/adapters/driven/storage/memory"
	"github.com/pilah-labs/pilah/internal/adapters/driven/storage/postgres"
	"github.com/pilah-labs/pilah/internal/adapters/driven/storage/sqlite"
	"github.com/pilah-labs/pilah/internal/core/domain"
	"github.com/pilah-labs/pilah/internal/core/ports/driven"
	"github.com/pilah-labs/pilah/internal/core/ports/driving"
	"github.com/pilah-labs/pilah/internal/core/services"
	"github.com/pilah-labs/pilah/internal/logger"
)

// Store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

// App holds the process-wide handles. It is safe for concurrent use.
type App struct {
	configDir string
	config    *file.ConfigStore
	settings  *services.SettingsService
	prompts   *file.PromptStore

	mu      sync.Mutex
	store   driven.WasteStore
	dbPath  string
	vectors driven.VectorIndex
	models  *ai.InitResult
	seed    *services.SeedService
	index   *services.IndexService
	chat    *services.ChatService
	ready   bool
}

// Open loads configuration from configDir, or ~/.pilah when empty.
func Open(configDir string) (*App, error) {
	if configDir == "" {
		dir, err := file.DefaultDir()
		if err != nil {
			return nil, err
		}
		configDir = dir
	}

	config, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, fmt.Errorf("opening config: %w", err)
	}

	prompts, err := file.NewPromptStore(filepath.Join(configDir, "prompts"), map[string]string{
		driven.PromptChatAnswer: services.PromptTemplate,
	})
	if err != nil {
		return nil, fmt.Errorf("opening prompts: %w", err)
	}

	logger.Debug("Config: %s", config.Path())
	return &App{
		configDir: configDir,
		config:    config,
		settings:  services.NewSettingsService(config, ai.NewConfigValidator(), configDir),
		prompts:   prompts,
	}, nil
}

// SettingsService returns the settings service.
func (a *App) SettingsService() driving.SettingsService {
	return a.settings
}

// Settings returns the effective settings after validation.
func (a *App) Settings() (*domain.Settings, error) {
	s, err := a.settings.Get()
	if err != nil {
		return nil, fmt.Errorf("loading settings: %w", err)
	}
	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Seed returns the seed service over the configured store.
func (a *App) Seed(ctx context.Context) (driving.SeedService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.openStore(ctx); err != nil {
		return nil, err
	}
	return a.seed, nil
}

// Index returns the index service. Rebuilding needs a working embedding
// provider; listing the document set does not.
func (a *App) Index(ctx context.Context) (driving.IndexService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.openIndex(ctx); err != nil {
		return nil, err
	}
	return a.index, nil
}

// Chat seeds the store, brings the index up to date and returns the chatbot.
// Later calls return the same service without repeating startup.
func (a *App) Chat(ctx context.Context) (driving.ChatService, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if a.ready {
		return a.chat, nil
	}

	settings, err := a.Settings()
	if err != nil {
		return nil, err
	}
	if err := a.openIndex(ctx); err != nil {
		return nil, err
	}

	inserted, err := a.seed.Initialise(ctx)
	if err != nil {
		return nil, fmt.Errorf("seeding store: %w", err)
	}
	if inserted > 0 {
		logger.Info("Seeded %d waste items", inserted)
	}

	if a.models.EmbeddingService == nil {
		return nil, fmt.Errorf("%w: %s", domain.ErrEmbeddingUnavailable, strings.Join(a.models.Warnings, "; "))
	}
	stats, err := a.index.Ensure(ctx, settings.Index.Mode)
	if err != nil {
		return nil, fmt.Errorf("building index: %w", err)
	}
	logger.Info("Index ready: %d documents (rebuilt=%t)", stats.Documents, stats.Rebuilt)

	a.chat = services.NewChatService(
		a.vectors,
		a.models.EmbeddingService,
		a.models.LLMService,
		a.prompts,
		services.ChatConfig{
			TopK:          settings.Index.TopK,
			MinSimilarity: settings.Index.MinSimilarity,
		},
	)
	a.ready = true
	return a.chat, nil
}

// SeedDatabasePath returns the sqlite seed database file, or "" for other drivers.
func (a *App) SeedDatabasePath(ctx context.Context) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if err := a.openStore(ctx); err != nil {
		return "", err
	}
	return a.dbPath, nil
}

// openStore must be called with mu held.
func (a *App) openStore(ctx context.Context) error {
	if a.store != nil {
		return nil
	}

	settings, err := a.Settings()
	if err != nil {
		return err
	}

	switch settings.Store.Driver {
	case DriverSQLite, "":
		store, err := sqlite.NewStore(settings.Store.DataDir)
		if err != nil {
			return fmt.Errorf("opening sqlite store: %w", err)
		}
		a.store = store
		a.dbPath = store.Path()
	case DriverPostgres:
		if settings.Store.DSN == "" {
			return fmt.Errorf("%w: store.dsn is required for postgres", domain.ErrInvalidInput)
		}
		store, err := postgres.NewStore(ctx, settings.Store.DSN)
		if err != nil {
			return fmt.Errorf("opening postgres store: %w", err)
		}
		a.store = store
	case DriverMemory:
		a.store = memory.NewWasteStore()
	default:
		return fmt.Errorf("%w: unknown store driver %q", domain.ErrInvalidInput, settings.Store.Driver)
	}

	logger.Debug("Seed store: %s", settings.Store.Driver)
	a.seed = services.NewSeedService(a.store)
	return nil
}

// openIndex must be called with mu held.
func (a *App) openIndex(ctx context.Context) error {
	if a.index != nil {
		return nil
	}
	if err := a.openStore(ctx); err != nil {
		return err
	}

	settings, err := a.Settings()
	if err != nil {
		return err
	}

	if settings.Store.Driver == DriverMemory {
		a.vectors = memory.NewVectorIndex()
	} else {
		vectors, err := sqlite.NewVectorIndex(settings.Index.Dir)
		if err != nil {
			return fmt.Errorf("opening vector index: %w", err)
		}
		a.vectors = vectors
	}
	a.models = ai.Init(settings)
	a.index = services.NewIndexService(a.store, a.vectors, a.models.EmbeddingService)
	return nil
}

// Close releases every handle that was opened.
func (a *App) Close() error {
	a.mu.Lock()
	defer a.mu.Unlock()

	var errs []error
	if a.models != nil {
		a.models.Close()
	}
	if a.vectors != nil {
		errs = append(errs, a.vectors.Close())
	}
	if a.store != nil {
		errs = append(errs, a.store.Close())
	}
	return errors.Join(errs...)
}
