package bootstrap

import (
	"context"
	"fmt"
	"time"

	"github.com/gin-gonic/gin"

	"docqa-backend/internal/answers"
	"docqa-backend/internal/docstore"
	"docqa-backend/internal/documents"
	"docqa-backend/internal/extract"
	"docqa-backend/internal/llm"
	"docqa-backend/internal/llm/anthropic"
	"docqa-backend/internal/shared/config"
	"docqa-backend/internal/shared/server"
	"docqa-backend/internal/shared/storage/db"
	"docqa-backend/internal/shared/storage/object"
	localstore "docqa-backend/internal/shared/storage/object/local"
	"docqa-backend/internal/shared/telemetry"
)

// App holds the assembled application.
type App struct {
	Config config.Config
	Router *gin.Engine
	Store  docstore.Store
}

// Deps overrides selected collaborators, used by tests to inject fakes.
type Deps struct {
	Extractor extract.Extractor
	Store     docstore.Store
	LLM       llm.Client
}

// Build assembles the production application.
func Build(ctx context.Context, cfg config.Config) (*App, error) {
	return BuildWith(ctx, cfg, Deps{})
}

// BuildWith assembles the application with optional overrides. The
// completion-service credential is validated before anything else; a missing
// or malformed key refuses to serve.
func BuildWith(ctx context.Context, cfg config.Config, deps Deps) (*App, error) {
	if deps.LLM == nil {
		if err := config.ValidateAPIKey(cfg.AnthropicAPIKey); err != nil {
			return nil, err
		}
		client, err := anthropic.NewClient(cfg.AnthropicAPIKey, cfg.LLMModel, cfg.LLMMaxTokens, time.Duration(cfg.LLMTimeoutSeconds)*time.Second)
		if err != nil {
			return nil, err
		}
		deps.LLM = client
	}

	if deps.Store == nil {
		store, err := buildStore(ctx, cfg)
		if err != nil {
			return nil, err
		}
		deps.Store = store
	}

	if deps.Extractor == nil {
		deps.Extractor = extract.NewTesseract(cfg.OCRLanguages)
	}

	var archive object.ObjectStore
	if cfg.ArchiveDir != "" {
		archive = localstore.New(cfg.ArchiveDir)
	}

	entries, err := deps.Store.List(ctx)
	if err != nil {
		deps.Store.Close()
		return nil, fmt.Errorf("verify document store: %w", err)
	}
	telemetry.Info("store.ready", map[string]any{
		"backend":   cfg.StoreBackend,
		"documents": len(entries),
	})

	docSvc := documents.NewService(deps.Extractor, deps.Store, archive)
	docHandler := documents.NewHandler(docSvc)
	askSvc := answers.NewService(deps.Store, deps.LLM)
	askHandler := answers.NewHandler(askSvc)

	router := server.NewRouter(server.RouterDeps{
		Config:    cfg,
		Store:     deps.Store,
		Documents: docHandler,
		Answers:   askHandler,
	})

	return &App{
		Config: cfg,
		Router: router,
		Store:  deps.Store,
	}, nil
}

// Close releases the application's resources.
func (a *App) Close() error {
	if a.Store != nil {
		return a.Store.Close()
	}
	return nil
}

func buildStore(ctx context.Context, cfg config.Config) (docstore.Store, error) {
	switch cfg.StoreBackend {
	case "memory":
		return docstore.NewMemory(), nil
	case "chroma":
		store := docstore.NewChroma(docstore.ChromaConfig{
			URL:        cfg.ChromaURL,
			Collection: cfg.ChromaCollection,
		})
		if err := store.Init(ctx); err != nil {
			return nil, fmt.Errorf("init chroma store: %w", err)
		}
		return store, nil
	case "postgres":
		conn, err := db.Connect(ctx, cfg.DatabaseURL, db.OptionsFromEnv(db.DefaultServerOptions()))
		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w", err)
		}
		if err := db.RunMigrations(ctx, conn); err != nil {
			conn.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}
		return docstore.NewPostgres(conn), nil
	default:
		return docstore.OpenSQLite(cfg.SQLitePath)
	}
}
