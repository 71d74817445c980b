package main

import (
	"fmt"
	"log"

	"github.com/visitlog-dev/visitlog/internal/media"
	"github.com/visitlog-dev/visitlog/internal/navigator"
	"github.com/visitlog-dev/visitlog/pkg/access"
	"github.com/visitlog-dev/visitlog/pkg/allowlist"
	"github.com/visitlog-dev/visitlog/pkg/config"
	"github.com/visitlog-dev/visitlog/pkg/dircache"
	"github.com/visitlog-dev/visitlog/pkg/session"
	"github.com/visitlog-dev/visitlog/pkg/storage"
	"github.com/visitlog-dev/visitlog/pkg/transcribe"
)

// app wires every collaborator once at process start; request handlers
// receive references, never globals.
type app struct {
	cfg      *config.Config
	backend  *storage.DiskBackend
	client   *storage.Client
	cache    *dircache.Cache
	guard    *allowlist.Guard
	users    *access.Control
	registry *session.Registry
	orch     *navigator.Orchestrator
	admin    *navigator.Admin
	saver    *media.Saver

	folderStore *allowlist.FileStore
}

func buildApp(cfg *config.Config) (*app, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	backend, err := storage.NewDiskBackend(storage.DiskConfig{
		Token:   cfg.Storage.Token,
		BaseURL: cfg.Storage.BaseURL,
	})
	if err != nil {
		return nil, fmt.Errorf("storage backend: %w", err)
	}

	client := storage.NewClient(backend, storage.ClientConfig{
		MaxAttempts:       cfg.Storage.MaxAttempts,
		RetryDelay:        cfg.Storage.RetryDelay,
		RequestsPerSecond: cfg.Storage.RequestsPerSecond,
		Burst:             cfg.Storage.Burst,
	})

	cache := dircache.New(client)

	folderStore, err := allowlist.NewFileStore(cfg.FoldersPath())
	if err != nil {
		return nil, fmt.Errorf("allow-list store: %w", err)
	}
	guard, err := allowlist.NewGuard(folderStore, client, cache, cache)
	if err != nil {
		return nil, fmt.Errorf("allow-list guard: %w", err)
	}

	users, err := access.NewControl(cfg.UsersPath(), cfg.AdminIDs)
	if err != nil {
		return nil, fmt.Errorf("access control: %w", err)
	}

	var states session.StateStore
	if cfg.Redis.Addr != "" {
		states, err = session.NewRedisStateStore(session.RedisConfig{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
			Prefix:   cfg.Redis.Prefix,
			StateTTL: cfg.Redis.StateTTL,
		})
		if err != nil {
			return nil, fmt.Errorf("redis state store: %w", err)
		}
		log.Printf("conversation state in Redis at %s", cfg.Redis.Addr)
	} else {
		states = session.NewMemoryStateStore()
	}
	registry := session.NewRegistry(states)

	var transcriber transcribe.Transcriber
	if cfg.OpenAIKey != "" {
		transcriber = transcribe.NewOpenAITranscriber(cfg.OpenAIKey)
	} else {
		log.Println("no transcription key configured, voice notes stored without text")
	}

	return &app{
		cfg:         cfg,
		backend:     backend,
		client:      client,
		cache:       cache,
		guard:       guard,
		users:       users,
		registry:    registry,
		orch:        navigator.New(client, cache, guard, registry),
		admin:       navigator.NewAdmin(users, guard, registry),
		saver:       media.NewSaver(client, transcriber),
		folderStore: folderStore,
	}, nil
}

func (a *app) Close() {
	if err := a.registry.Close(); err != nil {
		log.Printf("close state store: %v", err)
	}
	if err := a.folderStore.Close(); err != nil {
		log.Printf("close allow-list store: %v", err)
	}
}
