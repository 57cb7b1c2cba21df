package app

import (
	"context"
	"fmt"
	"net/http"

	"github.com/kofflo/cobram/internal/config"
	"github.com/kofflo/cobram/internal/logger"
	"github.com/kofflo/cobram/internal/repository"
	"github.com/kofflo/cobram/internal/websocket"
)

// App holds the application dependencies: store, snapshot repository and
// websocket hub. The HTTP handlers are wired on top of it in cmd.
type App struct {
	cfg   *config.Config
	log   logger.Logger
	store *Store
	repo  repository.SnapshotStore
	hub   *websocket.Hub
}

// New creates and initializes a new application instance. If the
// repository holds a snapshot the store is rebuilt from it, otherwise an
// empty league is started.
func New(cfg *config.Config, log logger.Logger) (*App, error) {
	repo, err := repository.New(cfg.Database.Path, cfg.Database.SnapshotKeep)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store, err := loadStore(context.Background(), repo, cfg.League.Name, log)
	if err != nil {
		repo.Close()
		return nil, err
	}

	hub := websocket.New(log)
	hub.Start()

	return &App{
		cfg:   cfg,
		log:   log,
		store: store,
		repo:  repo,
		hub:   hub,
	}, nil
}

func loadStore(ctx context.Context, repo repository.SnapshotStore, leagueName string, log logger.Logger) (*Store, error) {
	payload, err := repo.LoadLatest(ctx)
	if err == repository.ErrNoSnapshot {
		log.Info("No snapshot found, starting empty league", "league", leagueName)
		return NewStore(leagueName)
	}
	if err != nil {
		return nil, err
	}
	store, err := RestoreStore(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to restore snapshot: %w", err)
	}
	log.Info("League restored from snapshot", "league", store.LeagueName())
	return store, nil
}

// Commit persists the current state and notifies connected clients. The
// handlers call it after every successful mutation.
func (a *App) Commit(ctx context.Context, event string, payload interface{}) {
	snapshot, err := a.store.Snapshot()
	if err != nil {
		a.log.Error("Failed to serialize snapshot", "error", err)
		return
	}
	if _, err := a.repo.SaveSnapshot(ctx, snapshot); err != nil {
		a.log.Error("Failed to save snapshot", "error", err)
	}
	a.hub.BroadcastMessage(event, payload)
}

// Store returns the in-memory state.
func (a *App) Store() *Store {
	return a.store
}

// Hub returns the websocket hub.
func (a *App) Hub() *websocket.Hub {
	return a.hub
}

// Close releases app resources
func (a *App) Close() error {
	return a.repo.Close()
}

// Run serves handler and blocks until ctx is cancelled.
func (a *App) Run(ctx context.Context, handler http.Handler) error {
	server := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      handler,
		ReadTimeout:  a.cfg.Server.ReadTimeout.Std(),
		WriteTimeout: a.cfg.Server.WriteTimeout.Std(),
	}

	errCh := make(chan error, 1)
	go func() {
		a.log.Info("Server starting", "addr", a.cfg.Server.Addr)
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.cfg.Server.ShutdownTimeout.Std())
		defer cancel()
		a.log.Info("Server shutting down")
		return server.Shutdown(shutdownCtx)
	}
}
