// Package handlers exposes the league over a JSON API, with live updates
// pushed through the websocket hub after each successful mutation.
package handlers

import (
	"context"

	"github.com/kofflo/cobram/internal/app"
	"github.com/kofflo/cobram/internal/logger"
	"github.com/kofflo/cobram/internal/websocket"
)

// Committer persists and broadcasts the state after a mutation.
type Committer interface {
	Commit(ctx context.Context, event string, payload interface{})
}

// Handlers holds the HTTP handler dependencies
type Handlers struct {
	Store     *app.Store
	Committer Committer
	Hub       *websocket.Hub
	Log       logger.Logger
}

// New creates the handlers
func New(store *app.Store, committer Committer, hub *websocket.Hub, log logger.Logger) *Handlers {
	return &Handlers{
		Store:     store,
		Committer: committer,
		Hub:       hub,
		Log:       log,
	}
}

// commit runs the post-mutation hook when one is configured.
func (h *Handlers) commit(ctx context.Context, event string, payload interface{}) {
	if h.Committer != nil {
		h.Committer.Commit(ctx, event, payload)
	}
}
