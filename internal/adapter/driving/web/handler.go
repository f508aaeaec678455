// Package web implements the HTML gallery driving adapter.
package web

import (
	"fmt"
	"io/fs"
	"log/slog"
	"net/http"
	"time"

	"github.com/wackyweasel/minishelf/internal/application"
)

// heartbeatInterval keeps idle SSE connections from being reaped by
// intermediaries.
const heartbeatInterval = 30 * time.Second

// Handler serves the embedded gallery page and pushes change
// notifications to connected browsers over server-sent events.
type Handler struct {
	feed   *application.ChangeFeed
	logger *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(feed *application.ChangeFeed, logger *slog.Logger) *Handler {
	return &Handler{
		feed:   feed,
		logger: logger,
	}
}

// Gallery serves the single-page gallery. All data loading happens
// client-side against the JSON API.
func (h *Handler) Gallery(w http.ResponseWriter, r *http.Request) {
	data, err := fs.ReadFile(StaticFS, "static/index.html")
	if err != nil {
		h.logger.Error("failed to read gallery page", "error", err)
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = w.Write(data)
}

// Events streams a server-sent event for every collection change so the
// gallery can refresh without polling.
func (h *Handler) Events(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "streaming unsupported", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	changes, cancel := h.feed.Subscribe()
	defer cancel()

	heartbeat := time.NewTicker(heartbeatInterval)
	defer heartbeat.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-changes:
			if _, err := fmt.Fprint(w, "event: change\ndata: {}\n\n"); err != nil {
				return
			}
			flusher.Flush()
		case <-heartbeat.C:
			if _, err := fmt.Fprint(w, ": heartbeat\n\n"); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}
