// Package httphandler implements the REST API driving adapter.
package httphandler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/wackyweasel/minishelf/internal/application"
	"github.com/wackyweasel/minishelf/internal/domain/model"
)

// Handler is the HTTP driving adapter that serves the JSON API.
type Handler struct {
	lib     *application.LibraryService
	syncSvc *application.SyncService
	logger  *slog.Logger
}

// NewHandler creates a Handler with all required dependencies.
func NewHandler(lib *application.LibraryService, syncSvc *application.SyncService, logger *slog.Logger) *Handler {
	return &Handler{
		lib:     lib,
		syncSvc: syncSvc,
		logger:  logger,
	}
}

// RegisterAPIRoutes registers all API routes on the provided mux.
func RegisterAPIRoutes(mux *http.ServeMux, h *Handler) {
	mux.HandleFunc("GET /api/v1/miniatures", h.ListMiniatures)
	mux.HandleFunc("POST /api/v1/miniatures", h.CreateMiniature)
	mux.HandleFunc("GET /api/v1/miniatures/{id}", h.GetMiniature)
	mux.HandleFunc("PATCH /api/v1/miniatures/{id}", h.UpdateMiniature)
	mux.HandleFunc("DELETE /api/v1/miniatures/{id}", h.DeleteMiniature)
	mux.HandleFunc("GET /api/v1/games", h.ListGames)
	mux.HandleFunc("GET /api/v1/keywords", h.ListKeywords)
	mux.HandleFunc("GET /api/v1/export", h.Export)
	mux.HandleFunc("GET /api/v1/sync", h.SyncStatus)
	mux.HandleFunc("POST /api/v1/sync/link", h.LinkSync)
	mux.HandleFunc("DELETE /api/v1/sync/link", h.UnlinkSync)
	mux.HandleFunc("POST /api/v1/sync/run", h.RunSync)
	mux.HandleFunc("GET /api/v1/health", h.Health)
}

// NewServeMux builds the API mux wrapped with recovery and request logging.
func NewServeMux(h *Handler, logger *slog.Logger) http.Handler {
	mux := http.NewServeMux()
	RegisterAPIRoutes(mux, h)
	return ApplyMiddleware(mux, logger)
}

// ListMiniatures returns the records matching the optional game, painted,
// and search query parameters.
func (h *Handler) ListMiniatures(w http.ResponseWriter, r *http.Request) {
	var filter model.Filter

	if game := r.URL.Query().Get("game"); game != "" {
		filter.Game = &game
	}

	if paintedStr := r.URL.Query().Get("painted"); paintedStr != "" {
		painted, err := strconv.ParseBool(paintedStr)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid painted value")
			return
		}
		filter.Painted = &painted
	}

	filter.Search = r.URL.Query().Get("search")

	minis, err := h.lib.List(r.Context(), filter)
	if err != nil {
		h.logger.Error("failed to list miniatures", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	resp := make([]MiniatureResponse, 0, len(minis))
	for _, m := range minis {
		resp = append(resp, toMiniatureResponse(m))
	}

	writeJSON(w, http.StatusOK, resp)
}

// CreateMiniature inserts a new record and returns it.
func (h *Handler) CreateMiniature(w http.ResponseWriter, r *http.Request) {
	var req CreateMiniatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	amount := 1
	if req.Amount != nil {
		if *req.Amount < 1 {
			writeError(w, http.StatusBadRequest, "amount must be at least 1")
			return
		}
		amount = *req.Amount
	}

	id, err := h.lib.Create(r.Context(), model.Miniature{
		Game:      req.Game,
		Name:      req.Name,
		Amount:    amount,
		Painted:   req.Painted,
		Keywords:  req.Keywords,
		ImageData: req.ImageData,
	})
	if err != nil {
		h.logger.Error("failed to create miniature", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	created, err := h.lib.Get(r.Context(), id)
	if err != nil || created == nil {
		h.logger.Error("failed to read back created miniature", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusCreated, toMiniatureResponse(*created))
}

// GetMiniature returns a single record by id.
func (h *Handler) GetMiniature(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	m, err := h.lib.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get miniature", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	if m == nil {
		writeError(w, http.StatusNotFound, "miniature not found")
		return
	}

	writeJSON(w, http.StatusOK, toMiniatureResponse(*m))
}

// UpdateMiniature applies a partial update to a record.
func (h *Handler) UpdateMiniature(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	var req UpdateMiniatureRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if req.Amount != nil && *req.Amount < 1 {
		writeError(w, http.StatusBadRequest, "amount must be at least 1")
		return
	}

	upd := model.MiniatureUpdate{
		Game:      req.Game,
		Name:      req.Name,
		Amount:    req.Amount,
		Painted:   req.Painted,
		Keywords:  req.Keywords,
		ImageData: req.ImageData,
	}

	if err := h.lib.Update(r.Context(), id, upd); err != nil {
		m, getErr := h.lib.Get(r.Context(), id)
		if getErr == nil && m == nil {
			writeError(w, http.StatusNotFound, "miniature not found")
			return
		}
		h.logger.Error("failed to update miniature", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	updated, err := h.lib.Get(r.Context(), id)
	if err != nil || updated == nil {
		h.logger.Error("failed to read back updated miniature", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toMiniatureResponse(*updated))
}

// DeleteMiniature removes a record by id.
func (h *Handler) DeleteMiniature(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")

	m, err := h.lib.Get(r.Context(), id)
	if err != nil {
		h.logger.Error("failed to get miniature", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if m == nil {
		writeError(w, http.StatusNotFound, "miniature not found")
		return
	}

	if err := h.lib.Delete(r.Context(), id); err != nil {
		h.logger.Error("failed to delete miniature", "id", id, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ListGames returns the distinct game values.
func (h *Handler) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.lib.Games(r.Context())
	if err != nil {
		h.logger.Error("failed to list games", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if games == nil {
		games = []string{}
	}

	writeJSON(w, http.StatusOK, games)
}

// ListKeywords returns the distinct keyword tags.
func (h *Handler) ListKeywords(w http.ResponseWriter, r *http.Request) {
	keywords, err := h.lib.Keywords(r.Context())
	if err != nil {
		h.logger.Error("failed to list keywords", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	if keywords == nil {
		keywords = []string{}
	}

	writeJSON(w, http.StatusOK, keywords)
}

// Export offers the full collection as a downloadable JSON document.
func (h *Handler) Export(w http.ResponseWriter, r *http.Request) {
	data, err := h.lib.Export(r.Context())
	if err != nil {
		h.logger.Error("failed to export collection", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="minishelf-export.json"`)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

// SyncStatus reports the link state, linked URL, and dirty marker.
func (h *Handler) SyncStatus(w http.ResponseWriter, r *http.Request) {
	status, err := h.syncSvc.Status(r.Context())
	if err != nil {
		h.logger.Error("failed to read sync status", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toSyncStatusResponse(status))
}

// LinkSync validates a remote URL and links it as the sync source.
func (h *Handler) LinkSync(w http.ResponseWriter, r *http.Request) {
	var req LinkSyncRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		writeError(w, http.StatusBadRequest, "url is required")
		return
	}

	if err := h.syncSvc.Link(r.Context(), req.URL); err != nil {
		h.logger.Warn("sync link rejected", "url", req.URL, "error", err)
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	status, err := h.syncSvc.Status(r.Context())
	if err != nil {
		h.logger.Error("failed to read sync status", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toSyncStatusResponse(status))
}

// UnlinkSync forgets the linked sync source.
func (h *Handler) UnlinkSync(w http.ResponseWriter, r *http.Request) {
	if err := h.syncSvc.Unlink(r.Context()); err != nil {
		h.logger.Error("failed to unlink sync source", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RunSync re-fetches the linked document and replaces the local store.
// When unsynchronized local changes exist, the caller must set force to
// confirm the destructive replacement.
func (h *Handler) RunSync(w http.ResponseWriter, r *http.Request) {
	var req RunSyncRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid request body")
			return
		}
	}

	err := h.syncSvc.Synchronize(r.Context(), req.Force)
	switch {
	case errors.Is(err, application.ErrUnsyncedChanges):
		writeError(w, http.StatusConflict, err.Error())
		return
	case errors.Is(err, application.ErrNotLinked):
		writeError(w, http.StatusBadRequest, err.Error())
		return
	case err != nil:
		h.logger.Warn("synchronization failed", "error", err)
		writeError(w, http.StatusBadGateway, err.Error())
		return
	}

	status, err := h.syncSvc.Status(r.Context())
	if err != nil {
		h.logger.Error("failed to read sync status", "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	writeJSON(w, http.StatusOK, toSyncStatusResponse(status))
}

// Health is a liveness endpoint.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok"})
}
