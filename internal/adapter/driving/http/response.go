package httphandler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/wackyweasel/minishelf/internal/application"
	"github.com/wackyweasel/minishelf/internal/domain/model"
)

// writeJSON marshals v to JSON and writes it to the response with the given
// status code. If marshaling fails, a 500 error is written instead.
func writeJSON(w http.ResponseWriter, status int, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		w.Header().Set("Content-Type", "application/json; charset=utf-8")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"internal server error"}`))
		return
	}

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_, _ = w.Write(data)
}

// writeError writes a JSON error response with the given status code and message.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// errorResponse is the standard error response body.
type errorResponse struct {
	Error string `json:"error"`
}

// MiniatureResponse is the JSON representation of a record.
type MiniatureResponse struct {
	ID        string `json:"id"`
	Game      string `json:"game"`
	Name      string `json:"name"`
	Amount    int    `json:"amount"`
	Painted   bool   `json:"painted"`
	Keywords  string `json:"keywords"`
	ImageData string `json:"image_data"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

// CreateMiniatureRequest is the JSON body for the create endpoint.
// Every field is optional; amount defaults to 1.
type CreateMiniatureRequest struct {
	Game      string `json:"game"`
	Name      string `json:"name"`
	Amount    *int   `json:"amount"`
	Painted   bool   `json:"painted"`
	Keywords  string `json:"keywords"`
	ImageData string `json:"image_data"`
}

// UpdateMiniatureRequest is the JSON body for the partial update
// endpoint. Absent fields are left untouched.
type UpdateMiniatureRequest struct {
	Game      *string `json:"game"`
	Name      *string `json:"name"`
	Amount    *int    `json:"amount"`
	Painted   *bool   `json:"painted"`
	Keywords  *string `json:"keywords"`
	ImageData *string `json:"image_data"`
}

// LinkSyncRequest is the JSON body for the sync link endpoint.
type LinkSyncRequest struct {
	URL string `json:"url"`
}

// RunSyncRequest is the JSON body for the sync run endpoint.
type RunSyncRequest struct {
	Force bool `json:"force"`
}

// SyncStatusResponse is the JSON representation of the sync engine state.
type SyncStatusResponse struct {
	State string `json:"state"`
	URL   string `json:"url,omitempty"`
	Dirty bool   `json:"dirty"`
}

// HealthResponse is the JSON representation of the health check endpoint.
type HealthResponse struct {
	Status string `json:"status"`
}

// toMiniatureResponse converts a domain record to its JSON response representation.
func toMiniatureResponse(m model.Miniature) MiniatureResponse {
	return MiniatureResponse{
		ID:        m.ID,
		Game:      m.Game,
		Name:      m.Name,
		Amount:    m.Amount,
		Painted:   m.Painted,
		Keywords:  m.Keywords,
		ImageData: m.ImageData,
		CreatedAt: m.CreatedAt.UTC().Format(time.RFC3339Nano),
		UpdatedAt: m.UpdatedAt.UTC().Format(time.RFC3339Nano),
	}
}

// toSyncStatusResponse converts an application SyncStatus to its JSON representation.
func toSyncStatusResponse(s application.SyncStatus) SyncStatusResponse {
	return SyncStatusResponse{
		State: string(s.State),
		URL:   s.URL,
		Dirty: s.Dirty,
	}
}
