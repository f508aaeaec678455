package model

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// ErrNoRecordArray indicates a sync document that is neither a bare array
// nor an object carrying a records/miniatures array.
var ErrNoRecordArray = errors.New("document contains no record array")

// SyncEntry is one record-shaped object in a remote sync document.
// Every field is optional; missing fields take the same defaults as a
// repository create. The image payload may appear either inline as
// image_data or nested as image.data.
type SyncEntry struct {
	ID        string     `json:"id"`
	Game      string     `json:"game"`
	Name      string     `json:"name"`
	Amount    *int       `json:"amount"`
	Painted   bool       `json:"painted"`
	Keywords  string     `json:"keywords"`
	ImageData string     `json:"image_data"`
	Image     *syncImage `json:"image"`
}

type syncImage struct {
	Data string `json:"data"`
}

// Miniature converts the entry to a domain record, applying defaults.
// ID and timestamps are left for the repository to fill.
func (e SyncEntry) Miniature() Miniature {
	amount := 1
	if e.Amount != nil {
		amount = *e.Amount
	}

	image := e.ImageData
	if image == "" && e.Image != nil {
		image = e.Image.Data
	}

	return Miniature{
		ID:        e.ID,
		Game:      e.Game,
		Name:      e.Name,
		Amount:    amount,
		Painted:   e.Painted,
		Keywords:  NormalizeKeywords(e.Keywords),
		ImageData: image,
	}
}

// DecodeSyncDocument parses a remote sync document. The document is
// either a bare JSON array of entries, or an object whose "records" or
// "miniatures" field is such an array. Entries with mistyped fields fail
// the whole decode.
func DecodeSyncDocument(data []byte) ([]SyncEntry, error) {
	var entries []SyncEntry

	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '[' {
		if err := json.Unmarshal(trimmed, &entries); err != nil {
			return nil, fmt.Errorf("decode record array: %w", err)
		}
		return entries, nil
	}

	var wrapper struct {
		Records    json.RawMessage `json:"records"`
		Miniatures json.RawMessage `json:"miniatures"`
	}
	if err := json.Unmarshal(data, &wrapper); err != nil {
		return nil, fmt.Errorf("decode sync document: %w", err)
	}

	raw := wrapper.Records
	if isAbsent(raw) {
		raw = wrapper.Miniatures
	}
	if isAbsent(raw) {
		return nil, ErrNoRecordArray
	}

	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("decode record array: %w", err)
	}
	return entries, nil
}

// isAbsent reports whether a captured field is missing or a JSON null.
// A null field carries no record array and must not pass as an empty one.
func isAbsent(raw json.RawMessage) bool {
	return raw == nil || bytes.Equal(raw, []byte("null"))
}

// ExportDocument is the produced export format: an object with a single
// pretty-printed records array.
type ExportDocument struct {
	Records []ExportRecord `json:"records"`
}

// ExportRecord is the JSON shape of one exported miniature.
type ExportRecord struct {
	ID        string `json:"id"`
	Game      string `json:"game"`
	Name      string `json:"name"`
	Amount    int    `json:"amount"`
	Painted   bool   `json:"painted"`
	Keywords  string `json:"keywords"`
	ImageData string `json:"image_data"`
}
