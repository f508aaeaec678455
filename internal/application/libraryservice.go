package application

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/wackyweasel/minishelf/internal/domain/model"
	"github.com/wackyweasel/minishelf/internal/domain/port/driven"
)

// LibraryService orchestrates record mutations: each successful mutation
// is followed by a best-effort snapshot save, the dirty marker is set,
// and a change notification is published. The in-memory store stays the
// source of truth when a save fails.
type LibraryService struct {
	records driven.MiniatureStore
	engine  driven.Engine
	flags   driven.FlagStore
	feed    *ChangeFeed
	logger  *slog.Logger
}

// NewLibraryService creates a LibraryService with all required dependencies.
func NewLibraryService(
	records driven.MiniatureStore,
	engine driven.Engine,
	flags driven.FlagStore,
	feed *ChangeFeed,
	logger *slog.Logger,
) *LibraryService {
	return &LibraryService{
		records: records,
		engine:  engine,
		flags:   flags,
		feed:    feed,
		logger:  logger,
	}
}

// Create normalizes keywords and inserts the record, returning its id.
func (s *LibraryService) Create(ctx context.Context, m model.Miniature) (string, error) {
	m.Keywords = model.NormalizeKeywords(m.Keywords)

	id, err := s.records.Create(ctx, m)
	if err != nil {
		return "", err
	}

	s.persistAfterMutation(ctx)
	return id, nil
}

// Get returns one record, or nil when it does not exist.
func (s *LibraryService) Get(ctx context.Context, id string) (*model.Miniature, error) {
	return s.records.Get(ctx, id)
}

// List returns records matching the filter, most recent first.
func (s *LibraryService) List(ctx context.Context, filter model.Filter) ([]model.Miniature, error) {
	return s.records.List(ctx, filter)
}

// Update applies a partial update, normalizing keywords when supplied.
func (s *LibraryService) Update(ctx context.Context, id string, upd model.MiniatureUpdate) error {
	if upd.Keywords != nil {
		normalized := model.NormalizeKeywords(*upd.Keywords)
		upd.Keywords = &normalized
	}

	if err := s.records.Update(ctx, id, upd); err != nil {
		return err
	}

	s.persistAfterMutation(ctx)
	return nil
}

// Delete removes one record.
func (s *LibraryService) Delete(ctx context.Context, id string) error {
	if err := s.records.Delete(ctx, id); err != nil {
		return err
	}

	s.persistAfterMutation(ctx)
	return nil
}

// Clear removes every record in one transaction and persists once.
func (s *LibraryService) Clear(ctx context.Context) error {
	if err := s.records.DeleteAll(ctx); err != nil {
		return err
	}

	s.persistAfterMutation(ctx)
	return nil
}

// Games returns the distinct non-empty game values, ascending.
func (s *LibraryService) Games(ctx context.Context) ([]string, error) {
	return s.records.DistinctGames(ctx)
}

// Keywords returns all distinct keyword tags, ascending.
func (s *LibraryService) Keywords(ctx context.Context) ([]string, error) {
	return s.records.DistinctKeywords(ctx)
}

// Export renders the whole collection as the pretty-printed export
// document: an object with a single records array.
func (s *LibraryService) Export(ctx context.Context) ([]byte, error) {
	minis, err := s.records.List(ctx, model.Filter{})
	if err != nil {
		return nil, err
	}

	doc := model.ExportDocument{Records: make([]model.ExportRecord, 0, len(minis))}
	for _, m := range minis {
		doc.Records = append(doc.Records, model.ExportRecord{
			ID:        m.ID,
			Game:      m.Game,
			Name:      m.Name,
			Amount:    m.Amount,
			Painted:   m.Painted,
			Keywords:  m.Keywords,
			ImageData: m.ImageData,
		})
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal export document: %w", err)
	}
	return data, nil
}

// persistAfterMutation saves the snapshot, marks local state dirty, and
// notifies subscribers. Persistence is best effort: a failed save is
// logged and the in-memory mutation stands.
func (s *LibraryService) persistAfterMutation(ctx context.Context) {
	if err := s.engine.Persist(ctx); err != nil {
		s.logger.Error("failed to persist snapshot", "error", err)
	}

	if err := s.flags.SetDirty(ctx, true); err != nil {
		s.logger.Error("failed to set dirty flag", "error", err)
	}

	s.feed.Publish()
}
