package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/wackyweasel/minishelf/internal/domain/model"
	"github.com/wackyweasel/minishelf/internal/domain/port/driven"
)

// timeLayout is fixed-width so stored timestamps sort lexicographically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Compile-time interface satisfaction check.
var _ driven.MiniatureStore = (*MiniatureRepo)(nil)

// MiniatureRepo is the SQLite implementation of the MiniatureStore port.
type MiniatureRepo struct {
	store *Store
}

// NewMiniatureRepo creates a MiniatureRepo backed by the given store.
func NewMiniatureRepo(store *Store) *MiniatureRepo {
	return &MiniatureRepo{store: store}
}

// Create inserts a record, filling the id when absent and stamping both
// timestamps to now. Missing optional fields keep their zero values
// except amount, which defaults to 1. Returns the record id.
func (r *MiniatureRepo) Create(ctx context.Context, m model.Miniature) (string, error) {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	if m.Amount == 0 {
		m.Amount = 1
	}

	now := time.Now().UTC()
	m.CreatedAt = now
	m.UpdatedAt = now

	const query = `
		INSERT INTO miniatures (id, game, name, amount, painted, keywords, image_data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	painted := 0
	if m.Painted {
		painted = 1
	}

	_, err := r.store.Writer().ExecContext(ctx, query,
		m.ID, m.Game, m.Name, m.Amount, painted, m.Keywords, m.ImageData,
		m.CreatedAt.Format(timeLayout), m.UpdatedAt.Format(timeLayout),
	)
	if err != nil {
		return "", fmt.Errorf("insert miniature %q: %w", m.ID, err)
	}

	return m.ID, nil
}

// Get retrieves a single record by id. Returns nil, nil if it does not exist.
func (r *MiniatureRepo) Get(ctx context.Context, id string) (*model.Miniature, error) {
	const query = `
		SELECT id, game, name, amount, painted, keywords, image_data, created_at, updated_at
		FROM miniatures
		WHERE id = ?
	`

	m, err := scanMiniature(r.store.Reader().QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get miniature %q: %w", id, err)
	}

	return m, nil
}

// List returns records matching the filter, most recently created first.
// Filter conditions are conjunctive; each search term must match at least
// one of keywords, game, or name case-insensitively.
func (r *MiniatureRepo) List(ctx context.Context, filter model.Filter) ([]model.Miniature, error) {
	query := `
		SELECT id, game, name, amount, painted, keywords, image_data, created_at, updated_at
		FROM miniatures
	`

	var clauses []string
	var args []any

	if filter.Game != nil {
		clauses = append(clauses, "game = ?")
		args = append(args, *filter.Game)
	}

	if filter.Painted != nil {
		painted := 0
		if *filter.Painted {
			painted = 1
		}
		clauses = append(clauses, "painted = ?")
		args = append(args, painted)
	}

	// AND across terms, OR across fields per term.
	for _, term := range filter.SearchTerms() {
		clauses = append(clauses,
			"(instr(lower(keywords), ?) > 0 OR instr(lower(game), ?) > 0 OR instr(lower(name), ?) > 0)")
		args = append(args, term, term, term)
	}

	if len(clauses) > 0 {
		query += " WHERE " + strings.Join(clauses, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.store.Reader().QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query miniatures: %w", err)
	}
	defer rows.Close()

	var minis []model.Miniature
	for rows.Next() {
		m, err := scanMiniature(rows)
		if err != nil {
			return nil, fmt.Errorf("scan miniature: %w", err)
		}
		minis = append(minis, *m)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate miniatures: %w", err)
	}

	return minis, nil
}

// Update applies a partial update to the record. Only set fields change;
// updated_at is always bumped to a value strictly greater than its prior
// one, including for an update with no fields set.
func (r *MiniatureRepo) Update(ctx context.Context, id string, upd model.MiniatureUpdate) error {
	var prior string
	err := r.store.Reader().QueryRowContext(ctx,
		`SELECT updated_at FROM miniatures WHERE id = ?`, id).Scan(&prior)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("miniature %q not found", id)
	}
	if err != nil {
		return fmt.Errorf("read miniature %q: %w", id, err)
	}

	priorAt, err := parseTime(prior)
	if err != nil {
		return fmt.Errorf("parse updated_at: %w", err)
	}

	now := time.Now().UTC()
	if !now.After(priorAt) {
		now = priorAt.Add(time.Nanosecond)
	}

	sets := []string{"updated_at = ?"}
	args := []any{now.Format(timeLayout)}

	if upd.Game != nil {
		sets = append(sets, "game = ?")
		args = append(args, *upd.Game)
	}
	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Amount != nil {
		sets = append(sets, "amount = ?")
		args = append(args, *upd.Amount)
	}
	if upd.Painted != nil {
		painted := 0
		if *upd.Painted {
			painted = 1
		}
		sets = append(sets, "painted = ?")
		args = append(args, painted)
	}
	if upd.Keywords != nil {
		sets = append(sets, "keywords = ?")
		args = append(args, *upd.Keywords)
	}
	if upd.ImageData != nil {
		sets = append(sets, "image_data = ?")
		args = append(args, *upd.ImageData)
	}

	args = append(args, id)
	query := "UPDATE miniatures SET " + strings.Join(sets, ", ") + " WHERE id = ?"

	if _, err := r.store.Writer().ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("update miniature %q: %w", id, err)
	}

	return nil
}

// Delete removes the record. Returns an error if it does not exist.
func (r *MiniatureRepo) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM miniatures WHERE id = ?`

	result, err := r.store.Writer().ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("delete miniature %q: %w", id, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("miniature %q not found", id)
	}

	return nil
}

// DeleteAll removes every record in a single transaction so callers can
// persist once instead of per row.
func (r *MiniatureRepo) DeleteAll(ctx context.Context) error {
	tx, err := r.store.Writer().BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin delete all: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM miniatures`); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("delete all miniatures: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit delete all: %w", err)
	}

	return nil
}

// DistinctGames returns the distinct non-empty game values, ascending.
func (r *MiniatureRepo) DistinctGames(ctx context.Context) ([]string, error) {
	const query = `SELECT DISTINCT game FROM miniatures WHERE game != '' ORDER BY game`

	rows, err := r.store.Reader().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query distinct games: %w", err)
	}
	defer rows.Close()

	var games []string
	for rows.Next() {
		var game string
		if err := rows.Scan(&game); err != nil {
			return nil, fmt.Errorf("scan game: %w", err)
		}
		games = append(games, game)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate games: %w", err)
	}

	return games, nil
}

// DistinctKeywords returns the union of all individual keyword tags
// across all records, deduplicated and sorted ascending.
func (r *MiniatureRepo) DistinctKeywords(ctx context.Context) ([]string, error) {
	const query = `SELECT keywords FROM miniatures WHERE keywords != ''`

	rows, err := r.store.Reader().QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query keywords: %w", err)
	}
	defer rows.Close()

	var keywordStrings []string
	for rows.Next() {
		var ks string
		if err := rows.Scan(&ks); err != nil {
			return nil, fmt.Errorf("scan keywords: %w", err)
		}
		keywordStrings = append(keywordStrings, ks)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate keywords: %w", err)
	}

	return model.UnionKeywords(keywordStrings), nil
}

// scanner is satisfied by both *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanMiniature(s scanner) (*model.Miniature, error) {
	var m model.Miniature
	var painted int
	var createdAt, updatedAt string

	err := s.Scan(&m.ID, &m.Game, &m.Name, &m.Amount, &painted, &m.Keywords, &m.ImageData, &createdAt, &updatedAt)
	if err != nil {
		return nil, err
	}

	m.Painted = painted != 0

	m.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	m.UpdatedAt, err = parseTime(updatedAt)
	if err != nil {
		return nil, fmt.Errorf("parse updated_at: %w", err)
	}

	return &m, nil
}

// parseTime tries multiple SQLite datetime formats.
func parseTime(s string) (time.Time, error) {
	formats := []string{
		timeLayout,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05",
		"2006-01-02 15:04:05.000",
		time.RFC3339,
		time.RFC3339Nano,
	}

	for _, format := range formats {
		if t, err := time.Parse(format, s); err == nil {
			return t, nil
		}
	}

	return time.Time{}, fmt.Errorf("unrecognized time format: %s", s)
}
