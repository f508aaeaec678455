// Package driven defines the driven (outbound) port interfaces.
package driven

import (
	"context"

	"github.com/wackyweasel/minishelf/internal/domain/model"
)

// MiniatureStore defines the driven port for record persistence.
// Get returns nil, nil when the record does not exist.
type MiniatureStore interface {
	Create(ctx context.Context, m model.Miniature) (string, error)
	Get(ctx context.Context, id string) (*model.Miniature, error)
	List(ctx context.Context, filter model.Filter) ([]model.Miniature, error)
	Update(ctx context.Context, id string, upd model.MiniatureUpdate) error
	Delete(ctx context.Context, id string) error
	DeleteAll(ctx context.Context) error
	DistinctGames(ctx context.Context) ([]string, error)
	DistinctKeywords(ctx context.Context) ([]string, error)
}
