package sqlite

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wackyweasel/minishelf/internal/domain/model"
)

func ptr[T any](v T) *T { return &v }

func TestMiniatureRepo_Create_Defaults(t *testing.T) {
	repo := NewMiniatureRepo(setupTestStore(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, model.Miniature{Name: "Grot"})
	require.NoError(t, err)
	require.NotEmpty(t, id)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "Grot", got.Name)
	assert.Equal(t, 1, got.Amount, "amount should default to 1")
	assert.Empty(t, got.Game)
	assert.Empty(t, got.Keywords)
	assert.False(t, got.Painted)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Equal(t, got.CreatedAt, got.UpdatedAt)
}

func TestMiniatureRepo_Create_KeepsSuppliedID(t *testing.T) {
	repo := NewMiniatureRepo(setupTestStore(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, model.Miniature{ID: "mini-1"})
	require.NoError(t, err)
	assert.Equal(t, "mini-1", id)
}

func TestMiniatureRepo_Create_UniqueIDs(t *testing.T) {
	repo := NewMiniatureRepo(setupTestStore(t))
	ctx := context.Background()

	seen := make(map[string]bool)
	for range 50 {
		id, err := repo.Create(ctx, model.Miniature{})
		require.NoError(t, err)
		assert.False(t, seen[id], "duplicate id %q", id)
		seen[id] = true
	}
}

func TestMiniatureRepo_Create_DuplicateID(t *testing.T) {
	repo := NewMiniatureRepo(setupTestStore(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, model.Miniature{ID: "mini-1"})
	require.NoError(t, err)

	_, err = repo.Create(ctx, model.Miniature{ID: "mini-1"})
	assert.Error(t, err, "duplicate primary key should fail")
}

func TestMiniatureRepo_Get_NotFound(t *testing.T) {
	repo := NewMiniatureRepo(setupTestStore(t))

	got, err := repo.Get(context.Background(), "nope")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMiniatureRepo_List_Empty(t *testing.T) {
	repo := NewMiniatureRepo(setupTestStore(t))

	minis, err := repo.List(context.Background(), model.Filter{})
	require.NoError(t, err)
	assert.Empty(t, minis)
}

func TestMiniatureRepo_List_OrderedByCreatedAtDesc(t *testing.T) {
	repo := NewMiniatureRepo(setupTestStore(t))
	ctx := context.Background()

	for _, name := range []string{"first", "second", "third"} {
		_, err := repo.Create(ctx, model.Miniature{Name: name})
		require.NoError(t, err)
	}

	minis, err := repo.List(ctx, model.Filter{})
	require.NoError(t, err)
	require.Len(t, minis, 3)

	for i := 1; i < len(minis); i++ {
		assert.False(t, minis[i-1].CreatedAt.Before(minis[i].CreatedAt),
			"results should be most recent first")
	}
}

func TestMiniatureRepo_List_FilterGameAndPainted(t *testing.T) {
	repo := NewMiniatureRepo(setupTestStore(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, model.Miniature{Name: "a", Game: "Warhammer", Painted: true})
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.Miniature{Name: "b", Game: "Warhammer"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.Miniature{Name: "c", Game: "Infinity", Painted: true})
	require.NoError(t, err)

	minis, err := repo.List(ctx, model.Filter{Game: ptr("Warhammer"), Painted: ptr(true)})
	require.NoError(t, err)
	require.Len(t, minis, 1)
	assert.Equal(t, "a", minis[0].Name)
}

func TestMiniatureRepo_List_SearchConjunction(t *testing.T) {
	repo := NewMiniatureRepo(setupTestStore(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, model.Miniature{Name: "r1", Keywords: "sword"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.Miniature{Name: "r2", Game: "Warhammer"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.Miniature{Name: "r3", Keywords: "sword", Game: "Warhammer"})
	require.NoError(t, err)

	// Every term must match in some field; only r3 satisfies both.
	minis, err := repo.List(ctx, model.Filter{Search: "sword, warhammer"})
	require.NoError(t, err)
	require.Len(t, minis, 1)
	assert.Equal(t, "r3", minis[0].Name)
}

func TestMiniatureRepo_List_SearchMatchesAnyField(t *testing.T) {
	repo := NewMiniatureRepo(setupTestStore(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, model.Miniature{Name: "Sword Master"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.Miniature{Game: "Swordpoint"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.Miniature{Keywords: "sword"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.Miniature{Name: "unrelated"})
	require.NoError(t, err)

	minis, err := repo.List(ctx, model.Filter{Search: "SWORD"})
	require.NoError(t, err)
	assert.Len(t, minis, 3, "a term matches keywords, game, or name case-insensitively")
}

func TestMiniatureRepo_Update_Partial(t *testing.T) {
	repo := NewMiniatureRepo(setupTestStore(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, model.Miniature{Name: "Grot", Game: "Orks", Amount: 3})
	require.NoError(t, err)

	err = repo.Update(ctx, id, model.MiniatureUpdate{Name: ptr("Nob"), Painted: ptr(true)})
	require.NoError(t, err)

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)

	assert.Equal(t, "Nob", got.Name)
	assert.True(t, got.Painted)
	assert.Equal(t, "Orks", got.Game, "unset fields must be untouched")
	assert.Equal(t, 3, got.Amount)
}

func TestMiniatureRepo_Update_BumpsUpdatedAtStrictly(t *testing.T) {
	repo := NewMiniatureRepo(setupTestStore(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, model.Miniature{Name: "Grot"})
	require.NoError(t, err)

	before, err := repo.Get(ctx, id)
	require.NoError(t, err)

	for range 3 {
		require.NoError(t, repo.Update(ctx, id, model.MiniatureUpdate{Amount: ptr(2)}))

		after, err := repo.Get(ctx, id)
		require.NoError(t, err)
		assert.True(t, after.UpdatedAt.After(before.UpdatedAt),
			"updated_at must be strictly greater than its prior value")
		before = after
	}
}

func TestMiniatureRepo_Update_NoFields(t *testing.T) {
	repo := NewMiniatureRepo(setupTestStore(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, model.Miniature{Name: "Grot"})
	require.NoError(t, err)

	before, err := repo.Get(ctx, id)
	require.NoError(t, err)

	// An empty update is a no-op that still bumps updated_at.
	require.NoError(t, repo.Update(ctx, id, model.MiniatureUpdate{}))

	after, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "Grot", after.Name)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestMiniatureRepo_Update_NotFound(t *testing.T) {
	repo := NewMiniatureRepo(setupTestStore(t))

	err := repo.Update(context.Background(), "nope", model.MiniatureUpdate{})
	assert.Error(t, err)
}

func TestMiniatureRepo_Delete(t *testing.T) {
	repo := NewMiniatureRepo(setupTestStore(t))
	ctx := context.Background()

	id, err := repo.Create(ctx, model.Miniature{Name: "Grot"})
	require.NoError(t, err)

	require.NoError(t, repo.Delete(ctx, id))

	got, err := repo.Get(ctx, id)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMiniatureRepo_Delete_NotFound(t *testing.T) {
	repo := NewMiniatureRepo(setupTestStore(t))

	err := repo.Delete(context.Background(), "nope")
	assert.Error(t, err)
}

func TestMiniatureRepo_DeleteAll(t *testing.T) {
	repo := NewMiniatureRepo(setupTestStore(t))
	ctx := context.Background()

	for range 5 {
		_, err := repo.Create(ctx, model.Miniature{})
		require.NoError(t, err)
	}

	require.NoError(t, repo.DeleteAll(ctx))

	minis, err := repo.List(ctx, model.Filter{})
	require.NoError(t, err)
	assert.Empty(t, minis)
}

func TestMiniatureRepo_DistinctGames(t *testing.T) {
	repo := NewMiniatureRepo(setupTestStore(t))
	ctx := context.Background()

	for _, game := range []string{"Warhammer", "Infinity", "Warhammer", ""} {
		_, err := repo.Create(ctx, model.Miniature{Game: game})
		require.NoError(t, err)
	}

	games, err := repo.DistinctGames(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"Infinity", "Warhammer"}, games)
}

func TestMiniatureRepo_DistinctKeywords(t *testing.T) {
	repo := NewMiniatureRepo(setupTestStore(t))
	ctx := context.Background()

	_, err := repo.Create(ctx, model.Miniature{Keywords: "sword, shield"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.Miniature{Keywords: "orc, sword"})
	require.NoError(t, err)
	_, err = repo.Create(ctx, model.Miniature{})
	require.NoError(t, err)

	keywords, err := repo.DistinctKeywords(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"orc", "shield", "sword"}, keywords)
}
