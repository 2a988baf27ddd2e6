package repositories_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/asadazo/asadazo/app/models"
	"github.com/asadazo/asadazo/app/repositories"
	"github.com/asadazo/asadazo/pkg/kv"
)

func TestArrayStoreMissingKeyIsEmpty(t *testing.T) {
	arr := repositories.NewArrayStore[models.Order](kv.NewMemoryStore(), true)

	items, version, err := arr.Load(context.Background(), "orders:nobody")
	require.NoError(t, err)
	assert.Empty(t, items)
	assert.NotNil(t, items)
	assert.Zero(t, version)
}

func TestArrayStoreRoundTripAndConflict(t *testing.T) {
	ctx := context.Background()
	arr := repositories.NewArrayStore[models.IndexEntry](kv.NewMemoryStore(), true)

	_, v0, _ := arr.Load(ctx, "k")
	require.NoError(t, arr.Save(ctx, "k", []models.IndexEntry{{ID: "a", UserID: "u"}}, v0))

	items, v1, err := arr.Load(ctx, "k")
	require.NoError(t, err)
	assert.Len(t, items, 1)

	// A writer holding the stale version loses.
	err = arr.Save(ctx, "k", nil, v0)
	assert.ErrorIs(t, err, repositories.ErrConflict)

	require.NoError(t, arr.Save(ctx, "k", append(items, models.IndexEntry{ID: "b"}), v1))
}

// Without locking the later writer silently clobbers the earlier one.
func TestArrayStoreBlindWritesLoseUpdates(t *testing.T) {
	ctx := context.Background()
	arr := repositories.NewArrayStore[models.IndexEntry](kv.NewMemoryStore(), false)

	a, va, _ := arr.Load(ctx, "k")
	b, vb, _ := arr.Load(ctx, "k")

	require.NoError(t, arr.Save(ctx, "k", append(a, models.IndexEntry{ID: "from-a"}), va))
	require.NoError(t, arr.Save(ctx, "k", append(b, models.IndexEntry{ID: "from-b"}), vb))

	final, _, _ := arr.Load(ctx, "k")
	require.Len(t, final, 1)
	assert.Equal(t, "from-b", final[0].ID)
}

func TestArrayStoreAcceptsStringEncodedArray(t *testing.T) {
	ctx := context.Background()
	store := kv.NewMemoryStore()
	require.NoError(t, store.Set(ctx, "subscriptions:u1", []byte(`"[{\"id\":\"sub_1\",\"userId\":\"u1\"}]"`), 0))
	require.NoError(t, store.Set(ctx, "subscriptions:u2", []byte(`{"not":"an array"}`), 0))

	repo := repositories.NewSubscriptionRepository(store, true)

	subs, _, err := repo.Load(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, subs, 1)
	assert.Equal(t, "sub_1", subs[0].ID)

	subs, _, err = repo.Load(ctx, "u2")
	require.NoError(t, err)
	assert.Empty(t, subs)
}

func TestIndexAddIsIdempotent(t *testing.T) {
	ctx := context.Background()
	idx := repositories.NewSubscriptionIndex(kv.NewMemoryStore(), true)

	require.NoError(t, idx.Add(ctx, "sub_1", "u1"))
	require.NoError(t, idx.Add(ctx, "sub_1", "u1"))
	require.NoError(t, idx.Add(ctx, "sub_2", "u2"))

	entries, err := idx.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, []models.IndexEntry{{ID: "sub_1", UserID: "u1"}, {ID: "sub_2", UserID: "u2"}}, entries)
}

func TestIndexConcurrentAddsAllLand(t *testing.T) {
	ctx := context.Background()
	idx := repositories.NewSubscriptionIndex(kv.NewMemoryStore(), true)

	done := make(chan error, 3)
	for _, id := range []string{"a", "b", "c"} {
		go func(id string) { done <- idx.Add(ctx, id, "u") }(id)
	}
	for i := 0; i < 3; i++ {
		require.NoError(t, <-done)
	}

	entries, err := idx.List(ctx)
	require.NoError(t, err)
	assert.Len(t, entries, 3)
}

func TestUserRepository(t *testing.T) {
	ctx := context.Background()
	repo := repositories.NewUserRepository(kv.NewMemoryStore())

	u := &models.User{ID: "u1", Name: "Ana", Email: "Ana@Example.com", Role: models.RoleCustomer, CreatedAt: time.Now()}
	require.NoError(t, repo.Create(ctx, u))
	assert.ErrorIs(t, repo.Create(ctx, &models.User{Email: "ana@example.com"}), repositories.ErrUserExists)

	got, err := repo.FindByEmail(ctx, "ANA@example.com")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.ID)

	promoted, err := repo.Update(ctx, "ana@example.com", func(u *models.User) { u.Role = models.RoleAdmin })
	require.NoError(t, err)
	assert.True(t, promoted.IsAdmin())

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, repositories.ErrUserNotFound)
}
