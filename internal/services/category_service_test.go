package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
	"expensetracker/internal/log"
	"expensetracker/internal/storage/memory"
)

func TestSeedDefaultsIfEmptyIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	n, err := f.categories.SeedDefaultsIfEmpty(ctx)
	require.NoError(t, err)
	assert.Equal(t, 8, n)

	n, err = f.categories.SeedDefaultsIfEmpty(ctx)
	require.NoError(t, err)
	assert.Equal(t, 0, n)

	cats, err := f.categories.List(ctx)
	require.NoError(t, err)
	require.Len(t, cats, 8)

	want := []string{"Food", "Transport", "Shopping", "Bills", "Entertainment", "Health", "Education", "Other"}
	for i, c := range cats {
		assert.Equal(t, want[i], c.Name)
		assert.False(t, c.IsCustom)
	}
}

func TestSeedSkipsWhenCustomCategoryExists(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.category(t, "Pets")

	n, err := f.categories.SeedDefaultsIfEmpty(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestAddCategoryListsCustomFirst(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	_, err := f.categories.SeedDefaultsIfEmpty(ctx)
	require.NoError(t, err)

	pets := f.category(t, "Pets")
	assert.True(t, pets.IsCustom)
	assert.NotZero(t, pets.ID)

	cats, err := f.categories.List(ctx)
	require.NoError(t, err)
	assert.Equal(t, "Pets", cats[0].Name)
	assert.Equal(t, "Food", cats[1].Name)
	assert.Contains(t, f.publisher.Kinds(), ledger.CategoryCreated)
}

func TestAddCategoryAllowsDuplicateNames(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	first := f.category(t, "Food")
	f.category(t, "Food")

	cats, err := f.categories.List(ctx)
	require.NoError(t, err)
	assert.Len(t, cats, 2)

	found, ok, err := f.categories.FindByName(ctx, "Food")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, first.ID, found.ID)

	_, ok, err = f.categories.FindByName(ctx, "Nope")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDeleteCategoryStrandsTransactions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	food := f.category(t, "Food")
	pets := f.category(t, "Pets")
	f.create(t, food, "lunch", core.Expense, "12", "01 08 2025")
	vet := f.create(t, pets, "vet", core.Expense, "80", "02 08 2025")

	require.NoError(t, f.categories.Delete(ctx, pets))

	all, err := f.store.ListTransactions(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"lunch"}, titles(all))

	_, ok, err := f.transactions.Get(ctx, vet.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	// The stranded row still counts toward the totals.
	sum, err := f.aggregator.Snapshot(ctx)
	require.NoError(t, err)
	assert.Equal(t, "-92", sum.Balance.String())

	filter := core.Filter{Category: "Pets"}.ForgetCategory(pets)
	assert.Empty(t, filter.Category)
}

func TestCategoryByID(t *testing.T) {
	f := newFixture(t)
	c := f.category(t, "Garden")

	got, ok, err := f.categories.ByID(context.Background(), c.ID)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "Garden", got.Name)

	_, ok, err = f.categories.ByID(context.Background(), c.ID+1)
	require.NoError(t, err)
	assert.False(t, ok)
}

// blockingLister holds ListCategories until release is closed, failing early
// if its context is cancelled first.
type blockingLister struct {
	ledger.Store
	entered chan struct{}
	release chan struct{}
}

func (b *blockingLister) ListCategories(ctx context.Context) ([]core.Category, error) {
	select {
	case b.entered <- struct{}{}:
	default:
	}
	select {
	case <-b.release:
		return b.Store.ListCategories(ctx)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func TestListSurvivesFirstCallerCancel(t *testing.T) {
	store := &blockingLister{
		Store:   memory.New(),
		entered: make(chan struct{}, 1),
		release: make(chan struct{}),
	}
	_, err := store.InsertCategory(context.Background(), core.Category{Name: "Food"})
	require.NoError(t, err)
	svc := NewCategoryService(store, nil, log.Discard())

	first, cancel := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := svc.List(first)
		firstErr <- err
	}()
	<-store.entered

	type result struct {
		cats []core.Category
		err  error
	}
	second := make(chan result, 1)
	go func() {
		cats, err := svc.List(context.Background())
		second <- result{cats, err}
	}()

	// Let the second caller join the in-flight query.
	time.Sleep(20 * time.Millisecond)
	cancel()
	time.Sleep(20 * time.Millisecond)
	close(store.release)

	select {
	case r := <-second:
		require.NoError(t, r.err)
		require.Len(t, r.cats, 1)
		assert.Equal(t, "Food", r.cats[0].Name)
	case <-time.After(2 * time.Second):
		t.Fatal("second List never returned")
	}
	assert.NoError(t, <-firstErr)
}
