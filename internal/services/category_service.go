package services

import (
	"context"
	"fmt"
	"sync"

	"golang.org/x/sync/singleflight"

	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
	"expensetracker/internal/log"
)

// CategoryService is the category registry: listing, one-time default
// seeding, and custom category add/delete. It holds no cached state.
type CategoryService struct {
	store     ledger.CategoryStore
	publisher ledger.ChangePublisher
	logger    *log.Logger

	lists  singleflight.Group
	seedMu sync.Mutex
}

// NewCategoryService wires the registry. publisher may be nil.
func NewCategoryService(store ledger.CategoryStore, publisher ledger.ChangePublisher, logger *log.Logger) *CategoryService {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &CategoryService{
		store:     store,
		publisher: publisher,
		logger:    logger.WithComponent(log.ComponentCategory),
	}
}

// List returns custom categories first, then defaults. Concurrent callers
// share one store query, which outlives the cancellation of whichever caller
// started it.
func (s *CategoryService) List(ctx context.Context) ([]core.Category, error) {
	shared := context.WithoutCancel(ctx)
	v, err, _ := s.lists.Do("list", func() (any, error) {
		return s.store.ListCategories(shared)
	})
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return append([]core.Category(nil), v.([]core.Category)...), nil
}

// SeedDefaultsIfEmpty inserts the default set, in order, only when no
// category exists. It returns how many rows were inserted.
func (s *CategoryService) SeedDefaultsIfEmpty(ctx context.Context) (int, error) {
	s.seedMu.Lock()
	defer s.seedMu.Unlock()

	existing, err := s.store.ListCategories(ctx)
	if err != nil {
		return 0, fmt.Errorf("check categories: %w", err)
	}
	if len(existing) > 0 {
		return 0, nil
	}

	inserted := 0
	for _, c := range core.DefaultCategories() {
		if _, err := s.store.InsertCategory(ctx, c); err != nil {
			return inserted, fmt.Errorf("seed category %s: %w", c.Name, err)
		}
		inserted++
	}
	s.logger.InfoContext(ctx, "Seeded default categories", "count", inserted)
	s.publish(ctx, ledger.CategoriesSeeded, 0)
	return inserted, nil
}

// Add stores a custom category. Name validation is the caller's job
// (core.ValidateCategoryName); duplicate names are accepted.
func (s *CategoryService) Add(ctx context.Context, name, iconRef string, color core.Color) (core.Category, error) {
	if _, dup, err := s.store.CategoryByName(ctx, name); err == nil && dup {
		s.logger.WarnContext(ctx, "Adding category with a name that already exists", log.FieldCategory, name)
	}

	c, err := s.store.InsertCategory(ctx, core.Category{
		Name:     name,
		IconRef:  iconRef,
		Color:    color,
		IsCustom: true,
	})
	if err != nil {
		return core.Category{}, fmt.Errorf("add category: %w", err)
	}
	s.logger.InfoContext(ctx, "Category added", log.FieldCategoryID, c.ID, log.FieldCategory, c.Name)
	s.publish(ctx, ledger.CategoryCreated, c.ID)
	return c, nil
}

// Delete removes the category row only. Transactions pointing at it stay
// in the store and drop out of joined views; callers holding a category
// selection should clear it (core.Filter.ForgetCategory).
func (s *CategoryService) Delete(ctx context.Context, c core.Category) error {
	if err := s.store.DeleteCategory(ctx, c.ID); err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	s.logger.InfoContext(ctx, "Category deleted", log.FieldCategoryID, c.ID, log.FieldCategory, c.Name)
	s.publish(ctx, ledger.CategoryDeleted, c.ID)
	return nil
}

// FindByName returns the first category with exactly this name.
func (s *CategoryService) FindByName(ctx context.Context, name string) (core.Category, bool, error) {
	c, ok, err := s.store.CategoryByName(ctx, name)
	if err != nil {
		return core.Category{}, false, fmt.Errorf("find category: %w", err)
	}
	return c, ok, nil
}

// ByID returns the category with this id from the current list.
func (s *CategoryService) ByID(ctx context.Context, id int64) (core.Category, bool, error) {
	cats, err := s.List(ctx)
	if err != nil {
		return core.Category{}, false, err
	}
	for _, c := range cats {
		if c.ID == id {
			return c, true, nil
		}
	}
	return core.Category{}, false, nil
}

func (s *CategoryService) publish(ctx context.Context, kind ledger.ChangeKind, id int64) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishLedgerChanged(ctx, kind, id); err != nil {
		s.logger.WarnContext(ctx, "Failed to publish ledger change", "kind", kind, log.FieldError, err)
	}
}
