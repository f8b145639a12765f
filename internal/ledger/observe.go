package ledger

import (
	"context"

	"expensetracker/internal/core"
)

// Observe wraps s so that every successful write notifies hub. Reads pass
// through untouched.
func Observe(s Store, hub *Hub) Store {
	return &observed{Store: s, hub: hub}
}

type observed struct {
	Store
	hub *Hub
}

func (o *observed) done(err error) error {
	if err == nil {
		o.hub.Notify()
	}
	return err
}

func (o *observed) InsertCategory(ctx context.Context, c core.Category) (core.Category, error) {
	out, err := o.Store.InsertCategory(ctx, c)
	return out, o.done(err)
}

func (o *observed) DeleteCategory(ctx context.Context, id int64) error {
	return o.done(o.Store.DeleteCategory(ctx, id))
}

func (o *observed) DeleteAllCategories(ctx context.Context) error {
	return o.done(o.Store.DeleteAllCategories(ctx))
}

func (o *observed) InsertTransaction(ctx context.Context, t core.Transaction) (core.Transaction, error) {
	out, err := o.Store.InsertTransaction(ctx, t)
	return out, o.done(err)
}

func (o *observed) UpdateTransaction(ctx context.Context, t core.Transaction) error {
	return o.done(o.Store.UpdateTransaction(ctx, t))
}

func (o *observed) DeleteTransaction(ctx context.Context, id int64) error {
	return o.done(o.Store.DeleteTransaction(ctx, id))
}

func (o *observed) DeleteAllTransactions(ctx context.Context) error {
	return o.done(o.Store.DeleteAllTransactions(ctx))
}
