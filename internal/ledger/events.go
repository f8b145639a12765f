package ledger

import "context"

// ChangeKind names a ledger write for remote listeners.
type ChangeKind string

const (
	TransactionCreated ChangeKind = "transaction.created"
	TransactionUpdated ChangeKind = "transaction.updated"
	TransactionDeleted ChangeKind = "transaction.deleted"
	CategoryCreated    ChangeKind = "category.created"
	CategoryDeleted    ChangeKind = "category.deleted"
	CategoriesSeeded   ChangeKind = "category.seeded"
	LedgerWiped        ChangeKind = "ledger.wiped"
)

// ChangePublisher announces writes to other processes sharing the store.
type ChangePublisher interface {
	PublishLedgerChanged(ctx context.Context, kind ChangeKind, entityID int64) error
}

// WipeRequester asks a worker to run the logout cascade.
type WipeRequester interface {
	PublishWipeRequest(ctx context.Context, reason string) error
}
