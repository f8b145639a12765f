package session

import (
	"context"
	"fmt"
	"time"

	"expensetracker/internal/ledger"
	"expensetracker/internal/log"
)

const cascadeTimeout = time.Minute

// Cascade runs the logout wipe in the background. Start returns at once;
// completion and failure are only logged.
type Cascade interface {
	Start()
}

// Wiper is the part of the store the cascade needs.
type Wiper interface {
	DeleteAllTransactions(ctx context.Context) error
	DeleteAllCategories(ctx context.Context) error
}

// Wipe deletes every transaction, then every category. It stops at the
// first failure, leaving the store partially cleared.
func Wipe(ctx context.Context, w Wiper) error {
	if err := w.DeleteAllTransactions(ctx); err != nil {
		return fmt.Errorf("wipe transactions: %w", err)
	}
	if err := w.DeleteAllCategories(ctx); err != nil {
		return fmt.Errorf("wipe categories: %w", err)
	}
	return nil
}

// LocalCascade wipes the store from a goroutine in this process.
type LocalCascade struct {
	store  Wiper
	logger *log.Logger
}

func NewLocalCascade(store Wiper, logger *log.Logger) *LocalCascade {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &LocalCascade{store: store, logger: logger.WithComponent(log.ComponentSession)}
}

func (c *LocalCascade) Start() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), cascadeTimeout)
		defer cancel()
		if err := Wipe(ctx, c.store); err != nil {
			c.logger.Error("Logout cascade failed", log.FieldOperation, log.OpWipe, log.FieldError, err)
			return
		}
		c.logger.Info("Logout cascade finished", log.FieldOperation, log.OpWipe)
	}()
}

// PublishedCascade hands the wipe to the worker over the message broker.
type PublishedCascade struct {
	requester ledger.WipeRequester
	logger    *log.Logger
}

func NewPublishedCascade(requester ledger.WipeRequester, logger *log.Logger) *PublishedCascade {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &PublishedCascade{requester: requester, logger: logger.WithComponent(log.ComponentSession)}
}

func (c *PublishedCascade) Start() {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.requester.PublishWipeRequest(ctx, "logout"); err != nil {
			c.logger.Error("Failed to request logout cascade", log.FieldOperation, log.OpPublish, log.FieldError, err)
		}
	}()
}
