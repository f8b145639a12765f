// Package live turns store queries into shared, push-based values that are
// recomputed whenever the ledger changes.
package live

import (
	"context"
	"sync"
	"time"

	"expensetracker/internal/log"
)

// DefaultKeepAlive is how long a feed with no subscribers keeps its loader
// running before tearing down.
const DefaultKeepAlive = 5 * time.Second

// Update is one emission of a feed. Err carries a store failure; the feed
// keeps running after one.
type Update[T any] struct {
	Value T
	Err   error
}

// Loader computes the feed value from the store.
type Loader[T any] func(ctx context.Context) (T, error)

// Signals is the change source a feed reloads on. *ledger.Hub satisfies it.
type Signals interface {
	Subscribe() (<-chan struct{}, func())
}

// Option configures a Feed.
type Option func(*options)

type options struct {
	keepAlive time.Duration
	logger    *log.Logger
}

// WithKeepAlive overrides DefaultKeepAlive. Zero tears down immediately.
func WithKeepAlive(d time.Duration) Option {
	return func(o *options) { o.keepAlive = d }
}

func WithLogger(l *log.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Feed is a reference-counted derived value. The first subscriber starts a
// loader loop that loads once and then reloads on every change signal; each
// subscriber channel holds only the latest update.
type Feed[T any] struct {
	name    string
	load    Loader[T]
	signals Signals
	opts    options

	mu      sync.Mutex
	nextID  int
	subs    map[int]chan Update[T]
	running bool
	stop    context.CancelFunc
	gen     uint64 // bumped on every start and stop
	latest  *Update[T]
	grace   *time.Timer
	graceID uint64
}

func NewFeed[T any](name string, signals Signals, load Loader[T], opts ...Option) *Feed[T] {
	o := options{keepAlive: DefaultKeepAlive}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = log.New(log.DefaultConfig()).WithComponent(log.ComponentFeed)
	}
	return &Feed[T]{
		name:    name,
		load:    load,
		signals: signals,
		opts:    o,
		subs:    make(map[int]chan Update[T]),
	}
}

func (f *Feed[T]) Name() string { return f.name }

// Subscribe returns a channel of updates that is closed when ctx is done.
// If the feed is already warm the latest value is delivered immediately.
func (f *Feed[T]) Subscribe(ctx context.Context) <-chan Update[T] {
	f.mu.Lock()
	id := f.nextID
	f.nextID++
	ch := make(chan Update[T], 1)
	f.subs[id] = ch

	if f.grace != nil {
		f.grace.Stop()
		f.grace = nil
		f.graceID++
	}
	if !f.running {
		f.startLocked()
	} else if f.latest != nil {
		ch <- *f.latest
	}
	f.mu.Unlock()

	go func() {
		<-ctx.Done()
		f.unsubscribe(id)
	}()
	return ch
}

// Latest returns the most recent update while the feed is running.
func (f *Feed[T]) Latest() (Update[T], bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.latest == nil {
		return Update[T]{}, false
	}
	return *f.latest, true
}

// Running reports whether the loader loop is alive.
func (f *Feed[T]) Running() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.running
}

// Subscribers returns the number of active subscriptions.
func (f *Feed[T]) Subscribers() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.subs)
}

func (f *Feed[T]) startLocked() {
	f.gen++
	ctx, cancel := context.WithCancel(context.Background())
	f.stop = cancel
	f.running = true
	f.opts.logger.Debug("Feed started", log.FieldFeed, f.name)
	go f.run(ctx, f.gen)
}

func (f *Feed[T]) stopLocked() {
	if f.stop != nil {
		f.stop()
		f.stop = nil
	}
	f.running = false
	f.latest = nil
	f.gen++
	f.grace = nil
	f.opts.logger.Debug("Feed stopped", log.FieldFeed, f.name)
}

func (f *Feed[T]) run(ctx context.Context, gen uint64) {
	changes, cancel := f.signals.Subscribe()
	defer cancel()

	f.reload(ctx, gen)
	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-changes:
			if !ok {
				return
			}
			f.reload(ctx, gen)
		}
	}
}

func (f *Feed[T]) reload(ctx context.Context, gen uint64) {
	v, err := f.load(ctx)
	if ctx.Err() != nil {
		return
	}
	if err != nil {
		f.opts.logger.Warn("Feed load failed", log.FieldFeed, f.name, log.FieldError, err)
	}
	f.publish(gen, Update[T]{Value: v, Err: err})
}

func (f *Feed[T]) publish(gen uint64, u Update[T]) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if gen != f.gen || !f.running {
		return
	}
	f.latest = &u
	for _, ch := range f.subs {
		// Drop a stale pending value so the send below cannot block.
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- u:
		default:
		}
	}
}

func (f *Feed[T]) unsubscribe(id int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	ch, ok := f.subs[id]
	if !ok {
		return
	}
	delete(f.subs, id)
	close(ch)

	if len(f.subs) > 0 || !f.running {
		return
	}
	if f.opts.keepAlive <= 0 {
		f.stopLocked()
		return
	}
	f.graceID++
	graceID := f.graceID
	f.grace = time.AfterFunc(f.opts.keepAlive, func() { f.expire(graceID) })
}

func (f *Feed[T]) expire(graceID uint64) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if graceID != f.graceID || len(f.subs) > 0 || !f.running {
		return
	}
	f.stopLocked()
}
