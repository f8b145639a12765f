package services

import (
	"context"
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"expensetracker/internal/cache"
	"expensetracker/internal/core"
	"expensetracker/internal/ledger"
	"expensetracker/internal/live"
	"expensetracker/internal/log"
)

const (
	feedCacheSize = 64
	feedCacheTTL  = 30 * time.Minute
)

type (
	AmountFeed      = live.Feed[decimal.Decimal]
	TransactionFeed = live.Feed[[]core.TransactionWithCategory]
	StatisticsFeed  = live.Feed[[]core.ExpenseStatistic]
)

// Aggregator derives totals, filtered lists and category statistics from
// the transaction store. Every view is available one-shot and as a live
// feed that re-emits after each ledger change.
type Aggregator struct {
	store     ledger.TransactionStore
	signals   live.Signals
	logger    *log.Logger
	keepAlive time.Duration
	now       func() time.Time

	balance *AmountFeed
	income  *AmountFeed
	expense *AmountFeed
	all     *TransactionFeed

	today    *cache.LRUCache[*AmountFeed]
	monthly  *cache.LRUCache[*TransactionFeed]
	filtered *cache.LRUCache[*TransactionFeed]
	stats    *cache.LRUCache[*StatisticsFeed]
	caches   *cache.Manager
}

// NewAggregator builds the aggregator. keepAlive is the feed teardown grace;
// zero means live.DefaultKeepAlive.
func NewAggregator(store ledger.TransactionStore, signals live.Signals, keepAlive time.Duration, logger *log.Logger) *Aggregator {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	if keepAlive == 0 {
		keepAlive = live.DefaultKeepAlive
	}
	a := &Aggregator{
		store:     store,
		signals:   signals,
		logger:    logger.WithComponent(log.ComponentAggregator),
		keepAlive: keepAlive,
		now:       time.Now,
		today:     cache.NewLRUCache[*AmountFeed](feedCacheSize, feedCacheTTL),
		monthly:   cache.NewLRUCache[*TransactionFeed](feedCacheSize, feedCacheTTL),
		filtered:  cache.NewLRUCache[*TransactionFeed](feedCacheSize, feedCacheTTL),
		stats:     cache.NewLRUCache[*StatisticsFeed](feedCacheSize, feedCacheTTL),
		caches:    cache.NewManager(),
	}
	a.caches.Register(a.today)
	a.caches.Register(a.monthly)
	a.caches.Register(a.filtered)
	a.caches.Register(a.stats)

	a.balance = newFeed(a, "balance", store.SumAmounts)
	a.income = newFeed(a, "income", store.SumIncome)
	a.expense = newFeed(a, "expense", store.SumExpense)
	a.all = newFeed(a, "transactions", store.ListTransactions)
	return a
}

func newFeed[T any](a *Aggregator, name string, load func(context.Context) (T, error)) *live.Feed[T] {
	return live.NewFeed[T](name, a.signals, load,
		live.WithKeepAlive(a.keepAlive),
		live.WithLogger(a.logger.WithComponent(log.ComponentFeed)))
}

// StartCleanup periodically drops expired parameterised feeds.
func (a *Aggregator) StartCleanup(interval time.Duration) {
	a.caches.StartCleanup(interval)
}

func (a *Aggregator) Close() {
	a.caches.Stop()
}

// TotalBalance is the sum of every amount.
func (a *Aggregator) TotalBalance() *AmountFeed { return a.balance }

// TotalIncome is the sum of positive amounts.
func (a *Aggregator) TotalIncome() *AmountFeed { return a.income }

// TotalExpense is the sum of negative amounts; it is zero or negative.
func (a *Aggregator) TotalExpense() *AmountFeed { return a.expense }

// TodayExpense sums negative amounts whose date token equals todayToken
// exactly. Callers format the token with core.FormatDate.
func (a *Aggregator) TodayExpense(todayToken string) *AmountFeed {
	return a.today.GetOrSet(todayToken, func() *AmountFeed {
		return newFeed(a, "today:"+todayToken, func(ctx context.Context) (decimal.Decimal, error) {
			return a.store.SumExpenseOn(ctx, todayToken)
		})
	})
}

// AllTransactions is the joined list, newest date first.
func (a *Aggregator) AllTransactions() *TransactionFeed { return a.all }

// ByMonthYear matches month ("MM") and year ("yyyy") against the date token
// textually.
func (a *Aggregator) ByMonthYear(month, year string) *TransactionFeed {
	key := month + "/" + year
	return a.monthly.GetOrSet(key, func() *TransactionFeed {
		return newFeed(a, "month:"+key, func(ctx context.Context) ([]core.TransactionWithCategory, error) {
			return a.store.TransactionsByMonthYear(ctx, month, year)
		})
	})
}

// Filtered applies f to the joined list on every change. Relative windows
// are evaluated against the clock at each reload.
func (a *Aggregator) Filtered(f core.Filter) *TransactionFeed {
	key := fmt.Sprintf("%d/%d/%s", f.Window, f.Type, f.Category)
	return a.filtered.GetOrSet(key, func() *TransactionFeed {
		return newFeed(a, "filtered:"+key, func(ctx context.Context) ([]core.TransactionWithCategory, error) {
			return a.FilteredTransactions(ctx, f)
		})
	})
}

// Statistics is the category breakdown of one month, or of everything when
// month and year are both empty, narrowed by tf.
func (a *Aggregator) Statistics(month, year string, tf core.TypeFilter) *StatisticsFeed {
	key := fmt.Sprintf("%s/%s/%d", month, year, tf)
	return a.stats.GetOrSet(key, func() *StatisticsFeed {
		return newFeed(a, "stats:"+key, func(ctx context.Context) ([]core.ExpenseStatistic, error) {
			return a.StatisticsFor(ctx, month, year, tf)
		})
	})
}

// Filter is the pure client-side filter over an already loaded list.
func (a *Aggregator) Filter(all []core.TransactionWithCategory, f core.Filter) []core.TransactionWithCategory {
	return core.FilterTransactions(all, f, a.now())
}

// FilteredTransactions loads the joined list and applies f once.
func (a *Aggregator) FilteredTransactions(ctx context.Context, f core.Filter) ([]core.TransactionWithCategory, error) {
	all, err := a.store.ListTransactions(ctx)
	if err != nil {
		return nil, fmt.Errorf("list transactions: %w", err)
	}
	return a.Filter(all, f), nil
}

// StatisticsFor computes the breakdown once.
func (a *Aggregator) StatisticsFor(ctx context.Context, month, year string, tf core.TypeFilter) ([]core.ExpenseStatistic, error) {
	var (
		txs []core.TransactionWithCategory
		err error
	)
	if month == "" && year == "" {
		txs, err = a.store.ListTransactions(ctx)
	} else {
		txs, err = a.store.TransactionsByMonthYear(ctx, month, year)
	}
	if err != nil {
		return nil, fmt.Errorf("load transactions: %w", err)
	}

	kept := make([]core.TransactionWithCategory, 0, len(txs))
	for _, t := range txs {
		if tf.Keep(t.Transaction) {
			kept = append(kept, t)
		}
	}
	return core.ComputeStatistics(kept), nil
}

// Snapshot reads the four dashboard totals concurrently.
func (a *Aggregator) Snapshot(ctx context.Context) (core.Summary, error) {
	today := core.FormatDate(a.now())
	sum := core.Summary{Today: today}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() (err error) {
		sum.Balance, err = a.store.SumAmounts(gctx)
		return err
	})
	g.Go(func() (err error) {
		sum.Income, err = a.store.SumIncome(gctx)
		return err
	})
	g.Go(func() (err error) {
		sum.Expense, err = a.store.SumExpense(gctx)
		return err
	})
	g.Go(func() (err error) {
		sum.TodayExpense, err = a.store.SumExpenseOn(gctx, today)
		return err
	})
	if err := g.Wait(); err != nil {
		return core.Summary{}, fmt.Errorf("dashboard snapshot: %w", err)
	}
	return sum, nil
}

// MonthTransactions is the one-shot form of ByMonthYear.
func (a *Aggregator) MonthTransactions(ctx context.Context, month, year string) ([]core.TransactionWithCategory, error) {
	txs, err := a.store.TransactionsByMonthYear(ctx, month, year)
	if err != nil {
		return nil, fmt.Errorf("month transactions: %w", err)
	}
	return txs, nil
}
