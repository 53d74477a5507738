package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/store/memory"
)

var (
	alice = core.Session{UserID: "alice", Email: "alice@example.com"}
	bob   = core.Session{UserID: "bob", Email: "bob@example.com"}

	errStoreDown = errors.New("store down")
)

func dec(s string) decimal.Decimal { return decimal.RequireFromString(s) }

func on(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// flakyStore fails selected operations on top of the memory store.
type flakyStore struct {
	*memory.Store
	failList   map[core.Kind]bool
	failBudget bool
	failCreate bool
}

func newFlakyStore() *flakyStore {
	return &flakyStore{Store: memory.New(), failList: map[core.Kind]bool{}}
}

func (f *flakyStore) ListTransactions(ctx context.Context, kind core.Kind, userID string, w *core.Window) ([]core.Transaction, error) {
	if f.failList[kind] {
		return nil, errStoreDown
	}
	return f.Store.ListTransactions(ctx, kind, userID, w)
}

func (f *flakyStore) FindBudget(ctx context.Context, userID string, w core.Window) (*core.Budget, error) {
	if f.failBudget {
		return nil, errStoreDown
	}
	return f.Store.FindBudget(ctx, userID, w)
}

func (f *flakyStore) CreateCategories(ctx context.Context, cats []core.Category) ([]string, error) {
	if f.failCreate {
		return nil, errStoreDown
	}
	return f.Store.CreateCategories(ctx, cats)
}

func (f *flakyStore) CreateTransaction(ctx context.Context, t core.Transaction) (string, error) {
	if f.failCreate {
		return "", errStoreDown
	}
	return f.Store.CreateTransaction(ctx, t)
}

// recordingPublisher captures published events.
type recordingPublisher struct {
	mu     sync.Mutex
	events []*amqp.LedgerEvent
	err    error
}

func (p *recordingPublisher) PublishLedgerEvent(_ context.Context, ev *amqp.LedgerEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) all() []*amqp.LedgerEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]*amqp.LedgerEvent(nil), p.events...)
}
