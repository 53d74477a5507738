package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

// EventPublisher announces ledger writes to downstream consumers.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

// LedgerService is the CRUD surface of one ledger collection. The server
// runs one instance for expenses and one for income.
type LedgerService struct {
	kind       core.Kind
	collection string
	store      store.TransactionStore
	publisher  EventPublisher
	log        *log.StructuredLogger
}

// NewLedgerService returns a service for kind. publisher may be nil, in which
// case writes are not announced.
func NewLedgerService(kind core.Kind, st store.TransactionStore, publisher EventPublisher, logger *log.Logger) *LedgerService {
	if logger == nil {
		logger = log.Default(log.ComponentLedger)
	}
	return &LedgerService{
		kind:       kind,
		collection: store.CollectionFor(kind),
		store:      st,
		publisher:  publisher,
		log:        log.NewStructuredLogger(logger),
	}
}

func (s *LedgerService) Kind() core.Kind { return s.kind }

// Create validates in and stores it for the caller. Invalid amounts never
// reach the store.
func (s *LedgerService) Create(ctx context.Context, sess core.Session, in core.TransactionInput) (string, error) {
	if !sess.Valid() {
		return "", core.ErrUnauthenticated
	}
	if err := in.Validate(); err != nil {
		return "", err
	}

	t := core.Transaction{
		UserID:   sess.UserID,
		Kind:     s.kind,
		Amount:   in.Amount,
		Category: strings.TrimSpace(in.Category),
		Note:     in.Note,
		Date:     in.Date.UTC(),
	}
	id, err := s.store.CreateTransaction(ctx, t)
	if err != nil {
		s.log.LogStoreFailure(ctx, log.OpCreate, s.collection, sess.UserID, err)
		return "", fmt.Errorf("create %s: %w", s.kind, err)
	}
	t.ID = id

	s.log.LogTransactionCreated(ctx, id, sess.UserID, s.kind.String(), t.Amount.String(), t.Category)
	s.publish(ctx, amqp.OpCreated, t, core.WindowOf(t.Date))
	return id, nil
}

// List returns the caller's records, newest first, optionally restricted to
// a window.
func (s *LedgerService) List(ctx context.Context, sess core.Session, w *core.Window) ([]core.Transaction, error) {
	if !sess.Valid() {
		return nil, core.ErrUnauthenticated
	}
	ts, err := s.store.ListTransactions(ctx, s.kind, sess.UserID, w)
	if err != nil {
		s.log.LogStoreFailure(ctx, log.OpList, s.collection, sess.UserID, err)
		return nil, fmt.Errorf("list %s: %w", s.collection, err)
	}
	return ts, nil
}

// Get returns the record with id if it belongs to the caller.
func (s *LedgerService) Get(ctx context.Context, sess core.Session, id string) (core.Transaction, error) {
	if !sess.Valid() {
		return core.Transaction{}, core.ErrUnauthenticated
	}
	t, err := s.load(ctx, id)
	if err != nil {
		return core.Transaction{}, err
	}
	if t.UserID != sess.UserID {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

// Update merges patch into the record.
func (s *LedgerService) Update(ctx context.Context, id string, patch core.TransactionPatch) error {
	if err := patch.Validate(); err != nil {
		return err
	}
	before, err := s.load(ctx, id)
	if err != nil {
		return err
	}
	if err := s.store.UpdateTransaction(ctx, s.kind, id, patch); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return err
		}
		s.log.LogStoreFailure(ctx, log.OpUpdate, s.collection, before.UserID, err)
		return fmt.Errorf("update %s %s: %w", s.kind, id, err)
	}

	after := before
	patch.Apply(&after, time.Now().UTC())
	s.publish(ctx, amqp.OpUpdated, after, core.WindowOf(before.Date), core.WindowOf(after.Date))
	return nil
}

// Delete removes the record. Unknown ids are ignored.
func (s *LedgerService) Delete(ctx context.Context, id string) error {
	before, err := s.load(ctx, id)
	if errors.Is(err, core.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if err := s.store.DeleteTransaction(ctx, s.kind, id); err != nil {
		s.log.LogStoreFailure(ctx, log.OpDelete, s.collection, before.UserID, err)
		return fmt.Errorf("delete %s %s: %w", s.kind, id, err)
	}
	s.publish(ctx, amqp.OpDeleted, before, core.WindowOf(before.Date))
	return nil
}

func (s *LedgerService) load(ctx context.Context, id string) (core.Transaction, error) {
	t, err := s.store.GetTransaction(ctx, s.kind, id)
	if errors.Is(err, core.ErrNotFound) {
		return core.Transaction{}, err
	}
	if err != nil {
		s.log.LogStoreFailure(ctx, log.OpRead, s.collection, "", err)
		return core.Transaction{}, fmt.Errorf("get %s %s: %w", s.kind, id, err)
	}
	return t, nil
}

// publish is best effort: the write already succeeded, so failures are
// logged and dropped.
func (s *LedgerService) publish(ctx context.Context, op amqp.LedgerOp, t core.Transaction, windows ...core.Window) {
	if s.publisher == nil {
		return
	}
	ev := amqp.NewLedgerEvent(op, t, windows...)
	if err := s.publisher.PublishLedgerEvent(ctx, ev); err != nil {
		s.log.LogError(ctx, "Failed to publish ledger event", err, log.OpPublish,
			log.NewFields().WithUser(t.UserID).WithRecord(s.collection, t.ID))
	}
}
