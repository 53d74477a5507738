package memory

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"fintrack/internal/core"
	"fintrack/internal/store"
)

type userRecord struct {
	user core.User
	hash string
}

// Store is a process-local implementation of store.Store.
type Store struct {
	mu         sync.Mutex
	now        func() time.Time
	ledger     map[core.Kind]map[string]core.Transaction
	categories []core.Category
	budgets    map[string]core.Budget
	users      map[string]userRecord
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		now:     func() time.Time { return time.Now().UTC() },
		budgets: map[string]core.Budget{},
		users:   map[string]userRecord{},
		ledger: map[core.Kind]map[string]core.Transaction{
			core.KindExpense: {},
			core.KindIncome:  {},
		},
	}
}

// WithClock replaces the timestamp source; used by tests.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.now = now
	return s
}

func (s *Store) Close() error { return nil }

// Ping always succeeds; it lets the memory store back the readiness probe.
func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) CreateTransaction(_ context.Context, t core.Transaction) (string, error) {
	if !t.Kind.Valid() {
		return "", core.ErrInvalidKind
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	t.ID = uuid.NewString()
	t.Date = t.Date.UTC()
	t.CreatedAt, t.UpdatedAt = now, now
	s.ledger[t.Kind][t.ID] = t
	return t.ID, nil
}

func (s *Store) GetTransaction(_ context.Context, kind core.Kind, id string) (core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.ledger[kind][id]
	if !ok {
		return core.Transaction{}, core.ErrNotFound
	}
	return t, nil
}

func (s *Store) ListTransactions(_ context.Context, kind core.Kind, userID string, w *core.Window) ([]core.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Transaction, 0)
	for _, t := range s.ledger[kind] {
		if t.UserID != userID {
			continue
		}
		if w != nil && !w.Contains(t.Date) {
			continue
		}
		out = append(out, t)
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Date.Equal(out[j].Date) {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		}
		return out[i].Date.After(out[j].Date)
	})
	return out, nil
}

func (s *Store) UpdateTransaction(_ context.Context, kind core.Kind, id string, patch core.TransactionPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	t, ok := s.ledger[kind][id]
	if !ok {
		return core.ErrNotFound
	}
	patch.Apply(&t, s.now())
	s.ledger[kind][id] = t
	return nil
}

func (s *Store) DeleteTransaction(_ context.Context, kind core.Kind, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.ledger[kind], id)
	return nil
}

func (s *Store) CreateCategories(_ context.Context, cats []core.Category) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	ids := make([]string, len(cats))
	for i, c := range cats {
		c.ID = uuid.NewString()
		c.CreatedAt, c.UpdatedAt = now, now
		s.categories = append(s.categories, c)
		ids[i] = c.ID
	}
	return ids, nil
}

func (s *Store) ListCategories(_ context.Context, userID string, kind *core.Kind) ([]core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Category, 0)
	for _, c := range s.categories {
		if c.UserID != userID || (kind != nil && c.Kind != *kind) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

func (s *Store) GetCategory(_ context.Context, id string) (core.Category, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, c := range s.categories {
		if c.ID == id {
			return c, nil
		}
	}
	return core.Category{}, core.ErrNotFound
}

func (s *Store) UpdateCategory(_ context.Context, id string, patch core.CategoryPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.categories {
		if s.categories[i].ID == id {
			patch.Apply(&s.categories[i], s.now())
			return nil
		}
	}
	return core.ErrNotFound
}

func (s *Store) DeleteCategory(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categories = slices.DeleteFunc(s.categories, func(c core.Category) bool { return c.ID == id })
	return nil
}

func (s *Store) CreateBudget(_ context.Context, b core.Budget) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.budgets {
		if existing.UserID == b.UserID && existing.Month == b.Month && existing.Year == b.Year {
			return "", core.ErrBudgetExists
		}
	}
	now := s.now()
	b.ID = uuid.NewString()
	b.CreatedAt, b.UpdatedAt = now, now
	s.budgets[b.ID] = b
	return b.ID, nil
}

func (s *Store) GetBudget(_ context.Context, id string) (core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return core.Budget{}, core.ErrNotFound
	}
	return b, nil
}

func (s *Store) FindBudget(_ context.Context, userID string, w core.Window) (*core.Budget, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, b := range s.budgets {
		if b.UserID == userID && b.Month == w.Month && b.Year == w.Year {
			found := b
			return &found, nil
		}
	}
	return nil, nil
}

func (s *Store) UpdateBudget(_ context.Context, id string, patch core.BudgetPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	b, ok := s.budgets[id]
	if !ok {
		return core.ErrNotFound
	}
	patch.Apply(&b, s.now())
	s.budgets[id] = b
	return nil
}

func (s *Store) DeleteBudget(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.budgets, id)
	return nil
}

func (s *Store) CreateUser(_ context.Context, u core.User, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.users {
		if strings.EqualFold(r.user.Email, u.Email) {
			return core.ErrEmailTaken
		}
	}
	now := s.now()
	if u.CreatedAt.IsZero() {
		u.CreatedAt = now
	}
	u.UpdatedAt = now
	s.users[u.ID] = userRecord{user: u, hash: passwordHash}
	return nil
}

func (s *Store) GetUser(_ context.Context, id string) (core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.users[id]
	if !ok {
		return core.User{}, core.ErrNotFound
	}
	return r.user, nil
}

func (s *Store) FindUserByEmail(_ context.Context, email string) (core.User, string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.users {
		if strings.EqualFold(r.user.Email, email) {
			return r.user, r.hash, nil
		}
	}
	return core.User{}, "", core.ErrNotFound
}

func (s *Store) ListUsers(_ context.Context) ([]core.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.User, 0, len(s.users))
	for _, r := range s.users {
		out = append(out, r.user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

func (s *Store) UpdateUserName(_ context.Context, id, name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	r, ok := s.users[id]
	if !ok {
		return core.ErrNotFound
	}
	r.user.Name = name
	r.user.UpdatedAt = s.now()
	s.users[id] = r
	return nil
}

func (s *Store) DeleteUser(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.users, id)
	for _, kind := range []core.Kind{core.KindExpense, core.KindIncome} {
		for tid, t := range s.ledger[kind] {
			if t.UserID == id {
				delete(s.ledger[kind], tid)
			}
		}
	}
	s.categories = slices.DeleteFunc(s.categories, func(c core.Category) bool { return c.UserID == id })
	for bid, b := range s.budgets {
		if b.UserID == id {
			delete(s.budgets, bid)
		}
	}
	return nil
}
