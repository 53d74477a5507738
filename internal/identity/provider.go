// Package identity signs users up and in and keeps their sessions.
package identity

import (
	"context"
	"errors"
	"fmt"
	"net/mail"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/cache"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/store"
)

const minPasswordLen = 8

var (
	ErrInvalidEmail = errors.New("invalid email address")
	ErrWeakPassword = fmt.Errorf("password must be at least %d characters", minPasswordLen)
)

type EventType string

const (
	EventSignedIn  EventType = "signed_in"
	EventSignedOut EventType = "signed_out"
	EventExpired   EventType = "expired"
)

// Event reports a session transition.
type Event struct {
	Type    EventType
	Session core.Session
	At      time.Time
}

// Provider authenticates users against a UserStore and holds sessions in a
// TTL cache keyed by token.
type Provider struct {
	users    store.UserStore
	sessions *cache.LRU[core.Session]
	ttl      time.Duration
	hashCost int
	now      func() time.Time
	logger   *log.Logger

	subMu  sync.Mutex
	subs   map[int]chan Event
	nextID int
}

type Option func(*Provider)

// WithHashCost overrides the bcrypt cost.
func WithHashCost(cost int) Option {
	return func(p *Provider) { p.hashCost = cost }
}

// WithClock overrides the time source for sessions and events.
func WithClock(now func() time.Time) Option {
	return func(p *Provider) { p.now = now }
}

func WithLogger(l *log.Logger) Option {
	return func(p *Provider) { p.logger = l }
}

func NewProvider(users store.UserStore, ttl time.Duration, maxSessions int, opts ...Option) *Provider {
	p := &Provider{
		users:    users,
		ttl:      ttl,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
		logger:   log.Default(log.ComponentIdentity),
		subs:     make(map[int]chan Event),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.sessions = cache.NewLRU[core.Session](maxSessions, ttl).
		WithClock(p.now).
		OnEvict(func(_ string, s core.Session) { p.emit(EventExpired, s) })
	return p
}

// Sessions exposes the session cache so a janitor can sweep it.
func (p *Provider) Sessions() cache.Sweeper { return p.sessions }

func (p *Provider) SignUp(ctx context.Context, email, password, name string) (core.User, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return core.User{}, err
	}
	if len(password) < minPasswordLen {
		return core.User{}, ErrWeakPassword
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), p.hashCost)
	if err != nil {
		return core.User{}, fmt.Errorf("hash password: %w", err)
	}

	now := p.now().UTC()
	u := core.User{
		ID:        uuid.NewString(),
		Email:     email,
		Name:      strings.TrimSpace(name),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := p.users.CreateUser(ctx, u, string(hash)); err != nil {
		if errors.Is(err, core.ErrEmailTaken) {
			return core.User{}, err
		}
		return core.User{}, fmt.Errorf("create user: %w", err)
	}

	p.logger.InfoContext(ctx, "User signed up", log.FieldUserID, u.ID, log.FieldOperation, log.OpSignUp)
	return u, nil
}

// SignIn checks the credentials and opens a new session. Unknown emails and
// wrong passwords both return core.ErrInvalidCredentials.
func (p *Provider) SignIn(ctx context.Context, email, password string) (core.Session, error) {
	email, err := normalizeEmail(email)
	if err != nil {
		return core.Session{}, core.ErrInvalidCredentials
	}

	u, hash, err := p.users.FindUserByEmail(ctx, email)
	if errors.Is(err, core.ErrNotFound) {
		return core.Session{}, core.ErrInvalidCredentials
	}
	if err != nil {
		return core.Session{}, fmt.Errorf("find user: %w", err)
	}
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return core.Session{}, core.ErrInvalidCredentials
	}

	s := core.Session{
		UserID:    u.ID,
		Email:     u.Email,
		Name:      u.Name,
		Token:     uuid.NewString(),
		ExpiresAt: p.now().Add(p.ttl).UTC(),
	}
	p.sessions.Set(s.Token, s)
	p.emit(EventSignedIn, s)

	p.logger.InfoContext(ctx, "User signed in", log.FieldUserID, u.ID, log.FieldOperation, log.OpSignIn)
	return s, nil
}

// SignOut ends the session for token. Unknown tokens are ignored.
func (p *Provider) SignOut(ctx context.Context, token string) error {
	s, ok := p.sessions.Get(token)
	if !ok {
		return nil
	}
	p.sessions.Delete(token)
	p.emit(EventSignedOut, s)

	p.logger.InfoContext(ctx, "User signed out", log.FieldUserID, s.UserID, log.FieldOperation, log.OpSignOut)
	return nil
}

// Current resolves a token to its live session.
func (p *Provider) Current(token string) (core.Session, bool) {
	if token == "" {
		return core.Session{}, false
	}
	return p.sessions.Get(token)
}

// Subscribe returns a channel receiving every session transition and a
// function that cancels the subscription. Slow subscribers miss events
// rather than block sign-in.
func (p *Provider) Subscribe() (<-chan Event, func()) {
	ch := make(chan Event, 16)

	p.subMu.Lock()
	id := p.nextID
	p.nextID++
	p.subs[id] = ch
	p.subMu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			p.subMu.Lock()
			delete(p.subs, id)
			p.subMu.Unlock()
			close(ch)
		})
	}
}

func (p *Provider) emit(t EventType, s core.Session) {
	ev := Event{Type: t, Session: s, At: p.now().UTC()}

	p.subMu.Lock()
	defer p.subMu.Unlock()
	for _, ch := range p.subs {
		select {
		case ch <- ev:
		default:
			p.logger.Warn("Dropping session event for slow subscriber", "type", t, log.FieldUserID, s.UserID)
		}
	}
}

func (p *Provider) Profile(ctx context.Context, sess core.Session) (core.User, error) {
	if !sess.Valid() {
		return core.User{}, core.ErrUnauthenticated
	}
	return p.users.GetUser(ctx, sess.UserID)
}

// UpdateProfile renames the user and refreshes their open sessions.
func (p *Provider) UpdateProfile(ctx context.Context, sess core.Session, name string) (core.User, error) {
	if !sess.Valid() {
		return core.User{}, core.ErrUnauthenticated
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return core.User{}, core.ErrEmptyName
	}
	if err := p.users.UpdateUserName(ctx, sess.UserID, name); err != nil {
		return core.User{}, err
	}

	p.sessions.UpdateFunc(func(_ string, s core.Session) (core.Session, bool) {
		if s.UserID != sess.UserID {
			return s, false
		}
		s.Name = name
		return s, true
	})

	return p.users.GetUser(ctx, sess.UserID)
}

// DeleteAccount removes the user with all owned records and closes every
// session they hold.
func (p *Provider) DeleteAccount(ctx context.Context, sess core.Session) error {
	if !sess.Valid() {
		return core.ErrUnauthenticated
	}
	if err := p.users.DeleteUser(ctx, sess.UserID); err != nil {
		return fmt.Errorf("delete user: %w", err)
	}

	var closed []core.Session
	p.sessions.DeleteFunc(func(_ string, s core.Session) bool {
		if s.UserID == sess.UserID {
			closed = append(closed, s)
			return true
		}
		return false
	})
	for _, s := range closed {
		p.emit(EventSignedOut, s)
	}

	p.logger.InfoContext(ctx, "Account deleted", log.FieldUserID, sess.UserID, log.FieldOperation, log.OpDelete)
	return nil
}

func normalizeEmail(email string) (string, error) {
	email = strings.ToLower(strings.TrimSpace(email))
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return "", ErrInvalidEmail
	}
	return email, nil
}
