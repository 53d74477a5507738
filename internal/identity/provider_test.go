package identity

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"fintrack/internal/core"
	"fintrack/internal/store/memory"
)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func newTestProvider(t *testing.T) (*Provider, *memory.Store, *clock) {
	t.Helper()
	c := &clock{t: time.Date(2024, 6, 1, 8, 0, 0, 0, time.UTC)}
	st := memory.New()
	p := NewProvider(st, time.Hour, 100, WithHashCost(bcrypt.MinCost), WithClock(c.now))
	return p, st, c
}

func next(t *testing.T, ch <-chan Event) Event {
	t.Helper()
	select {
	case ev := <-ch:
		return ev
	case <-time.After(time.Second):
		t.Fatal("no event received")
		return Event{}
	}
}

func TestProvider_SignUpSignInSignOut(t *testing.T) {
	p, _, c := newTestProvider(t)
	ctx := context.Background()
	events, cancel := p.Subscribe()
	defer cancel()

	u, err := p.SignUp(ctx, "  Ada@Example.com ", "correct horse", "Ada")
	require.NoError(t, err)
	assert.Equal(t, "ada@example.com", u.Email)
	assert.NotEmpty(t, u.ID)

	_, err = p.SignUp(ctx, "ada@example.com", "another pass", "Imposter")
	assert.ErrorIs(t, err, core.ErrEmailTaken)

	_, err = p.SignIn(ctx, "ada@example.com", "wrong password")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
	_, err = p.SignIn(ctx, "nobody@example.com", "correct horse")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)

	sess, err := p.SignIn(ctx, "ADA@example.com", "correct horse")
	require.NoError(t, err)
	assert.Equal(t, u.ID, sess.UserID)
	assert.Equal(t, c.t.Add(time.Hour), sess.ExpiresAt)

	ev := next(t, events)
	assert.Equal(t, EventSignedIn, ev.Type)
	assert.Equal(t, sess.Token, ev.Session.Token)

	got, ok := p.Current(sess.Token)
	require.True(t, ok)
	assert.Equal(t, sess, got)

	require.NoError(t, p.SignOut(ctx, sess.Token))
	require.NoError(t, p.SignOut(ctx, sess.Token))
	assert.Equal(t, EventSignedOut, next(t, events).Type)

	_, ok = p.Current(sess.Token)
	assert.False(t, ok)
}

func TestProvider_SignUpValidation(t *testing.T) {
	p, _, _ := newTestProvider(t)
	ctx := context.Background()

	_, err := p.SignUp(ctx, "not-an-email", "long enough", "x")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = p.SignUp(ctx, "Ada <ada@example.com>", "long enough", "x")
	assert.ErrorIs(t, err, ErrInvalidEmail)

	_, err = p.SignUp(ctx, "ada@example.com", "short", "x")
	assert.ErrorIs(t, err, ErrWeakPassword)
}

func TestProvider_SessionExpiry(t *testing.T) {
	p, _, c := newTestProvider(t)
	ctx := context.Background()
	_, err := p.SignUp(ctx, "ada@example.com", "correct horse", "Ada")
	require.NoError(t, err)
	sess, err := p.SignIn(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	events, cancel := p.Subscribe()
	defer cancel()

	c.t = c.t.Add(time.Hour)
	_, ok := p.Current(sess.Token)
	assert.False(t, ok)

	ev := next(t, events)
	assert.Equal(t, EventExpired, ev.Type)
	assert.Equal(t, sess.UserID, ev.Session.UserID)
}

func TestProvider_UpdateProfileKeepsSessionDeadline(t *testing.T) {
	p, _, c := newTestProvider(t)
	ctx := context.Background()
	_, err := p.SignUp(ctx, "ada@example.com", "correct horse", "Ada")
	require.NoError(t, err)
	kept, err := p.SignIn(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	closed, err := p.SignIn(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	require.NoError(t, p.SignOut(ctx, closed.Token))

	c.t = c.t.Add(40 * time.Minute)
	_, err = p.UpdateProfile(ctx, kept, "Ada Lovelace")
	require.NoError(t, err)

	got, ok := p.Current(kept.Token)
	require.True(t, ok)
	assert.Equal(t, "Ada Lovelace", got.Name)
	assert.Equal(t, kept.ExpiresAt, got.ExpiresAt)

	_, ok = p.Current(closed.Token)
	assert.False(t, ok, "a signed-out token stays closed")

	c.t = c.t.Add(20 * time.Minute)
	_, ok = p.Current(kept.Token)
	assert.False(t, ok, "renaming does not extend the session")
}

func TestProvider_UnsubscribeClosesChannel(t *testing.T) {
	p, _, _ := newTestProvider(t)
	events, cancel := p.Subscribe()
	cancel()
	cancel()

	_, open := <-events
	assert.False(t, open)

	p.emit(EventSignedIn, core.Session{UserID: "u"})
}

func TestProvider_ProfileAndDeleteAccount(t *testing.T) {
	p, st, _ := newTestProvider(t)
	ctx := context.Background()

	_, err := p.SignUp(ctx, "ada@example.com", "correct horse", "Ada")
	require.NoError(t, err)
	s1, err := p.SignIn(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)
	s2, err := p.SignIn(ctx, "ada@example.com", "correct horse")
	require.NoError(t, err)

	u, err := p.UpdateProfile(ctx, s1, "  Ada Lovelace ")
	require.NoError(t, err)
	assert.Equal(t, "Ada Lovelace", u.Name)
	refreshed, ok := p.Current(s2.Token)
	require.True(t, ok)
	assert.Equal(t, "Ada Lovelace", refreshed.Name)

	_, err = p.UpdateProfile(ctx, s1, " ")
	assert.ErrorIs(t, err, core.ErrEmptyName)

	_, err = st.CreateTransaction(ctx, core.Transaction{
		UserID: s1.UserID, Kind: core.KindExpense, Amount: decimal.NewFromInt(3),
		Category: "Food", Date: time.Date(2024, 6, 2, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)

	require.NoError(t, p.DeleteAccount(ctx, s1))

	_, ok = p.Current(s1.Token)
	assert.False(t, ok)
	_, ok = p.Current(s2.Token)
	assert.False(t, ok)

	_, err = p.Profile(ctx, s1)
	assert.ErrorIs(t, err, core.ErrNotFound)
	left, err := st.ListTransactions(ctx, core.KindExpense, s1.UserID, nil)
	require.NoError(t, err)
	assert.Empty(t, left)

	_, err = p.SignIn(ctx, "ada@example.com", "correct horse")
	assert.ErrorIs(t, err, core.ErrInvalidCredentials)
}
