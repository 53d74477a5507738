package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fintrack/internal/amqp"
	"fintrack/internal/core"
)

func TestLedgerService_CreateValidatesBeforeStore(t *testing.T) {
	st := newFlakyStore()
	pub := &recordingPublisher{}
	svc := NewLedgerService(core.KindExpense, st, pub, nil)
	ctx := context.Background()

	tests := []struct {
		name string
		in   core.TransactionInput
		want error
	}{
		{"negative amount", core.TransactionInput{Amount: dec("-5"), Category: "Food", Date: on(2024, 6, 1)}, core.ErrInvalidAmount},
		{"blank category", core.TransactionInput{Amount: dec("5"), Category: "  ", Date: on(2024, 6, 1)}, core.ErrEmptyCategory},
		{"missing date", core.TransactionInput{Amount: dec("5"), Category: "Food"}, core.ErrInvalidDate},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(ctx, alice, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}

	all, err := svc.List(ctx, alice, nil)
	require.NoError(t, err)
	assert.Empty(t, all)
	assert.Empty(t, pub.all())
}

func TestLedgerService_CRUDPublishesEvents(t *testing.T) {
	st := newFlakyStore()
	pub := &recordingPublisher{}
	svc := NewLedgerService(core.KindIncome, st, pub, nil)
	ctx := context.Background()

	id, err := svc.Create(ctx, alice, core.TransactionInput{Amount: dec("500"), Category: " Salary ", Date: on(2024, 6, 1)})
	require.NoError(t, err)

	got, err := svc.Get(ctx, alice, id)
	require.NoError(t, err)
	assert.Equal(t, core.KindIncome, got.Kind)
	assert.Equal(t, "Salary", got.Category)

	_, err = svc.Get(ctx, bob, id)
	assert.ErrorIs(t, err, core.ErrNotFound)

	moved := on(2024, 7, 2)
	require.NoError(t, svc.Update(ctx, id, core.TransactionPatch{Date: &moved}))

	w := core.Window{Month: 6, Year: 2024}
	inJune, err := svc.List(ctx, alice, &w)
	require.NoError(t, err)
	assert.Empty(t, inJune)

	require.NoError(t, svc.Delete(ctx, id))
	require.NoError(t, svc.Delete(ctx, id))

	events := pub.all()
	require.Len(t, events, 3, "the second delete is a no-op")
	assert.Equal(t, amqp.OpCreated, events[0].Op)
	assert.Equal(t, []amqp.WindowRef{{Month: 6, Year: 2024}}, events[0].Windows)
	assert.Equal(t, amqp.OpUpdated, events[1].Op)
	assert.Equal(t, []amqp.WindowRef{{Month: 6, Year: 2024}, {Month: 7, Year: 2024}}, events[1].Windows)
	assert.Equal(t, amqp.OpDeleted, events[2].Op)
	assert.Equal(t, []amqp.WindowRef{{Month: 7, Year: 2024}}, events[2].Windows)
	for _, ev := range events {
		assert.Equal(t, "alice", ev.UserID)
		assert.Equal(t, id, ev.RecordID)
		assert.Equal(t, core.KindIncome, ev.Kind)
	}
}

func TestLedgerService_PublishFailureDoesNotFailWrite(t *testing.T) {
	st := newFlakyStore()
	pub := &recordingPublisher{err: errors.New("broker unreachable")}
	svc := NewLedgerService(core.KindExpense, st, pub, nil)

	id, err := svc.Create(context.Background(), alice, core.TransactionInput{Amount: dec("1"), Category: "Food", Date: on(2024, 6, 1)})
	require.NoError(t, err)
	assert.NotEmpty(t, id)
	assert.Len(t, pub.all(), 1)
}

func TestLedgerService_NilPublisher(t *testing.T) {
	svc := NewLedgerService(core.KindExpense, newFlakyStore(), nil, nil)
	_, err := svc.Create(context.Background(), alice, core.TransactionInput{Amount: dec("1"), Category: "Food", Date: on(2024, 6, 1)})
	require.NoError(t, err)
}

func TestLedgerService_StoreFailures(t *testing.T) {
	st := newFlakyStore()
	svc := NewLedgerService(core.KindExpense, st, nil, nil)
	ctx := context.Background()

	st.failCreate = true
	_, err := svc.Create(ctx, alice, core.TransactionInput{Amount: dec("1"), Category: "Food", Date: on(2024, 6, 1)})
	assert.ErrorIs(t, err, errStoreDown)

	st.failList[core.KindExpense] = true
	_, err = svc.List(ctx, alice, nil)
	assert.ErrorIs(t, err, errStoreDown)

	amount := dec("2")
	assert.ErrorIs(t, svc.Update(ctx, "missing", core.TransactionPatch{Amount: &amount}), core.ErrNotFound)
}
