package amqp

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"fintrack/internal/core"
)

// LedgerOp names the write that produced a LedgerEvent.
type LedgerOp string

const (
	OpCreated LedgerOp = "created"
	OpUpdated LedgerOp = "updated"
	OpDeleted LedgerOp = "deleted"
)

// WindowRef is the wire form of core.Window.
type WindowRef struct {
	Month int `json:"month"`
	Year  int `json:"year"`
}

// LedgerEvent announces a write to the expense or income ledger. It carries
// only identifiers and the affected windows; consumers reload what they
// need from the store.
type LedgerEvent struct {
	Op        LedgerOp    `json:"op"`
	Kind      core.Kind   `json:"kind"`
	UserID    string      `json:"user_id"`
	RecordID  string      `json:"record_id"`
	Windows   []WindowRef `json:"windows"`
	Timestamp time.Time   `json:"timestamp"`
}

// NewLedgerEvent builds an event for t. Duplicate windows are collapsed, so
// an update that keeps the record in the same month lists it once.
func NewLedgerEvent(op LedgerOp, t core.Transaction, windows ...core.Window) *LedgerEvent {
	ev := &LedgerEvent{
		Op:        op,
		Kind:      t.Kind,
		UserID:    t.UserID,
		RecordID:  t.ID,
		Timestamp: time.Now().UTC(),
	}
	seen := make(map[core.Window]bool, len(windows))
	for _, w := range windows {
		if seen[w] || !w.Valid() {
			continue
		}
		seen[w] = true
		ev.Windows = append(ev.Windows, WindowRef{Month: w.Month, Year: w.Year})
	}
	return ev
}

// CoreWindows converts the wire windows back to core.Window values.
func (e *LedgerEvent) CoreWindows() []core.Window {
	out := make([]core.Window, len(e.Windows))
	for i, w := range e.Windows {
		out[i] = core.Window{Month: w.Month, Year: w.Year}
	}
	return out
}

func (e *LedgerEvent) Validate() error {
	switch e.Op {
	case OpCreated, OpUpdated, OpDeleted:
	default:
		return fmt.Errorf("unknown ledger op %q", e.Op)
	}
	if !e.Kind.Valid() {
		return core.ErrInvalidKind
	}
	if e.UserID == "" {
		return errors.New("missing user id")
	}
	return nil
}

func (e *LedgerEvent) ToJSON() ([]byte, error) {
	return json.Marshal(e)
}

// LedgerEventFromJSON decodes and validates an event body.
func LedgerEventFromJSON(data []byte) (*LedgerEvent, error) {
	var ev LedgerEvent
	if err := json.Unmarshal(data, &ev); err != nil {
		return nil, err
	}
	if err := ev.Validate(); err != nil {
		return nil, err
	}
	return &ev, nil
}
