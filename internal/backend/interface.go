// Package backend selects and builds the persistence and messaging backend
// from configuration.
package backend

import (
	"context"

	"fintrack/internal/amqp"
	"fintrack/internal/store"
)

type BackendType string

const (
	MemoryBackend BackendType = "memory"
	SQLiteBackend BackendType = "sqlite"
)

func (t BackendType) IsValid() bool {
	switch t {
	case MemoryBackend, SQLiteBackend:
		return true
	default:
		return false
	}
}

func (t BackendType) String() string {
	return string(t)
}

type CleanupFunc func() error

// BackendResult is a ready store plus the optional broker client.
type BackendResult struct {
	Store store.Store
	// AMQP is nil when no broker is configured or it was unreachable.
	AMQP    *amqp.Client
	Cleanup CleanupFunc
}

// Pinger is implemented by stores that can report liveness.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Factory interface {
	CreateBackend(ctx context.Context, config Config) (*BackendResult, error)
}

type Config struct {
	Type BackendType

	SQLiteDBPath string

	AMQPURL      string
	AMQPExchange string
	AMQPQueue    string
	// RequireAMQP turns an unreachable broker into an error instead of a
	// warning. The worker sets it; the API server does not.
	RequireAMQP bool
}
