// Package store persists chat sessions behind a driver-selectable interface.
package store

import (
	"context"

	"github.com/sells-group/leadflow-cli/internal/model"
)

// SessionFilter specifies criteria for listing sessions.
type SessionFilter struct {
	Temperature model.Temperature `json:"temperature,omitempty"`
	Limit       int               `json:"limit,omitempty"`
	Offset      int               `json:"offset,omitempty"`
}

// Store defines the persistence interface for chat sessions. GetSession
// returns (nil, nil) when the id is unknown so callers can load-or-create
// without error inspection.
type Store interface {
	// Sessions
	GetSession(ctx context.Context, id string) (*model.Session, error)
	SaveSession(ctx context.Context, session *model.Session) error
	ListSessions(ctx context.Context, filter SessionFilter) ([]model.Session, error)
	DeleteSession(ctx context.Context, id string) error

	// Lifecycle
	Migrate(ctx context.Context) error
	Close() error
}
