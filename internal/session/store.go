package session

import (
	"context"
	"time"

	"github.com/amishk599/smartresume/internal/model"
)

// Store keeps form state by session id between interactions.
type Store interface {
	// Load returns the stored form and true, or false when id is unknown.
	Load(ctx context.Context, id string) (model.FormState, bool, error)
	Save(ctx context.Context, id string, form model.FormState) error
	Delete(ctx context.Context, id string) error
	// Cleanup removes sessions not saved within olderThan and returns how many went.
	Cleanup(ctx context.Context, olderThan time.Duration) (int, error)
	Close() error
}
