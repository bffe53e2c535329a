// Package storage defines the conversation store contract shared by
// the memory and postgres adapters, plus their common sentinel errors.
package storage

import (
	"context"
	"errors"
	"time"

	"github.com/plauder-dev/plauder/pkg/api"
)

// Sentinel errors for store operations.
var (
	// ErrNotFound is returned when a conversation does not exist.
	ErrNotFound = errors.New("conversation not found")
)

// Record is a persisted conversation with its metadata.
type Record struct {
	// ID is the conversation identifier ("conv_" prefix).
	ID string `json:"id"`

	// Title is a short human label, usually derived from the first
	// user message.
	Title string `json:"title"`

	// Model is the backend model the conversation ran against.
	Model string `json:"model"`

	Messages []api.Message `json:"messages"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// ListOptions controls pagination of List results.
type ListOptions struct {
	// Limit caps the number of records returned. Zero or negative
	// means the default of 20; the hard ceiling is 100.
	Limit int

	// After is a cursor: only records updated strictly before the
	// record with this ID are returned.
	After string
}

// EffectiveLimit resolves the limit against default and ceiling.
func (o ListOptions) EffectiveLimit() int {
	limit := o.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	return limit
}

// ConversationStore persists conversations between sessions. Save
// upserts: conversations grow as turns complete and are rewritten in
// place.
type ConversationStore interface {
	Save(ctx context.Context, rec *Record) error
	Get(ctx context.Context, id string) (*Record, error)
	Delete(ctx context.Context, id string) error

	// List returns records ordered by update time, newest first.
	List(ctx context.Context, opts ListOptions) ([]*Record, error)

	HealthCheck(ctx context.Context) error
	Close() error
}
