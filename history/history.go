// Package history keeps a log of evaluated calculations so they can be
// listed and exported.
package history

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/remiges-tech/numspeak/transcript"
)

// Limits for Recent.
const (
	DefaultLimit = 20
	MaxLimit     = 100
)

// ErrNoArchive is returned by Archiver.Export when no object store is configured.
var ErrNoArchive = errors.New("history: no archive configured")

// Entry is one evaluated calculation.
type Entry struct {
	ID         uuid.UUID `json:"id"`
	Expression string    `json:"expression"`
	Result     string    `json:"result"`
	Words      string    `json:"words"`
	System     string    `json:"system"`
	User       string    `json:"user,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

// NewEntry records t as spoken in system by user.
func NewEntry(t transcript.Transcript, system, user string) Entry {
	return Entry{
		ID:         uuid.New(),
		Expression: t.Expression,
		Result:     t.Result,
		Words:      t.Words,
		System:     system,
		User:       user,
		CreatedAt:  time.Now().UTC(),
	}
}

// Store persists entries. Recent returns the newest entries first.
type Store interface {
	Add(ctx context.Context, e Entry) error
	Recent(ctx context.Context, limit int) ([]Entry, error)
}

// ClampLimit maps a requested limit into [1, MaxLimit]; zero or less means DefaultLimit.
func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	}
	return limit
}

// NopStore discards entries.
type NopStore struct{}

func (NopStore) Add(context.Context, Entry) error { return nil }

func (NopStore) Recent(context.Context, int) ([]Entry, error) { return nil, nil }
