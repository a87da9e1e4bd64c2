// Package subscription stores the user's subreddit subscriptions and exposes
// the operations the picker needs: search, default handling, hiding and
// unsubscribing.
package subscription

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// PendingState tracks a subscription change that has not settled yet.
type PendingState int

const (
	PendingNone PendingState = iota
	PendingInFlight
	PendingFailed
)

func (p PendingState) String() string {
	switch p {
	case PendingInFlight:
		return "in-flight"
	case PendingFailed:
		return "failed"
	}
	return "none"
}

// Entry is one subscription as shown in the picker.
type Entry struct {
	Name    string
	Pending PendingState
	Hidden  bool

	// Default is derived from the store's default pointer at query time.
	Default bool

	// Synthetic entries are injected by search for a term with no exact
	// match. They are never persisted by the store itself.
	Synthetic bool
}

// Key returns the case-folded name used for identity.
func (e Entry) Key() string {
	return strings.ToLower(e.Name)
}

// ErrNotFound is returned when an operation targets an unknown subscription.
var ErrNotFound = errors.New("subscription not found")

// Store is the backing store of subscriptions.
type Store interface {
	// Search returns subscriptions whose name matches term. An empty term
	// matches everything.
	Search(ctx context.Context, term string, includeHidden bool) ([]Entry, error)

	// Default returns the name of the default subreddit.
	Default(ctx context.Context) (string, error)
	SetDefault(ctx context.Context, name string) error
	ResetDefault(ctx context.Context) error

	SetHidden(ctx context.Context, name string, hidden bool) error
	Subscribe(ctx context.Context, name string) error
	Unsubscribe(ctx context.Context, name string) error

	Close() error
}

// DefaultSubreddits seeds an empty store.
var DefaultSubreddits = []string{
	"AskReddit",
	"golang",
	"linux",
	"news",
	"pics",
	"programming",
	"science",
	"worldnews",
}

// FrontPage is the pseudo-subreddit the default resets to.
const FrontPage = "frontpage"

// Seed subscribes to names when the store is empty.
func Seed(ctx context.Context, s Store, names []string) error {
	existing, err := s.Search(ctx, "", true)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}
	for _, n := range names {
		if err := s.Subscribe(ctx, n); err != nil {
			return err
		}
	}
	return nil
}

// Open opens the store named by backend ("sqlite" or "file") at path.
func Open(backend, path string) (Store, error) {
	switch backend {
	case "sqlite", "":
		s, err := OpenSQLite(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	case "file":
		s, err := OpenFile(path)
		if err != nil {
			return nil, err
		}
		return s, nil
	}
	return nil, fmt.Errorf("unknown store backend %q", backend)
}
