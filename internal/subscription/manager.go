package subscription

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
)

// Manager implements the picker's view of the subscription store. The
// default pointer lives in the store; nothing here is process-global.
type Manager struct {
	store    Store
	log      *slog.Logger
	fallback string
}

// NewManager wraps store. fallback is reported as the default when none is
// set; an empty fallback means FrontPage.
func NewManager(store Store, logger *slog.Logger, fallback string) *Manager {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	if fallback == "" {
		fallback = FrontPage
	}
	return &Manager{store: store, log: logger, fallback: fallback}
}

// Search returns matching subscriptions with their Default flag filled in.
func (m *Manager) Search(ctx context.Context, term string, includeHidden bool) ([]Entry, error) {
	entries, err := m.store.Search(ctx, term, includeHidden)
	if err != nil {
		return nil, fmt.Errorf("search %q: %w", term, err)
	}
	def, err := m.Default(ctx)
	if err != nil {
		return nil, err
	}
	for i := range entries {
		entries[i].Default = strings.EqualFold(entries[i].Name, def)
	}
	return entries, nil
}

// Default returns the current default subreddit.
func (m *Manager) Default(ctx context.Context) (string, error) {
	def, err := m.store.Default(ctx)
	if err != nil {
		return "", fmt.Errorf("read default: %w", err)
	}
	if def == "" {
		return m.fallback, nil
	}
	return def, nil
}

// IsDefault reports whether e is the default subreddit. Read failures are
// logged and reported as false.
func (m *Manager) IsDefault(ctx context.Context, e Entry) bool {
	def, err := m.Default(ctx)
	if err != nil {
		m.log.Error("Couldn't read default subreddit", "error", err)
		return false
	}
	return strings.EqualFold(def, e.Name)
}

// SetAsDefault makes e the default subreddit.
func (m *Manager) SetAsDefault(ctx context.Context, e Entry) error {
	if err := m.store.SetDefault(ctx, e.Name); err != nil {
		return fmt.Errorf("set default %s: %w", e.Name, err)
	}
	return nil
}

// ResetDefault clears the default pointer.
func (m *Manager) ResetDefault(ctx context.Context) error {
	if err := m.store.ResetDefault(ctx); err != nil {
		return fmt.Errorf("reset default: %w", err)
	}
	return nil
}

// SetHidden hides or unhides e. Hiding the default also clears the default.
func (m *Manager) SetHidden(ctx context.Context, e Entry, hidden bool) error {
	if hidden {
		if err := m.resetIfDefault(ctx, e); err != nil {
			return err
		}
	}
	if err := m.store.SetHidden(ctx, e.Name, hidden); err != nil {
		return fmt.Errorf("set hidden %s: %w", e.Name, err)
	}
	return nil
}

// Subscribe adds e, typically a synthetic entry the user chose to keep.
func (m *Manager) Subscribe(ctx context.Context, e Entry) error {
	if err := m.store.Subscribe(ctx, e.Name); err != nil {
		return fmt.Errorf("subscribe %s: %w", e.Name, err)
	}
	return nil
}

// Unsubscribe removes e, clearing the default first when e is the default.
func (m *Manager) Unsubscribe(ctx context.Context, e Entry) error {
	if err := m.resetIfDefault(ctx, e); err != nil {
		return err
	}
	if err := m.store.Unsubscribe(ctx, e.Name); err != nil {
		return fmt.Errorf("unsubscribe %s: %w", e.Name, err)
	}
	return nil
}

func (m *Manager) resetIfDefault(ctx context.Context, e Entry) error {
	def, err := m.store.Default(ctx)
	if err != nil {
		return fmt.Errorf("read default: %w", err)
	}
	if def != "" && strings.EqualFold(def, e.Name) {
		return m.ResetDefault(ctx)
	}
	return nil
}
