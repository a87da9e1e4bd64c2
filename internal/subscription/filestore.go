package subscription

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"sync"

	"github.com/gofrs/flock"
	"github.com/sahilm/fuzzy"
)

// fileData is the on-disk layout of a FileStore.
type fileData struct {
	Default       string      `json:"default,omitempty"`
	Subscriptions []fileEntry `json:"subscriptions"`
}

type fileEntry struct {
	Name    string       `json:"name"`
	Pending PendingState `json:"pending,omitempty"`
	Hidden  bool         `json:"hidden,omitempty"`
}

// FileStore keeps subscriptions in a JSON file. Readers take a shared file
// lock and writers an exclusive one, so several processes can share it.
type FileStore struct {
	path string
	lock *flock.Flock
	mu   sync.Mutex
}

// OpenFile returns a store backed by the file at path. The file is created
// on first write.
func OpenFile(path string) (*FileStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	return &FileStore{path: path, lock: flock.New(path + ".lock")}, nil
}

// Close releases the lock file handle.
func (s *FileStore) Close() error {
	return s.lock.Close()
}

func (s *FileStore) read() (fileData, error) {
	var data fileData
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return data, nil
		}
		return data, err
	}
	if err := json.Unmarshal(raw, &data); err != nil {
		return data, fmt.Errorf("decode %s: %w", s.path, err)
	}
	return data, nil
}

// load reads the file under a shared lock.
func (s *FileStore) load() (fileData, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.RLock(); err != nil {
		return fileData{}, err
	}
	defer s.lock.Unlock()
	return s.read()
}

// update runs fn on the current contents under an exclusive lock and writes
// the result atomically.
func (s *FileStore) update(fn func(*fileData) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.lock.Lock(); err != nil {
		return err
	}
	defer s.lock.Unlock()

	data, err := s.read()
	if err != nil {
		return err
	}
	if err := fn(&data); err != nil {
		return err
	}

	raw, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return err
	}
	tmpPath := s.path + ".tmp"
	if err := os.WriteFile(tmpPath, raw, 0600); err != nil {
		return err
	}
	return os.Rename(tmpPath, s.path)
}

// entrySource implements fuzzy.Source over subscription names.
type entrySource []fileEntry

func (e entrySource) String(i int) string { return e[i].Name }

func (e entrySource) Len() int { return len(e) }

// Search ranks names by fuzzy match quality. An empty term lists everything
// alphabetically.
func (s *FileStore) Search(ctx context.Context, term string, includeHidden bool) ([]Entry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	data, err := s.load()
	if err != nil {
		return nil, err
	}

	var visible entrySource
	for _, fe := range data.Subscriptions {
		if fe.Hidden && !includeHidden {
			continue
		}
		visible = append(visible, fe)
	}

	var out []Entry
	if term == "" {
		slices.SortFunc(visible, func(a, b fileEntry) int {
			return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		})
		for _, fe := range visible {
			out = append(out, fe.entry())
		}
		return out, nil
	}

	for _, match := range fuzzy.FindFrom(term, visible) {
		out = append(out, visible[match.Index].entry())
	}
	return out, nil
}

func (fe fileEntry) entry() Entry {
	return Entry{Name: fe.Name, Pending: fe.Pending, Hidden: fe.Hidden}
}

// Default returns the stored default, or "" when none is set.
func (s *FileStore) Default(ctx context.Context) (string, error) {
	data, err := s.load()
	if err != nil {
		return "", err
	}
	return data.Default, nil
}

// SetDefault points the default at name.
func (s *FileStore) SetDefault(ctx context.Context, name string) error {
	return s.update(func(d *fileData) error {
		d.Default = name
		return nil
	})
}

// ResetDefault removes the default pointer.
func (s *FileStore) ResetDefault(ctx context.Context) error {
	return s.update(func(d *fileData) error {
		d.Default = ""
		return nil
	})
}

// SetHidden updates the hidden flag of name.
func (s *FileStore) SetHidden(ctx context.Context, name string, hidden bool) error {
	return s.update(func(d *fileData) error {
		i := d.index(name)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		d.Subscriptions[i].Hidden = hidden
		return nil
	})
}

// Subscribe adds name; subscribing twice is a no-op.
func (s *FileStore) Subscribe(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return fmt.Errorf("subscribe: empty name")
	}
	return s.update(func(d *fileData) error {
		if d.index(name) >= 0 {
			return nil
		}
		d.Subscriptions = append(d.Subscriptions, fileEntry{Name: name})
		return nil
	})
}

// Unsubscribe removes name.
func (s *FileStore) Unsubscribe(ctx context.Context, name string) error {
	return s.update(func(d *fileData) error {
		i := d.index(name)
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		d.Subscriptions = slices.Delete(d.Subscriptions, i, i+1)
		return nil
	})
}

func (d *fileData) index(name string) int {
	return slices.IndexFunc(d.Subscriptions, func(fe fileEntry) bool {
		return strings.EqualFold(fe.Name, name)
	})
}
