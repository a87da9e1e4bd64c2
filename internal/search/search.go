// Package search turns successive query strings into subscription candidate
// lists. Only the latest query is ever delivered: starting a query cancels
// the lookup of the previous one and bumps a generation that gates results.
package search

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/henri123lemoine/frontpage/internal/subscription"
)

// Searcher looks up subscriptions.
type Searcher interface {
	Search(ctx context.Context, term string, includeHidden bool) ([]subscription.Entry, error)
}

// Options configures a Pipeline.
type Options struct {
	// Debounce delays each lookup; a newer query cancels the wait.
	Debounce time.Duration
	// IncludeHidden is passed to every lookup.
	IncludeHidden bool
	// BeforeQuery runs synchronously at the start of every query.
	BeforeQuery func(term string)
	Logger      *slog.Logger
}

// Pipeline runs lookups with switch-latest semantics.
type Pipeline struct {
	searcher Searcher
	opts     Options
	log      *slog.Logger

	mu     sync.Mutex
	gen    uint64
	cancel context.CancelFunc
	closed bool
}

// New returns a pipeline over s.
func New(s Searcher, opts Options) *Pipeline {
	log := opts.Logger
	if log == nil {
		log = slog.New(slog.DiscardHandler)
	}
	return &Pipeline{searcher: s, opts: opts, log: log}
}

// ResultsMsg carries the candidates of one query.
type ResultsMsg struct {
	Gen     uint64
	Term    string
	Entries []subscription.Entry
}

// Normalize trims a raw query.
func Normalize(raw string) string {
	return strings.TrimSpace(raw)
}

// begin cancels the in-flight lookup and opens the next generation.
func (p *Pipeline) begin(parent context.Context) (context.Context, uint64, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	if p.closed {
		return nil, 0, false
	}
	p.gen++
	ctx, cancel := context.WithCancel(parent)
	p.cancel = cancel
	return ctx, p.gen, true
}

func (p *Pipeline) cancelInFlight() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
}

// Query starts a lookup for raw and returns the command delivering its
// ResultsMsg. A cancelled lookup delivers nothing.
func (p *Pipeline) Query(raw string) tea.Cmd {
	term := Normalize(raw)
	if p.opts.BeforeQuery != nil {
		p.opts.BeforeQuery(term)
	}

	ctx, gen, ok := p.begin(context.Background())
	if !ok {
		return nil
	}
	return func() tea.Msg {
		entries, ok := p.lookup(ctx, term)
		if !ok {
			return nil
		}
		return ResultsMsg{Gen: gen, Term: term, Entries: entries}
	}
}

// Accept returns the entries of msg when it belongs to the latest query.
// Call it from the same goroutine that calls Query.
func (p *Pipeline) Accept(msg ResultsMsg) ([]subscription.Entry, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || msg.Gen != p.gen {
		return nil, false
	}
	return msg.Entries, true
}

// Generation returns the generation of the latest query.
func (p *Pipeline) Generation() uint64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.gen
}

// Close cancels the in-flight lookup. Later queries do nothing.
func (p *Pipeline) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.closed = true
}

// lookup waits out the debounce and runs the search. It reports false when
// ctx was cancelled along the way. Search failures become empty results.
func (p *Pipeline) lookup(ctx context.Context, term string) ([]subscription.Entry, bool) {
	if d := p.opts.Debounce; d > 0 {
		timer := time.NewTimer(d)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, false
		case <-timer.C:
		}
	}

	entries, err := p.searcher.Search(ctx, term, p.opts.IncludeHidden)
	if ctx.Err() != nil {
		return nil, false
	}
	if err != nil {
		p.log.Warn("subscription search failed", "term", term, "err", err)
		entries = nil
	}
	return AppendSynthetic(entries, term), true
}

// AppendSynthetic appends a "create new" entry for term unless term is empty
// or some entry already matches it case-insensitively.
func AppendSynthetic(entries []subscription.Entry, term string) []subscription.Entry {
	if term == "" {
		return entries
	}
	for _, e := range entries {
		if strings.EqualFold(e.Name, term) {
			return entries
		}
	}
	out := make([]subscription.Entry, len(entries), len(entries)+1)
	copy(out, entries)
	return append(out, subscription.Entry{Name: term, Synthetic: true})
}
