package search

import (
	"context"
	"sync"

	"github.com/henri123lemoine/frontpage/internal/subscription"
)

// Result is one emission of Run.
type Result struct {
	Term    string
	Entries []subscription.Entry
}

// Run consumes queries from in and emits candidate lists on the returned
// channel. A query arriving while an earlier lookup runs cancels it, and a
// superseded result is never sent after its successor's. The channel closes
// once in is closed and the last lookup finished, or when ctx is done.
func (p *Pipeline) Run(ctx context.Context, in <-chan string) <-chan Result {
	out := make(chan Result)

	var (
		sendMu sync.Mutex
		wg     sync.WaitGroup
	)

	// latest is guarded by sendMu so a worker's gen check and send happen
	// atomically against the start of the next query.
	var latest uint64

	go func() {
		defer func() {
			wg.Wait()
			close(out)
		}()

		for {
			var raw string
			var ok bool
			select {
			case <-ctx.Done():
				p.Close()
				return
			case raw, ok = <-in:
			}
			if !ok {
				return
			}

			term := Normalize(raw)
			if p.opts.BeforeQuery != nil {
				p.opts.BeforeQuery(term)
			}

			// Unblock a worker stuck sending a result nobody reads yet.
			p.cancelInFlight()

			sendMu.Lock()
			qctx, gen, started := p.begin(ctx)
			latest = gen
			sendMu.Unlock()
			if !started {
				return
			}

			wg.Add(1)
			go func() {
				defer wg.Done()
				entries, ok := p.lookup(qctx, term)
				if !ok {
					return
				}

				sendMu.Lock()
				defer sendMu.Unlock()
				if gen != latest {
					return
				}
				select {
				case out <- Result{Term: term, Entries: entries}:
				case <-qctx.Done():
				case <-ctx.Done():
				}
			}()
		}
	}()

	return out
}
