// Package event carries the outbound events of the feed and the picker to
// whoever subscribes: submission clicks, thumbnail clicks, swipe actions and
// subreddit selection.
package event

import (
	"context"
	"sync"

	"github.com/henri123lemoine/frontpage/internal/submission"
)

// SubmissionClicked is published when a feed row is activated.
type SubmissionClicked struct {
	AdapterID  uint64
	Submission submission.Submission
}

// ThumbnailClicked is published when the image slot of a row is activated
// and the row's thumbnail is clickable.
type ThumbnailClicked struct {
	AdapterID  uint64
	Submission submission.Submission
}

// SwipePerformed is published when a swipe action of a row is chosen.
type SwipePerformed struct {
	AdapterID  uint64
	Action     submission.SwipeAction
	Submission submission.Submission
}

// SubredditSelected is published when a subscription is picked.
type SubredditSelected struct {
	Name string
	// New is set when the name came from the search field or a synthetic
	// entry rather than an existing subscription.
	New bool
}

const bufferSize = 16

// Bus fans out published values to every live subscriber. Publish never
// blocks: a subscriber that falls behind loses events.
type Bus[T any] struct {
	mu     sync.RWMutex
	subs   map[chan T]struct{}
	closed bool
	done   chan struct{}
}

// NewBus returns an empty bus.
func NewBus[T any]() *Bus[T] {
	return &Bus[T]{subs: make(map[chan T]struct{}), done: make(chan struct{})}
}

// Subscribe returns a channel receiving every value published after the
// call. The channel is closed when ctx is done or the bus shuts down.
func (b *Bus[T]) Subscribe(ctx context.Context) <-chan T {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan T, bufferSize)
	if b.closed {
		close(ch)
		return ch
	}
	b.subs[ch] = struct{}{}

	go func() {
		select {
		case <-ctx.Done():
		case <-b.done:
			return
		}
		b.mu.Lock()
		defer b.mu.Unlock()
		if _, ok := b.subs[ch]; ok {
			delete(b.subs, ch)
			close(ch)
		}
	}()
	return ch
}

// Publish delivers v to every subscriber with buffer room.
func (b *Bus[T]) Publish(v T) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch := range b.subs {
		select {
		case ch <- v:
		default:
		}
	}
}

// Len returns the number of live subscribers.
func (b *Bus[T]) Len() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subs)
}

// Shutdown closes every subscriber channel. Later subscriptions receive a
// closed channel.
func (b *Bus[T]) Shutdown() {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}
	b.closed = true
	close(b.done)
	for ch := range b.subs {
		delete(b.subs, ch)
		close(ch)
	}
}

// Events groups the buses the app publishes on.
type Events struct {
	SubmissionClicked *Bus[SubmissionClicked]
	ThumbnailClicked  *Bus[ThumbnailClicked]
	SwipePerformed    *Bus[SwipePerformed]
	SubredditSelected *Bus[SubredditSelected]
}

// NewEvents returns a set of empty buses.
func NewEvents() *Events {
	return &Events{
		SubmissionClicked: NewBus[SubmissionClicked](),
		ThumbnailClicked:  NewBus[ThumbnailClicked](),
		SwipePerformed:    NewBus[SwipePerformed](),
		SubredditSelected: NewBus[SubredditSelected](),
	}
}

// Publish routes v to the bus of its type. It reports false for values no
// bus carries.
func (e *Events) Publish(v any) bool {
	switch v := v.(type) {
	case SubmissionClicked:
		e.SubmissionClicked.Publish(v)
	case ThumbnailClicked:
		e.ThumbnailClicked.Publish(v)
	case SwipePerformed:
		e.SwipePerformed.Publish(v)
	case SubredditSelected:
		e.SubredditSelected.Publish(v)
	default:
		return false
	}
	return true
}

// Shutdown closes every bus.
func (e *Events) Shutdown() {
	e.SubmissionClicked.Shutdown()
	e.ThumbnailClicked.Shutdown()
	e.SwipePerformed.Shutdown()
	e.SubredditSelected.Shutdown()
}
