package app

import (
	"github.com/henri123lemoine/frontpage/internal/submission"
	"github.com/henri123lemoine/frontpage/internal/subscription"
)

// Message types for the bubbletea app.

// DefaultLoadedMsg is sent when the default subreddit is known.
type DefaultLoadedMsg struct {
	Name string
	Err  error
}

// FeedLoadedMsg is sent when a subreddit's submissions are loaded.
type FeedLoadedMsg struct {
	Subreddit   string
	Submissions []submission.Submission
	Err         error
}

// SubscriptionChangedMsg is sent when a chip option has been applied to the
// store.
type SubscriptionChangedMsg struct {
	Option Option
	Entry  subscription.Entry
	Err    error
}

// ErrorMsg is a general error message.
type ErrorMsg struct {
	Err error
}
