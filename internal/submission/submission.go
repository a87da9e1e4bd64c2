// Package submission holds the feed row view model and the diff engine that
// decides which parts of a row must be re-rendered between two revisions.
package submission

import (
	"strings"
	"time"

	"github.com/zeebo/xxh3"
)

// Vote is the user's vote on a submission.
type Vote int

const (
	VoteNone Vote = iota
	VoteUp
	VoteDown
)

// Submission is the domain object a feed row represents.
type Submission struct {
	ID           string
	Title        string
	Author       string
	Subreddit    string
	Permalink    string
	URL          string
	ThumbnailURL string
	Score        int
	Vote         Vote
	Comments     int
	Saved        bool
	IsSelf       bool
	Stickied     bool
	Created      time.Time
}

// AdapterID derives the stable row identity for a submission id.
func AdapterID(id string) uint64 {
	return xxh3.HashString(strings.ToLower(id))
}

// VotedScore returns the score with the user's own vote folded in.
func (s Submission) VotedScore() int {
	switch s.Vote {
	case VoteUp:
		return s.Score + 1
	case VoteDown:
		return s.Score - 1
	}
	return s.Score
}
