// Package row renders list rows. Every row model carries a type tag that
// selects its Renderer; a renderer draws a model onto a Row either fully or
// partially from a batch of diff payloads.
package row

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/zeebo/xxh3"

	"github.com/henri123lemoine/frontpage/internal/submission"
	"github.com/henri123lemoine/frontpage/internal/subscription"
)

// Type tags a row model with the renderer that draws it.
type Type int

const (
	TypeSubmission Type = iota + 1
	TypeSubreddit
)

func (t Type) String() string {
	switch t {
	case TypeSubmission:
		return "submission"
	case TypeSubreddit:
		return "subreddit"
	}
	return fmt.Sprintf("Type(%d)", int(t))
}

// UIModel is a row model the list can hold.
type UIModel interface {
	Type() Type
	AdapterID() uint64
}

// SubmissionItem is a feed row.
type SubmissionItem struct {
	submission.ViewModel
}

func (SubmissionItem) Type() Type { return TypeSubmission }

// SubredditItem is a chip in the subreddit picker.
type SubredditItem struct {
	subscription.Entry
}

func (SubredditItem) Type() Type { return TypeSubreddit }

const syntheticMarker = 1 << 63

// AdapterID derives the identity from the lowercased name. A synthetic entry
// never shares an identity with the stored entry of the same name.
func (i SubredditItem) AdapterID() uint64 {
	id := xxh3.HashString("r/" + strings.ToLower(i.Name))
	if i.Synthetic {
		id |= syntheticMarker
	} else {
		id &^= syntheticMarker
	}
	if id == 0 {
		id = 1
	}
	return id
}

// Renderer draws the models of one type.
type Renderer interface {
	Type() Type
	// Diff compares two revisions of the same row. changed is false when
	// nothing needs drawing.
	Diff(prev, next UIModel) (payload any, changed bool)
	// RenderFull sets every visual aspect of r from m.
	RenderFull(r *Row, m UIModel) tea.Cmd
	// RenderPartial applies the batch of payloads accumulated since the
	// last render. Each aspect is applied once.
	RenderPartial(r *Row, m UIModel, payloads []any) tea.Cmd
	// Rebind attaches a survivor's latest model to r when Diff found
	// nothing to draw, refreshing the aspects no change flag covers.
	Rebind(r *Row, m UIModel)
}

// Registry maps type tags to renderers.
type Registry struct {
	byType map[Type]Renderer
}

// NewRegistry registers rs. Registering a tag twice panics.
func NewRegistry(rs ...Renderer) *Registry {
	g := &Registry{byType: make(map[Type]Renderer, len(rs))}
	for _, r := range rs {
		if _, dup := g.byType[r.Type()]; dup {
			panic(fmt.Sprintf("row: renderer for %s registered twice", r.Type()))
		}
		g.byType[r.Type()] = r
	}
	return g
}

// For returns the renderer of t and panics when none is registered.
func (g *Registry) For(t Type) Renderer {
	r, ok := g.byType[t]
	if !ok {
		panic(fmt.Sprintf("row: no renderer for %s", t))
	}
	return r
}
