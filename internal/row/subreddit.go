package row

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
)

// Marker labels shown next to a chip.
const (
	MarkerDefault = "default"
	MarkerHidden  = "hidden"
	MarkerNew     = "add"
)

// ChipChange names the aspects of a subreddit chip that changed.
type ChipChange uint8

const (
	ChipMarkers ChipChange = 1 << iota
	ChipPending
)

// SubredditRenderer draws picker chips.
type SubredditRenderer struct{}

func (SubredditRenderer) Type() Type { return TypeSubreddit }

func asSubreddit(m UIModel) SubredditItem {
	item, ok := m.(SubredditItem)
	if !ok {
		panic(fmt.Sprintf("row: subreddit renderer got %T", m))
	}
	return item
}

func (SubredditRenderer) Diff(prev, next UIModel) (any, bool) {
	a, b := asSubreddit(prev), asSubreddit(next)
	if a.AdapterID() != b.AdapterID() {
		panic(fmt.Sprintf("row: diff across subreddits %q and %q", a.Name, b.Name))
	}

	var c ChipChange
	if a.Default != b.Default || a.Hidden != b.Hidden || a.Synthetic != b.Synthetic || a.Name != b.Name {
		c |= ChipMarkers
	}
	if a.Pending != b.Pending {
		c |= ChipPending
	}
	return c, c != 0
}

func (SubredditRenderer) RenderFull(r *Row, m UIModel) tea.Cmd {
	item := asSubreddit(m)
	r.model = m
	applyMarkers(r, item)
	r.Pending = item.Pending
	r.full++
	return nil
}

func (SubredditRenderer) RenderPartial(r *Row, m UIModel, payloads []any) tea.Cmd {
	item := asSubreddit(m)

	var all ChipChange
	for _, p := range payloads {
		c, ok := p.(ChipChange)
		if !ok {
			panic(fmt.Sprintf("row: unexpected subreddit payload %T", p))
		}
		all |= c
	}
	if unknown := all &^ (ChipMarkers | ChipPending); unknown != 0 {
		panic(fmt.Sprintf("row: no partial render for chip change %#x", uint8(unknown)))
	}

	r.model = m
	if all&ChipMarkers != 0 {
		applyMarkers(r, item)
	}
	if all&ChipPending != 0 {
		r.Pending = item.Pending
	}
	r.partial++
	return nil
}

func (SubredditRenderer) Rebind(r *Row, m UIModel) {
	r.model = asSubreddit(m)
}

func applyMarkers(r *Row, item SubredditItem) {
	r.Label = item.Name
	r.Markers = r.Markers[:0]
	if item.Synthetic {
		r.Markers = append(r.Markers, MarkerNew)
	}
	if item.Default {
		r.Markers = append(r.Markers, MarkerDefault)
	}
	if item.Hidden {
		r.Markers = append(r.Markers, MarkerHidden)
	}
}
