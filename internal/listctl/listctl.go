// Package listctl owns an ordered, identity-keyed list of row models and
// decides, per row, whether it needs a full render, a partial render or
// nothing at all.
package listctl

import (
	"fmt"
	"slices"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/henri123lemoine/frontpage/internal/row"
)

// Update summarizes what a Submit changed.
type Update struct {
	Added   []uint64
	Removed []uint64
	Changed []uint64
	Moved   bool
}

// Empty reports whether the submitted list equals the current one.
func (u Update) Empty() bool {
	return len(u.Added) == 0 && len(u.Removed) == 0 && len(u.Changed) == 0 && !u.Moved
}

// Result counts the render work done by a Flush.
type Result struct {
	Full    int
	Partial int
	Evicted int
}

// Controller is the only writer of its rows. It is not safe for concurrent
// use; call it from the Bubble Tea update loop.
type Controller struct {
	reg *row.Registry

	order  []uint64
	models map[uint64]row.UIModel
	rows   map[uint64]*row.Row

	pendingFull    map[uint64]bool
	pendingPartial map[uint64][]any
	evicted        []*row.Row

	animate     bool
	highlighted map[uint64]bool
	padding     int
	cursor      int
	focus       uint64
}

// New returns an empty controller drawing rows with reg.
func New(reg *row.Registry) *Controller {
	return &Controller{
		reg:            reg,
		models:         make(map[uint64]row.UIModel),
		rows:           make(map[uint64]*row.Row),
		pendingFull:    make(map[uint64]bool),
		pendingPartial: make(map[uint64][]any),
		highlighted:    make(map[uint64]bool),
		animate:        true,
	}
}

// Submit replaces the list with models. Work is queued until Flush. A
// duplicate identity in models panics.
func (c *Controller) Submit(models []row.UIModel) Update {
	var u Update

	next := make([]uint64, 0, len(models))
	seen := make(map[uint64]bool, len(models))
	for _, m := range models {
		id := m.AdapterID()
		if seen[id] {
			panic(fmt.Sprintf("listctl: duplicate row identity %d", id))
		}
		seen[id] = true
		next = append(next, id)

		prev, ok := c.models[id]
		switch {
		case !ok:
			c.rows[id] = row.New(m)
			c.pendingFull[id] = true
			u.Added = append(u.Added, id)
		case prev.Type() != m.Type():
			c.evicted = append(c.evicted, c.rows[id])
			c.rows[id] = row.New(m)
			c.pendingFull[id] = true
			delete(c.pendingPartial, id)
			u.Changed = append(u.Changed, id)
		default:
			payload, changed := c.reg.For(m.Type()).Diff(prev, m)
			if changed {
				c.pendingPartial[id] = append(c.pendingPartial[id], payload)
				u.Changed = append(u.Changed, id)
			} else if !c.pendingFull[id] {
				c.reg.For(m.Type()).Rebind(c.rows[id], m)
			}
		}
		c.models[id] = m
	}

	for _, id := range c.order {
		if seen[id] {
			continue
		}
		c.evicted = append(c.evicted, c.rows[id])
		delete(c.rows, id)
		delete(c.models, id)
		delete(c.pendingFull, id)
		delete(c.pendingPartial, id)
		u.Removed = append(u.Removed, id)
	}

	u.Moved = moved(c.order, next, seen)
	c.order = next
	c.clampCursor()
	return u
}

// moved reports whether the survivors kept their relative order.
func moved(prev, next []uint64, seen map[uint64]bool) bool {
	survivors := make([]uint64, 0, len(prev))
	for _, id := range prev {
		if seen[id] {
			survivors = append(survivors, id)
		}
	}
	i := 0
	for _, id := range next {
		if i < len(survivors) && survivors[i] == id {
			i++
			continue
		}
		if slices.Contains(survivors[i:], id) {
			return true
		}
	}
	return false
}

// Flush drains the queued work. Rows waiting for a full render drop their
// partial payloads; every other row receives one partial render with the
// whole batch.
func (c *Controller) Flush() (Result, tea.Cmd) {
	var res Result
	var cmds []tea.Cmd

	for _, r := range c.evicted {
		r.Release()
		res.Evicted++
	}
	c.evicted = nil

	clear(c.highlighted)
	for _, id := range c.order {
		r, m := c.rows[id], c.models[id]
		switch {
		case c.pendingFull[id]:
			cmds = append(cmds, c.reg.For(m.Type()).RenderFull(r, m))
			r.Focused = id == c.focus
			res.Full++
		case len(c.pendingPartial[id]) > 0:
			cmds = append(cmds, c.reg.For(m.Type()).RenderPartial(r, m, c.pendingPartial[id]))
			res.Partial++
		default:
			continue
		}
		if c.animate {
			c.highlighted[id] = true
		}
	}
	clear(c.pendingFull)
	clear(c.pendingPartial)

	return res, tea.Batch(cmds...)
}

// Pending reports whether Submit queued work that Flush has not drained.
func (c *Controller) Pending() bool {
	return len(c.pendingFull) > 0 || len(c.pendingPartial) > 0 || len(c.evicted) > 0
}

// ApplyImage routes an image result to its row. Results for evicted rows are
// dropped.
func (c *Controller) ApplyImage(msg row.ImageLoadedMsg) tea.Cmd {
	r, ok := c.rows[msg.Row]
	if !ok {
		return nil
	}
	return r.ApplyImage(msg)
}

// ApplyFade routes a fade step to its row.
func (c *Controller) ApplyFade(msg row.FadeMsg) tea.Cmd {
	r, ok := c.rows[msg.Row]
	if !ok {
		return nil
	}
	return r.ApplyFade(msg)
}

// Rows returns the rows in list order.
func (c *Controller) Rows() []*row.Row {
	out := make([]*row.Row, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.rows[id])
	}
	return out
}

// Row returns the row with the given identity.
func (c *Controller) Row(id uint64) (*row.Row, bool) {
	r, ok := c.rows[id]
	return r, ok
}

// Models returns the current models in list order.
func (c *Controller) Models() []row.UIModel {
	out := make([]row.UIModel, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.models[id])
	}
	return out
}

// Len returns the number of rows.
func (c *Controller) Len() int { return len(c.order) }

// SetAnimate toggles item-change highlighting.
func (c *Controller) SetAnimate(on bool) { c.animate = on }

// Animate reports whether item changes are highlighted.
func (c *Controller) Animate() bool { return c.animate }

// Highlighted reports whether id changed in the last Flush while animation
// was on.
func (c *Controller) Highlighted(id uint64) bool { return c.highlighted[id] }

// SetPadding sets the blank lines kept below the last row.
func (c *Controller) SetPadding(lines int) { c.padding = max(lines, 0) }

// Padding returns the blank lines kept below the last row.
func (c *Controller) Padding() int { return c.padding }

// SetFocus tints the row with identity id and clears any earlier tint. Zero
// clears the focus.
func (c *Controller) SetFocus(id uint64) {
	if r, ok := c.rows[c.focus]; ok {
		r.Focused = false
	}
	c.focus = id
	if r, ok := c.rows[id]; ok {
		r.Focused = true
	}
}

// Cursor returns the selected index.
func (c *Controller) Cursor() int { return c.cursor }

// MoveCursor moves the selection by delta, staying in bounds.
func (c *Controller) MoveCursor(delta int) {
	c.cursor += delta
	c.clampCursor()
}

// SetCursor selects index i, staying in bounds.
func (c *Controller) SetCursor(i int) {
	c.cursor = i
	c.clampCursor()
}

func (c *Controller) clampCursor() {
	c.cursor = max(min(c.cursor, len(c.order)-1), 0)
}

// Selected returns the row under the cursor.
func (c *Controller) Selected() (*row.Row, bool) {
	if len(c.order) == 0 {
		return nil, false
	}
	return c.rows[c.order[c.cursor]], true
}

// Close cancels every outstanding image load and forgets all rows.
func (c *Controller) Close() {
	for _, r := range c.rows {
		r.Release()
	}
	for _, r := range c.evicted {
		r.Release()
	}
	c.order = nil
	c.evicted = nil
	clear(c.rows)
	clear(c.models)
	clear(c.pendingFull)
	clear(c.pendingPartial)
	clear(c.highlighted)
	c.cursor = 0
}
