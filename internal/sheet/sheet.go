// Package sheet drives the subreddit picker between its Browse and Manage
// states. Each transition animates the sheet height, swaps the shadow margin
// and list padding once past the halfway point, and cross-fades the edit and
// manage affordances one after the other.
package sheet

import (
	"fmt"
	"math"
	"time"

	tea "github.com/charmbracelet/bubbletea"
)

// State is the mode of the sheet.
type State int

const (
	BrowseSubs State = iota
	ManageSubs
)

func (s State) String() string {
	switch s {
	case BrowseSubs:
		return "browse"
	case ManageSubs:
		return "manage"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Geometry holds the sizes the sheet animates between, in lines.
type Geometry struct {
	ContainerHeight  int
	TopOffset        int
	CollapsedHeight  int
	ShadowMargin     int
	SaveButtonHeight int
}

// ExpandedHeight is the height of the sheet in Manage mode.
func (g Geometry) ExpandedHeight() int {
	return max(g.ContainerHeight-g.TopOffset, g.CollapsedHeight)
}

// Options tune the animation.
type Options struct {
	Duration      time.Duration
	FrameInterval time.Duration
	Easing        Bezier
}

// DefaultOptions returns a 300ms FastOutSlowIn animation at about 60 fps.
func DefaultOptions() Options {
	return Options{
		Duration:      300 * time.Millisecond,
		FrameInterval: 16 * time.Millisecond,
		Easing:        FastOutSlowIn,
	}
}

// midFrame is the linear progress applied when a frame would otherwise jump
// to the end of the animation before the spacing swap happened.
const midFrame = 0.75

// Layout is what the view needs to draw the sheet.
type Layout struct {
	State        State
	Height       int
	ShadowMargin int
	ListPadding  int
	EditAlpha    float64
	ManageAlpha  float64
	SaveVisible  bool
	Animating    bool
}

// FrameMsg advances the transition it was scheduled for.
type FrameMsg struct {
	ID   uint64
	Time time.Time
}

// Machine is the sheet state machine. Use it from the update loop only.
type Machine struct {
	geo  Geometry
	opts Options

	state State
	id    uint64

	height   float64
	from, to float64
	start    time.Time
	running  bool

	heightDone bool
	swapped    bool
	swapAt     float64

	margin  int
	padding int

	editAlpha, manageAlpha float64
	outFrom, inFrom        float64
	fadesDone              bool

	saveVisible bool
}

// New returns a machine resting in BrowseSubs.
func New(geo Geometry, opts Options) *Machine {
	if opts.Duration <= 0 {
		opts.Duration = DefaultOptions().Duration
	}
	if opts.FrameInterval <= 0 {
		opts.FrameInterval = DefaultOptions().FrameInterval
	}
	if opts.Easing == (Bezier{}) {
		opts.Easing = FastOutSlowIn
	}
	return &Machine{
		geo:       geo,
		opts:      opts,
		state:     BrowseSubs,
		height:    float64(geo.CollapsedHeight),
		margin:    geo.ShadowMargin,
		editAlpha: 1,
	}
}

// State returns the current or target state.
func (m *Machine) State() State { return m.state }

// Animating reports whether a transition is running.
func (m *Machine) Animating() bool { return m.running }

// ToManage starts the transition to ManageSubs at now.
func (m *Machine) ToManage(now time.Time) tea.Cmd { return m.transition(ManageSubs, now) }

// ToBrowse starts the transition to BrowseSubs at now.
func (m *Machine) ToBrowse(now time.Time) tea.Cmd { return m.transition(BrowseSubs, now) }

// Toggle starts the transition to the other state.
func (m *Machine) Toggle(now time.Time) tea.Cmd {
	if m.state == BrowseSubs {
		return m.ToManage(now)
	}
	return m.ToBrowse(now)
}

// transition retargets the machine. Asking for the state it already rests in
// or heads to does nothing; asking for the other one restarts from the
// current height and alphas.
func (m *Machine) transition(target State, now time.Time) tea.Cmd {
	if m.state == target {
		return nil
	}

	m.state = target
	m.id++
	m.from = m.height
	m.to = m.targetHeight()
	m.start = now
	m.running = true
	m.heightDone = false
	m.swapped = false
	m.swapAt = 0
	m.fadesDone = false

	out, in := m.fades()
	m.outFrom, m.inFrom = *out, *in

	if target == BrowseSubs {
		m.saveVisible = false
	}
	return m.frame()
}

func (m *Machine) targetHeight() float64 {
	if m.state == ManageSubs {
		return float64(m.geo.ExpandedHeight())
	}
	return float64(m.geo.CollapsedHeight)
}

// fades returns the affordance fading out and the one fading in.
func (m *Machine) fades() (out, in *float64) {
	if m.state == ManageSubs {
		return &m.editAlpha, &m.manageAlpha
	}
	return &m.manageAlpha, &m.editAlpha
}

func (m *Machine) frame() tea.Cmd {
	id := m.id
	return tea.Tick(m.opts.FrameInterval, func(t time.Time) tea.Msg {
		return FrameMsg{ID: id, Time: t}
	})
}

// Update advances the transition a frame belongs to. Frames of superseded
// transitions are dropped.
func (m *Machine) Update(msg FrameMsg) tea.Cmd {
	if msg.ID != m.id || !m.running {
		return nil
	}
	if m.Step(msg.Time) {
		return m.frame()
	}
	return nil
}

// Step applies the frame at now and reports whether the transition still
// runs.
func (m *Machine) Step(now time.Time) bool {
	if !m.running {
		return false
	}
	elapsed := now.Sub(m.start)
	dur := m.opts.Duration

	t := progress(elapsed, dur)
	f := m.opts.Easing.Ease(t)
	if !m.swapped && f >= 1 {
		// Never swap on the final frame.
		t = midFrame
		f = m.opts.Easing.Ease(t)
	}

	m.height = m.from + (m.to-m.from)*f
	if !m.swapped && f > 0.5 {
		m.swap(f)
	}
	if t >= 1 && !m.heightDone {
		m.heightDone = true
		m.height = m.to
		m.saveVisible = m.state == ManageSubs
	}

	m.stepFades(elapsed)

	m.running = !m.heightDone || !m.fadesDone
	return m.running
}

func (m *Machine) swap(at float64) {
	m.swapped = true
	m.swapAt = at
	if m.state == ManageSubs {
		m.margin = 0
		m.padding = m.geo.SaveButtonHeight
	} else {
		m.margin = m.geo.ShadowMargin
		m.padding = 0
	}
}

// stepFades fades the outgoing affordance to zero, then the incoming one to
// full, each over the transition duration.
func (m *Machine) stepFades(elapsed time.Duration) {
	out, in := m.fades()
	dur := m.opts.Duration

	t1 := progress(elapsed, dur)
	*out = m.outFrom * (1 - m.opts.Easing.Ease(t1))
	if t1 < 1 {
		return
	}
	t2 := progress(elapsed-dur, dur)
	*in = m.inFrom + (1-m.inFrom)*m.opts.Easing.Ease(t2)
	m.fadesDone = t2 >= 1
}

func progress(elapsed, dur time.Duration) float64 {
	if dur <= 0 {
		return 1
	}
	return math.Min(math.Max(float64(elapsed)/float64(dur), 0), 1)
}

// SwapProgress returns the animated fraction at which the last transition
// swapped margin and padding.
func (m *Machine) SwapProgress() (float64, bool) {
	return m.swapAt, m.swapped
}

// SetGeometry updates the sizes. A resting sheet snaps to its new height; a
// running transition retargets.
func (m *Machine) SetGeometry(g Geometry) {
	m.geo = g
	m.to = m.targetHeight()
	if m.running {
		return
	}
	m.height = m.to
	if m.state == ManageSubs {
		m.margin, m.padding = 0, g.SaveButtonHeight
	} else {
		m.margin, m.padding = g.ShadowMargin, 0
	}
}

// Geometry returns the current sizes.
func (m *Machine) Geometry() Geometry { return m.geo }

// Layout returns the current frame.
func (m *Machine) Layout() Layout {
	return Layout{
		State:        m.state,
		Height:       int(math.Round(m.height)),
		ShadowMargin: m.margin,
		ListPadding:  m.padding,
		EditAlpha:    m.editAlpha,
		ManageAlpha:  m.manageAlpha,
		SaveVisible:  m.saveVisible,
		Animating:    m.running,
	}
}
