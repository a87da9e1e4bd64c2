package row

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/henri123lemoine/frontpage/internal/imageload"
	"github.com/henri123lemoine/frontpage/internal/submission"
	"github.com/henri123lemoine/frontpage/internal/subscription"
)

// ImageLoader loads remote images for rows.
type ImageLoader interface {
	Load(ctx context.Context, req imageload.Request) (*imageload.Picture, error)
}

// SlotID names an image slot of a row.
type SlotID int

const (
	SlotThumbnail SlotID = iota
	SlotLarge
)

const (
	fadeStep     = 0.25
	fadeInterval = 40 * time.Millisecond
)

// Slot is one image area of a row.
type Slot struct {
	Visible    bool
	Static     string
	Tint       string
	Background string
	URL        string
	Shape      imageload.Shape
	Picture    *imageload.Picture
	Alpha      float64

	gen    uint64
	cancel context.CancelFunc
}

// Loading reports whether a load for the slot is in flight.
func (s *Slot) Loading() bool { return s.cancel != nil }

// reset cancels any in-flight load and hides the slot. The generation keeps
// counting so late results of the cancelled load are dropped.
func (s *Slot) reset() {
	if s.cancel != nil {
		s.cancel()
	}
	*s = Slot{gen: s.gen + 1}
}

// Row holds the visual elements of one list row. Only a Renderer writes the
// visual fields.
type Row struct {
	ID   uint64
	Type Type

	Title         string
	Byline        string
	Background    string
	Swipe         submission.SwipeActions
	ThumbnailLeft bool
	Thumb         Slot
	Large         Slot

	Label   string
	Markers []string
	Pending subscription.PendingState
	Focused bool

	model   UIModel
	full    int
	partial int
	applied submission.ChangeSet
}

// New returns an empty row for m. Nothing is drawn until a renderer runs.
func New(m UIModel) *Row {
	return &Row{ID: m.AdapterID(), Type: m.Type(), model: m}
}

// Model returns the model last rendered onto r.
func (r *Row) Model() UIModel { return r.model }

// Renders returns how often r was drawn fully and partially.
func (r *Row) Renders() (full, partial int) { return r.full, r.partial }

// LastApplied returns the aspects applied by the latest partial render of a
// submission row.
func (r *Row) LastApplied() submission.ChangeSet { return r.applied }

// Release cancels every in-flight load of r.
func (r *Row) Release() {
	r.Thumb.reset()
	r.Large.reset()
}

func (r *Row) slot(id SlotID) *Slot {
	if id == SlotLarge {
		return &r.Large
	}
	return &r.Thumb
}

// ImageLoadedMsg delivers the result of a slot load.
type ImageLoadedMsg struct {
	Row     uint64
	Slot    SlotID
	Gen     uint64
	Picture *imageload.Picture
	Err     error
}

// FadeMsg advances the fade-in of a loaded slot.
type FadeMsg struct {
	Row  uint64
	Slot SlotID
	Gen  uint64
}

// load starts loading req into the slot. Any earlier load of the slot is
// cancelled first.
func (r *Row) load(id SlotID, loader ImageLoader, req imageload.Request) tea.Cmd {
	s := r.slot(id)
	if s.cancel != nil {
		s.cancel()
	}
	s.gen++
	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	rowID, gen := r.ID, s.gen
	return func() tea.Msg {
		pic, err := loader.Load(ctx, req)
		if ctx.Err() != nil {
			return nil
		}
		return ImageLoadedMsg{Row: rowID, Slot: id, Gen: gen, Picture: pic, Err: err}
	}
}

// ApplyImage stores a finished load and starts its fade-in. Results of
// superseded loads are ignored.
func (r *Row) ApplyImage(msg ImageLoadedMsg) tea.Cmd {
	s := r.slot(msg.Slot)
	if msg.Row != r.ID || msg.Gen != s.gen || s.cancel == nil {
		return nil
	}
	s.cancel()
	s.cancel = nil
	if msg.Err != nil || msg.Picture == nil {
		s.Visible = false
		return nil
	}
	s.Picture = msg.Picture
	s.Alpha = 0
	return fadeTick(r.ID, msg.Slot, s.gen)
}

// ApplyFade advances a fade-in by one step.
func (r *Row) ApplyFade(msg FadeMsg) tea.Cmd {
	s := r.slot(msg.Slot)
	if msg.Row != r.ID || msg.Gen != s.gen || s.Picture == nil {
		return nil
	}
	s.Alpha = min(s.Alpha+fadeStep, 1)
	if s.Alpha >= 1 {
		return nil
	}
	return fadeTick(r.ID, msg.Slot, s.gen)
}

func fadeTick(row uint64, slot SlotID, gen uint64) tea.Cmd {
	return tea.Tick(fadeInterval, func(time.Time) tea.Msg {
		return FadeMsg{Row: row, Slot: slot, Gen: gen}
	})
}
