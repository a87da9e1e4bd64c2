package row

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/henri123lemoine/frontpage/internal/imageload"
	"github.com/henri123lemoine/frontpage/internal/submission"
)

// SubmissionRenderer draws feed rows.
type SubmissionRenderer struct {
	Loader ImageLoader

	// Sizes in cells.
	ThumbWidth, ThumbHeight int
	LargeWidth, LargeHeight int
}

// NewSubmissionRenderer returns a renderer with the default slot sizes.
func NewSubmissionRenderer(loader ImageLoader) *SubmissionRenderer {
	return &SubmissionRenderer{
		Loader:      loader,
		ThumbWidth:  8,
		ThumbHeight: 4,
		LargeWidth:  48,
		LargeHeight: 12,
	}
}

func (*SubmissionRenderer) Type() Type { return TypeSubmission }

func asSubmission(m UIModel) submission.ViewModel {
	item, ok := m.(SubmissionItem)
	if !ok {
		panic(fmt.Sprintf("row: submission renderer got %T", m))
	}
	return item.ViewModel
}

func (*SubmissionRenderer) Diff(prev, next UIModel) (any, bool) {
	changes := submission.Diff(asSubmission(prev), asSubmission(next))
	return changes, !changes.Empty()
}

func (sr *SubmissionRenderer) RenderFull(r *Row, m UIModel) tea.Cmd {
	vm := asSubmission(m)
	r.Release()

	r.model = m
	r.Title = vm.Title().Text
	r.Byline = vm.Byline().Text
	r.Background = vm.Background()
	sr.applySwipe(r, vm)
	sr.applyPosition(r, vm)
	cmd := sr.applyThumbnail(r, vm)

	r.full++
	return cmd
}

func (sr *SubmissionRenderer) RenderPartial(r *Row, m UIModel, payloads []any) tea.Cmd {
	vm := asSubmission(m)

	batch := make([]submission.ChangeSet, 0, len(payloads))
	for _, p := range payloads {
		changes, ok := p.(submission.ChangeSet)
		if !ok {
			panic(fmt.Sprintf("row: unexpected submission payload %T", p))
		}
		batch = append(batch, changes)
	}
	changes := submission.Union(batch...)
	if unknown := changes.Unknown(); !unknown.Empty() {
		panic(fmt.Sprintf("row: no partial render for change %#x", uint8(unknown)))
	}

	var swipe, position, thumbnail bool
	for _, f := range changes.Flags() {
		switch f {
		case submission.ChangeTitle:
			r.Title = vm.Title().Text
		case submission.ChangeByline:
			r.Byline = vm.Byline().Text
		case submission.ChangeSaveStatus, submission.ChangeSwipeActions:
			swipe = true
		case submission.ChangeThumbnailPosition:
			position = true
			thumbnail = true
		case submission.ChangeThumbnail:
			thumbnail = true
		default:
			panic(fmt.Sprintf("row: no partial render for %s", f))
		}
	}

	sr.Rebind(r, m)
	if swipe {
		sr.applySwipe(r, vm)
	}
	if position {
		sr.applyPosition(r, vm)
	}
	var cmd tea.Cmd
	if thumbnail {
		cmd = sr.applyThumbnail(r, vm)
	}

	r.partial++
	r.applied = changes
	return cmd
}

// Rebind refreshes the model and background of r. Gestures read the
// submission from the model.
func (*SubmissionRenderer) Rebind(r *Row, m UIModel) {
	r.model = m
	r.Background = asSubmission(m).Background()
}

func (*SubmissionRenderer) applySwipe(r *Row, vm submission.ViewModel) {
	r.Swipe = vm.SwipeActions()
}

func (*SubmissionRenderer) applyPosition(r *Row, vm submission.ViewModel) {
	r.ThumbnailLeft = vm.ThumbnailOnLeft()
}

// applyThumbnail resolves both image slots. A static token wins over the
// image style; remote images load asynchronously.
func (sr *SubmissionRenderer) applyThumbnail(r *Row, vm submission.ViewModel) tea.Cmd {
	r.Thumb.reset()
	r.Large.reset()

	thumb, ok := vm.Thumbnail()
	if !ok {
		return nil
	}

	if thumb.Static != "" {
		r.Thumb.Visible = true
		r.Thumb.Static = thumb.Static
		r.Thumb.Tint = thumb.Tint
		r.Thumb.Background = thumb.Background
		r.Thumb.Alpha = 1
		return nil
	}

	switch vm.ImageStyle() {
	case submission.ImageStyleThumbnail:
		r.Thumb.Visible = true
		r.Thumb.URL = thumb.RemoteURL
		r.Thumb.Shape = imageload.ShapeCircle
		r.Thumb.Background = thumb.Background
		return sr.load(r, SlotThumbnail, imageload.Request{
			URL:    thumb.RemoteURL,
			Width:  sr.ThumbWidth,
			Height: sr.ThumbHeight,
			Shape:  imageload.ShapeCircle,
		})
	case submission.ImageStyleLarge:
		r.Large.Visible = true
		r.Large.URL = thumb.RemoteURL
		r.Large.Shape = imageload.ShapeCenterCrop
		r.Large.Background = thumb.Background
		return sr.load(r, SlotLarge, imageload.Request{
			URL:    thumb.RemoteURL,
			Width:  sr.LargeWidth,
			Height: sr.LargeHeight,
			Shape:  imageload.ShapeCenterCrop,
		})
	}
	return nil
}

func (sr *SubmissionRenderer) load(r *Row, id SlotID, req imageload.Request) tea.Cmd {
	if sr.Loader == nil {
		return nil
	}
	return r.load(id, sr.Loader, req)
}
