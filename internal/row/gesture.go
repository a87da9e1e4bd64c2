package row

import (
	"slices"

	"github.com/henri123lemoine/frontpage/internal/event"
	"github.com/henri123lemoine/frontpage/internal/submission"
)

// Click returns the event for activating r: a submission click for feed rows
// and a selection for chips.
func (r *Row) Click() (any, bool) {
	switch m := r.model.(type) {
	case SubmissionItem:
		return event.SubmissionClicked{AdapterID: r.ID, Submission: m.Submission()}, true
	case SubredditItem:
		return event.SubredditSelected{Name: m.Name, New: m.Synthetic}, true
	}
	return nil, false
}

// ClickThumbnail returns the event for activating the image slot of a feed
// row. A row whose thumbnail is not clickable behaves as a plain click.
func (r *Row) ClickThumbnail() (any, bool) {
	m, ok := r.model.(SubmissionItem)
	if !ok {
		return r.Click()
	}
	if !m.IsThumbnailClickable() {
		return r.Click()
	}
	return event.ThumbnailClicked{AdapterID: r.ID, Submission: m.Submission()}, true
}

// PerformSwipe returns the event for choosing a swipe action. Actions not
// currently offered by the row are refused.
func (r *Row) PerformSwipe(a submission.SwipeAction) (event.SwipePerformed, bool) {
	m, ok := r.model.(SubmissionItem)
	if !ok {
		return event.SwipePerformed{}, false
	}
	if !slices.Contains(r.Swipe.Start, a) && !slices.Contains(r.Swipe.End, a) {
		return event.SwipePerformed{}, false
	}
	return event.SwipePerformed{AdapterID: r.ID, Action: a, Submission: m.Submission()}, true
}
