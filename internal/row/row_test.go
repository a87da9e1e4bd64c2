package row

import (
	"context"
	"image"
	"image/color"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/henri123lemoine/frontpage/internal/event"
	"github.com/henri123lemoine/frontpage/internal/imageload"
	"github.com/henri123lemoine/frontpage/internal/submission"
	"github.com/henri123lemoine/frontpage/internal/subscription"
)

type fakeLoader struct {
	mu       sync.Mutex
	requests []imageload.Request
}

func (f *fakeLoader) Load(ctx context.Context, req imageload.Request) (*imageload.Picture, error) {
	f.mu.Lock()
	f.requests = append(f.requests, req)
	f.mu.Unlock()
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	img.Set(0, 0, color.White)
	return imageload.Fit(img, req), nil
}

func params(id uint64) submission.Params {
	return submission.Params{
		AdapterID:       id,
		Title:           submission.StyledText{Text: "A title", Key: "1:0"},
		Byline:          submission.StyledText{Text: "r/golang", Key: "0"},
		Thumbnail:       &submission.Thumbnail{RemoteURL: "https://img.example/a.png"},
		ImageStyle:      submission.ImageStyleThumbnail,
		ThumbnailOnLeft: false,
		SwipeActions: submission.SwipeActions{
			Start: []submission.SwipeAction{submission.SwipeOptions},
			End:   []submission.SwipeAction{submission.SwipeSave, submission.SwipeUpvote},
		},
		Submission: submission.Submission{ID: "t3_a", Title: "A title", Permalink: "/r/golang/a"},
	}
}

func item(p submission.Params) SubmissionItem {
	return SubmissionItem{submission.MustNew(p)}
}

// visual strips the bookkeeping of a row so two renders can be compared.
func visual(r *Row) Row {
	v := *r
	v.model = nil
	v.full, v.partial, v.applied = 0, 0, 0
	v.Thumb.gen, v.Thumb.cancel = 0, nil
	v.Large.gen, v.Large.cancel = 0, nil
	return v
}

// run executes cmd synchronously and returns its message.
func run(cmd tea.Cmd) tea.Msg {
	if cmd == nil {
		return nil
	}
	return cmd()
}

func TestRenderFullIsIdempotent(t *testing.T) {
	sr := NewSubmissionRenderer(&fakeLoader{})
	m := item(params(1))
	r := New(m)

	sr.RenderFull(r, m)
	once := visual(r)
	sr.RenderFull(r, m)

	assert.Equal(t, once, visual(r))
	full, partial := r.Renders()
	assert.Equal(t, 2, full)
	assert.Zero(t, partial)
}

func TestRenderFullCancelsInFlightLoad(t *testing.T) {
	sr := NewSubmissionRenderer(&fakeLoader{})
	m := item(params(1))
	r := New(m)

	first := sr.RenderFull(r, m)
	require.NotNil(t, first)
	require.True(t, r.Thumb.Loading())
	second := sr.RenderFull(r, m)

	// The first load was cancelled before it ran and yields nothing.
	assert.Nil(t, run(first))

	msg, ok := run(second).(ImageLoadedMsg)
	require.True(t, ok)
	fade := r.ApplyImage(msg)
	assert.NotNil(t, fade)
	assert.NotNil(t, r.Thumb.Picture)
	assert.False(t, r.Thumb.Loading())
}

func TestStaleImageResultIsIgnored(t *testing.T) {
	sr := NewSubmissionRenderer(&fakeLoader{})
	m := item(params(1))
	r := New(m)

	msg := ImageLoadedMsg{Row: r.ID, Slot: SlotThumbnail, Gen: 0}
	sr.RenderFull(r, m)
	assert.Nil(t, r.ApplyImage(msg))
	assert.Nil(t, r.Thumb.Picture)
}

func TestImageFadesIn(t *testing.T) {
	sr := NewSubmissionRenderer(&fakeLoader{})
	m := item(params(1))
	r := New(m)

	msg := run(sr.RenderFull(r, m)).(ImageLoadedMsg)
	r.ApplyImage(msg)
	assert.Zero(t, r.Thumb.Alpha)

	fade := FadeMsg{Row: r.ID, Slot: SlotThumbnail, Gen: msg.Gen}
	steps := 0
	for cmd := r.ApplyFade(fade); cmd != nil; cmd = r.ApplyFade(fade) {
		steps++
	}
	assert.Equal(t, 1.0, r.Thumb.Alpha)
	assert.Equal(t, 3, steps)
}

func TestThumbnailPolicy(t *testing.T) {
	tests := []struct {
		name       string
		mutate     func(*submission.Params)
		thumb      bool
		large      bool
		static     string
		wantLoad   bool
		wantShape  imageload.Shape
		wantWidth  int
		wantHeight int
	}{
		{
			name: "static token wins",
			mutate: func(p *submission.Params) {
				p.Thumbnail = &submission.Thumbnail{Static: submission.StaticSelfPost}
				p.ImageStyle = submission.ImageStyleLarge
			},
			thumb:  true,
			static: submission.StaticSelfPost,
		},
		{
			name:   "style none hides both",
			mutate: func(p *submission.Params) { p.ImageStyle = submission.ImageStyleNone },
		},
		{
			name:       "thumbnail loads a circle",
			mutate:     func(p *submission.Params) {},
			thumb:      true,
			wantLoad:   true,
			wantShape:  imageload.ShapeCircle,
			wantWidth:  8,
			wantHeight: 4,
		},
		{
			name:       "large loads a center crop",
			mutate:     func(p *submission.Params) { p.ImageStyle = submission.ImageStyleLarge },
			large:      true,
			wantLoad:   true,
			wantShape:  imageload.ShapeCenterCrop,
			wantWidth:  48,
			wantHeight: 12,
		},
		{
			name:   "no thumbnail",
			mutate: func(p *submission.Params) { p.Thumbnail = nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			loader := &fakeLoader{}
			sr := NewSubmissionRenderer(loader)
			p := params(1)
			tt.mutate(&p)
			m := item(p)
			r := New(m)

			cmd := sr.RenderFull(r, m)
			assert.Equal(t, tt.thumb, r.Thumb.Visible, "thumb visible")
			assert.Equal(t, tt.large, r.Large.Visible, "large visible")
			assert.Equal(t, tt.static, r.Thumb.Static)
			if !tt.wantLoad {
				assert.Nil(t, cmd)
				return
			}
			require.NotNil(t, cmd)
			run(cmd)
			require.Len(t, loader.requests, 1)
			assert.Equal(t, tt.wantShape, loader.requests[0].Shape)
			assert.Equal(t, tt.wantWidth, loader.requests[0].Width)
			assert.Equal(t, tt.wantHeight, loader.requests[0].Height)
		})
	}
}

func TestRenderPartialAppliesOnlyChangedAspects(t *testing.T) {
	sr := NewSubmissionRenderer(&fakeLoader{})
	prev := item(params(1))
	r := New(prev)
	sr.RenderFull(r, prev)
	r.Byline = "sentinel"

	p := params(1)
	p.Title = submission.StyledText{Text: "New title", Key: "1:0"}
	next := item(p)

	payload, changed := sr.Diff(prev, next)
	require.True(t, changed)
	cmd := sr.RenderPartial(r, next, []any{payload})

	assert.Nil(t, cmd, "title change must not reload the thumbnail")
	assert.Equal(t, "New title", r.Title)
	assert.Equal(t, "sentinel", r.Byline, "byline untouched")
	assert.Equal(t, next, r.Model())
}

func TestRenderPartialUnionsBatch(t *testing.T) {
	sr := NewSubmissionRenderer(&fakeLoader{})
	base := item(params(1))
	r := New(base)
	sr.RenderFull(r, base)

	p := params(1)
	p.IsSaved = true
	p.ThumbnailOnLeft = true
	next := item(p)

	batch := []any{
		submission.Changes(submission.ChangeSaveStatus),
		submission.Changes(submission.ChangeSwipeActions, submission.ChangeSaveStatus),
		submission.Changes(submission.ChangeThumbnailPosition),
	}
	cmd := sr.RenderPartial(r, next, batch)

	want := submission.Changes(
		submission.ChangeSaveStatus,
		submission.ChangeSwipeActions,
		submission.ChangeThumbnailPosition,
	)
	assert.Equal(t, want, r.LastApplied())
	assert.True(t, r.ThumbnailLeft)
	assert.NotNil(t, cmd, "position change re-applies the thumbnail")
	_, partial := r.Renders()
	assert.Equal(t, 1, partial)
}

func TestRenderPartialUnknownFlagPanics(t *testing.T) {
	sr := NewSubmissionRenderer(nil)
	m := item(params(1))
	r := New(m)

	assert.Panics(t, func() {
		sr.RenderPartial(r, m, []any{submission.ChangeSet(1 << 7)})
	})
	assert.Panics(t, func() {
		sr.RenderPartial(r, m, []any{"TITLE"})
	})
}

func TestRegistryDispatch(t *testing.T) {
	reg := NewRegistry(NewSubmissionRenderer(nil), SubredditRenderer{})
	assert.Equal(t, TypeSubmission, reg.For(TypeSubmission).Type())
	assert.Equal(t, TypeSubreddit, reg.For(TypeSubreddit).Type())
	assert.Panics(t, func() { reg.For(Type(99)) })
	assert.Panics(t, func() { NewRegistry(SubredditRenderer{}, SubredditRenderer{}) })
}

func TestSubredditIdentity(t *testing.T) {
	stored := SubredditItem{subscription.Entry{Name: "Golang"}}
	lower := SubredditItem{subscription.Entry{Name: "golang", Default: true}}
	synthetic := SubredditItem{subscription.Entry{Name: "golang", Synthetic: true}}

	assert.Equal(t, stored.AdapterID(), lower.AdapterID())
	assert.NotEqual(t, stored.AdapterID(), synthetic.AdapterID())
}

func TestSubredditRenderer(t *testing.T) {
	var sr SubredditRenderer
	prev := SubredditItem{subscription.Entry{Name: "golang"}}
	r := New(prev)
	sr.RenderFull(r, prev)
	assert.Equal(t, "golang", r.Label)
	assert.Empty(t, r.Markers)

	_, changed := sr.Diff(prev, prev)
	assert.False(t, changed)

	next := SubredditItem{subscription.Entry{Name: "golang", Default: true, Pending: subscription.PendingInFlight}}
	payload, changed := sr.Diff(prev, next)
	require.True(t, changed)
	sr.RenderPartial(r, next, []any{payload})

	assert.Equal(t, []string{MarkerDefault}, r.Markers)
	assert.Equal(t, subscription.PendingInFlight, r.Pending)
}

func TestGestures(t *testing.T) {
	sr := NewSubmissionRenderer(nil)
	p := params(1)
	p.IsThumbnailClickable = true
	m := item(p)
	r := New(m)
	sr.RenderFull(r, m)

	ev, ok := r.ClickThumbnail()
	require.True(t, ok)
	assert.IsType(t, event.ThumbnailClicked{}, ev)

	p.IsThumbnailClickable = false
	m = item(p)
	sr.RenderFull(r, m)
	ev, ok = r.ClickThumbnail()
	require.True(t, ok)
	assert.Equal(t, event.SubmissionClicked{AdapterID: 1, Submission: p.Submission}, ev)

	swipe, ok := r.PerformSwipe(submission.SwipeUpvote)
	require.True(t, ok)
	assert.Equal(t, submission.SwipeUpvote, swipe.Action)
	_, ok = r.PerformSwipe(submission.SwipeDownvote)
	assert.False(t, ok, "downvote is not offered")

	chip := New(SubredditItem{subscription.Entry{Name: "foox", Synthetic: true}})
	SubredditRenderer{}.RenderFull(chip, chip.Model())
	ev, ok = chip.Click()
	require.True(t, ok)
	assert.Equal(t, event.SubredditSelected{Name: "foox", New: true}, ev)
}
