package submission

import (
	"errors"
	"fmt"
	"slices"

	"github.com/charmbracelet/x/ansi"
)

// Construction errors returned by New.
var (
	ErrMissingID         = errors.New("view model needs a non-zero adapter id")
	ErrThumbnailSource   = errors.New("thumbnail has both a static token and a remote url")
	ErrMissingRemoteURL  = errors.New("image style needs a remote url")
	ErrUnknownImageStyle = errors.New("unknown image style")
)

// ImageStyle selects how a remote thumbnail is shown.
type ImageStyle int

const (
	ImageStyleNone ImageStyle = iota
	ImageStyleThumbnail
	ImageStyleLarge
)

func (s ImageStyle) String() string {
	switch s {
	case ImageStyleNone:
		return "none"
	case ImageStyleThumbnail:
		return "thumbnail"
	case ImageStyleLarge:
		return "large"
	}
	return fmt.Sprintf("ImageStyle(%d)", int(s))
}

// ParseImageStyle parses the config spelling of an image style.
func ParseImageStyle(s string) (ImageStyle, error) {
	switch s {
	case "none":
		return ImageStyleNone, nil
	case "thumbnail", "":
		return ImageStyleThumbnail, nil
	case "large":
		return ImageStyleLarge, nil
	}
	return ImageStyleNone, fmt.Errorf("%w: %q", ErrUnknownImageStyle, s)
}

// ScaleMode mirrors how an image is fitted into its slot.
type ScaleMode int

const (
	ScaleCenterInside ScaleMode = iota
	ScaleCenterCrop
	ScaleFitCenter
)

// StyledText is display text plus an equality key. Two values are equal when
// their visible text and keys match, regardless of styling escapes.
type StyledText struct {
	Text string
	Key  string
}

// Equal reports whether both values would render the same content.
func (t StyledText) Equal(o StyledText) bool {
	return t.Key == o.Key && ansi.Strip(t.Text) == ansi.Strip(o.Text)
}

// Thumbnail describes the image slot of a row. At most one of Static and
// RemoteURL drives rendering.
type Thumbnail struct {
	Static             string
	RemoteURL          string
	Background         string
	Scale              ScaleMode
	Tint               string
	ContentDescription string
}

// SwipeAction is a single action reachable by swiping a row.
type SwipeAction int

const (
	SwipeOptions SwipeAction = iota
	SwipeNewTab
	SwipeSave
	SwipeUnsave
	SwipeUpvote
	SwipeDownvote
)

func (a SwipeAction) String() string {
	switch a {
	case SwipeOptions:
		return "options"
	case SwipeNewTab:
		return "open"
	case SwipeSave:
		return "save"
	case SwipeUnsave:
		return "unsave"
	case SwipeUpvote:
		return "upvote"
	case SwipeDownvote:
		return "downvote"
	}
	return fmt.Sprintf("SwipeAction(%d)", int(a))
}

// SwipeActions is the action set shown on either edge of a row.
type SwipeActions struct {
	Start []SwipeAction
	End   []SwipeAction
}

// Equal compares both edges element-wise.
func (a SwipeActions) Equal(o SwipeActions) bool {
	return slices.Equal(a.Start, o.Start) && slices.Equal(a.End, o.End)
}

// Params carries every field of a ViewModel. Pass it to New.
type Params struct {
	AdapterID            uint64
	Title                StyledText
	Byline               StyledText
	Thumbnail            *Thumbnail
	IsThumbnailClickable bool
	Background           string
	IsSaved              bool
	ThumbnailOnLeft      bool
	ImageStyle           ImageStyle
	SwipeActions         SwipeActions
	Submission           Submission
}

// ViewModel is an immutable snapshot of one feed row.
type ViewModel struct {
	p Params
}

// New validates p and returns the view model.
func New(p Params) (ViewModel, error) {
	if p.AdapterID == 0 {
		return ViewModel{}, ErrMissingID
	}
	switch p.ImageStyle {
	case ImageStyleNone, ImageStyleThumbnail, ImageStyleLarge:
	default:
		return ViewModel{}, fmt.Errorf("%w: %d", ErrUnknownImageStyle, int(p.ImageStyle))
	}
	if t := p.Thumbnail; t != nil {
		if t.Static != "" && t.RemoteURL != "" {
			return ViewModel{}, ErrThumbnailSource
		}
		if t.Static == "" && t.RemoteURL == "" && p.ImageStyle != ImageStyleNone {
			return ViewModel{}, fmt.Errorf("%w: style %s", ErrMissingRemoteURL, p.ImageStyle)
		}
		cp := *t
		p.Thumbnail = &cp
	}
	p.SwipeActions = SwipeActions{
		Start: slices.Clone(p.SwipeActions.Start),
		End:   slices.Clone(p.SwipeActions.End),
	}
	return ViewModel{p: p}, nil
}

// MustNew is New for fixtures whose params are known to be valid.
func MustNew(p Params) ViewModel {
	vm, err := New(p)
	if err != nil {
		panic(err)
	}
	return vm
}

func (v ViewModel) AdapterID() uint64 { return v.p.AdapterID }
func (v ViewModel) Title() StyledText { return v.p.Title }
func (v ViewModel) Byline() StyledText { return v.p.Byline }
func (v ViewModel) IsThumbnailClickable() bool { return v.p.IsThumbnailClickable }
func (v ViewModel) Background() string { return v.p.Background }
func (v ViewModel) IsSaved() bool { return v.p.IsSaved }
func (v ViewModel) ThumbnailOnLeft() bool { return v.p.ThumbnailOnLeft }
func (v ViewModel) ImageStyle() ImageStyle { return v.p.ImageStyle }
func (v ViewModel) SwipeActions() SwipeActions { return v.p.SwipeActions }
func (v ViewModel) Submission() Submission { return v.p.Submission }

// Thumbnail returns the thumbnail and whether one is present.
func (v ViewModel) Thumbnail() (Thumbnail, bool) {
	if v.p.Thumbnail == nil {
		return Thumbnail{}, false
	}
	return *v.p.Thumbnail, true
}

// Params returns a copy of the fields, handy for deriving a revision.
func (v ViewModel) Params() Params {
	p := v.p
	if p.Thumbnail != nil {
		cp := *p.Thumbnail
		p.Thumbnail = &cp
	}
	p.SwipeActions = SwipeActions{
		Start: slices.Clone(p.SwipeActions.Start),
		End:   slices.Clone(p.SwipeActions.End),
	}
	return p
}

// Equal compares every field, including the underlying submission.
func (v ViewModel) Equal(o ViewModel) bool {
	return v.p.AdapterID == o.p.AdapterID &&
		v.p.Title.Equal(o.p.Title) &&
		v.p.Byline.Equal(o.p.Byline) &&
		thumbnailEqual(v.p.Thumbnail, o.p.Thumbnail) &&
		v.p.IsThumbnailClickable == o.p.IsThumbnailClickable &&
		v.p.Background == o.p.Background &&
		v.p.IsSaved == o.p.IsSaved &&
		v.p.ThumbnailOnLeft == o.p.ThumbnailOnLeft &&
		v.p.ImageStyle == o.p.ImageStyle &&
		v.p.SwipeActions.Equal(o.p.SwipeActions) &&
		v.p.Submission == o.p.Submission
}

func thumbnailEqual(a, b *Thumbnail) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}
