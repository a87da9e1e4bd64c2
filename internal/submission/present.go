package submission

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// Static thumbnail tokens used when a submission has no usable remote image.
const (
	StaticSelfPost = "self"
	StaticLink     = "link"
	StaticNSFW     = "nsfw"
	StaticSpoiler  = "spoiler"
)

// Background tokens.
const BackgroundStickied = "stickied"

var (
	upvotedTitle   = lipgloss.NewStyle().Foreground(lipgloss.Color("208"))
	downvotedTitle = lipgloss.NewStyle().Foreground(lipgloss.Color("111"))
	plainTitle     = lipgloss.NewStyle().Foreground(lipgloss.Color("252"))
	bylineStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

// PresentOptions are the user preferences that shape a row.
type PresentOptions struct {
	ImageStyle      ImageStyle
	ThumbnailOnLeft bool
	Now             time.Time
}

// Present builds the view model of a submission row.
func Present(s Submission, o PresentOptions) (ViewModel, error) {
	p := Params{
		AdapterID:       AdapterID(s.ID),
		Title:           titleText(s),
		Byline:          bylineText(s, o.Now),
		IsSaved:         s.Saved,
		ThumbnailOnLeft: o.ThumbnailOnLeft,
		ImageStyle:      o.ImageStyle,
		SwipeActions:    swipeActionsFor(s),
		Submission:      s,
	}
	if s.Stickied {
		p.Background = BackgroundStickied
	}

	thumb := thumbnailFor(s)
	p.Thumbnail = &thumb
	p.IsThumbnailClickable = thumb.RemoteURL != ""

	vm, err := New(p)
	if err != nil {
		return ViewModel{}, fmt.Errorf("present %s: %w", s.ID, err)
	}
	return vm, nil
}

func titleText(s Submission) StyledText {
	style := plainTitle
	switch s.Vote {
	case VoteUp:
		style = upvotedTitle
	case VoteDown:
		style = downvotedTitle
	}
	score := style.Bold(true).Render(humanize.Comma(int64(s.VotedScore())))
	return StyledText{
		Text: score + "  " + s.Title,
		Key:  fmt.Sprintf("%d:%d", s.VotedScore(), s.Vote),
	}
}

func bylineText(s Submission, now time.Time) StyledText {
	parts := []string{"r/" + s.Subreddit}
	if s.Author != "" {
		parts = append(parts, "u/"+s.Author)
	}
	parts = append(parts, fmt.Sprintf("%d comments", s.Comments))
	if !s.Created.IsZero() {
		if now.IsZero() {
			now = time.Now()
		}
		parts = append(parts, humanize.RelTime(s.Created, now, "ago", "from now"))
	}
	return StyledText{
		Text: bylineStyle.Render(strings.Join(parts, " · ")),
		Key:  fmt.Sprintf("%d", s.Comments),
	}
}

func thumbnailFor(s Submission) Thumbnail {
	t := Thumbnail{Scale: ScaleCenterCrop, ContentDescription: s.Title}
	switch u := strings.TrimSpace(s.ThumbnailURL); {
	case s.IsSelf || u == "self":
		t.Static = StaticSelfPost
		t.Scale = ScaleCenterInside
		t.Tint = "245"
	case u == "nsfw":
		t.Static = StaticNSFW
		t.Scale = ScaleCenterInside
	case u == "spoiler":
		t.Static = StaticSpoiler
		t.Scale = ScaleCenterInside
	case u == "" || u == "default" || !strings.HasPrefix(u, "http"):
		t.Static = StaticLink
		t.Scale = ScaleCenterInside
		t.Tint = "245"
	default:
		t.RemoteURL = u
	}
	return t
}

func swipeActionsFor(s Submission) SwipeActions {
	save := SwipeSave
	if s.Saved {
		save = SwipeUnsave
	}
	return SwipeActions{
		Start: []SwipeAction{SwipeOptions, SwipeNewTab},
		End:   []SwipeAction{save, SwipeUpvote, SwipeDownvote},
	}
}
