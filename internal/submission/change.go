package submission

import (
	"fmt"
	"math/bits"
	"strings"
)

// PartialChange names one renderable aspect of a row.
type PartialChange uint8

const (
	ChangeTitle PartialChange = 1 << iota
	ChangeByline
	ChangeThumbnail
	ChangeSaveStatus
	ChangeThumbnailPosition
	ChangeSwipeActions
)

// knownChanges is the union of every declared flag.
const knownChanges = ChangeTitle | ChangeByline | ChangeThumbnail |
	ChangeSaveStatus | ChangeThumbnailPosition | ChangeSwipeActions

func (c PartialChange) String() string {
	switch c {
	case ChangeTitle:
		return "TITLE"
	case ChangeByline:
		return "BYLINE"
	case ChangeThumbnail:
		return "THUMBNAIL"
	case ChangeSaveStatus:
		return "SAVE_STATUS"
	case ChangeThumbnailPosition:
		return "THUMBNAIL_POSITION"
	case ChangeSwipeActions:
		return "SWIPE_ACTIONS"
	}
	return fmt.Sprintf("PartialChange(%#x)", uint8(c))
}

// ChangeSet is an unordered set of partial changes.
type ChangeSet uint8

// Changes builds a set from individual flags.
func Changes(flags ...PartialChange) ChangeSet {
	var s ChangeSet
	for _, f := range flags {
		s = s.Add(f)
	}
	return s
}

// Add returns s with f included.
func (s ChangeSet) Add(f PartialChange) ChangeSet { return s | ChangeSet(f) }

// Has reports whether f is in s.
func (s ChangeSet) Has(f PartialChange) bool { return s&ChangeSet(f) != 0 }

// Empty reports whether nothing changed.
func (s ChangeSet) Empty() bool { return s == 0 }

// Len returns the number of flags in s.
func (s ChangeSet) Len() int { return bits.OnesCount8(uint8(s)) }

// Unknown returns the bits of s that name no declared flag.
func (s ChangeSet) Unknown() ChangeSet { return s &^ ChangeSet(knownChanges) }

// Flags lists the flags of s in declaration order, unknown bits included.
func (s ChangeSet) Flags() []PartialChange {
	flags := make([]PartialChange, 0, s.Len())
	for rest := uint8(s); rest != 0; rest &= rest - 1 {
		flags = append(flags, PartialChange(rest&-rest))
	}
	return flags
}

func (s ChangeSet) String() string {
	names := make([]string, 0, s.Len())
	for _, f := range s.Flags() {
		names = append(names, f.String())
	}
	return "{" + strings.Join(names, ",") + "}"
}

// Union merges a batch of pending payloads so each flag is applied once.
func Union(batch ...ChangeSet) ChangeSet {
	var s ChangeSet
	for _, b := range batch {
		s |= b
	}
	return s
}

// Diff returns the aspects that differ between two revisions of the same row.
// Diffing rows with different identities is a programming error and panics.
func Diff(prev, next ViewModel) ChangeSet {
	if prev.AdapterID() != next.AdapterID() {
		panic(fmt.Sprintf("submission: diff across identities %d and %d", prev.AdapterID(), next.AdapterID()))
	}

	var s ChangeSet
	if !prev.p.Title.Equal(next.p.Title) {
		s = s.Add(ChangeTitle)
	}
	if !prev.p.Byline.Equal(next.p.Byline) {
		s = s.Add(ChangeByline)
	}
	if !thumbnailEqual(prev.p.Thumbnail, next.p.Thumbnail) || prev.p.ImageStyle != next.p.ImageStyle {
		s = s.Add(ChangeThumbnail)
	}
	if prev.p.IsSaved != next.p.IsSaved {
		s = s.Add(ChangeSaveStatus)
	}
	if !prev.p.SwipeActions.Equal(next.p.SwipeActions) {
		s = s.Add(ChangeSwipeActions)
	}
	if prev.p.ThumbnailOnLeft != next.p.ThumbnailOnLeft {
		// Moving the image slot invalidates its layout, so the image is
		// re-applied as well.
		s = s.Add(ChangeThumbnailPosition).Add(ChangeThumbnail)
	}
	return s
}
