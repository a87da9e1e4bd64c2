package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/x/ansi"

	"github.com/henri123lemoine/frontpage/internal/row"
	"github.com/henri123lemoine/frontpage/internal/sheet"
	"github.com/henri123lemoine/frontpage/internal/subscription"
)

// State constants (matching app.State)
const (
	StateFeed = iota
	StatePicker
	StateOptions
	StateHelp
)

// ChromeLines is the number of lines taken by the header and the footer.
const ChromeLines = 2

// HelpBinding represents a keybinding for help display.
type HelpBinding struct {
	Keys string
	Desc string
}

// HelpSection represents a section of help bindings.
type HelpSection struct {
	Title    string
	Bindings []HelpBinding
}

// RenderParams contains all parameters needed for rendering.
type RenderParams struct {
	State        int
	Width        int
	Height       int
	Subreddit    string
	Loading      bool
	SpinnerFrame string
	Err          error

	Feed        []*row.Row
	FeedCursor  int
	FeedChanged func(id uint64) bool

	PickerOpen   bool
	Sheet        sheet.Layout
	SearchInput  string
	Searching    bool
	Chips        []*row.Row
	ChipCursor   int
	ChipsFocused bool
	ChipChanged  func(id uint64) bool
	ChipPadding  int

	OptionsTitle string
	Options      []string
	OptionCursor int

	HelpSections []HelpSection
}

// MinWidth is the absolute minimum terminal width we try to support.
const MinWidth = 30

// MinHeight is the absolute minimum terminal height we try to support.
const MinHeight = 8

// Default cell sizes of image slots without a picture yet.
const (
	slotWidth  = 8
	slotHeight = 2
)

// Render renders the full UI.
func Render(p RenderParams) string {
	// Graceful degradation for small terminals instead of jumping to arbitrary values.
	if p.Width < MinWidth {
		p.Width = MinWidth
	}
	if p.Height < MinHeight {
		p.Height = MinHeight
	}

	if p.State == StateHelp {
		return renderHelp(p)
	}

	bodyHeight := p.Height - ChromeLines
	sheetHeight := 0
	if p.PickerOpen {
		sheetHeight = min(max(p.Sheet.Height, 0), bodyHeight)
	}
	feedHeight := bodyHeight - sheetHeight

	var b strings.Builder
	b.WriteString(renderHeader(p) + "\n")
	b.WriteString(strings.Join(renderFeed(p, feedHeight), "\n"))
	if sheetHeight > 0 {
		b.WriteString("\n" + strings.Join(renderSheet(p, sheetHeight), "\n"))
	}
	b.WriteString("\n" + renderFooter(p))
	return b.String()
}

func renderHeader(p RenderParams) string {
	name := "frontpage"
	if p.Subreddit != "" && !strings.EqualFold(p.Subreddit, subscription.FrontPage) {
		name = "r/" + p.Subreddit
	}
	header := TitleStyle.Render(name)
	// A refresh keeps the rows and shows a small indicator.
	if p.Loading && len(p.Feed) > 0 {
		header += " " + p.SpinnerFrame
	}
	return header
}

func renderFooter(p RenderParams) string {
	if p.Err != nil {
		return ansi.Truncate(ErrorStyle.Render("Error: "+p.Err.Error()), p.Width, "…")
	}
	var full, compact string
	switch p.State {
	case StatePicker:
		full = "type search • ↓ chips • enter select • e manage • o options • esc back"
		compact = "↓•enter•e•o•esc"
	case StateOptions:
		full = "↑/↓ choose • enter apply • esc cancel"
		compact = "↑↓•enter•esc"
	default:
		full = "enter open • t image • s save • +/- vote • b link • tab subreddits • ? help • q quit"
		compact = "enter•t•s•+/-•b•tab•?•q"
	}
	return HelpStyle.Render(compactHelp(full, compact, p.Width))
}

// renderFeed renders the submissions into exactly height lines, keeping the
// cursor row in view.
func renderFeed(p RenderParams, height int) []string {
	if height <= 0 {
		return nil
	}
	if len(p.Feed) == 0 {
		msg := PathStyle.Render("No submissions.")
		if p.Loading {
			msg = p.SpinnerFrame + " Loading submissions..."
		}
		return fit([]string{"", msg}, height)
	}

	blocks := make([]string, len(p.Feed))
	for i, r := range p.Feed {
		changed := p.FeedChanged != nil && p.FeedChanged(r.ID)
		blocks[i] = renderSubmissionRow(r, i == p.FeedCursor, changed, p.Width)
	}
	return fit(window(blocks, p.FeedCursor, height), height)
}

// renderSubmissionRow renders one feed row followed by a blank line.
func renderSubmissionRow(r *row.Row, selected, changed bool, width int) string {
	gutter := "  "
	switch {
	case selected:
		gutter = SelectedStyle.Render(SymbolCursor) + " "
	case r.Background != "":
		gutter = lipgloss.NewStyle().Foreground(ColorSticky).Render("▍") + " "
	}

	thumb := ""
	if r.Thumb.Visible {
		thumb = renderSlot(&r.Thumb)
	}
	textWidth := width - lipgloss.Width(gutter) - 2
	if thumb != "" {
		textWidth -= lipgloss.Width(thumb) + 1
	}
	textWidth = max(textWidth, 10)

	title := r.Title
	if changed {
		title = ChangedStyle.Render(SymbolChanged) + " " + title
	}
	text := ansi.Truncate(title, textWidth, "…") + "\n" + ansi.Truncate(r.Byline, textWidth, "…")

	body := text
	if thumb != "" {
		if r.ThumbnailLeft {
			body = lipgloss.JoinHorizontal(lipgloss.Top, thumb, " ", text)
		} else {
			text = lipgloss.NewStyle().Width(textWidth).Render(text)
			body = lipgloss.JoinHorizontal(lipgloss.Top, text, " ", thumb)
		}
	}
	if r.Large.Visible {
		body += "\n" + renderSlot(&r.Large)
	}

	lines := strings.Split(body, "\n")
	for i := range lines {
		if i == 0 {
			lines[i] = gutter + lines[i]
		} else {
			lines[i] = "  " + lines[i]
		}
	}
	return strings.Join(lines, "\n") + "\n"
}

// renderSlot draws an image slot: the fading picture, a static glyph or a
// loading placeholder.
func renderSlot(s *row.Slot) string {
	if s.Picture != nil {
		return s.Picture.Render(s.Alpha)
	}
	box := GlyphStyle.Width(slotWidth).Height(slotHeight)
	if s.Static != "" {
		glyph, ok := staticGlyphs[s.Static]
		if !ok {
			glyph = s.Static
		}
		if s.Tint != "" {
			box = box.Foreground(lipgloss.Color(s.Tint))
		}
		return box.Render(glyph)
	}
	return box.Render(SymbolPending)
}

// window returns the lines of the blocks around cursor that fit in height.
// The cursor block starts no lower than the middle of the screen.
func window(blocks []string, cursor, height int) []string {
	if len(blocks) == 0 || height <= 0 {
		return nil
	}
	cursor = min(max(cursor, 0), len(blocks)-1)

	start := cursor
	used := lineCount(blocks[cursor])
	for start > 0 {
		n := lineCount(blocks[start-1])
		if used+n > height/2+lineCount(blocks[cursor]) {
			break
		}
		used += n
		start--
	}

	var lines []string
	for i := start; i < len(blocks) && len(lines) < height; i++ {
		lines = append(lines, strings.Split(strings.TrimSuffix(blocks[i], "\n"), "\n")...)
		lines = append(lines, "")
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	return lines
}

func lineCount(s string) int {
	return strings.Count(strings.TrimSuffix(s, "\n"), "\n") + 2
}

// renderSheet renders the subreddit sheet into exactly height lines.
func renderSheet(p RenderParams, height int) []string {
	width := p.Width
	l := p.Sheet

	var top []string
	for range l.ShadowMargin {
		top = append(top, DividerStyle.Render(strings.Repeat(SymbolShadow, width)))
	}
	top = append(top, renderSheetHeader(p))
	top = append(top, DividerStyle.Render(strings.Repeat(SymbolDivider, width)))
	if len(top) >= height {
		return fit(top, height)
	}

	area := height - len(top) - p.ChipPadding
	var body []string
	switch {
	case p.State == StateOptions:
		body = renderOptions(p)
	case len(p.Chips) == 0 && p.Searching:
		body = []string{p.SpinnerFrame + " Searching..."}
	case len(p.Chips) == 0:
		body = []string{PathStyle.Render("No subscriptions match.")}
	default:
		body = renderChips(p, width, max(area, 1))
	}
	lines := append(top, fit(body, max(area, 0))...)

	// The list padding keeps the last chips clear of the save button.
	for i := 0; i < p.ChipPadding && len(lines) < height; i++ {
		lines = append(lines, "")
	}
	lines = fit(lines, height)
	if l.SaveVisible {
		lines[len(lines)-1] = SaveStyle.Render("[ s ] save")
	}
	return lines
}

func renderSheetHeader(p RenderParams) string {
	l := p.Sheet
	var right []string
	// A refresh with chips on screen shows a small indicator.
	if p.Searching && len(p.Chips) > 0 {
		right = append(right, p.SpinnerFrame)
	}
	if l.EditAlpha > 0 {
		right = append(right, faded(hexAccent, l.EditAlpha).Render("e manage"))
	}
	if l.ManageAlpha > 0 {
		right = append(right, faded(hexMuted, l.ManageAlpha).Render("managing"))
	}
	return p.SearchInput + "  " + strings.Join(right, " ")
}

// renderChips lays out the chips left to right, wrapping at width, and
// scrolls so the selected chip stays visible.
func renderChips(p RenderParams, width, area int) []string {
	var lines []string
	var cur strings.Builder
	curWidth := 0
	cursorLine := 0

	for i, r := range p.Chips {
		chip := renderChip(r, p.ChipsFocused && i == p.ChipCursor, p.ChipChanged != nil && p.ChipChanged(r.ID))
		w := lipgloss.Width(chip)
		if curWidth > 0 && curWidth+1+w > width {
			lines = append(lines, cur.String())
			cur.Reset()
			curWidth = 0
		}
		if curWidth > 0 {
			cur.WriteString(" ")
			curWidth++
		}
		cur.WriteString(chip)
		curWidth += w
		if i == p.ChipCursor {
			cursorLine = len(lines)
		}
	}
	if curWidth > 0 {
		lines = append(lines, cur.String())
	}

	if cursorLine >= area {
		lines = lines[cursorLine-area+1:]
	}
	return lines
}

func renderChip(r *row.Row, selected, changed bool) string {
	label := "r/" + r.Label
	if len(r.Markers) > 0 {
		label += " " + MarkerStyle.Render("("+strings.Join(r.Markers, ", ")+")")
	}
	switch r.Pending {
	case subscription.PendingInFlight:
		label += " " + PendingStyle.Render(SymbolPending)
	case subscription.PendingFailed:
		label += " " + FailedStyle.Render(SymbolFailed)
	}
	if changed {
		label = ChangedStyle.Render(SymbolChanged) + label
	}

	style := ChipStyle
	switch {
	case r.Focused:
		style = FocusedChipStyle
	case selected:
		style = SelectedChipStyle
	}
	return style.Render(label)
}

func renderOptions(p RenderParams) []string {
	lines := []string{HeaderStyle.Render("r/" + p.OptionsTitle)}
	for i, o := range p.Options {
		if i == p.OptionCursor {
			lines = append(lines, SelectedStyle.Render(SymbolCursor+" "+o))
		} else {
			lines = append(lines, NormalStyle.Render("  "+o))
		}
	}
	return lines
}

// renderHelp renders the help overlay.
func renderHelp(p RenderParams) string {
	var b strings.Builder
	contentWidth := p.Width - 4

	b.WriteString(HeaderStyle.Render("HELP") + "\n")
	b.WriteString(DividerStyle.Render(strings.Repeat(SymbolDivider, contentWidth)) + "\n\n")

	// Render each help section from the passed bindings
	for i, section := range p.HelpSections {
		b.WriteString(NormalStyle.Render(section.Title) + "\n")
		b.WriteString(DividerStyle.Render(strings.Repeat(SymbolDivider, 40)) + "\n")
		for _, binding := range section.Bindings {
			// Pad keys to 10 chars for alignment
			keys := binding.Keys
			if len(keys) < 10 {
				keys = keys + strings.Repeat(" ", 10-len(keys))
			}
			b.WriteString(PathStyle.Render("  "+keys) + " " + binding.Desc + "\n")
		}
		if i < len(p.HelpSections)-1 {
			b.WriteString("\n")
		}
	}

	b.WriteString("\n" + DividerStyle.Render(strings.Repeat(SymbolDivider, contentWidth)) + "\n")
	b.WriteString(HelpStyle.Render("Press any key to close"))

	return wrapInBox(b.String(), p.Width)
}

func wrapInBox(content string, width int) string {
	boxWidth := width - 2
	// Graceful degradation: use actual width, just ensure minimum for box borders
	if boxWidth < MinWidth-2 {
		boxWidth = MinWidth - 2
	}
	return BoxStyle.Width(boxWidth).Render(content)
}

func compactHelp(full, compact string, width int) string {
	// If terminal is wide enough, use full help text
	if width >= 80 {
		return full
	}
	return compact
}

// fit pads or cuts lines to exactly n.
func fit(lines []string, n int) []string {
	if n <= 0 {
		return nil
	}
	if len(lines) > n {
		return lines[:n]
	}
	out := make([]string, n)
	copy(out, lines)
	return out
}
