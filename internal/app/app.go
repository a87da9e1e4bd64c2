package app

import (
	"context"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/henri123lemoine/frontpage/internal/config"
	"github.com/henri123lemoine/frontpage/internal/debug"
	"github.com/henri123lemoine/frontpage/internal/event"
	"github.com/henri123lemoine/frontpage/internal/listctl"
	"github.com/henri123lemoine/frontpage/internal/row"
	"github.com/henri123lemoine/frontpage/internal/search"
	"github.com/henri123lemoine/frontpage/internal/sheet"
	"github.com/henri123lemoine/frontpage/internal/submission"
	"github.com/henri123lemoine/frontpage/internal/subscription"
	"github.com/henri123lemoine/frontpage/internal/ui"
)

// State represents the current UI state.
type State int

const (
	StateFeed State = iota
	StatePicker
	StateOptions
	StateHelp
)

// FeedLoader loads the submissions of a subreddit.
type FeedLoader interface {
	Load(ctx context.Context, subreddit string) ([]submission.Submission, error)
}

// Deps are the collaborators a Model works with.
type Deps struct {
	Subscriptions *subscription.Manager
	Feed          FeedLoader
	Images        row.ImageLoader
	Events        *event.Events
	Logger        *slog.Logger
}

// Model is the main application model.
type Model struct {
	// Configuration
	config *config.Config
	deps   Deps
	log    *slog.Logger

	// Feed
	feed      *listctl.Controller
	posts     []submission.Submission
	subreddit string
	present   submission.PresentOptions
	loading   bool

	// Picker
	picker       *listctl.Controller
	pipeline     *search.Pipeline
	input        textinput.Model
	sheet        *sheet.Machine
	entries      []subscription.Entry
	pending      map[string]subscription.PendingState
	chipsFocused bool
	searching    bool

	// Options menu
	optionsEntry subscription.Entry
	options      []Option
	optionCursor int

	// State
	state     State
	prevState State
	err       error

	// UI
	spinner spinner.Model
	width   int
	height  int
	keys    KeyMap
	now     func() time.Time

	shouldQuit bool
}

// New creates a new Model.
func New(cfg *config.Config, deps Deps) Model {
	log := deps.Logger
	if log == nil {
		log = debug.Logger()
	}

	style, err := submission.ParseImageStyle(cfg.UI.ImageStyle)
	if err != nil {
		log.Warn("Falling back to thumbnails", "error", err)
		style = submission.ImageStyleThumbnail
	}

	reg := row.NewRegistry(row.NewSubmissionRenderer(deps.Images), row.SubredditRenderer{})

	feed := listctl.New(reg)
	feed.SetAnimate(false)

	pipeline := search.New(deps.Subscriptions, search.Options{
		Debounce:      cfg.Search.Debounce(),
		IncludeHidden: cfg.Search.IncludeHidden,
		BeforeQuery: func(term string) {
			debug.Log("search %q", term)
		},
		Logger: log,
	})

	input := textinput.New()
	input.Placeholder = "search subreddits"
	input.CharLimit = 50

	m := Model{
		config:   cfg,
		deps:     deps,
		log:      log,
		feed:     feed,
		present:  submission.PresentOptions{ImageStyle: style, ThumbnailOnLeft: cfg.UI.ThumbnailsOnLeft},
		loading:  true,
		picker:   listctl.New(reg),
		pipeline: pipeline,
		input:    input,
		pending:  make(map[string]subscription.PendingState),
		state:    StateFeed,
		spinner:  spinner.New(spinner.WithSpinner(spinner.Dot)),
		keys:     KeyMapFromConfig(&cfg.Keys),
		now:      time.Now,
	}
	m.sheet = m.newSheet()
	return m
}

// WithSubreddit starts on name instead of the default subreddit.
func (m Model) WithSubreddit(name string) Model {
	m.subreddit = name
	return m
}

// Init initializes the model.
func (m Model) Init() tea.Cmd {
	if m.subreddit != "" {
		return tea.Batch(m.spinner.Tick, loadFeed(m.deps.Feed, m.subreddit))
	}
	return tea.Batch(m.spinner.Tick, loadDefault(m.deps.Subscriptions))
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = max(msg.Width-12, 10)
		m.sheet.SetGeometry(m.geometry())
		m.picker.SetPadding(m.sheet.Layout().ListPadding)
		return m, nil

	case tea.KeyMsg:
		// ctrl+c quits from anywhere; other quit keys only outside text entry.
		if msg.Type == tea.KeyCtrlC || (key.Matches(msg, m.keys.Quit) && m.state == StateFeed) {
			m.shouldQuit = true
			return m, tea.Quit
		}
		return m.handleKeyPress(msg)

	case spinner.TickMsg:
		if !m.busy() {
			return m, nil
		}
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case DefaultLoadedMsg:
		name := msg.Name
		if msg.Err != nil {
			m.err = msg.Err
			m.log.Error("Couldn't read default subreddit", "error", msg.Err)
			name = m.config.General.DefaultSubreddit
		}
		if m.subreddit != "" {
			return m, nil
		}
		m.subreddit = name
		return m, loadFeed(m.deps.Feed, name)

	case FeedLoadedMsg:
		if msg.Subreddit != m.subreddit {
			return m, nil
		}
		m.loading = false
		if msg.Err != nil {
			m.err = msg.Err
			m.log.Error("Feed load failed", "subreddit", msg.Subreddit, "error", msg.Err)
			return m, nil
		}
		m.err = nil
		m.posts = msg.Submissions
		return m, m.syncFeed(false)

	case search.ResultsMsg:
		entries, ok := m.pipeline.Accept(msg)
		if !ok {
			return m, nil
		}
		m.searching = false
		m.entries = entries
		return m, m.syncPicker()

	case SubscriptionChangedMsg:
		k := msg.Entry.Key()
		if msg.Err != nil {
			m.err = msg.Err
			m.pending[k] = subscription.PendingFailed
			m.log.Error("Subscription change failed", "option", msg.Option, "subreddit", msg.Entry.Name, "error", msg.Err)
		} else {
			delete(m.pending, k)
		}
		m.picker.SetAnimate(true)
		return m, tea.Batch(m.syncPicker(), m.query())

	case row.ImageLoadedMsg:
		if msg.Err != nil {
			m.log.Debug("Image load failed", "row", msg.Row, "error", msg.Err)
		}
		return m, m.feed.ApplyImage(msg)

	case row.FadeMsg:
		return m, m.feed.ApplyFade(msg)

	case sheet.FrameMsg:
		cmd := m.sheet.Update(msg)
		m.picker.SetPadding(m.sheet.Layout().ListPadding)
		return m, cmd

	case ErrorMsg:
		m.err = msg.Err
		return m, nil
	}

	return m, nil
}

// handleKeyPress handles key presses based on current state.
func (m Model) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.state {
	case StateFeed:
		return m.handleFeedKeys(msg)
	case StatePicker:
		return m.handlePickerKeys(msg)
	case StateOptions:
		return m.handleOptionsKeys(msg)
	case StateHelp:
		return m.handleHelpKeys(msg)
	}
	return m, nil
}

// handleFeedKeys handles key presses in the feed.
func (m Model) handleFeedKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		m.feed.MoveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.feed.MoveCursor(1)
	case key.Matches(msg, m.keys.Home):
		m.feed.SetCursor(0)
	case key.Matches(msg, m.keys.End):
		m.feed.SetCursor(m.feed.Len() - 1)
	case key.Matches(msg, m.keys.Open):
		if r, ok := m.feed.Selected(); ok {
			if ev, ok := r.Click(); ok {
				m.publish(ev)
			}
		}
	case key.Matches(msg, m.keys.Thumbnail):
		if r, ok := m.feed.Selected(); ok {
			if ev, ok := r.ClickThumbnail(); ok {
				m.publish(ev)
			}
		}
	case key.Matches(msg, m.keys.Browser):
		return m, m.swipe(submission.SwipeNewTab)
	case key.Matches(msg, m.keys.Save):
		if r, ok := m.feed.Selected(); ok && slices.Contains(r.Swipe.End, submission.SwipeUnsave) {
			return m, m.swipe(submission.SwipeUnsave)
		}
		return m, m.swipe(submission.SwipeSave)
	case key.Matches(msg, m.keys.Upvote):
		return m, m.swipe(submission.SwipeUpvote)
	case key.Matches(msg, m.keys.Downvote):
		return m, m.swipe(submission.SwipeDownvote)
	case key.Matches(msg, m.keys.Refresh):
		if m.subreddit == "" {
			return m, nil
		}
		m.loading = true
		return m, tea.Batch(loadFeed(m.deps.Feed, m.subreddit), m.spinner.Tick)
	case key.Matches(msg, m.keys.Picker):
		return m, m.openPicker()
	case key.Matches(msg, m.keys.Help):
		m.prevState = m.state
		m.state = StateHelp
	}
	return m, nil
}

// handlePickerKeys handles key presses while the subreddit sheet is open.
// Focus is either on the search field or on the chips.
func (m Model) handlePickerKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		if m.sheet.State() == sheet.ManageSubs {
			return m, m.sheet.ToBrowse(m.now())
		}
		m.closePicker()
		return m, nil
	case key.Matches(msg, m.keys.Picker):
		m.closePicker()
		return m, nil
	}

	if !m.chipsFocused {
		return m.handleSearchKeys(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.picker.Cursor() == 0 {
			m.focusSearch()
			return m, textinput.Blink
		}
		m.picker.MoveCursor(-1)
	case key.Matches(msg, m.keys.Down):
		m.picker.MoveCursor(1)
	case key.Matches(msg, m.keys.Home):
		m.picker.SetCursor(0)
	case key.Matches(msg, m.keys.End):
		m.picker.SetCursor(m.picker.Len() - 1)
	case key.Matches(msg, m.keys.Open):
		if r, ok := m.picker.Selected(); ok {
			if ev, ok := r.Click(); ok {
				if sel, ok := ev.(event.SubredditSelected); ok {
					return m, m.selectSubreddit(sel)
				}
			}
		}
	case key.Matches(msg, m.keys.Manage):
		return m, m.sheet.Toggle(m.now())
	case key.Matches(msg, m.keys.Save):
		if m.sheet.State() == sheet.ManageSubs {
			return m, m.sheet.ToBrowse(m.now())
		}
	case key.Matches(msg, m.keys.Options):
		m.openOptions()
	case msg.Type == tea.KeyRunes || msg.Type == tea.KeyBackspace:
		// Typing on the chips goes back to the search field.
		m.focusSearch()
		return m.handleSearchKeys(msg)
	}
	return m, nil
}

// handleSearchKeys handles key presses in the search field.
func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyDown:
		if m.picker.Len() > 0 {
			m.chipsFocused = true
			m.input.Blur()
			m.picker.SetCursor(0)
		}
		return m, nil
	case tea.KeyEnter:
		term := search.Normalize(m.input.Value())
		if term == "" {
			return m, nil
		}
		return m, m.selectSubreddit(event.SubredditSelected{Name: term, New: true})
	}

	before := m.input.Value()
	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	if m.input.Value() == before {
		return m, cmd
	}
	// Filtering reorders chips; only explicit changes are highlighted.
	m.picker.SetAnimate(false)
	return m, tea.Batch(cmd, m.query())
}

// handleOptionsKeys handles key presses in a chip's options menu.
func (m Model) handleOptionsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.optionCursor > 0 {
			m.optionCursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.optionCursor < len(m.options)-1 {
			m.optionCursor++
		}
	case key.Matches(msg, m.keys.Back), key.Matches(msg, m.keys.Options):
		m.closeOptions()
	case key.Matches(msg, m.keys.Open):
		if m.optionCursor >= len(m.options) {
			return m, nil
		}
		o, e := m.options[m.optionCursor], m.optionsEntry
		m.closeOptions()
		m.picker.SetAnimate(true)
		m.pending[e.Key()] = subscription.PendingInFlight
		return m, tea.Batch(m.syncPicker(), applyOption(m.deps.Subscriptions, o, e))
	}
	return m, nil
}

// handleHelpKeys handles key presses in the help view.
func (m Model) handleHelpKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Any key closes help
	m.state = m.prevState
	return m, nil
}

func (m *Model) openPicker() tea.Cmd {
	m.state = StatePicker
	m.sheet = m.newSheet()
	m.picker.SetPadding(0)
	m.picker.SetAnimate(false)
	m.input.Reset()
	m.focusSearch()
	return tea.Batch(textinput.Blink, m.query(), m.spinner.Tick)
}

func (m *Model) closePicker() {
	m.state = StateFeed
	m.chipsFocused = false
	m.input.Blur()
	m.picker.SetFocus(0)
}

func (m *Model) focusSearch() {
	m.chipsFocused = false
	m.input.Focus()
}

func (m *Model) openOptions() {
	r, ok := m.picker.Selected()
	if !ok {
		return
	}
	item, ok := r.Model().(row.SubredditItem)
	if !ok {
		return
	}
	m.optionsEntry = item.Entry
	m.options = optionsFor(item.Entry)
	m.optionCursor = 0
	m.state = StateOptions
	m.picker.SetFocus(r.ID)
}

func (m *Model) closeOptions() {
	m.state = StatePicker
	m.options = nil
	m.picker.SetFocus(0)
}

// query starts a search for the current field value.
func (m *Model) query() tea.Cmd {
	m.searching = true
	return m.pipeline.Query(m.input.Value())
}

// selectSubreddit switches the feed to sel and closes the picker.
func (m *Model) selectSubreddit(sel event.SubredditSelected) tea.Cmd {
	m.publish(sel)
	m.closePicker()
	m.subreddit = sel.Name
	m.loading = true
	m.feed.SetCursor(0)
	return tea.Batch(loadFeed(m.deps.Feed, sel.Name), m.spinner.Tick)
}

// swipe performs action a on the selected feed row. Save and vote changes
// rebuild the row's view model and flow back through the diff.
func (m *Model) swipe(a submission.SwipeAction) tea.Cmd {
	r, ok := m.feed.Selected()
	if !ok {
		return nil
	}
	ev, ok := r.PerformSwipe(a)
	if !ok {
		return nil
	}
	m.publish(ev)

	i := m.postIndex(ev.Submission.ID)
	if i < 0 {
		return nil
	}
	p := &m.posts[i]
	switch a {
	case submission.SwipeSave:
		p.Saved = true
	case submission.SwipeUnsave:
		p.Saved = false
	case submission.SwipeUpvote:
		p.Vote = toggleVote(p.Vote, submission.VoteUp)
	case submission.SwipeDownvote:
		p.Vote = toggleVote(p.Vote, submission.VoteDown)
	default:
		return nil
	}
	return m.syncFeed(true)
}

func toggleVote(current, v submission.Vote) submission.Vote {
	if current == v {
		return submission.VoteNone
	}
	return v
}

func (m *Model) postIndex(id string) int {
	for i, p := range m.posts {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// syncFeed rebuilds the feed view models and renders what changed.
func (m *Model) syncFeed(animate bool) tea.Cmd {
	opts := m.present
	opts.Now = m.now()

	models := make([]row.UIModel, 0, len(m.posts))
	seen := make(map[uint64]bool, len(m.posts))
	for _, p := range m.posts {
		vm, err := submission.Present(p, opts)
		if err != nil {
			m.log.Warn("Skipping submission", "error", err)
			continue
		}
		// Feeds occasionally repeat an entry.
		if seen[vm.AdapterID()] {
			continue
		}
		seen[vm.AdapterID()] = true
		models = append(models, row.SubmissionItem{ViewModel: vm})
	}

	m.feed.SetAnimate(animate)
	m.feed.Submit(models)
	res, cmd := m.feed.Flush()
	m.log.Debug("Feed flushed", "full", res.Full, "partial", res.Partial, "evicted", res.Evicted)
	return cmd
}

// syncPicker rebuilds the chips from the latest results with pending store
// changes folded in.
func (m *Model) syncPicker() tea.Cmd {
	models := make([]row.UIModel, 0, len(m.entries))
	for _, e := range m.entries {
		if p, ok := m.pending[e.Key()]; ok {
			e.Pending = p
		}
		models = append(models, row.SubredditItem{Entry: e})
	}
	m.picker.Submit(models)
	_, cmd := m.picker.Flush()

	if m.state == StateOptions {
		if _, ok := m.picker.Row(row.SubredditItem{Entry: m.optionsEntry}.AdapterID()); !ok {
			m.closeOptions()
		}
	}
	return cmd
}

func (m *Model) newSheet() *sheet.Machine {
	return sheet.New(m.geometry(), sheet.Options{Duration: m.config.Sheet.Duration()})
}

func (m Model) geometry() sheet.Geometry {
	return sheet.Geometry{
		ContainerHeight:  max(m.height-ui.ChromeLines, 0),
		TopOffset:        m.config.Sheet.TopOffset,
		CollapsedHeight:  m.config.Sheet.CollapsedHeight,
		ShadowMargin:     m.config.Sheet.ShadowMargin,
		SaveButtonHeight: m.config.Sheet.SaveButtonHeight,
	}
}

func (m Model) busy() bool {
	return m.loading || m.searching
}

func (m Model) publish(v any) {
	m.log.Debug("Publishing event", "type", fmt.Sprintf("%T", v))
	if m.deps.Events != nil {
		m.deps.Events.Publish(v)
	}
}

// View renders the UI.
func (m Model) View() string {
	optionLabels := make([]string, len(m.options))
	for i, o := range m.options {
		optionLabels[i] = o.String()
	}
	return ui.Render(ui.RenderParams{
		State:        int(m.state),
		Width:        m.width,
		Height:       m.height,
		Subreddit:    m.subreddit,
		Loading:      m.loading,
		SpinnerFrame: m.spinner.View(),
		Err:          m.err,
		Feed:         m.feed.Rows(),
		FeedCursor:   m.feed.Cursor(),
		FeedChanged:  m.feed.Highlighted,
		PickerOpen:   m.state == StatePicker || m.state == StateOptions,
		Sheet:        m.sheet.Layout(),
		SearchInput:  m.input.View(),
		Searching:    m.searching,
		Chips:        m.picker.Rows(),
		ChipCursor:   m.picker.Cursor(),
		ChipsFocused: m.chipsFocused,
		ChipChanged:  m.picker.Highlighted,
		ChipPadding:  m.picker.Padding(),
		OptionsTitle: m.optionsEntry.Name,
		Options:      optionLabels,
		OptionCursor: m.optionCursor,
		HelpSections: m.keys.HelpSections(),
	})
}

// ShouldQuit returns true if the app should quit.
func (m Model) ShouldQuit() bool {
	return m.shouldQuit
}

// Close cancels outstanding searches and image loads.
func (m Model) Close() {
	m.pipeline.Close()
	m.feed.Close()
	m.picker.Close()
}

// Commands

func loadDefault(subs *subscription.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), storeTimeout)
		defer cancel()
		name, err := subs.Default(ctx)
		return DefaultLoadedMsg{Name: name, Err: err}
	}
}

func loadFeed(feed FeedLoader, subreddit string) tea.Cmd {
	return func() tea.Msg {
		done := debug.Timed("feed " + subreddit)
		defer done()
		subs, err := feed.Load(context.Background(), subreddit)
		return FeedLoadedMsg{Subreddit: subreddit, Submissions: subs, Err: err}
	}
}
