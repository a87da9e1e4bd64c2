package app

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/henri123lemoine/frontpage/internal/config"
	"github.com/henri123lemoine/frontpage/internal/event"
	"github.com/henri123lemoine/frontpage/internal/row"
	"github.com/henri123lemoine/frontpage/internal/search"
	"github.com/henri123lemoine/frontpage/internal/sheet"
	"github.com/henri123lemoine/frontpage/internal/submission"
	"github.com/henri123lemoine/frontpage/internal/subscription"
)

// fakeFeed serves canned submissions per subreddit.
type fakeFeed struct {
	posts map[string][]submission.Submission
	err   error
}

func (f *fakeFeed) Load(_ context.Context, subreddit string) ([]submission.Submission, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.posts[subreddit], nil
}

var testPosts = []submission.Submission{
	{ID: "a1", Title: "Go 1.24 released", Subreddit: "golang", Author: "gopher", IsSelf: true, Score: 10},
	{ID: "b2", Title: "Generics tips", Subreddit: "golang", Author: "rob", IsSelf: true, Score: 5},
	{ID: "c3", Title: "Weekly thread", Subreddit: "golang", Author: "mod", IsSelf: true},
}

func newTestModel(t *testing.T) (Model, *event.Events) {
	t.Helper()

	store, err := subscription.OpenFile(filepath.Join(t.TempDir(), "subs.json"))
	if err != nil {
		t.Fatalf("OpenFile() error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	if err := subscription.Seed(context.Background(), store, []string{"golang", "pics", "AskReddit"}); err != nil {
		t.Fatalf("Seed() error: %v", err)
	}

	cfg := config.DefaultConfig()
	cfg.Search.DebounceMS = 0

	events := event.NewEvents()
	t.Cleanup(events.Shutdown)

	m := New(cfg, Deps{
		Subscriptions: subscription.NewManager(store, nil, ""),
		Feed:          &fakeFeed{posts: map[string][]submission.Submission{"golang": testPosts}},
		Events:        events,
	})
	m.now = func() time.Time { return time.Date(2025, 2, 11, 12, 0, 0, 0, time.UTC) }
	t.Cleanup(m.Close)

	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model), events
}

func update(t *testing.T, m Model, msg tea.Msg) (Model, tea.Cmd) {
	t.Helper()
	updated, cmd := m.Update(msg)
	return updated.(Model), cmd
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

// loaded returns a model showing testPosts from r/golang.
func loaded(t *testing.T) (Model, *event.Events) {
	t.Helper()
	m, events := newTestModel(t)
	m, cmd := update(t, m, DefaultLoadedMsg{Name: "golang"})
	if cmd == nil {
		t.Fatal("Expected a feed load after the default is known")
	}
	m, _ = update(t, m, cmd())
	return m, events
}

// searched opens the picker and applies the results for term.
func searched(t *testing.T, m Model, term string) Model {
	t.Helper()
	if m.state != StatePicker {
		m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	}
	m.input.SetValue(term)
	msg := m.query()()
	if msg == nil {
		t.Fatal("Expected search results")
	}
	m, _ = update(t, m, msg)
	return m
}

func receive[T any](t *testing.T, ch <-chan T) T {
	t.Helper()
	select {
	case v := <-ch:
		return v
	case <-time.After(time.Second):
		t.Fatal("Expected an event")
	}
	var zero T
	return zero
}

func TestNewModel(t *testing.T) {
	cfg := config.DefaultConfig()
	model := New(cfg, Deps{})

	if model.state != StateFeed {
		t.Errorf("Expected initial state StateFeed, got %d", model.state)
	}

	if !model.loading {
		t.Error("Expected loading to be true initially")
	}

	if model.config != cfg {
		t.Error("Config not set correctly")
	}

	if model.sheet.State() != sheet.BrowseSubs {
		t.Errorf("Expected sheet to rest in browse, got %v", model.sheet.State())
	}
}

func TestFeedLoadedMessage(t *testing.T) {
	m, _ := loaded(t)

	if m.loading {
		t.Error("Expected loading to be false after feed loads")
	}
	if m.subreddit != "golang" {
		t.Errorf("Expected subreddit golang, got %q", m.subreddit)
	}
	if m.feed.Len() != 3 {
		t.Fatalf("Expected 3 rows, got %d", m.feed.Len())
	}
	for _, r := range m.feed.Rows() {
		if full, _ := r.Renders(); full != 1 {
			t.Errorf("Expected one full render of %q, got %d", r.Title, full)
		}
	}
}

func TestFeedReloadIsIncremental(t *testing.T) {
	m, _ := loaded(t)

	m, _ = update(t, m, FeedLoadedMsg{Subreddit: "golang", Submissions: testPosts})
	for _, r := range m.feed.Rows() {
		full, partial := r.Renders()
		if full != 1 || partial != 0 {
			t.Errorf("Unchanged row %q redrawn: full=%d partial=%d", r.Title, full, partial)
		}
	}
}

func TestStaleFeedIgnored(t *testing.T) {
	m, _ := loaded(t)

	m, _ = update(t, m, FeedLoadedMsg{Subreddit: "pics", Submissions: nil})
	if m.feed.Len() != 3 {
		t.Errorf("Expected a late feed of another subreddit to be dropped, got %d rows", m.feed.Len())
	}
}

func TestFeedLoadError(t *testing.T) {
	m, _ := loaded(t)

	m, _ = update(t, m, FeedLoadedMsg{Subreddit: "golang", Err: errors.New("timeout")})
	if m.err == nil {
		t.Error("Expected error to be shown")
	}
	if m.feed.Len() != 3 {
		t.Errorf("Expected rows to survive a failed refresh, got %d", m.feed.Len())
	}
}

func TestCursorNavigation(t *testing.T) {
	m, _ := loaded(t)

	// Move down
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if m.feed.Cursor() != 1 {
		t.Errorf("Expected cursor 1 after down, got %d", m.feed.Cursor())
	}

	// Jump to end
	m, _ = update(t, m, runes("G"))
	if m.feed.Cursor() != 2 {
		t.Errorf("Expected cursor 2 after 'G', got %d", m.feed.Cursor())
	}

	// Can't move down past last item
	m, _ = update(t, m, runes("j"))
	if m.feed.Cursor() != 2 {
		t.Errorf("Expected cursor 2 (clamped), got %d", m.feed.Cursor())
	}

	// Back to top
	m, _ = update(t, m, runes("g"))
	if m.feed.Cursor() != 0 {
		t.Errorf("Expected cursor 0 after 'g', got %d", m.feed.Cursor())
	}
}

func TestSaveSwipeRendersPartially(t *testing.T) {
	m, events := loaded(t)
	swipes := events.SwipePerformed.Subscribe(t.Context())

	m, _ = update(t, m, runes("s"))
	if !m.posts[0].Saved {
		t.Fatal("Expected first submission to be saved")
	}
	ev := receive(t, swipes)
	if ev.Action != submission.SwipeSave || ev.Submission.ID != "a1" {
		t.Errorf("Unexpected swipe event %+v", ev)
	}

	r := m.feed.Rows()[0]
	full, partial := r.Renders()
	if full != 1 || partial != 1 {
		t.Errorf("Expected one partial render on top of the full one, got full=%d partial=%d", full, partial)
	}
	if !r.LastApplied().Has(submission.ChangeSaveStatus) {
		t.Errorf("Expected save status to be applied, got %v", r.LastApplied())
	}
	if !m.feed.Highlighted(r.ID) {
		t.Error("Expected the saved row to be highlighted")
	}

	// Saving again unsaves.
	m, _ = update(t, m, runes("s"))
	if m.posts[0].Saved {
		t.Error("Expected second save to unsave")
	}
	if ev := receive(t, swipes); ev.Action != submission.SwipeUnsave {
		t.Errorf("Expected unsave event, got %v", ev.Action)
	}
}

func TestVoteToggles(t *testing.T) {
	m, _ := loaded(t)

	m, _ = update(t, m, runes("+"))
	if m.posts[0].Vote != submission.VoteUp {
		t.Errorf("Expected upvote, got %v", m.posts[0].Vote)
	}
	m, _ = update(t, m, runes("d"))
	if m.posts[0].Vote != submission.VoteDown {
		t.Errorf("Expected downvote, got %v", m.posts[0].Vote)
	}
	m, _ = update(t, m, runes("-"))
	if m.posts[0].Vote != submission.VoteNone {
		t.Errorf("Expected vote to be cleared, got %v", m.posts[0].Vote)
	}
	if _, partial := m.feed.Rows()[0].Renders(); partial != 3 {
		t.Errorf("Expected 3 partial renders, got %d", partial)
	}
}

func TestOpenPublishesClick(t *testing.T) {
	m, events := loaded(t)
	clicks := events.SubmissionClicked.Subscribe(t.Context())
	thumbs := events.ThumbnailClicked.Subscribe(t.Context())

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if ev := receive(t, clicks); ev.Submission.ID != "b2" {
		t.Errorf("Expected click on b2, got %q", ev.Submission.ID)
	}

	// Self posts have no clickable thumbnail; the click falls back.
	_, _ = update(t, m, runes("t"))
	if ev := receive(t, clicks); ev.Submission.ID != "b2" {
		t.Errorf("Expected fallback click on b2, got %q", ev.Submission.ID)
	}
	select {
	case ev := <-thumbs:
		t.Errorf("Unexpected thumbnail event %+v", ev)
	default:
	}
}

func TestPickerOpensWithAllSubscriptions(t *testing.T) {
	m, _ := loaded(t)

	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyTab})
	if m.state != StatePicker {
		t.Fatalf("Expected StatePicker after tab, got %d", m.state)
	}
	if cmd == nil {
		t.Error("Expected a search command")
	}
	if !m.searching {
		t.Error("Expected searching while the first results are pending")
	}

	m = searched(t, m, "")
	if m.searching {
		t.Error("Expected searching to stop once results arrive")
	}
	if m.picker.Len() != 3 {
		t.Fatalf("Expected 3 chips, got %d", m.picker.Len())
	}
	if got := m.picker.Rows()[0].Label; got != "AskReddit" {
		t.Errorf("Expected chips sorted by name, got %q first", got)
	}
}

func TestSearchAppendsSyntheticEntry(t *testing.T) {
	m, _ := loaded(t)
	m = searched(t, m, "gol")

	rows := m.picker.Rows()
	if len(rows) < 2 {
		t.Fatalf("Expected golang and a synthetic entry, got %d chips", len(rows))
	}
	last, ok := rows[len(rows)-1].Model().(row.SubredditItem)
	if !ok || !last.Synthetic || last.Name != "gol" {
		t.Errorf("Expected synthetic 'gol' last, got %+v", last)
	}

	m = searched(t, m, "golang")
	for _, r := range m.picker.Rows() {
		if item := r.Model().(row.SubredditItem); item.Synthetic {
			t.Error("Expected no synthetic entry for an exact match")
		}
	}
}

func TestStaleSearchResultsDropped(t *testing.T) {
	m, _ := loaded(t)
	m = searched(t, m, "")

	stale := search.ResultsMsg{Gen: m.pipeline.Generation() - 1, Term: "x", Entries: nil}
	m, _ = update(t, m, stale)
	if m.picker.Len() != 3 {
		t.Errorf("Expected stale results to be ignored, got %d chips", m.picker.Len())
	}
}

func TestTypingQueries(t *testing.T) {
	m, _ := loaded(t)
	m = searched(t, m, "")
	m.picker.SetAnimate(true)

	before := m.pipeline.Generation()
	m, cmd := update(t, m, runes("p"))
	if cmd == nil {
		t.Fatal("Expected a query command")
	}
	if m.pipeline.Generation() != before+1 {
		t.Errorf("Expected a new query generation")
	}
	if m.picker.Animate() {
		t.Error("Expected typing to turn off change highlighting")
	}
}

func TestEnterSelectsTypedTerm(t *testing.T) {
	m, events := loaded(t)
	selections := events.SubredditSelected.Subscribe(t.Context())
	m = searched(t, m, "")

	m.input.SetValue("  rust ")
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Expected a feed load")
	}
	if m.state != StateFeed {
		t.Errorf("Expected picker to close, got state %d", m.state)
	}
	if m.subreddit != "rust" {
		t.Errorf("Expected subreddit rust, got %q", m.subreddit)
	}
	if ev := receive(t, selections); ev.Name != "rust" || !ev.New {
		t.Errorf("Unexpected selection %+v", ev)
	}
}

func TestChipSelection(t *testing.T) {
	m, events := loaded(t)
	selections := events.SubredditSelected.Subscribe(t.Context())
	m = searched(t, m, "")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	if !m.chipsFocused {
		t.Fatal("Expected down to move focus to the chips")
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})

	if ev := receive(t, selections); ev.Name != "golang" || ev.New {
		t.Errorf("Unexpected selection %+v", ev)
	}
	if m.state != StateFeed {
		t.Errorf("Expected picker to close, got state %d", m.state)
	}
}

func TestOptionsMenu(t *testing.T) {
	m, _ := loaded(t)
	m = searched(t, m, "")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, runes("o"))
	if m.state != StateOptions {
		t.Fatalf("Expected StateOptions, got %d", m.state)
	}
	r, _ := m.picker.Selected()
	if !r.Focused {
		t.Error("Expected the chip to be tinted while its options are open")
	}
	if m.optionsEntry.Name != "AskReddit" {
		t.Errorf("Expected options for AskReddit, got %q", m.optionsEntry.Name)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != StatePicker {
		t.Errorf("Expected StatePicker after esc, got %d", m.state)
	}
	if r.Focused {
		t.Error("Expected tint to clear when options close")
	}
}

func TestOptionAppliesAndAnimates(t *testing.T) {
	m, _ := loaded(t)
	m = searched(t, m, "")

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})
	m, _ = update(t, m, runes("o"))
	entry := m.optionsEntry

	// AskReddit is not the default: set default, unsubscribe, hide.
	m, _ = update(t, m, runes("j"))
	m, _ = update(t, m, runes("j"))
	if m.options[m.optionCursor] != OptionHide {
		t.Fatalf("Expected hide to be selected, got %v", m.options[m.optionCursor])
	}
	m, cmd := update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if cmd == nil {
		t.Fatal("Expected a store command")
	}
	if !m.picker.Animate() {
		t.Error("Expected options to turn change highlighting back on")
	}
	r, _ := m.picker.Row(row.SubredditItem{Entry: entry}.AdapterID())
	if r.Pending != subscription.PendingInFlight {
		t.Errorf("Expected pending chip, got %v", r.Pending)
	}

	m, _ = update(t, m, applyOption(m.deps.Subscriptions, OptionHide, entry)())
	if _, ok := m.pending[entry.Key()]; ok {
		t.Error("Expected pending state to clear")
	}
	m = searched(t, m, "")

	r, _ = m.picker.Row(row.SubredditItem{Entry: entry}.AdapterID())
	item := r.Model().(row.SubredditItem)
	if !item.Hidden {
		t.Error("Expected chip to be hidden")
	}
	if !m.picker.Highlighted(r.ID) {
		t.Error("Expected the changed chip to be highlighted")
	}
	if full, partial := r.Renders(); full != 1 || partial == 0 {
		t.Errorf("Expected partial updates only, got full=%d partial=%d", full, partial)
	}
}

func TestOptionFailureMarksChip(t *testing.T) {
	m, _ := loaded(t)
	m = searched(t, m, "")
	entry := subscription.Entry{Name: "golang"}

	m, _ = update(t, m, SubscriptionChangedMsg{Option: OptionHide, Entry: entry, Err: errors.New("locked")})
	r, _ := m.picker.Row(row.SubredditItem{Entry: entry}.AdapterID())
	if r.Pending != subscription.PendingFailed {
		t.Errorf("Expected failed chip, got %v", r.Pending)
	}
	if m.err == nil {
		t.Error("Expected error to be shown")
	}
}

func TestOptionsFor(t *testing.T) {
	tests := []struct {
		name  string
		entry subscription.Entry
		want  []Option
	}{
		{"plain", subscription.Entry{Name: "a"}, []Option{OptionSetDefault, OptionUnsubscribe, OptionHide}},
		{"default", subscription.Entry{Name: "a", Default: true}, []Option{OptionUnsubscribe, OptionHide}},
		{"hidden", subscription.Entry{Name: "a", Hidden: true}, []Option{OptionSetDefault, OptionUnsubscribe, OptionUnhide}},
		{"synthetic", subscription.Entry{Name: "a", Synthetic: true}, []Option{OptionSubscribe}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := optionsFor(tt.entry)
			if len(got) != len(tt.want) {
				t.Fatalf("optionsFor() = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("optionsFor()[%d] = %v, want %v", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestManageToggle(t *testing.T) {
	m, _ := loaded(t)
	m = searched(t, m, "")
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyDown})

	m, cmd := update(t, m, runes("e"))
	if m.sheet.State() != sheet.ManageSubs {
		t.Fatalf("Expected manage state, got %v", m.sheet.State())
	}
	if cmd == nil {
		t.Error("Expected a frame command")
	}

	// Esc leaves manage before it closes the picker.
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.sheet.State() != sheet.BrowseSubs {
		t.Errorf("Expected browse state, got %v", m.sheet.State())
	}
	if m.state != StatePicker {
		t.Errorf("Expected picker to stay open, got %d", m.state)
	}

	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEsc})
	if m.state != StateFeed {
		t.Errorf("Expected picker to close, got %d", m.state)
	}
}

func TestWindowSizeMessage(t *testing.T) {
	m, _ := newTestModel(t)

	m, _ = update(t, m, tea.WindowSizeMsg{Width: 120, Height: 50})
	if m.width != 120 {
		t.Errorf("Expected width 120, got %d", m.width)
	}
	if m.height != 50 {
		t.Errorf("Expected height 50, got %d", m.height)
	}
	if got := m.sheet.Geometry().ContainerHeight; got != 48 {
		t.Errorf("Expected sheet container 48, got %d", got)
	}
}

func TestKeyMapFromConfig(t *testing.T) {
	keysConfig := &config.KeysConfig{
		Up:     "up,k,w",
		Down:   "down,j,x",
		Open:   "enter,l",
		Manage: "m",
	}

	km := KeyMapFromConfig(keysConfig)

	// Check that custom keys work
	if !key.Matches(runes("w"), km.Up) {
		t.Error("Expected 'w' to match Up binding")
	}

	if !key.Matches(runes("x"), km.Down) {
		t.Error("Expected 'x' to match Down binding")
	}

	if !key.Matches(runes("l"), km.Open) {
		t.Error("Expected 'l' to match Open binding")
	}

	if !key.Matches(runes("m"), km.Manage) {
		t.Error("Expected 'm' to match Manage binding")
	}

	// Unset keys keep their defaults
	if !key.Matches(runes("?"), km.Help) {
		t.Error("Expected '?' to keep matching Help")
	}
}

func TestHelpToggle(t *testing.T) {
	m, _ := loaded(t)

	m, _ = update(t, m, runes("?"))
	if m.state != StateHelp {
		t.Fatalf("Expected StateHelp after '?', got %d", m.state)
	}
	m, _ = update(t, m, tea.KeyMsg{Type: tea.KeyEnter})
	if m.state != StateFeed {
		t.Errorf("Expected StateFeed after closing help, got %d", m.state)
	}
}

func TestShouldQuit(t *testing.T) {
	m, _ := loaded(t)

	if m.ShouldQuit() {
		t.Error("ShouldQuit should be false initially")
	}

	m, cmd := update(t, m, runes("q"))
	if !m.ShouldQuit() {
		t.Error("ShouldQuit should be true after q")
	}
	if cmd == nil {
		t.Error("Expected quit command")
	}
}

func TestQuitKeyTypesInPicker(t *testing.T) {
	m, _ := loaded(t)
	m = searched(t, m, "")

	m, _ = update(t, m, runes("q"))
	if m.ShouldQuit() {
		t.Error("q in the search field should type, not quit")
	}
	if m.input.Value() != "q" {
		t.Errorf("Expected search value 'q', got %q", m.input.Value())
	}
}

func TestViewRenders(t *testing.T) {
	m, _ := loaded(t)
	if v := m.View(); v == "" {
		t.Error("Expected non-empty view")
	}
	m = searched(t, m, "")
	if v := m.View(); v == "" {
		t.Error("Expected non-empty view with the picker open")
	}
}
