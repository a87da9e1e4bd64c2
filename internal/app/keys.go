package app

import (
	"strings"

	"github.com/charmbracelet/bubbles/key"

	"github.com/henri123lemoine/frontpage/internal/config"
	"github.com/henri123lemoine/frontpage/internal/ui"
)

// KeyMap defines all keybindings.
type KeyMap struct {
	// Navigation
	Up   key.Binding
	Down key.Binding
	Home key.Binding
	End  key.Binding

	// Feed
	Open      key.Binding
	Thumbnail key.Binding
	Save      key.Binding
	Upvote    key.Binding
	Downvote  key.Binding
	Browser   key.Binding
	Refresh   key.Binding

	// Picker
	Picker  key.Binding
	Manage  key.Binding
	Options key.Binding

	// General
	Back key.Binding
	Quit key.Binding
	Help key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Home: key.NewBinding(
			key.WithKeys("home", "g"),
			key.WithHelp("g/home", "first"),
		),
		End: key.NewBinding(
			key.WithKeys("end", "G"),
			key.WithHelp("G/end", "last"),
		),
		Open: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "open"),
		),
		Thumbnail: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "open image"),
		),
		Save: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "save"),
		),
		Upvote: key.NewBinding(
			key.WithKeys("+", "u"),
			key.WithHelp("+/u", "upvote"),
		),
		Downvote: key.NewBinding(
			key.WithKeys("-", "d"),
			key.WithHelp("-/d", "downvote"),
		),
		Browser: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "open link"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "refresh"),
		),
		Picker: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "subreddits"),
		),
		Manage: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "manage"),
		),
		Options: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "options"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
	}
}

// KeyMapFromConfig creates a KeyMap from config settings. Empty settings keep
// the default binding.
func KeyMapFromConfig(cfg *config.KeysConfig) KeyMap {
	km := DefaultKeyMap()

	override(&km.Up, cfg.Up, "up")
	override(&km.Down, cfg.Down, "down")
	override(&km.Home, cfg.Home, "first")
	override(&km.End, cfg.End, "last")
	override(&km.Open, cfg.Open, "open")
	override(&km.Thumbnail, cfg.Thumbnail, "open image")
	override(&km.Save, cfg.Save, "save")
	override(&km.Upvote, cfg.Upvote, "upvote")
	override(&km.Downvote, cfg.Downvote, "downvote")
	override(&km.Browser, cfg.Browser, "open link")
	override(&km.Refresh, cfg.Refresh, "refresh")
	override(&km.Picker, cfg.Picker, "subreddits")
	override(&km.Manage, cfg.Manage, "manage")
	override(&km.Options, cfg.Options, "options")
	override(&km.Back, cfg.Back, "back")
	override(&km.Quit, cfg.Quit, "quit")
	override(&km.Help, cfg.Help, "help")

	return km
}

func override(b *key.Binding, keys, desc string) {
	if keys == "" {
		return
	}
	*b = key.NewBinding(
		key.WithKeys(parseKeys(keys)...),
		key.WithHelp(strings.ReplaceAll(keys, ",", "/"), desc),
	)
}

// parseKeys parses a comma-separated list of keys.
func parseKeys(s string) []string {
	parts := strings.Split(s, ",")
	var keys []string
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			keys = append(keys, p)
		}
	}
	return keys
}

// HelpSections returns the bindings shown on the help screen.
func (k KeyMap) HelpSections() []ui.HelpSection {
	section := func(title string, bs ...key.Binding) ui.HelpSection {
		s := ui.HelpSection{Title: title}
		for _, b := range bs {
			h := b.Help()
			s.Bindings = append(s.Bindings, ui.HelpBinding{Keys: h.Key, Desc: h.Desc})
		}
		return s
	}
	return []ui.HelpSection{
		section("Navigation", k.Up, k.Down, k.Home, k.End),
		section("Feed", k.Open, k.Thumbnail, k.Browser, k.Save, k.Upvote, k.Downvote, k.Refresh),
		section("Subreddits", k.Picker, k.Manage, k.Options, k.Back),
		section("General", k.Help, k.Quit),
	}
}
