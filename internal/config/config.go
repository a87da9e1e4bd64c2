// Package config handles frontpage configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"slices"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"
)

// Config represents frontpage configuration.
type Config struct {
	General GeneralConfig `toml:"general"`
	Store   StoreConfig   `toml:"store"`
	Feed    FeedConfig    `toml:"feed"`
	Search  SearchConfig  `toml:"search"`
	Sheet   SheetConfig   `toml:"sheet"`
	UI      UIConfig      `toml:"ui"`
	Keys    KeysConfig    `toml:"keys"`
}

// GeneralConfig contains general settings.
type GeneralConfig struct {
	// Subreddit shown on startup when no default subscription is set
	DefaultSubreddit string `toml:"default_subreddit"`

	// Command used to open links (empty = platform opener)
	// Template variables: {url}, {permalink}, {title}, {subreddit}
	OpenCommand string `toml:"open_command"`

	// Subscriptions created on first run
	Subscriptions []string `toml:"subscriptions"`
}

// StoreConfig contains settings for the subscription store.
type StoreConfig struct {
	// Backend: "sqlite" or "file"
	Backend string `toml:"backend"`

	// Path of the database or JSON file (empty = data directory)
	Path string `toml:"path"`
}

// FeedConfig contains settings for loading submissions.
type FeedConfig struct {
	// Feed URL, {subreddit} is replaced by the subreddit name
	URLTemplate string `toml:"url_template"`

	// Maximum number of submissions shown
	Limit int `toml:"limit"`

	// Request timeout in seconds
	TimeoutSeconds int `toml:"timeout_seconds"`
}

// SearchConfig contains settings for the subreddit picker search.
type SearchConfig struct {
	// Delay before a typed query is looked up
	DebounceMS int `toml:"debounce_ms"`

	// Show hidden subscriptions in results
	IncludeHidden bool `toml:"include_hidden"`
}

// SheetConfig contains settings for the picker sheet, in terminal lines.
type SheetConfig struct {
	AnimationMS      int `toml:"animation_ms"`
	CollapsedHeight  int `toml:"collapsed_height"`
	TopOffset        int `toml:"top_offset"`
	ShadowMargin     int `toml:"shadow_margin"`
	SaveButtonHeight int `toml:"save_button_height"`
}

// UIConfig contains UI settings.
type UIConfig struct {
	// Image style for remote thumbnails: "none", "thumbnail" or "large"
	ImageStyle string `toml:"image_style"`

	// Show thumbnails left of the title
	ThumbnailsOnLeft bool `toml:"thumbnails_on_left"`

	// Color theme: auto, dark, light
	Theme string `toml:"theme"`
}

// KeysConfig contains keybinding settings.
type KeysConfig struct {
	Up        string `toml:"up"`
	Down      string `toml:"down"`
	Home      string `toml:"home"`
	End       string `toml:"end"`
	Open      string `toml:"open"`
	Thumbnail string `toml:"thumbnail"`
	Picker    string `toml:"picker"`
	Manage    string `toml:"manage"`
	Options   string `toml:"options"`
	Save      string `toml:"save"`
	Upvote    string `toml:"upvote"`
	Downvote  string `toml:"downvote"`
	Browser   string `toml:"browser"`
	Refresh   string `toml:"refresh"`
	Help      string `toml:"help"`
	Back      string `toml:"back"`
	Quit      string `toml:"quit"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		General: GeneralConfig{
			DefaultSubreddit: "frontpage",
			OpenCommand:      "",
			Subscriptions:    []string{"AskReddit", "golang", "pics", "programming", "todayilearned", "worldnews"},
		},
		Store: StoreConfig{
			Backend: "sqlite",
			Path:    "",
		},
		Feed: FeedConfig{
			URLTemplate:    "https://www.reddit.com/r/{subreddit}/.rss",
			Limit:          50,
			TimeoutSeconds: 15,
		},
		Search: SearchConfig{
			DebounceMS:    150,
			IncludeHidden: true,
		},
		Sheet: SheetConfig{
			AnimationMS:      300,
			CollapsedHeight:  10,
			TopOffset:        2,
			ShadowMargin:     1,
			SaveButtonHeight: 1,
		},
		UI: UIConfig{
			ImageStyle:       "thumbnail",
			ThumbnailsOnLeft: false,
			Theme:            "auto",
		},
		Keys: KeysConfig{
			Up:        "up,k",
			Down:      "down,j",
			Home:      "home,g",
			End:       "end,G",
			Open:      "enter",
			Thumbnail: "t",
			Picker:    "tab",
			Manage:    "e",
			Options:   "o",
			Save:      "s",
			Upvote:    "+,u",
			Downvote:  "-,d",
			Browser:   "b",
			Refresh:   "r",
			Help:      "?",
			Back:      "esc",
			Quit:      "q,ctrl+c",
		},
	}
}

// Debounce returns the search debounce as a duration.
func (c SearchConfig) Debounce() time.Duration {
	return time.Duration(c.DebounceMS) * time.Millisecond
}

// Duration returns the sheet animation length.
func (c SheetConfig) Duration() time.Duration {
	return time.Duration(c.AnimationMS) * time.Millisecond
}

// Timeout returns the feed request timeout.
func (c FeedConfig) Timeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// ConfigPath returns the path to the config file.
// Uses ~/.config/frontpage/config.toml (XDG style) on all Unix systems.
func ConfigPath() string {
	// Respect XDG_CONFIG_HOME if set
	if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
		return filepath.Join(xdgConfig, "frontpage", "config.toml")
	}
	// Default to ~/.config on Unix (including macOS)
	home := os.Getenv("HOME")
	if home != "" {
		return filepath.Join(home, ".config", "frontpage", "config.toml")
	}
	// Fallback to os.UserConfigDir() for Windows
	configDir, err := os.UserConfigDir()
	if err != nil {
		return filepath.Join(".", "frontpage", "config.toml")
	}
	return filepath.Join(configDir, "frontpage", "config.toml")
}

// DataDir returns the directory holding the subscription store and logs.
// Uses ~/.local/share/frontpage unless XDG_DATA_HOME is set.
func DataDir() string {
	if xdgData := os.Getenv("XDG_DATA_HOME"); xdgData != "" {
		return filepath.Join(xdgData, "frontpage")
	}
	home := os.Getenv("HOME")
	if home != "" {
		return filepath.Join(home, ".local", "share", "frontpage")
	}
	return filepath.Join(".", "frontpage")
}

// StorePath returns the configured store path, or the backend's default
// file in DataDir.
func (c *Config) StorePath() string {
	if c.Store.Path != "" {
		return c.Store.Path
	}
	if c.Store.Backend == "file" {
		return filepath.Join(DataDir(), "subscriptions.json")
	}
	return filepath.Join(DataDir(), "subscriptions.db")
}

// IsFirstRun returns true if no config file exists.
func IsFirstRun() bool {
	_, err := os.Stat(ConfigPath())
	return os.IsNotExist(err)
}

// Load loads configuration from the config file.
func Load() (*Config, error) {
	return LoadFromPath(ConfigPath())
}

// LoadFromPath loads configuration from a specific path.
func LoadFromPath(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			// No config file, use defaults
			return cfg, nil
		}
		return nil, err
	}

	// go-toml/v2 only overwrites fields present in the file, so defaults
	// survive for everything else.
	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save saves configuration to the config file.
func Save(cfg *Config) error {
	path := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// CreateDefaultConfigFile creates a default config file with comments.
func CreateDefaultConfigFile() error {
	path := ConfigPath()

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}

	content := generateDefaultConfigContent()
	return os.WriteFile(path, []byte(content), 0644)
}

// generateDefaultConfigContent generates a commented config file.
func generateDefaultConfigContent() string {
	var b strings.Builder
	cfg := DefaultConfig()

	b.WriteString("# frontpage configuration\n\n")

	b.WriteString("[general]\n")
	b.WriteString("# Subreddit shown on startup when no default subscription is set\n")
	fmt.Fprintf(&b, "default_subreddit = %q\n", cfg.General.DefaultSubreddit)
	b.WriteString("# Command used to open links (platform opener if not set)\n")
	b.WriteString("# Template variables: {url}, {permalink}, {title}, {subreddit}\n")
	b.WriteString("# Variables are shell-escaped for safety.\n")
	b.WriteString("# open_command = \"firefox {url}\"\n")
	b.WriteString("# Subscriptions created on first run\n")
	fmt.Fprintf(&b, "subscriptions = [%s]\n\n", quoteList(cfg.General.Subscriptions))

	b.WriteString("[store]\n")
	b.WriteString("# Subscription store: \"sqlite\" or \"file\"\n")
	fmt.Fprintf(&b, "backend = %q\n", cfg.Store.Backend)
	b.WriteString("# Store location (defaults to the data directory)\n")
	b.WriteString("# path = \"~/.local/share/frontpage/subscriptions.db\"\n\n")

	b.WriteString("[feed]\n")
	b.WriteString("# Feed URL, {subreddit} is replaced by the subreddit name\n")
	fmt.Fprintf(&b, "url_template = %q\n", cfg.Feed.URLTemplate)
	b.WriteString("# Maximum number of submissions shown\n")
	fmt.Fprintf(&b, "limit = %d\n", cfg.Feed.Limit)
	b.WriteString("# Request timeout in seconds\n")
	fmt.Fprintf(&b, "timeout_seconds = %d\n\n", cfg.Feed.TimeoutSeconds)

	b.WriteString("[search]\n")
	b.WriteString("# Delay in milliseconds before a typed query is looked up\n")
	fmt.Fprintf(&b, "debounce_ms = %d\n", cfg.Search.DebounceMS)
	b.WriteString("# Show hidden subscriptions in picker results\n")
	fmt.Fprintf(&b, "include_hidden = %v\n\n", cfg.Search.IncludeHidden)

	b.WriteString("[sheet]\n")
	b.WriteString("# Picker sheet animation length in milliseconds\n")
	fmt.Fprintf(&b, "animation_ms = %d\n", cfg.Sheet.AnimationMS)
	b.WriteString("# Sizes in terminal lines\n")
	fmt.Fprintf(&b, "collapsed_height = %d\n", cfg.Sheet.CollapsedHeight)
	fmt.Fprintf(&b, "top_offset = %d\n", cfg.Sheet.TopOffset)
	fmt.Fprintf(&b, "shadow_margin = %d\n", cfg.Sheet.ShadowMargin)
	fmt.Fprintf(&b, "save_button_height = %d\n\n", cfg.Sheet.SaveButtonHeight)

	b.WriteString("[ui]\n")
	b.WriteString("# Remote thumbnails: \"none\", \"thumbnail\" or \"large\"\n")
	fmt.Fprintf(&b, "image_style = %q\n", cfg.UI.ImageStyle)
	b.WriteString("# Show thumbnails left of the title\n")
	fmt.Fprintf(&b, "thumbnails_on_left = %v\n", cfg.UI.ThumbnailsOnLeft)
	b.WriteString("# Color theme: \"auto\", \"dark\", or \"light\"\n")
	fmt.Fprintf(&b, "theme = %q\n\n", cfg.UI.Theme)

	b.WriteString("[keys]\n")
	b.WriteString("# Keybindings (comma-separated for multiple keys)\n")
	fmt.Fprintf(&b, "# up = %q\n", cfg.Keys.Up)
	fmt.Fprintf(&b, "# down = %q\n", cfg.Keys.Down)
	fmt.Fprintf(&b, "# open = %q\n", cfg.Keys.Open)
	fmt.Fprintf(&b, "# thumbnail = %q\n", cfg.Keys.Thumbnail)
	fmt.Fprintf(&b, "# picker = %q\n", cfg.Keys.Picker)
	fmt.Fprintf(&b, "# manage = %q\n", cfg.Keys.Manage)
	fmt.Fprintf(&b, "# options = %q\n", cfg.Keys.Options)
	fmt.Fprintf(&b, "# save = %q\n", cfg.Keys.Save)
	fmt.Fprintf(&b, "# upvote = %q\n", cfg.Keys.Upvote)
	fmt.Fprintf(&b, "# downvote = %q\n", cfg.Keys.Downvote)
	fmt.Fprintf(&b, "# browser = %q\n", cfg.Keys.Browser)
	fmt.Fprintf(&b, "# refresh = %q\n", cfg.Keys.Refresh)
	fmt.Fprintf(&b, "# help = %q\n", cfg.Keys.Help)
	fmt.Fprintf(&b, "# quit = %q\n", cfg.Keys.Quit)

	return b.String()
}

func quoteList(items []string) string {
	quoted := make([]string, 0, len(items))
	for _, s := range items {
		quoted = append(quoted, fmt.Sprintf("%q", s))
	}
	return strings.Join(quoted, ", ")
}

// Validate validates the configuration and returns warnings.
func (c *Config) Validate() []string {
	var warnings []string

	// Check template variables in the open command
	validVars := []string{"{url}", "{permalink}", "{title}", "{subreddit}"}
	for _, v := range extractTemplateVars(c.General.OpenCommand) {
		if !slices.Contains(validVars, v) {
			warnings = append(warnings, fmt.Sprintf("Unknown template variable in general.open_command: %s", v))
		}
	}

	if c.Store.Backend != "" &&
		c.Store.Backend != "sqlite" &&
		c.Store.Backend != "file" {
		warnings = append(warnings, fmt.Sprintf("Invalid value for store.backend: %s (expected sqlite or file)", c.Store.Backend))
	}

	// The feed template must name the subreddit
	for _, v := range extractTemplateVars(c.Feed.URLTemplate) {
		if v != "{subreddit}" {
			warnings = append(warnings, fmt.Sprintf("Unknown template variable in feed.url_template: %s", v))
		}
	}
	if !strings.Contains(c.Feed.URLTemplate, "{subreddit}") {
		warnings = append(warnings, "feed.url_template does not contain {subreddit}")
	}
	if c.Feed.Limit <= 0 {
		warnings = append(warnings, fmt.Sprintf("feed.limit must be positive, got %d", c.Feed.Limit))
	}
	if c.Feed.TimeoutSeconds <= 0 {
		warnings = append(warnings, fmt.Sprintf("feed.timeout_seconds must be positive, got %d", c.Feed.TimeoutSeconds))
	}

	if c.Search.DebounceMS < 0 || c.Search.DebounceMS > 2000 {
		warnings = append(warnings, fmt.Sprintf("search.debounce_ms must be 0-2000, got %d", c.Search.DebounceMS))
	}

	if c.Sheet.AnimationMS <= 0 {
		warnings = append(warnings, fmt.Sprintf("sheet.animation_ms must be positive, got %d", c.Sheet.AnimationMS))
	}
	if c.Sheet.CollapsedHeight < 3 {
		warnings = append(warnings, fmt.Sprintf("sheet.collapsed_height must be at least 3, got %d", c.Sheet.CollapsedHeight))
	}
	if c.Sheet.TopOffset < 0 || c.Sheet.ShadowMargin < 0 || c.Sheet.SaveButtonHeight < 0 {
		warnings = append(warnings, "sheet sizes must not be negative")
	}

	if c.UI.ImageStyle != "" &&
		c.UI.ImageStyle != "none" &&
		c.UI.ImageStyle != "thumbnail" &&
		c.UI.ImageStyle != "large" {
		warnings = append(warnings, fmt.Sprintf("Invalid value for ui.image_style: %s (expected none, thumbnail, or large)", c.UI.ImageStyle))
	}

	// Check theme value
	if c.UI.Theme != "" &&
		c.UI.Theme != "auto" &&
		c.UI.Theme != "dark" &&
		c.UI.Theme != "light" {
		warnings = append(warnings, fmt.Sprintf("Invalid value for ui.theme: %s (expected auto, dark, or light)", c.UI.Theme))
	}

	return warnings
}

// extractTemplateVars extracts template variables from a string.
func extractTemplateVars(s string) []string {
	re := regexp.MustCompile(`\{[^}]+\}`)
	return re.FindAllString(s, -1)
}
