package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"path/filepath"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/henri123lemoine/frontpage/internal/app"
	"github.com/henri123lemoine/frontpage/internal/config"
	"github.com/henri123lemoine/frontpage/internal/debug"
	"github.com/henri123lemoine/frontpage/internal/event"
	"github.com/henri123lemoine/frontpage/internal/exec"
	"github.com/henri123lemoine/frontpage/internal/feed"
	"github.com/henri123lemoine/frontpage/internal/imageload"
	"github.com/henri123lemoine/frontpage/internal/submission"
	"github.com/henri123lemoine/frontpage/internal/subscription"
)

var rootCmd = &cobra.Command{
	Use:   "frontpage [subreddit]",
	Short: "Read subreddit feeds in the terminal",
	Long: `frontpage shows a subreddit feed and a picker for your subscriptions.
Without an argument it opens your default subreddit.`,
	Example: `
# Open the default subreddit
frontpage

# Open r/golang with a file-backed store
frontpage golang --store ~/subs.json
  `,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          run,
}

var initConfigCmd = &cobra.Command{
	Use:   "init-config",
	Short: "Write a commented default config file",
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if !config.IsFirstRun() && !force {
			return fmt.Errorf("%s already exists (use --force to overwrite)", config.ConfigPath())
		}
		if err := config.CreateDefaultConfigFile(); err != nil {
			return err
		}
		fmt.Println(config.ConfigPath())
		return nil
	},
}

var dirsCmd = &cobra.Command{
	Use:   "dirs",
	Short: "Print directories used by frontpage",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Printf("Config file:    %s\n", config.ConfigPath())
		fmt.Printf("Data directory: %s\n", config.DataDir())
		return nil
	},
}

func init() {
	rootCmd.Flags().String("config", "", "Path to the config file")
	rootCmd.Flags().Bool("debug", false, "Write a debug log to the data directory")
	rootCmd.Flags().String("store", "", "Path of the subscription store")
	initConfigCmd.Flags().Bool("force", false, "Overwrite an existing config file")

	rootCmd.AddCommand(initConfigCmd, dirsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, args []string) error {
	configPath, _ := cmd.Flags().GetString("config")
	debugOn, _ := cmd.Flags().GetBool("debug")
	storePath, _ := cmd.Flags().GetString("store")

	// Load configuration
	if configPath == "" {
		configPath = config.ConfigPath()
	}
	cfg, err := config.LoadFromPath(configPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	for _, w := range cfg.Validate() {
		fmt.Fprintf(os.Stderr, "Warning: %s\n", w)
	}
	if storePath != "" {
		cfg.Store.Path = storePath
	}

	if debugOn {
		if err := debug.Enable(filepath.Join(config.DataDir(), "debug.log")); err != nil {
			return fmt.Errorf("enabling debug log: %w", err)
		}
		defer debug.Close()
	}
	log := debug.Logger()

	store, err := openStore(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	client := &http.Client{Timeout: cfg.Feed.Timeout()}
	source, err := feed.New(feed.Options{
		URLTemplate: cfg.Feed.URLTemplate,
		Limit:       cfg.Feed.Limit,
		Timeout:     cfg.Feed.Timeout(),
		Client:      client,
	})
	if err != nil {
		return err
	}

	events := event.NewEvents()
	defer events.Shutdown()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go handleEvents(ctx, events, cfg.General.OpenCommand, log)

	model := app.New(cfg, app.Deps{
		Subscriptions: subscription.NewManager(store, log, cfg.General.DefaultSubreddit),
		Feed:          source,
		Images:        imageload.NewLoader(client),
		Events:        events,
		Logger:        log,
	})
	if len(args) == 1 {
		model = model.WithSubreddit(args[0])
	}
	defer model.Close()

	// Create and run the application
	p := tea.NewProgram(model, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		return err
	}
	return nil
}

func openStore(ctx context.Context, cfg *config.Config) (subscription.Store, error) {
	path := cfg.StorePath()
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, err
	}
	store, err := subscription.Open(cfg.Store.Backend, path)
	if err != nil {
		return nil, fmt.Errorf("opening subscription store: %w", err)
	}

	seed := cfg.General.Subscriptions
	if len(seed) == 0 {
		seed = subscription.DefaultSubreddits
	}
	if err := subscription.Seed(ctx, store, seed); err != nil {
		store.Close()
		return nil, fmt.Errorf("seeding subscriptions: %w", err)
	}
	return store, nil
}

// handleEvents opens links for click and swipe events and logs the rest
// until ctx is done.
func handleEvents(ctx context.Context, events *event.Events, openCommand string, log *slog.Logger) {
	clicks := events.SubmissionClicked.Subscribe(ctx)
	thumbs := events.ThumbnailClicked.Subscribe(ctx)
	swipes := events.SwipePerformed.Subscribe(ctx)
	selections := events.SubredditSelected.Subscribe(ctx)

	open := func(t exec.Target) {
		if err := exec.OpenDetached(openCommand, t); err != nil {
			log.Error("Couldn't open link", "url", t.URL, "error", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-clicks:
			if !ok {
				return
			}
			// A submission click opens the discussion.
			t := exec.TargetFor(ev.Submission)
			t.URL = t.Permalink
			open(t)
		case ev, ok := <-thumbs:
			if !ok {
				return
			}
			open(exec.TargetFor(ev.Submission))
		case ev, ok := <-swipes:
			if !ok {
				return
			}
			log.Info("Swipe", "action", ev.Action, "id", ev.Submission.ID)
			if ev.Action == submission.SwipeNewTab {
				open(exec.TargetFor(ev.Submission))
			}
		case ev, ok := <-selections:
			if !ok {
				return
			}
			log.Info("Subreddit selected", "name", ev.Name, "new", ev.New)
		}
	}
}
