// Package exec handles executing external commands.
package exec

import (
	"errors"
	"os"
	"os/exec"
	"strings"

	"github.com/henri123lemoine/frontpage/internal/submission"
)

// ErrNoOpener is returned when no open command is configured and none could
// be detected.
var ErrNoOpener = errors.New("no command to open links; set general.open_command")

// Target is what an open command acts on.
type Target struct {
	URL       string
	Permalink string
	Title     string
	Subreddit string
}

const redditBase = "https://www.reddit.com"

// TargetFor returns the open target of a submission. Self posts open their
// comments page.
func TargetFor(s submission.Submission) Target {
	permalink := s.Permalink
	if strings.HasPrefix(permalink, "/") {
		permalink = redditBase + permalink
	}
	url := s.URL
	if url == "" || s.IsSelf {
		url = permalink
	}
	return Target{
		URL:       url,
		Permalink: permalink,
		Title:     s.Title,
		Subreddit: s.Subreddit,
	}
}

// Open executes the open command for a target and waits for it.
func Open(command string, t Target) error {
	expanded, err := resolve(command, t)
	if err != nil {
		return err
	}

	// Execute via shell
	cmd := exec.Command("sh", "-c", expanded)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	cmd.Stdin = os.Stdin

	return cmd.Run()
}

// OpenDetached executes the open command in a detached process.
// This is what the TUI uses so a browser never blocks the screen.
func OpenDetached(command string, t Target) error {
	expanded, err := resolve(command, t)
	if err != nil {
		return err
	}

	cmd := exec.Command("sh", "-c", expanded)
	cmd.Stdout = nil
	cmd.Stderr = nil
	cmd.Stdin = nil

	// Start the process but don't wait for it
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}

func resolve(command string, t Target) (string, error) {
	if command == "" {
		command = Backend().DefaultOpenCommand()
	}
	if command == "" {
		return "", ErrNoOpener
	}
	return expandTemplate(command, t), nil
}

// expandTemplate expands template variables in the command.
// Every value is shell-quoted.
func expandTemplate(command string, t Target) string {
	r := strings.NewReplacer(
		"{url}", shellQuote(t.URL),
		"{permalink}", shellQuote(t.Permalink),
		"{title}", shellQuote(t.Title),
		"{subreddit}", shellQuote(t.Subreddit),
	)
	return r.Replace(command)
}

// shellQuote quotes s for sh when it contains anything beyond a safe set.
func shellQuote(s string) string {
	if s == "" {
		return "''"
	}
	safe := true
	for _, r := range s {
		if !isSafeShellRune(r) {
			safe = false
			break
		}
	}
	if safe {
		return s
	}
	return "'" + strings.ReplaceAll(s, "'", `'"'"'`) + "'"
}

func isSafeShellRune(r rune) bool {
	switch {
	case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		return true
	}
	return strings.ContainsRune("/._-:+,@%=", r)
}
