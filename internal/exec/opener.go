package exec

import (
	"os"
	osExec "os/exec"
	"runtime"
	"strings"
)

// OpenerBackend knows how the current environment opens links.
type OpenerBackend interface {
	// Name returns the human-readable name (e.g., "xdg-open", "open").
	Name() string

	// DefaultOpenCommand returns the command template used when
	// general.open_command is not set. Empty means links cannot be opened.
	DefaultOpenCommand() string
}

// browserEnvBackend honours $BROWSER.
type browserEnvBackend struct {
	browser string
}

func (b *browserEnvBackend) Name() string {
	return "$BROWSER"
}

func (b *browserEnvBackend) DefaultOpenCommand() string {
	// $BROWSER may list fallbacks separated by colons; use the first.
	first, _, _ := strings.Cut(b.browser, ":")
	if strings.Contains(first, "%s") {
		return strings.ReplaceAll(first, "%s", "{url}")
	}
	return first + " {url}"
}

// darwinBackend implements OpenerBackend for macOS.
type darwinBackend struct{}

func (d *darwinBackend) Name() string               { return "open" }
func (d *darwinBackend) DefaultOpenCommand() string { return "open {url}" }

// wslBackend hands links to the Windows host.
type wslBackend struct{}

func (w *wslBackend) Name() string               { return "wslview" }
func (w *wslBackend) DefaultOpenCommand() string { return "wslview {url}" }

// xdgBackend implements OpenerBackend for freedesktop systems.
type xdgBackend struct{}

func (x *xdgBackend) Name() string               { return "xdg-open" }
func (x *xdgBackend) DefaultOpenCommand() string { return "xdg-open {url} >/dev/null 2>&1" }

// noneBackend is used when nothing suitable was found.
type noneBackend struct{}

func (n *noneBackend) Name() string               { return "" }
func (n *noneBackend) DefaultOpenCommand() string { return "" }

// lookPath is swapped out in tests.
var lookPath = osExec.LookPath

// Backend returns the OpenerBackend for the current environment.
// The backend is cached for the lifetime of the process.
var openerBackend OpenerBackend

func Backend() OpenerBackend {
	if openerBackend != nil {
		return openerBackend
	}
	openerBackend = detectBackend(os.Getenv, runtime.GOOS)
	return openerBackend
}

func detectBackend(getenv func(string) string, goos string) OpenerBackend {
	if browser := getenv("BROWSER"); browser != "" {
		return &browserEnvBackend{browser: browser}
	}

	if goos == "darwin" {
		return &darwinBackend{}
	}

	// WSL inherits a Linux environment but has no desktop of its own
	if getenv("WSL_DISTRO_NAME") != "" {
		if _, err := lookPath("wslview"); err == nil {
			return &wslBackend{}
		}
	}

	if _, err := lookPath("xdg-open"); err == nil {
		return &xdgBackend{}
	}
	return &noneBackend{}
}

// ResetBackend resets the cached backend (useful for testing).
func ResetBackend() {
	openerBackend = nil
}
