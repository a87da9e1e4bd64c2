package ui

import (
	"strings"
	"testing"

	"github.com/henri123lemoine/frontpage/internal/row"
	"github.com/henri123lemoine/frontpage/internal/subscription"
)

func TestFit(t *testing.T) {
	tests := []struct {
		name  string
		lines []string
		n     int
		want  int
	}{
		{"pads", []string{"a"}, 3, 3},
		{"cuts", []string{"a", "b", "c"}, 2, 2},
		{"zero", []string{"a"}, 0, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := fit(tt.lines, tt.n); len(got) != tt.want {
				t.Errorf("fit() returned %d lines, want %d", len(got), tt.want)
			}
		})
	}
}

func TestWindowKeepsCursorVisible(t *testing.T) {
	blocks := make([]string, 20)
	for i := range blocks {
		blocks[i] = strings.Repeat("x", i+1)
	}

	lines := window(blocks, 15, 10)
	if len(lines) > 10 {
		t.Fatalf("Expected at most 10 lines, got %d", len(lines))
	}
	found := false
	for _, l := range lines {
		if l == blocks[15] {
			found = true
		}
	}
	if !found {
		t.Error("Expected the cursor block in the window")
	}

	if got := window(nil, 0, 10); got != nil {
		t.Errorf("Expected no lines for no blocks, got %v", got)
	}
}

func TestRenderChip(t *testing.T) {
	r := &row.Row{Label: "golang", Markers: []string{"default"}, Pending: subscription.PendingInFlight}

	out := renderChip(r, false, false)
	if !strings.Contains(out, "r/golang") {
		t.Errorf("Expected label in chip, got %q", out)
	}
	if !strings.Contains(out, "default") {
		t.Errorf("Expected marker in chip, got %q", out)
	}
	if !strings.Contains(out, SymbolPending) {
		t.Errorf("Expected pending symbol in chip, got %q", out)
	}

	r.Pending = subscription.PendingFailed
	if out := renderChip(r, false, true); !strings.Contains(out, SymbolFailed) || !strings.Contains(out, SymbolChanged) {
		t.Errorf("Expected failed and changed symbols, got %q", out)
	}
}

func TestRenderEmptyFeed(t *testing.T) {
	out := Render(RenderParams{
		State:     StateFeed,
		Width:     80,
		Height:    20,
		Subreddit: "golang",
		Loading:   true,
	})
	if !strings.Contains(out, "Loading submissions") {
		t.Errorf("Expected loading text, got %q", out)
	}
	if !strings.Contains(out, "golang") {
		t.Errorf("Expected subreddit in header, got %q", out)
	}
}

func TestRenderSmallTerminal(t *testing.T) {
	// Tiny sizes are clamped rather than rejected.
	out := Render(RenderParams{State: StateFeed, Width: 5, Height: 2})
	if out == "" {
		t.Error("Expected output for a tiny terminal")
	}
}
