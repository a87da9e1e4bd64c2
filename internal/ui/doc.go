// Package ui provides rendering functions for the frontpage terminal UI.
//
// It contains the Render function which takes RenderParams and produces
// the terminal output: the feed rows, the subreddit sheet at the height its
// state machine reports, the options menu and help. Rendering is pure (no
// side effects) and separated from state management; rows are read, never
// written.
package ui
