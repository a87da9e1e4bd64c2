// Package app provides the main Bubble Tea application model for frontpage.
//
// It owns two incrementally rendered lists: the submissions feed and the
// subreddit chips of the picker sheet. Feed loads, search results, store
// changes, image loads and sheet frames all arrive as messages and are
// funneled through the list controllers, so only the rows that changed are
// redrawn.
//
// The main type is Model, which implements the Bubble Tea interface
// (Init, Update, View) and manages all application state.
package app
