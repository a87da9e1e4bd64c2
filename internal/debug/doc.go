// Package debug provides debug logging functionality for frontpage.
//
// When enabled via the --debug flag, it writes structured log records about
// searches, store mutations and feed loads to a rotating file to help
// diagnose issues. Components that report failures take the *slog.Logger
// returned by Logger.
package debug
