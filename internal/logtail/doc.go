// Package logtail reads the tail of the acpanel log for the debug page.
//
// # Overview
//
// The TUI redirects the standard logger to <log_dir>/acpanel.log. The debug
// page shows the last lines of that file, so Read has to be cheap on large
// files and Parse has to make each line easy to color.
//
// # Reading Log Files
//
// Read keeps a ring buffer of the last maxLines lines:
//
//   - Scans the file sequentially (one pass)
//   - Uses O(maxLines) memory, not O(file size)
//   - Returns lines in chronological order
//
// A missing file is not an error; it just means nothing has been logged yet.
//
//	lines, err := logtail.Read(cfg.LogPath(), 200)
//
// # Parsing
//
// Lines written with log.LstdFlags start with "2006/01/02 15:04:05". Parse
// strips that prefix and guesses a Level from the message text ("failed",
// "error" and the like are errors; reconnects and retries are warnings).
// Lines without the prefix keep their full text and a zero Time.
package logtail
