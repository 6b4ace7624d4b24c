// Package errmsg provides consistent error formatting for user-facing messages.
package errmsg

import "fmt"

// Op represents an operation that can fail.
type Op string

// Operation constants - grouped by domain.
const (
	// Library operations
	OpLibraryScan Op = "scan library"
	OpLibraryLoad Op = "load library"
	OpLibrarySave Op = "save library"

	// Session operations
	OpSessionLoad Op = "load playback session"
	OpSessionSave Op = "save playback session"
	OpQueueAdd    Op = "add to queue"
	OpQueueMove   Op = "move queue item"
	OpQueueRemove Op = "remove from queue"

	// Playback operations
	OpPlaybackStart Op = "start playback"
	OpPlaybackSeek  Op = "seek"

	// Playlist operations
	OpPlaylistCreate   Op = "create playlist"
	OpPlaylistRename   Op = "rename playlist"
	OpPlaylistDelete   Op = "delete playlist"
	OpPlaylistAddTrack Op = "add track to playlist"
	OpPlaylistRemove   Op = "remove track from playlist"
	OpPlaylistMove     Op = "move playlist item"
	OpPlaylistRefresh  Op = "refresh smart playlist"
	OpPlaylistExport   Op = "export playlist"
	OpPlaylistImport   Op = "import playlist"

	// Stats operations
	OpStatsLoad   Op = "load listening stats"
	OpStatsRecord Op = "record play"
	OpStatsClear  Op = "clear listening stats"

	// Search history
	OpSearchHistoryLoad Op = "load search history"
	OpSearchHistorySave Op = "save search history"

	// Initialization
	OpInitialize Op = "initialize application"
)

// Format creates a user-friendly error message.
func Format(op Op, err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Failed to %s: %v", op, err)
}

// FormatWith creates an error message with additional context.
func FormatWith(op Op, context string, err error) string {
	if err == nil {
		return ""
	}
	if context == "" {
		return Format(op, err)
	}
	return fmt.Sprintf("Failed to %s '%s': %v", op, context, err)
}
