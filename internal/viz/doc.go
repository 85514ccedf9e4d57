// Package viz draws shots in the terminal.
//
// A [TableView] rasterises the table and its balls onto a braille [Canvas].
// [Replay] is a Bubble Tea model that plays a stored shot back from its
// event log:
//
//	Space - Pause/Resume
//	+/-   - Playback speed
//	N/B   - Jump to the next/previous event
//	T     - Toggle ball trails
//	R     - Restart
//	Q     - Quit
//
// The remaining helpers render event tables and asciigraph plots with
// lipgloss styles for the CLI.
package viz
