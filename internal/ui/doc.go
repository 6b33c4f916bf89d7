// Package ui implements the interactive conversion screen using bubbletea's Elm architecture.
//
// The [Model] moves through three views:
//  1. [TrackListView] : Browse the chart tracks that will be searched
//  2. [ConvertView] : Watch a progress bar and the latest per-track lines
//  3. [ResultView] : Review every outcome and open the playlist in a browser
//
// Progress arrives as [models.Event] values on the channel behind a [tasks.ChannelEmitter];
// the model keeps a single reader on it so events are applied in order.
//
// Keyboard navigation uses vim-style bindings (j/k, enter, o, r, q) with contextual help displayed via charmbracelet/bubbles/help.
package ui
