// Package ui implements an interactive barcode scanner using bubbletea's Elm architecture.
//
// The TUI cycles through three views:
//  1. [ScanView] : Type or scan a barcode into a text input
//  2. [ImportView] : Watch the import's progress bar and status log with a spinner
//  3. [ResultView] : Read the final status, then scan again or quit
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern, receiving messages via the Msg union type.
// Progress events come from a [Streamer] channel, read one message at a time so the UI never blocks.
// Finished scans are kept in a session history list shown under the input.
package ui
