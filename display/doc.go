// Package display consumes pipeline notifications in the slow context.
//
// A Sink receives every notification drained from the pipeline. Panel keeps
// a view model of the device (active preset, knob values, edit mode,
// diagnostics) and renders it for a terminal with lipgloss. LogSink writes
// notifications to a structured logger.
package display
