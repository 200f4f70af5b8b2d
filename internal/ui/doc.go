// Package ui holds the lipgloss stylesheet used for console output.
//
// The [Palette] renders titles, success lines, errors, warnings, and help text.
// [PlainPalette] strips all styling for piped output and tests.
package ui
