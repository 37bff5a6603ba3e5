// Package viz renders values, gradients and optimizer progress for the
// terminal with lipgloss.
package viz
