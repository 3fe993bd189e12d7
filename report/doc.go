// Package report renders benchmark results as a text summary for terminals
// and as CSV for further processing.
package report
