// Package stats turns repetition timings into the figures a bandwidth report
// shows: mean, population variance, standard deviation, extremes and bytes
// per second.
//
// All functions take the raw per-repetition samples rather than a running
// sum, so dispersion can be reported alongside the mean.
package stats
