// Package progress keeps aggregated lifecycle counters for one simulation run.
// Counters are cumulative: a process that waited, was admitted and completed
// increments Waited, Admitted and Completed once each.
package progress
