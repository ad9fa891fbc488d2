// Package idgen provides identifier sources. Process ids come from a
// Sequence owned by each engine, so two engines never share numbering and a
// fresh engine restarts at 1. Opaque identifiers (events, runs) wrap the UUID
// generator so that they can be stubbed in tests.
package idgen
