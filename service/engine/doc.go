// Package engine orchestrates the allocator, scheduler and CPU in discrete
// logical steps.
//
// Each Step runs the same four phases in order: dispatch the ready head when
// the CPU is idle, tick the CPU, release the memory of a completed process,
// then retry the waiting queue. A process admitted by the retry is dispatched
// no earlier than the next step.
//
// The engine is single-writer and never blocks: it holds no locks, performs no
// timing and publishes events without waiting for consumers. Callers sharing an
// engine across goroutines must serialise access themselves.
package engine
