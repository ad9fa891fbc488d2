// Package process defines the simulated process record and its lifecycle
// state machine.
//
// A process is created in NEW by the caller and is afterwards mutated only by
// the engine, which drives it through admission (NEW → READY), dispatch
// (READY → RUNNING) and CPU advance (RUNNING → TERMINATED). Any live process
// can be canceled. TERMINATED and CANCELED are terminal.
package process
