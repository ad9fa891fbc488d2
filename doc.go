// Package procsim simulates a flat memory allocator cooperating with a single
// CPU FIFO scheduler in discrete logical time.
//
// The root package is the façade most callers need. It wires the engine with
// configuration, logging, events, tracing and report persistence, and
// serialises access so HTTP handlers and the interval driver can share one
// simulation:
//
//	srv, _ := procsim.New(procsim.WithConfig(cfg))
//	rt := srv.Runtime()
//	_, _ = rt.Submit(ctx, process.Spec{Name: "P1", MemoryMB: 60, Duration: 2})
//	_, _ = rt.Drain(ctx, 100)
//	r, _ := rt.Report(ctx)
//
// The simulation core lives under service/: allocator, scheduler, cpu and the
// engine that orchestrates them.
package procsim
