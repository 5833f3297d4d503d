// Package drive is the driver layer spec.md §1 describes as "socket I/O
// loops" and concrete transports: the external collaborator that invokes a
// built pipeline.Pipeline's boundary operations (HandleRead, PollWrite,
// TransportActive/Inactive, Close) and performs the actual I/O the sans-I/O
// core refuses to do.
//
// Service wraps a runtime.Service — the Watermill-backed router, publisher,
// subscriber, and middleware chain already wired for bare Go handler funcs —
// and adds RegisterPipeline, which dispatches through a pipeline.Pipeline
// chain instead. Everything else in this package (hooks, stats, DLQ
// metrics, the debug HTTP endpoint) observes that dispatch path without
// mutating a built pipeline, honoring spec.md's "no dynamic reconfiguration"
// Non-goal.
package drive
