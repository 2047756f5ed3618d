// Package scalems provides content-addressed workflow item identity,
// deterministic serialization, and execution dispatch for computational
// research workflows.
//
// scalems is designed as a library, not a service. Import it, register the
// types your workflow uses, add items to a workflow manager, and run them
// through an execution context (immediate, pooled, or remote pilot).
//
// # Quick Start
//
//	mgr, err := engine.Build(
//	    engine.WithStore(memStore),
//	    engine.WithConcurrency(8),
//	)
//
// # Architecture
//
// Identity is content-derived: every workflow item is serialized to a
// canonical byte sequence and fingerprinted with SHA-256, so equal work
// has equal identity across processes and hosts. Execution is scoped by a
// context stack: scalems.Current() resolves the active execution context,
// and nested dispatchers push and pop scopes around their work.
package scalems
