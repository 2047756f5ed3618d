// Package engine wires all workflow subsystems together and provides
// the primary application-level API for recording and dispatching work.
//
// The engine package exists to break a fundamental import cycle: the root
// scalems package defines Task, Result, and the Context interface (imported
// by codec, workflow, subprocess, etc.) and therefore cannot import those
// packages back. Engine sits above all subsystem packages and below the
// application layer.
//
// # Building a Manager
//
//	m, err := engine.Build(
//	    engine.WithStore(pgStore),
//	    engine.WithConcurrency(8),
//	    engine.WithExtension(myExtension),
//	)
//
// # Recording and Dispatching Work
//
//	cmd, err := m.Executable(ctx, []string{"/usr/bin/gmx", "mdrun"},
//	    subprocess.WithInputs(map[string]string{"topol.tpr": "/data/topol.tpr"}),
//	)
//
//	fut, err := m.Submit(ctx, cmd)
//	res, err := fut.Result(ctx)
//
// Equal invocations reproduce the same command identity, and completed
// work is answered from the store without dispatching again.
//
// # Options
//
//   - [WithStore] — set the item store (defaults to in-memory)
//   - [WithConfig] — set the full runtime configuration
//   - [WithConcurrency] — set worker concurrency for local dispatch
//   - [WithLogger] — set the structured logger
//   - [WithStack] — set the execution scope stack
//   - [WithExtension] — register a lifecycle extension
//   - [WithMiddleware] — add a middleware to the dispatch chain
//   - [WithTracerProvider] — set the OpenTelemetry tracer provider
//   - [WithMeterProvider] — set the OpenTelemetry meter provider
package engine
