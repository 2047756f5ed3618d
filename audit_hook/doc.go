// Package audithook bridges workflow lifecycle events to an audit trail
// backend. Each lifecycle hook emits a structured audit event through a
// caller-provided [Recorder], producing a provenance log of every item
// recorded and every task dispatched.
//
// The Recorder interface is defined locally so this package carries no
// dependency on any particular audit backend — callers inject an adapter
// at wiring time:
//
//	hook := audithook.New(audithook.RecorderFunc(func(ctx context.Context, evt *audithook.AuditEvent) error {
//	    return trail.Write(ctx, evt.Action, evt.ResourceID, evt.Metadata)
//	}))
//
//	m, err := engine.Build(engine.WithExtension(hook))
package audithook
