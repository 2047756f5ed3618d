package pilot_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	scalems "github.com/eirrgang/scale-ms"
	"github.com/eirrgang/scale-ms/id"
	"github.com/eirrgang/scale-ms/pilot"
)

// fakeExecutor simulates a remote resource manager. Each submitted task
// completes on its own channel so per-task waiting is observable.
type fakeExecutor struct {
	mu         sync.Mutex
	connectErr error
	pending    map[string]chan *scalems.Result
	closed     bool
}

func newFakeExecutor() *fakeExecutor {
	return &fakeExecutor{pending: make(map[string]chan *scalems.Result)}
}

func (e *fakeExecutor) Connect(context.Context) error { return e.connectErr }

func (e *fakeExecutor) Submit(_ context.Context, task *scalems.Task) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending[task.ID.String()] = make(chan *scalems.Result, 1)
	return nil
}

func (e *fakeExecutor) Poll(_ context.Context, taskID id.InstanceID) (bool, error) {
	e.mu.Lock()
	defer e.mu.Unlock()
	ch, ok := e.pending[taskID.String()]
	if !ok {
		return false, errors.New("unknown task")
	}
	return len(ch) > 0, nil
}

func (e *fakeExecutor) Await(ctx context.Context, taskID id.InstanceID) (*scalems.Result, error) {
	e.mu.Lock()
	ch, ok := e.pending[taskID.String()]
	e.mu.Unlock()
	if !ok {
		return nil, errors.New("unknown task")
	}
	select {
	case res := <-ch:
		return res, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

func (e *fakeExecutor) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.closed = true
	return nil
}

func (e *fakeExecutor) complete(taskID id.InstanceID, res *scalems.Result) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.pending[taskID.String()] <- res
}

func TestContextActivateRequiresEndpoint(t *testing.T) {
	t.Setenv(pilot.EnvCoordinationURL, "")

	c := pilot.NewContext(nil, nil)
	err := c.Activate(context.Background())
	if !errors.Is(err, scalems.ErrConfiguration) {
		t.Fatalf("Activate() error = %v, want ErrConfiguration", err)
	}
	if c.State() == scalems.StateActive {
		t.Error("context became active despite missing endpoint")
	}
}

func TestContextActivateFailsFastOnUnreachableEndpoint(t *testing.T) {
	exec := newFakeExecutor()
	exec.connectErr = scalems.ErrConfiguration

	c := pilot.NewContext(exec, nil)
	if err := c.Activate(context.Background()); !errors.Is(err, scalems.ErrConfiguration) {
		t.Fatalf("Activate() error = %v, want ErrConfiguration", err)
	}
}

func TestContextPerTaskCompletion(t *testing.T) {
	ctx := context.Background()
	exec := newFakeExecutor()
	c := pilot.NewContext(exec, nil)

	if err := c.Activate(ctx); err != nil {
		t.Fatalf("Activate() error: %v", err)
	}
	defer c.Finalize(ctx)

	first := &scalems.Task{ID: id.NewTaskID(), Name: "first"}
	second := &scalems.Task{ID: id.NewTaskID(), Name: "second"}

	f1, err := c.Run(ctx, first)
	if err != nil {
		t.Fatalf("Run(first) error: %v", err)
	}
	f2, err := c.Run(ctx, second)
	if err != nil {
		t.Fatalf("Run(second) error: %v", err)
	}

	// Completing the second task resolves only its own future: the
	// first, still-running task must not delay it.
	exec.complete(second.ID, &scalems.Result{Task: second.ID, ExitCode: 0})

	waitCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	res, err := f2.Result(waitCtx)
	if err != nil {
		t.Fatalf("Result(second) error: %v", err)
	}
	if res.Task.String() != second.ID.String() {
		t.Errorf("Result() task = %v, want %v", res.Task, second.ID)
	}

	select {
	case <-f1.Done():
		t.Fatal("first future resolved without its task completing")
	default:
	}

	exec.complete(first.ID, &scalems.Result{Task: first.ID, ExitCode: 1})
	res, err = f1.Result(waitCtx)
	if err != nil {
		t.Fatalf("Result(first) error: %v", err)
	}
	if res.ExitCode != 1 {
		t.Errorf("Result(first).ExitCode = %d, want 1", res.ExitCode)
	}
}

func TestContextRunRequiresActive(t *testing.T) {
	c := pilot.NewContext(newFakeExecutor(), nil)
	_, err := c.Run(context.Background(), &scalems.Task{ID: id.NewTaskID()})
	if !errors.Is(err, scalems.ErrDispatchNotImplemented) {
		t.Errorf("Run() error = %v, want ErrDispatchNotImplemented", err)
	}
}

func TestContextFinalizeClosesSession(t *testing.T) {
	ctx := context.Background()
	exec := newFakeExecutor()
	c := pilot.NewContext(exec, nil)

	if err := c.Activate(ctx); err != nil {
		t.Fatalf("Activate() error: %v", err)
	}
	if err := c.Finalize(ctx); err != nil {
		t.Fatalf("Finalize() error: %v", err)
	}
	if !exec.closed {
		t.Error("Finalize() did not close the executor session")
	}
	if err := c.Finalize(ctx); err != nil {
		t.Errorf("second Finalize() error: %v", err)
	}
}

func TestFutureCancelRejected(t *testing.T) {
	ctx := context.Background()
	exec := newFakeExecutor()
	c := pilot.NewContext(exec, nil)
	if err := c.Activate(ctx); err != nil {
		t.Fatalf("Activate() error: %v", err)
	}
	defer c.Finalize(ctx)

	task := &scalems.Task{ID: id.NewTaskID()}
	f, err := c.Run(ctx, task)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if err := f.Cancel(); !errors.Is(err, scalems.ErrNotSupported) {
		t.Errorf("Cancel() error = %v, want ErrNotSupported", err)
	}
	exec.complete(task.ID, &scalems.Result{Task: task.ID})
}

func TestFrameCodecs(t *testing.T) {
	task := &scalems.Task{
		ID:   id.NewTaskID(),
		Name: "scalems.subprocess.Subprocess",
		Argv: []string{"/bin/echo", "hi"},
		Env:  map[string]string{"LC_ALL": "C"},
	}
	frame := &pilot.Frame{
		ID:        task.ID.String(),
		Type:      pilot.FrameSubmit,
		Session:   "session-test",
		Task:      task,
		Timestamp: time.Now().UTC().Truncate(time.Second),
	}

	for _, name := range []string{pilot.CodecNameJSON, pilot.CodecNameMsgpack} {
		t.Run(name, func(t *testing.T) {
			c := pilot.GetCodec(name)
			if c.Name() != name {
				t.Fatalf("Name() = %q, want %q", c.Name(), name)
			}

			data, err := c.Encode(frame)
			if err != nil {
				t.Fatalf("Encode() error: %v", err)
			}
			back, err := c.Decode(data)
			if err != nil {
				t.Fatalf("Decode() error: %v", err)
			}
			if back.Type != pilot.FrameSubmit || back.Session != frame.Session {
				t.Errorf("frame envelope did not round trip: %+v", back)
			}
			if back.Task == nil || back.Task.Argv[0] != "/bin/echo" {
				t.Errorf("task payload did not round trip: %+v", back.Task)
			}
		})
	}
}
