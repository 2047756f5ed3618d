package scalems

import (
	"time"

	"github.com/eirrgang/scale-ms/id"
)

// Task is a unit of executable work derived from a workflow item. It
// carries everything an execution context needs to run the work: the
// command line, file placements, and resource requirements.
//
// Task carries both json and msgpack tags so remote dispatchers can frame
// it with either codec.
type Task struct {
	// ID identifies this dispatch of the work. Re-dispatching the same
	// item yields a new task ID.
	ID id.InstanceID `json:"id" msgpack:"id"`

	// Item is the content-addressed identity of the workflow item this
	// task realizes.
	Item id.ResourceID `json:"item" msgpack:"item"`

	// Name is a human-readable label, usually the item's type name.
	Name string `json:"name" msgpack:"name"`

	// Argv is the executable and its arguments. The first element is the
	// program; no shell expansion is applied.
	Argv []string `json:"argv" msgpack:"argv"`

	// Env is the task environment. Tasks do not inherit the dispatcher
	// process environment.
	Env map[string]string `json:"env,omitempty" msgpack:"env,omitempty"`

	// Stdin is a path to a file supplying standard input, or empty.
	Stdin string `json:"stdin,omitempty" msgpack:"stdin,omitempty"`

	// Inputs maps task-local filenames to source paths staged in before
	// execution.
	Inputs map[string]string `json:"inputs,omitempty" msgpack:"inputs,omitempty"`

	// Outputs maps result field names to task-local filenames collected
	// after execution.
	Outputs map[string]string `json:"outputs,omitempty" msgpack:"outputs,omitempty"`

	// Resources holds runtime resource requirements (core counts and the
	// like) interpreted by the execution context.
	Resources map[string]int `json:"resources,omitempty" msgpack:"resources,omitempty"`

	// Timeout bounds task execution. Zero means no limit.
	Timeout time.Duration `json:"timeout,omitempty" msgpack:"timeout,omitempty"`
}

// Result is the outcome of an executed Task.
type Result struct {
	// Task is the dispatch identity the result answers.
	Task id.InstanceID `json:"task" msgpack:"task"`

	// Item is the content-addressed identity of the realized item.
	Item id.ResourceID `json:"item" msgpack:"item"`

	// ExitCode is the process exit status. Zero means success.
	ExitCode int `json:"exitcode" msgpack:"exitcode"`

	// Stdout and Stderr are paths to the captured output streams.
	Stdout string `json:"stdout,omitempty" msgpack:"stdout,omitempty"`
	Stderr string `json:"stderr,omitempty" msgpack:"stderr,omitempty"`

	// File maps result field names to collected output paths.
	File map[string]string `json:"file,omitempty" msgpack:"file,omitempty"`
}

// Success reports whether the task exited cleanly.
func (r Result) Success() bool { return r.ExitCode == 0 }
