// Package subprocess describes external-program workflow commands: the
// scalems.subprocess resource type, its input and result records, and the
// factory that expands an argument vector into fingerprinted workflow
// items.
package subprocess

import (
	"fmt"

	scalems "github.com/eirrgang/scale-ms"
	"github.com/eirrgang/scale-ms/codec"
	"github.com/eirrgang/scale-ms/id"
	"github.com/eirrgang/scale-ms/workflow"
)

// Resource types of the subprocess command and its payloads.
var (
	CommandType = id.MustNewTypeID("scalems", "subprocess", "Subprocess")
	InputType   = id.MustNewTypeID("scalems", "subprocess", "SubprocessInput")
	ResultType  = id.MustNewTypeID("scalems", "subprocess", "SubprocessResult")

	// Field value types referenced by the schema declarations.
	stringType  = id.MustNewTypeID("scalems", "String")
	pathType    = id.MustNewTypeID("scalems", "Path")
	integerType = id.MustNewTypeID("scalems", "Integer")
	mappingType = id.MustNewTypeID("scalems", "Mapping")
)

// Input is the payload of a SubprocessInput item.
type Input struct {
	// Argv is the executable and its arguments. No shell processing is
	// applied: expansions, globbing, and redirection are unavailable.
	Argv []string

	// Inputs maps task-local filenames to source files staged in before
	// launch.
	Inputs map[string]string

	// Outputs maps result field names to task-local filenames collected
	// after exit.
	Outputs map[string]string

	// Stdin names a file supplying standard input, or empty.
	Stdin string

	// Environment is the complete child environment. The dispatcher
	// process environment is not inherited.
	Environment map[string]string

	// Resources names additional runtime requirements, such as core
	// counts, interpreted by the execution context.
	Resources map[string]int
}

// Command is the workflow projection of one subprocess invocation: the
// sealed input item, a sealed result placeholder, and the command item
// referencing both.
type Command struct {
	Input  *workflow.Item
	Result *workflow.Item
	Item   *workflow.Item
}

// Option adjusts an Executable invocation.
type Option func(*config) error

type config struct {
	input Input
	label string
}

// WithInputs stages input files, keyed by task-local filename.
func WithInputs(inputs map[string]string) Option {
	return func(c *config) error {
		c.input.Inputs = inputs
		return nil
	}
}

// WithOutputs collects output files, keyed by result field name.
func WithOutputs(outputs map[string]string) Option {
	return func(c *config) error {
		c.input.Outputs = outputs
		return nil
	}
}

// WithStdin supplies a standard input file.
func WithStdin(path string) Option {
	return func(c *config) error {
		c.input.Stdin = path
		return nil
	}
}

// WithEnvironment sets the child process environment.
func WithEnvironment(env map[string]string) Option {
	return func(c *config) error {
		c.input.Environment = env
		return nil
	}
}

// WithResources declares runtime resource requirements.
func WithResources(resources map[string]int) Option {
	return func(c *config) error {
		c.input.Resources = resources
		return nil
	}
}

// WithLabel assigns a user-facing label to the command item.
func WithLabel(label string) Option {
	return func(c *config) error {
		if label == "" {
			return fmt.Errorf("subprocess: empty label: %w", scalems.ErrInvalidRepresentation)
		}
		c.label = label
		return nil
	}
}

// Executable describes one external program invocation as workflow items.
// The input record is sealed first; the result placeholder's identity is
// derived from a reference to the input, so re-describing the same
// invocation reproduces every identity and completed work remains
// discoverable by content address.
func Executable(enc *codec.Encoder, argv []string, opts ...Option) (*Command, error) {
	if len(argv) == 0 {
		return nil, fmt.Errorf("subprocess: argv requires at least the executable: %w", scalems.ErrSchemaViolation)
	}

	cfg := config{input: Input{Argv: argv}}
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	shape := workflow.Shape{1}

	input, err := workflow.NewItem(InputType, shape, cfg.input.encode())
	if err != nil {
		return nil, err
	}
	inputID, err := input.Seal(enc)
	if err != nil {
		return nil, err
	}
	inputRef := workflow.Identity(inputID.String())

	result, err := workflow.NewItem(ResultType, shape, map[string]any{
		"input": inputRef.String(),
	})
	if err != nil {
		return nil, err
	}
	resultID, err := result.Seal(enc)
	if err != nil {
		return nil, err
	}
	resultRef := workflow.Identity(resultID.String())

	item, err := workflow.NewItem(CommandType, shape, map[string]any{
		"input":  inputRef.String(),
		"result": resultRef.String(),
	})
	if err != nil {
		return nil, err
	}
	if cfg.label != "" {
		if err := item.SetLabel(cfg.label); err != nil {
			return nil, err
		}
	}
	if _, err := item.Seal(enc); err != nil {
		return nil, err
	}

	return &Command{Input: input, Result: result, Item: item}, nil
}

// encode projects the input record into the base-encodable value space.
// Unset optional members are omitted so equal content encodes equally.
func (in Input) encode() map[string]any {
	argv := make([]any, len(in.Argv))
	for i, a := range in.Argv {
		argv[i] = a
	}
	out := map[string]any{"argv": argv}
	if len(in.Inputs) > 0 {
		out["inputs"] = stringMapValue(in.Inputs)
	}
	if len(in.Outputs) > 0 {
		out["outputs"] = stringMapValue(in.Outputs)
	}
	if in.Stdin != "" {
		out["stdin"] = in.Stdin
	}
	if len(in.Environment) > 0 {
		out["environment"] = stringMapValue(in.Environment)
	}
	if len(in.Resources) > 0 {
		resources := make(map[string]any, len(in.Resources))
		for k, v := range in.Resources {
			resources[k] = v
		}
		out["resources"] = resources
	}
	return out
}

func stringMapValue(m map[string]string) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}

// Task derives the dispatchable task for the command with a fresh
// dispatch identity.
func (c *Command) Task() (*scalems.Task, error) {
	item, ok := c.Item.Identity().(id.ResourceID)
	if !ok {
		return nil, fmt.Errorf("subprocess: command not sealed: %w", scalems.ErrSchemaViolation)
	}

	in, err := InputFrom(c.Input.Data())
	if err != nil {
		return nil, err
	}

	return &scalems.Task{
		ID:        id.NewTaskID(),
		Item:      item,
		Name:      CommandType.Name(),
		Argv:      in.Argv,
		Env:       in.Environment,
		Stdin:     in.Stdin,
		Inputs:    in.Inputs,
		Outputs:   in.Outputs,
		Resources: in.Resources,
	}, nil
}

// InputFrom reconstructs an Input from its encoded payload.
func InputFrom(v any) (Input, error) {
	m, ok := v.(map[string]any)
	if !ok {
		return Input{}, fmt.Errorf("subprocess: input record from %T: %w", v, scalems.ErrInvalidRepresentation)
	}

	rawArgv, ok := m["argv"].([]any)
	if !ok || len(rawArgv) == 0 {
		return Input{}, fmt.Errorf("subprocess: input record without argv: %w", scalems.ErrSchemaViolation)
	}

	in := Input{Argv: make([]string, len(rawArgv))}
	for i, a := range rawArgv {
		s, ok := a.(string)
		if !ok {
			return Input{}, fmt.Errorf("subprocess: argv element %T: %w", a, scalems.ErrInvalidRepresentation)
		}
		in.Argv[i] = s
	}

	var err error
	if in.Inputs, err = stringMapFrom(m["inputs"]); err != nil {
		return Input{}, err
	}
	if in.Outputs, err = stringMapFrom(m["outputs"]); err != nil {
		return Input{}, err
	}
	if in.Environment, err = stringMapFrom(m["environment"]); err != nil {
		return Input{}, err
	}
	if stdin, ok := m["stdin"].(string); ok {
		in.Stdin = stdin
	}
	if rawResources, ok := m["resources"].(map[string]any); ok {
		in.Resources = make(map[string]int, len(rawResources))
		for k, v := range rawResources {
			n, ok := intValue(v)
			if !ok {
				return Input{}, fmt.Errorf("subprocess: resource %q: %w", k, scalems.ErrInvalidRepresentation)
			}
			in.Resources[k] = n
		}
	}
	return in, nil
}

func stringMapFrom(v any) (map[string]string, error) {
	if v == nil {
		return nil, nil
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("subprocess: mapping from %T: %w", v, scalems.ErrInvalidRepresentation)
	}
	out := make(map[string]string, len(m))
	for k, raw := range m {
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("subprocess: mapping value for %q: %w", k, scalems.ErrInvalidRepresentation)
		}
		out[k] = s
	}
	return out, nil
}

func intValue(v any) (int, bool) {
	switch n := v.(type) {
	case int:
		return n, true
	case float64:
		return int(n), float64(int(n)) == n
	default:
		if num, ok := v.(interface{ Int64() (int64, error) }); ok {
			i, err := num.Int64()
			return int(i), err == nil
		}
		return 0, false
	}
}
