// Package local provides execution contexts that run subprocess tasks on
// the local host, either synchronously or through a bounded worker pool.
package local

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"sort"

	scalems "github.com/eirrgang/scale-ms"
)

// ProcessRunner executes one described subprocess and reports its
// outcome. Implementations pass argv through without shell processing,
// report the exit status, and capture standard streams to addressable
// files.
type ProcessRunner interface {
	Run(ctx context.Context, task *scalems.Task) (*scalems.Result, error)
}

// ExecRunner is the os/exec ProcessRunner. Each task runs in its own
// directory under WorkDir with stdout and stderr captured to files there.
type ExecRunner struct {
	// WorkDir is the parent of per-task directories. Empty means the
	// process working directory.
	WorkDir string
}

// Run implements ProcessRunner.
func (r *ExecRunner) Run(ctx context.Context, task *scalems.Task) (*scalems.Result, error) {
	if len(task.Argv) == 0 {
		return nil, fmt.Errorf("local: task %s without argv: %w", task.ID, scalems.ErrSchemaViolation)
	}

	dir := filepath.Join(r.WorkDir, task.ID.String())
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local: task directory: %w", err)
	}

	if err := stageInputs(dir, task.Inputs); err != nil {
		return nil, err
	}

	if task.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, task.Timeout)
		defer cancel()
	}

	cmd := exec.CommandContext(ctx, task.Argv[0], task.Argv[1:]...)
	cmd.Dir = dir
	cmd.Env = environList(task.Env)

	if task.Stdin != "" {
		stdin, err := os.Open(task.Stdin)
		if err != nil {
			return nil, fmt.Errorf("local: stdin: %w", err)
		}
		defer stdin.Close()
		cmd.Stdin = stdin
	}

	stdoutPath := filepath.Join(dir, "stdout")
	stderrPath := filepath.Join(dir, "stderr")
	stdout, err := os.Create(stdoutPath)
	if err != nil {
		return nil, fmt.Errorf("local: stdout capture: %w", err)
	}
	defer stdout.Close()
	stderr, err := os.Create(stderrPath)
	if err != nil {
		return nil, fmt.Errorf("local: stderr capture: %w", err)
	}
	defer stderr.Close()
	cmd.Stdout = stdout
	cmd.Stderr = stderr

	result := &scalems.Result{
		Task:   task.ID,
		Item:   task.Item,
		Stdout: stdoutPath,
		Stderr: stderrPath,
	}

	if err := cmd.Run(); err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			return nil, fmt.Errorf("local: launch %q: %w", task.Argv[0], err)
		}
		result.ExitCode = exitErr.ExitCode()
	}

	if len(task.Outputs) > 0 {
		result.File = make(map[string]string, len(task.Outputs))
		for field, name := range task.Outputs {
			result.File[field] = filepath.Join(dir, name)
		}
	}
	return result, nil
}

// stageInputs copies source files into the task directory under their
// task-local names.
func stageInputs(dir string, inputs map[string]string) error {
	for name, src := range inputs {
		if err := copyFile(filepath.Join(dir, name), src); err != nil {
			return fmt.Errorf("local: stage input %q: %w", name, err)
		}
	}
	return nil
}

func copyFile(dst, src string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// environList renders the task environment deterministically. Tasks do
// not inherit the dispatcher environment.
func environList(env map[string]string) []string {
	keys := make([]string, 0, len(env))
	for k := range env {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]string, 0, len(keys))
	for _, k := range keys {
		out = append(out, k+"="+env[k])
	}
	return out
}
