// Package proc runs external commands on behalf of script backends and
// captures what they print.
package proc

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// waitDelay bounds how long Wait keeps draining output after the process was
// killed, so a grandchild holding the pipes open cannot hang the caller.
const waitDelay = 2 * time.Second

// Output holds the whitespace-trimmed standard streams of a finished process.
type Output struct {
	Stdout string
	Stderr string
}

// Runner executes a command and returns its captured output. Run is the
// production implementation; tests substitute their own.
type Runner func(ctx context.Context, name string, args ...string) (Output, error)

var _ Runner = Run

// Run executes name with args and waits for it to exit.
//
// The exit status is not inspected: a process that started and exited
// non-zero still yields its output and a nil error. A non-nil error means the
// process could not be spawned (missing executable, permission denied) or was
// cancelled through ctx, in which case its whole process group is killed.
func Run(ctx context.Context, name string, args ...string) (Output, error) {
	var stdout, stderr bytes.Buffer

	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	cmd.WaitDelay = waitDelay
	setProcessGroup(cmd)

	if err := cmd.Start(); err != nil {
		return Output{}, fmt.Errorf("start %s: %w", name, err)
	}

	waitErr := cmd.Wait()
	out := Output{
		Stdout: strings.TrimSpace(stdout.String()),
		Stderr: strings.TrimSpace(stderr.String()),
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		return out, fmt.Errorf("run %s: %w", name, ctxErr)
	}

	var exitErr *exec.ExitError
	if waitErr != nil && !errors.As(waitErr, &exitErr) {
		return out, fmt.Errorf("wait %s: %w", name, waitErr)
	}

	return out, nil
}
