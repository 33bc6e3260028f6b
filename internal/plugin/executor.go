package plugin

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"
)

// ErrTimeout is returned when a plugin runs past the executor's timeout.
var ErrTimeout = errors.New("plugin execution timeout")

// Executor runs one plugin process per request.
type Executor struct {
	timeout time.Duration
}

// NewExecutor creates an Executor that kills plugins after timeout.
func NewExecutor(timeout time.Duration) *Executor {
	return &Executor{timeout: timeout}
}

// Execute starts p in its own directory, writes req to its stdin and decodes
// the Response from stdout. A plugin that reports success=false is not an
// error here; the caller decides what to do with Response.Error.
func (e *Executor) Execute(ctx context.Context, p *Plugin, req *Request) (*Response, error) {
	payload, err := codec.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("encode request: %w", err)
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(runCtx, p.Executable)
	cmd.Dir = p.Path
	cmd.Stdin = bytes.NewReader(payload)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	runErr := cmd.Run()

	// The caller's cancellation wins over our own deadline.
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if errors.Is(runCtx.Err(), context.DeadlineExceeded) {
		return nil, fmt.Errorf("%s %s: %w after %v", p.Manifest.Name, req.Action, ErrTimeout, e.timeout)
	}
	if runErr != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("%s %s: %w: %s", p.Manifest.Name, req.Action, runErr, msg)
		}
		return nil, fmt.Errorf("%s %s: %w", p.Manifest.Name, req.Action, runErr)
	}

	var resp Response
	if err := codec.Unmarshal(stdout.Bytes(), &resp); err != nil {
		return nil, fmt.Errorf("%s %s: bad response %q: %w", p.Manifest.Name, req.Action, strings.TrimSpace(stdout.String()), err)
	}
	return &resp, nil
}
