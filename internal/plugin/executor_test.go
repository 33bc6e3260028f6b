package plugin

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"
)

// writeScriptPlugin creates a shell plugin in a temp directory and returns it.
func writeScriptPlugin(t *testing.T, name, script string, actions ...string) *Plugin {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("shell plugins are not supported on Windows")
	}

	dir := t.TempDir()
	scriptPath := filepath.Join(dir, name+".sh")
	if err := os.WriteFile(scriptPath, []byte(script), 0755); err != nil {
		t.Fatalf("failed to write script: %v", err)
	}

	return &Plugin{
		Manifest: Manifest{
			Name:       name,
			Version:    "1.0.0",
			Executable: name + ".sh",
			Actions:    actions,
		},
		Path:       dir,
		Executable: scriptPath,
	}
}

func TestExecutor_Execute_Echo(t *testing.T) {
	plugin := writeScriptPlugin(t, "echo-plugin", `#!/bin/sh
read input
echo "{\"success\":true,\"data\":{\"received\":$input}}"
`, "echo")

	req := &Request{
		Action:     "echo",
		Letter:     "D",
		Confidence: 0.95,
		Config:     json.RawMessage(`{"key":"d"}`),
	}

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, req)
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if !resp.Success {
		t.Fatalf("expected success=true, got error %q", resp.Error)
	}

	var data struct {
		Received Request `json:"received"`
	}
	if err := json.Unmarshal(resp.Data, &data); err != nil {
		t.Fatalf("failed to unmarshal response data: %v", err)
	}

	if data.Received.Action != "echo" {
		t.Errorf("expected action 'echo', got %q", data.Received.Action)
	}
	if data.Received.Letter != "D" {
		t.Errorf("expected letter 'D', got %q", data.Received.Letter)
	}
	if data.Received.Confidence != 0.95 {
		t.Errorf("expected confidence 0.95, got %v", data.Received.Confidence)
	}
	if string(data.Received.Config) != `{"key":"d"}` {
		t.Errorf("config not forwarded, got %s", data.Received.Config)
	}
}

func TestExecutor_Timeout(t *testing.T) {
	plugin := writeScriptPlugin(t, "slow-plugin", `#!/bin/sh
sleep 10
echo '{"success":true}'
`, "slow")

	start := time.Now()
	_, err := NewExecutor(100*time.Millisecond).Execute(context.Background(), plugin, &Request{Action: "slow", Letter: "A"})
	if !errors.Is(err, ErrTimeout) {
		t.Fatalf("expected ErrTimeout, got %v", err)
	}
	if elapsed := time.Since(start); elapsed > 5*time.Second {
		t.Errorf("timeout took too long: %v", elapsed)
	}
}

func TestExecutor_ContextCanceled(t *testing.T) {
	plugin := writeScriptPlugin(t, "slow-plugin", `#!/bin/sh
sleep 10
`, "slow")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewExecutor(5*time.Second).Execute(ctx, plugin, &Request{Action: "slow"})
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
}

func TestExecutor_Execute_ErrorResponse(t *testing.T) {
	plugin := writeScriptPlugin(t, "error-plugin", `#!/bin/sh
echo '{"success":false,"error":"something went wrong"}'
`, "fail")

	resp, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: "fail", Letter: "B"})
	if err != nil {
		t.Fatalf("Execute() failed: %v", err)
	}
	if resp.Success {
		t.Errorf("expected success=false, got true")
	}
	if resp.Error != "something went wrong" {
		t.Errorf("expected error 'something went wrong', got %q", resp.Error)
	}
}

func TestExecutor_Execute_InvalidJSON(t *testing.T) {
	plugin := writeScriptPlugin(t, "bad-plugin", `#!/bin/sh
echo 'not valid json'
`, "bad")

	_, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: "bad"})
	if err == nil {
		t.Fatal("expected error for invalid JSON, got nil")
	}
	if !strings.Contains(err.Error(), "not valid json") {
		t.Errorf("error should include stdout, got %v", err)
	}
}

func TestExecutor_Execute_NonZeroExit(t *testing.T) {
	plugin := writeScriptPlugin(t, "exit-plugin", `#!/bin/sh
echo "Error: something failed" >&2
exit 1
`, "exit")

	_, err := NewExecutor(5*time.Second).Execute(context.Background(), plugin, &Request{Action: "exit"})
	if err == nil {
		t.Fatal("expected error for non-zero exit, got nil")
	}
	if !strings.Contains(err.Error(), "something failed") {
		t.Errorf("error should include stderr, got %v", err)
	}
}

func TestNewExecutor(t *testing.T) {
	executor := NewExecutor(3 * time.Second)
	if executor == nil {
		t.Fatal("NewExecutor() returned nil")
	}
	if executor.timeout != 3*time.Second {
		t.Errorf("expected timeout=3s, got %v", executor.timeout)
	}
}

func TestPlugin_Supports(t *testing.T) {
	p := &Plugin{Manifest: Manifest{Actions: []string{"type", "keystroke"}}}

	if !p.Supports("type") || !p.Supports("keystroke") {
		t.Error("expected listed actions to be supported")
	}
	if p.Supports("execute") {
		t.Error("unlisted action should not be supported")
	}
}
