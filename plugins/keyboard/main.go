// Command keyboard is an output plugin that types recognized letters on macOS
// through System Events.
package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"

	"github.com/ayusman/fingerspell/internal/plugin"
)

// keyOptions is merged from the binding config, then the request params.
type keyOptions struct {
	Key       string   `json:"key"`
	Modifiers []string `json:"modifiers"`
	Uppercase bool     `json:"uppercase"`
}

var appleModifiers = map[string]string{
	"command": "command down",
	"cmd":     "command down",
	"option":  "option down",
	"alt":     "option down",
	"control": "control down",
	"ctrl":    "control down",
	"shift":   "shift down",
}

func main() {
	var req plugin.Request
	err := json.NewDecoder(os.Stdin).Decode(&req)
	if err != nil {
		err = fmt.Errorf("decode request: %w", err)
	} else if script, serr := scriptFor(req); serr != nil {
		err = fmt.Errorf("%s: %w", req.Action, serr)
	} else {
		err = osascript(script)
	}

	resp := plugin.Response{Success: err == nil}
	if err != nil {
		resp.Error = err.Error()
	}
	json.NewEncoder(os.Stdout).Encode(resp)
}

// scriptFor returns the AppleScript for req without running it.
func scriptFor(req plugin.Request) (string, error) {
	var opts keyOptions
	for _, raw := range []json.RawMessage{req.Config, req.Params} {
		if len(raw) == 0 || string(raw) == "null" {
			continue
		}
		if err := json.Unmarshal(raw, &opts); err != nil {
			return "", fmt.Errorf("parse options: %w", err)
		}
	}

	key := opts.Key
	switch req.Action {
	case "type":
		if key == "" && opts.Uppercase {
			key = strings.ToUpper(req.Letter)
		} else if key == "" {
			key = strings.ToLower(req.Letter)
		}
		if key == "" {
			return "", errors.New("letter is required")
		}
	case "keystroke":
		if key == "" {
			return "", errors.New("key is required")
		}
	default:
		return "", fmt.Errorf("unknown action %q", req.Action)
	}
	return keystroke(key, opts.Modifiers), nil
}

// keystroke builds a System Events keystroke command. Unknown modifiers are
// dropped.
func keystroke(key string, modifiers []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, `tell application "System Events" to keystroke "%s"`, strings.ReplaceAll(key, `"`, `\"`))

	var using []string
	for _, m := range modifiers {
		if am, ok := appleModifiers[strings.ToLower(m)]; ok {
			using = append(using, am)
		}
	}
	if len(using) > 0 {
		fmt.Fprintf(&b, " using {%s}", strings.Join(using, ", "))
	}
	return b.String()
}

func osascript(script string) error {
	out, err := exec.Command("osascript", "-e", script).CombinedOutput()
	if err != nil {
		return fmt.Errorf("osascript: %w: %s", err, strings.TrimSpace(string(out)))
	}
	return nil
}
