package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/geminigui/toolhost/internal/logging"
	"github.com/geminigui/toolhost/internal/storage"
)

// maxCommandOutputBytes caps each captured stream so a chatty command cannot
// blow up the response payload.
const maxCommandOutputBytes = 50 * 1024

const runCommandSchema = `{
	"type": "object",
	"required": ["command"],
	"additionalProperties": false,
	"properties": {
		"command": {"type": "string", "minLength": 1},
		"args": {"type": "array", "items": {"type": "string"}},
		"working_dir": {"type": "string"},
		"timeout_sec": {"type": "integer", "minimum": 1}
	}
}`

// CommandResult is the structured outcome of run_command.
type CommandResult struct {
	Stdout   string `json:"stdout"`
	Stderr   string `json:"stderr"`
	ExitCode int    `json:"exitCode"`
	Success  bool   `json:"success"`
}

// NewRunCommandTool returns the run_command tool. Only the configured shell
// may be named as the command; the args are joined into a single script passed
// to the shell with -c. Output is truncated at maxCommandOutputBytes per
// stream and the whole run is bounded by a timeout.
func NewRunCommandTool(store storage.Store, shell string, defaultTimeout time.Duration, log logging.Logger) Tool {
	return Tool{
		Name:        "run_command",
		Description: "Execute a script through the configured shell and capture its output.",
		Schema:      runCommandSchema,
		Handler: func(ctx context.Context, raw json.RawMessage) (any, error) {
			var args struct {
				Command    string   `json:"command"`
				Args       []string `json:"args"`
				WorkingDir string   `json:"working_dir"`
				TimeoutSec int      `json:"timeout_sec"`
			}
			if err := json.Unmarshal(raw, &args); err != nil {
				return nil, fmt.Errorf("decode run_command arguments: %w", err)
			}

			if !commandMatchesShell(args.Command, shell) {
				return nil, fmt.Errorf("only the configured shell (%s) may be executed, got %q", shell, args.Command)
			}

			script := strings.TrimSpace(strings.Join(args.Args, " "))
			if script == "" {
				return nil, errors.New("run_command requires a script in args")
			}

			timeout := defaultTimeout
			if args.TimeoutSec > 0 {
				timeout = time.Duration(args.TimeoutSec) * time.Second
			}
			runCtx, cancel := context.WithTimeout(ctx, timeout)
			defer cancel()

			cmd := exec.CommandContext(runCtx, shell, "-c", script)
			if dir := strings.TrimSpace(args.WorkingDir); dir != "" {
				abs, err := store.Resolve(dir)
				if err != nil {
					return nil, err
				}
				cmd.Dir = abs
			}

			var stdout, stderr bytes.Buffer
			cmd.Stdout = &stdout
			cmd.Stderr = &stderr

			runErr := cmd.Run()
			if runCtx.Err() == context.DeadlineExceeded {
				return nil, fmt.Errorf("command timed out after %s", timeout)
			}

			exitCode := 0
			if runErr != nil {
				var exitErr *exec.ExitError
				if errors.As(runErr, &exitErr) {
					exitCode = exitErr.ExitCode()
				} else {
					return nil, fmt.Errorf("run command: %w", runErr)
				}
			}

			log.Debug("ran command",
				logging.F("script_bytes", len(script)),
				logging.F("exit_code", exitCode))

			return CommandResult{
				Stdout:   truncateOutput(stdout.String()),
				Stderr:   truncateOutput(stderr.String()),
				ExitCode: exitCode,
				Success:  exitCode == 0,
			}, nil
		},
	}
}

// commandMatchesShell accepts the configured shell's full path or bare name.
func commandMatchesShell(command, shell string) bool {
	trimmed := strings.TrimSpace(command)
	return trimmed == shell || trimmed == filepath.Base(shell)
}

func truncateOutput(output string) string {
	if len(output) <= maxCommandOutputBytes {
		return output
	}
	return output[:maxCommandOutputBytes] + "\n[output truncated]"
}
