package launcher

import (
	"bytes"
	"context"
	"os/exec"
	"runtime"

	"github.com/google/uuid"

	"github.com/codefionn/werkbank/internal/logger"
	"github.com/codefionn/werkbank/internal/workspace"
)

// ShellResult carries the captured output of a one-shot shell command
// run from the GUI's command panel.
type ShellResult struct {
	Success     bool   `json:"success"`
	CommandID   string `json:"commandId"`
	Output      string `json:"output"`
	ErrorOutput string `json:"errorOutput"`
	ExitCode    int    `json:"exitCode"`
	Error       string `json:"error,omitempty"`
}

// RunShell executes command through the platform shell in cwd and waits
// for completion, capturing stdout and stderr.
func RunShell(ctx context.Context, command, cwd string) *ShellResult {
	commandID := "cmd_" + uuid.NewString()
	runCwd := workspace.ExpandTilde(cwd)

	var cmd *exec.Cmd
	if runtime.GOOS == "windows" {
		cmd = exec.CommandContext(ctx, "cmd", "/C", command)
	} else {
		cmd = exec.CommandContext(ctx, "sh", "-c", command)
	}
	cmd.Dir = runCwd

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()

	exitCode := 0
	if err != nil {
		exitErr, ok := err.(*exec.ExitError)
		if !ok {
			logger.Warn("shell: %s failed to run: %v", commandID, err)
			return &ShellResult{
				CommandID: commandID,
				ExitCode:  -1,
				Error:     err.Error(),
			}
		}
		exitCode = exitErr.ExitCode()
	}

	return &ShellResult{
		Success:     exitCode == 0,
		CommandID:   commandID,
		Output:      stdout.String(),
		ErrorOutput: stderr.String(),
		ExitCode:    exitCode,
	}
}
