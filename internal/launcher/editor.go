package launcher

import (
	"os"
	"os/exec"
	"runtime"

	"github.com/codefionn/werkbank/internal/logger"
	"github.com/codefionn/werkbank/internal/workspace"
)

// LaunchResult reports the outcome of an editor launch.
type LaunchResult struct {
	Success bool   `json:"success"`
	Editor  string `json:"editor,omitempty"`
	Error   string `json:"error,omitempty"`
}

// defaultEditors are tried in order when the caller has no preference.
var defaultEditors = []string{"code", "cursor"}

// OpenInEditor opens path in the preferred editor, or the first known
// editor that spawns, or the platform's default opener. A successful
// spawn counts as success regardless of what the editor does later; the
// child is detached and never awaited. The path is not workspace-scoped.
func OpenInEditor(path, editor string) *LaunchResult {
	expanded := workspace.ExpandTilde(path)
	if _, err := os.Stat(expanded); err != nil {
		return &LaunchResult{Error: "file does not exist"}
	}

	editors := defaultEditors
	if editor != "" {
		editors = []string{editor}
	}

	for _, ed := range editors {
		if err := spawnDetached(ed, expanded); err == nil {
			return &LaunchResult{Success: true, Editor: ed}
		}
	}

	var err error
	switch runtime.GOOS {
	case "darwin":
		err = spawnDetached("open", expanded)
	case "linux":
		err = spawnDetached("xdg-open", expanded)
	default:
		err = spawnDetached("cmd", "/C", "start", "", expanded)
	}
	if err != nil {
		logger.Warn("launcher: system opener failed: %v", err)
		return &LaunchResult{Error: err.Error()}
	}

	return &LaunchResult{Success: true, Editor: "system"}
}

// spawnDetached starts name with stdio discarded and leaves the child to
// run on its own. The exit status is reaped in the background and only
// logged.
func spawnDetached(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = nil
	cmd.Stdout = nil
	cmd.Stderr = nil

	if err := cmd.Start(); err != nil {
		return err
	}

	go func() {
		if err := cmd.Wait(); err != nil {
			logger.Debug("launcher: %s exited: %v", name, err)
		}
	}()

	return nil
}
