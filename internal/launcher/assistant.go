package launcher

import (
	"fmt"
	"os/exec"
	"strings"

	"github.com/codefionn/werkbank/internal/workspace"
)

// DefaultAssistantBinary is the external coding assistant the GUI shells
// out to.
const DefaultAssistantBinary = "codex"

// Options mirrors the GUI control panel settings for one assistant
// invocation.
type Options struct {
	Model            string `json:"model,omitempty"`
	Profile          string `json:"profile,omitempty"`
	Sandbox          string `json:"sandbox,omitempty"`
	ApprovalPolicy   string `json:"approvalPolicy,omitempty"`
	YoloMode         bool   `json:"yoloMode,omitempty"`
	EnableWebSearch  bool   `json:"enableWebSearch,omitempty"`
	SkipGitRepoCheck bool   `json:"skipGitRepoCheck,omitempty"`
	WorkingDir       string `json:"workingDir,omitempty"`
	ExtraArgs        string `json:"extraArgs,omitempty"`
}

// ExecArgs builds the argv for a non-interactive `exec --json` run of the
// assistant CLI. Unknown sandbox and approval values fall back to the
// safe defaults rather than erroring, so a stale GUI cannot produce an
// unguarded invocation. Returns the expanded working directory alongside
// the argument list.
func ExecArgs(prompt string, opts Options) (string, []string) {
	// exec.Cmd.Dir does not expand shell shortcuts like "~".
	runCwd := workspace.ExpandTilde(opts.WorkingDir)

	args := []string{"exec", "--json"}

	if opts.Model != "" {
		args = append(args, "-m", opts.Model)
	}

	if profile := strings.TrimSpace(opts.Profile); profile != "" {
		args = append(args, "-p", profile)
	}

	if opts.YoloMode {
		args = append(args, "--dangerously-bypass-approvals-and-sandbox")
	} else {
		sandbox := opts.Sandbox
		switch sandbox {
		case "read-only", "danger-full-access":
		default:
			sandbox = "workspace-write"
		}
		args = append(args, "-s", sandbox)

		policy := opts.ApprovalPolicy
		switch policy {
		case "untrusted", "on-failure", "never":
		default:
			policy = "on-request"
		}
		args = append(args, "--config", fmt.Sprintf("approval_policy=%q", policy))
	}

	if opts.EnableWebSearch {
		args = append(args, "--search")
	}

	args = append(args, "-C", runCwd)

	if opts.SkipGitRepoCheck {
		args = append(args, "--skip-git-repo-check")
	}

	args = append(args, SplitArgs(opts.ExtraArgs)...)
	args = append(args, prompt)

	return runCwd, args
}

// CheckInstalled probes for the assistant binary by running its version
// command with all output discarded.
func CheckInstalled(binary string) bool {
	if binary == "" {
		binary = DefaultAssistantBinary
	}
	cmd := exec.Command(binary, "--version")
	cmd.Stdout = nil
	cmd.Stderr = nil
	return cmd.Run() == nil
}
