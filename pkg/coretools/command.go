package coretools

import (
	"context"
	"os/exec"
	"strings"

	"github.com/harun/maestro/pkg/tool"
)

func executeCommandSpec() tool.Spec {
	return tool.Spec{
		ID:          "execute_command",
		Name:        "execute_command",
		Description: "Run a shell command in the working directory and return its combined output.",
		Parameters: []tool.Parameter{
			{Name: "command", Required: true, Instruction: "The shell command to execute", Usage: "ls -la"},
		},
		NodeInstructions: map[string]string{
			"agent": "Prefer one command per invocation; chain with && only when steps are inseparable.",
		},
	}
}

func executeCommandHandler(opts Options) tool.HandlerFactory {
	return func(workdir string) tool.Handler {
		root := workdirOr(workdir, opts)
		return tool.HandlerFunc(func(ctx context.Context, args map[string]string) tool.Result {
			command := args["command"]

			cmd := exec.CommandContext(ctx, "sh", "-c", command)
			cmd.Dir = root

			output, err := cmd.CombinedOutput()
			text := strings.TrimRight(string(output), "\n")

			if ctx.Err() == context.DeadlineExceeded {
				return tool.Errf("command timed out: %s", command)
			}
			if err != nil {
				if text == "" {
					return tool.Errf("command failed: %v", err)
				}
				return tool.Errf("command failed: %v\n%s", err, text)
			}
			if text == "" {
				return tool.OK("Command completed with no output.")
			}
			return tool.OK(text)
		})
	}
}
