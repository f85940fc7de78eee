package coretools

import (
	"context"

	"github.com/harun/maestro/pkg/tool"
)

func askFollowupSpec() tool.Spec {
	return tool.Spec{
		ID:          "ask_followup_question",
		Name:        "ask_followup_question",
		Description: "Ask the user a clarifying question when information is missing.",
		Parameters: []tool.Parameter{
			{Name: "question", Required: true, Instruction: "The question to ask the user", Usage: "Which file should I modify?"},
		},
	}
}

func askFollowupHandler() tool.HandlerFactory {
	return func(workdir string) tool.Handler {
		return tool.HandlerFunc(func(ctx context.Context, args map[string]string) tool.Result {
			return tool.OK("[AWAITING_USER_RESPONSE]\n" + args["question"])
		})
	}
}

func attemptCompletionSpec() tool.Spec {
	return tool.Spec{
		ID:          tool.CompletionToolID,
		Name:        tool.CompletionToolID,
		Description: "Signal that the task is complete and provide a summary of what was accomplished. The answer is verified before the run ends.",
		Parameters: []tool.Parameter{
			{Name: "result", Required: true, Instruction: "Summary of what was accomplished", Usage: "Created x.txt containing the requested text"},
		},
		NodeInstructions: map[string]string{
			"agent":   "Call this tool exactly once, only after every requirement is satisfied and verified.",
			"planner": "The final plan step must always be calling this tool.",
		},
	}
}

func attemptCompletionHandler() tool.HandlerFactory {
	return func(workdir string) tool.Handler {
		return tool.HandlerFunc(func(ctx context.Context, args map[string]string) tool.Result {
			result := args["result"]
			if result == "" {
				result = "Task completed successfully."
			}
			return tool.CompletionResult(result)
		})
	}
}
