// Package graph is the orchestration core: a bounded plan -> act ->
// verify -> replan state machine driving a chat model and a tool registry
// toward a verified task outcome.
//
// Invariants:
// - Nodes execute strictly sequentially; state is never mutated concurrently.
// - Routing is a pure function of the latest turns' shape.
// - Tool faults surface as conversational results, never as run failures.
// - Model transport faults are fatal to the run and not retried here.
// - The step budget bounds every run; exceeding it ends the run unverified
//   with ErrStepBudgetExceeded.
//
// Usage:
//
//	g, _ := graph.New(graph.Config{
//		Model:     model,
//		Registry:  reg,
//		Workdir:   ".",
//		ModelName: "claude-sonnet-4-5",
//		Planning:  true,
//		Replan:    true,
//	})
//	outcome, err := g.Run(ctx, "write hello.txt containing 'hi'")
package graph
