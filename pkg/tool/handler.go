package tool

import "context"

// Handler executes a tool. Implementations must not panic across the
// boundary and must respect ctx cancellation and deadlines; the executor
// converts any escaping fault into a failed Result.
type Handler interface {
	Execute(ctx context.Context, args map[string]string) Result
}

// HandlerFunc adapts a plain function to the Handler interface.
type HandlerFunc func(ctx context.Context, args map[string]string) Result

// Execute implements Handler.
func (f HandlerFunc) Execute(ctx context.Context, args map[string]string) Result {
	return f(ctx, args)
}

// HandlerFactory builds a handler bound to a working directory. The
// registry stores factories rather than handlers so each run can pin its
// own filesystem root.
type HandlerFactory func(workdir string) Handler
