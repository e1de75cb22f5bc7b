// Package shutdown turns process interrupts into context cancellation.
//
// A Handler cancels the context handed to a command on SIGINT or SIGTERM,
// so pending RPC calls return promptly, and then runs cleanup hooks under
// a timeout.
//
// Usage:
//
//	h := shutdown.NewHandler(shutdown.DefaultTimeout)
//	ctx, stop := h.Context(context.Background())
//	err := run(ctx)
//	stop()
//	hookErr := h.Wait()
package shutdown
