package shutdown

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"sync"
	"sync/atomic"
	"syscall"
	"time"
)

// DefaultTimeout bounds the hooks run after an interrupt.
const DefaultTimeout = 5 * time.Second

// Handler cancels a context on SIGINT or SIGTERM and then runs the
// registered hooks.
type Handler struct {
	timeout time.Duration
	signals []os.Signal
	hooks   []func(context.Context) error
	mu      sync.Mutex
	done    chan struct{}
	once    sync.Once
	err     error
	caught  atomic.Bool

	notify func(chan<- os.Signal, ...os.Signal)
	stop   func(chan<- os.Signal)
}

// NewHandler creates a handler whose hooks share timeout.
func NewHandler(timeout time.Duration) *Handler {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Handler{
		timeout: timeout,
		signals: []os.Signal{syscall.SIGINT, syscall.SIGTERM},
		hooks:   make([]func(context.Context) error, 0),
		done:    make(chan struct{}),
		notify:  signal.Notify,
		stop:    signal.Stop,
	}
}

// OnShutdown registers a hook.
// Hooks are called in reverse order of registration.
func (h *Handler) OnShutdown(hook func(context.Context) error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.hooks = append(h.hooks, hook)
}

// Context returns a child of parent that is cancelled by the first
// interrupt. Signal delivery is released after that interrupt or on stop,
// so a second interrupt terminates the process the default way.
func (h *Handler) Context(parent context.Context) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancelCause(parent)

	sigCh := make(chan os.Signal, 1)
	h.notify(sigCh, h.signals...)

	released := make(chan struct{})
	var releaseOnce sync.Once
	release := func() {
		releaseOnce.Do(func() {
			h.stop(sigCh)
			close(released)
		})
	}

	go func() {
		select {
		case sig := <-sigCh:
			h.caught.Store(true)
			release()
			cancel(&InterruptedError{Signal: sig})
			h.runHooks()
		case <-ctx.Done():
			release()
		case <-released:
		}
	}()

	return ctx, func() {
		release()
		cancel(context.Canceled)
	}
}

// Done returns a channel that closes once the hooks have run.
func (h *Handler) Done() <-chan struct{} {
	return h.done
}

// Wait blocks until the hooks have run when an interrupt was received, and
// returns their joined errors. Without an interrupt it returns nil at once.
func (h *Handler) Wait() error {
	if !h.caught.Load() {
		return nil
	}
	<-h.done
	return h.Err()
}

// Err returns the joined hook errors after Done is closed.
func (h *Handler) Err() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.err
}

func (h *Handler) runHooks() {
	h.once.Do(func() {
		ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
		defer cancel()

		h.mu.Lock()
		hooks := make([]func(context.Context) error, len(h.hooks))
		copy(hooks, h.hooks)
		h.mu.Unlock()

		var errs []error
		for i := len(hooks) - 1; i >= 0; i-- {
			if err := hooks[i](ctx); err != nil {
				errs = append(errs, err)
			}
		}

		h.mu.Lock()
		h.err = errors.Join(errs...)
		h.mu.Unlock()
		close(h.done)
	})
}

// InterruptedError is the cancellation cause recorded for an interrupt.
type InterruptedError struct {
	Signal os.Signal
}

func (e *InterruptedError) Error() string {
	return "interrupted by " + e.Signal.String()
}

// Interrupted reports whether ctx was cancelled by a signal.
func Interrupted(ctx context.Context) (os.Signal, bool) {
	var ie *InterruptedError
	if errors.As(context.Cause(ctx), &ie) {
		return ie.Signal, true
	}
	return nil, false
}
