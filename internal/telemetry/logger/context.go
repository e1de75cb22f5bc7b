package logger

import "context"

type contextKey string

const (
	loggerKey    contextKey = "curvectl.logger"
	requestIDKey contextKey = "curvectl.request_id"
	commandKey   contextKey = "curvectl.command"
)

// WithLogger adds a logger to the context.
func WithLogger(ctx context.Context, l Logger) context.Context {
	return context.WithValue(ctx, loggerKey, l)
}

// FromContext extracts the logger from context, falling back to Default.
func FromContext(ctx context.Context) Logger {
	if l, ok := ctx.Value(loggerKey).(Logger); ok {
		return l
	}
	return Default()
}

// WithRequestID adds the invocation's request ID to the context.
func WithRequestID(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, requestIDKey, requestID)
}

// RequestIDFromContext extracts the request ID from context.
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey).(string)
	return id
}

// WithCommand records the command name being run.
func WithCommand(ctx context.Context, command string) context.Context {
	return context.WithValue(ctx, commandKey, command)
}

// CommandFromContext returns the command name, or "" outside a command.
func CommandFromContext(ctx context.Context) string {
	name, _ := ctx.Value(commandKey).(string)
	return name
}

// L returns the context logger tagged with request_id and command when
// the context carries them.
func L(ctx context.Context) Logger {
	l := FromContext(ctx)
	var attrs []any
	if reqID := RequestIDFromContext(ctx); reqID != "" {
		attrs = append(attrs, "request_id", reqID)
	}
	if cmd := CommandFromContext(ctx); cmd != "" {
		attrs = append(attrs, "command", cmd)
	}
	if len(attrs) > 0 {
		l = l.With(attrs...)
	}
	return l
}
