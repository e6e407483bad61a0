package logging

import "context"

type requestIDKey struct{}

// ContextWithRequestID returns a copy of ctx carrying the request ID id.
func ContextWithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, requestIDKey{}, id)
}

// RequestIDFromContext returns the request ID carried by ctx, or "".
func RequestIDFromContext(ctx context.Context) string {
	id, _ := ctx.Value(requestIDKey{}).(string)
	return id
}

// ForContext scopes l to the request ID carried by ctx. Without one, l is
// returned unchanged.
func ForContext(ctx context.Context, l Logger) Logger {
	id := RequestIDFromContext(ctx)
	if id == "" {
		return l
	}
	if sl, ok := l.(*StructuredLogger); ok {
		return sl.WithRequest(id)
	}
	return With(l, "request_id", id)
}

// With returns a Logger that adds the key/value pairs in args to every
// entry. StructuredLogger and ZapAdapter keep their native types; any other
// Logger is wrapped.
func With(l Logger, args ...any) Logger {
	if len(args) == 0 {
		return l
	}
	switch v := l.(type) {
	case *StructuredLogger:
		for i := 0; i+1 < len(args); i += 2 {
			if key, ok := args[i].(string); ok {
				v = v.WithContext(key, args[i+1])
			}
		}
		return v
	case *ZapAdapter:
		return &ZapAdapter{SugaredLogger: v.SugaredLogger.With(args...)}
	case NoOpLogger:
		return v
	}
	return &attrLogger{next: l, args: args}
}

type attrLogger struct {
	next Logger
	args []any
}

func (a *attrLogger) with(args []any) []any {
	out := make([]any, 0, len(args)+len(a.args))
	return append(append(out, args...), a.args...)
}

func (a *attrLogger) Debug(msg string, args ...any) { a.next.Debug(msg, a.with(args)...) }
func (a *attrLogger) Info(msg string, args ...any)  { a.next.Info(msg, a.with(args)...) }
func (a *attrLogger) Warn(msg string, args ...any)  { a.next.Warn(msg, a.with(args)...) }
func (a *attrLogger) Error(msg string, args ...any) { a.next.Error(msg, a.with(args)...) }
