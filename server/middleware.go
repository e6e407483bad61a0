package server

import (
	"context"
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/google/uuid"

	"github.com/antmrlt/API64/logging"
)

// RequestID returns the correlation ID attached to ctx, or "".
func RequestID(ctx context.Context) string {
	return logging.RequestIDFromContext(ctx)
}

// requestID propagates an incoming X-Request-ID or assigns a new one. The ID
// travels in the request context, where the engine picks it up for its log
// entries.
func requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		w.Header().Set(HeaderRequestID, id)
		next.ServeHTTP(w, r.WithContext(logging.ContextWithRequestID(r.Context(), id)))
	})
}

// recovery turns a panic in next into a generic 500.
func recovery(logger logging.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				l := logging.ForContext(r.Context(), logger)
				args := []any{"method", r.Method, "path", r.URL.Path}
				if sl, ok := l.(*logging.StructuredLogger); ok {
					sl.ErrorWithStack(fmt.Errorf("panic: %v", rec), "panic serving request", args...)
				} else {
					l.Error("panic serving request", append(args, "panic", fmt.Sprint(rec), "stack", string(debug.Stack()))...)
				}
				respondStatus(w, http.StatusInternalServerError, internalErrorMessage)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
