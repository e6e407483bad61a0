package engine

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// CallbackType defines the lifecycle points where callbacks are executed.
//
// Callbacks provide a flexible mechanism for hooking into the engine's
// pipeline without modifying core logic. They run synchronously after the
// operation finished; an error returned by a callback is logged and never
// changes the outcome reported to the caller.
type CallbackType string

const (
	// CallbackAfterIngest is triggered when an ingestion call completes,
	// successfully or not.
	CallbackAfterIngest CallbackType = "after_ingest"

	// CallbackAfterRetrieve is triggered when a retrieval call completes.
	CallbackAfterRetrieve CallbackType = "after_retrieve"
)

// CallbackContext describes the call a callback is executed for.
type CallbackContext struct {
	// CallbackType is the lifecycle point being executed.
	CallbackType CallbackType

	// Name is the artifact name. Empty when the call failed before a name was
	// generated.
	Name string

	// ContentType is the declared media type of an ingestion call.
	ContentType string

	// Extension is the resolved extension of an ingestion call.
	Extension string

	// Size is the number of artifact bytes stored or served.
	Size int64

	// Duration is the wall time the call took.
	Duration time.Duration

	// Err is the error the call failed with, nil on success.
	Err error
}

// Callback is a hook executed at one lifecycle point.
type Callback interface {
	// Type returns the lifecycle point this callback is executed at.
	Type() CallbackType

	// Execute runs the callback.
	Execute(ctx context.Context, callbackCtx *CallbackContext) error
}

// FunctionCallback adapts a plain function to the Callback interface.
type FunctionCallback struct {
	callbackType CallbackType
	fn           func(ctx context.Context, callbackCtx *CallbackContext) error
}

// NewFunctionCallback creates a Callback executing fn at callbackType.
func NewFunctionCallback(
	callbackType CallbackType,
	fn func(ctx context.Context, callbackCtx *CallbackContext) error,
) *FunctionCallback {
	return &FunctionCallback{
		callbackType: callbackType,
		fn:           fn,
	}
}

// Type returns the lifecycle point of the callback.
func (c *FunctionCallback) Type() CallbackType {
	return c.callbackType
}

// Execute calls the wrapped function.
func (c *FunctionCallback) Execute(ctx context.Context, callbackCtx *CallbackContext) error {
	return c.fn(ctx, callbackCtx)
}

// CallbackManager groups callbacks by type. It is populated while the engine
// is constructed and read-only afterwards, so execution needs no locking.
type CallbackManager struct {
	callbacks map[CallbackType][]Callback
}

// NewCallbackManager creates an empty manager.
func NewCallbackManager() *CallbackManager {
	return &CallbackManager{
		callbacks: make(map[CallbackType][]Callback),
	}
}

// RegisterCallback adds a callback for its type.
func (cm *CallbackManager) RegisterCallback(callback Callback) {
	callbackType := callback.Type()
	cm.callbacks[callbackType] = append(cm.callbacks[callbackType], callback)
}

// ExecuteCallbacks runs every callback registered for callbackType and
// returns the errors joined into one, or nil.
func (cm *CallbackManager) ExecuteCallbacks(
	ctx context.Context,
	callbackType CallbackType,
	callbackCtx *CallbackContext,
) error {
	var errs []error
	for _, callback := range cm.callbacks[callbackType] {
		if err := callback.Execute(ctx, callbackCtx); err != nil {
			errs = append(errs, fmt.Errorf("%s callback: %w", callbackType, err))
		}
	}
	return errors.Join(errs...)
}
