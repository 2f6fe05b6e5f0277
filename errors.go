package eventbus

import "github.com/dshills/eventbus/internal/dispatch"

// HandlerError wraps an error returned by a handler. Publish returns it to
// the caller; errors.As recovers the failing handler's id, errors.Is
// matches the handler's own error via Unwrap.
type HandlerError = dispatch.HandlerError

// PanicError wraps a recovered handler panic, including the panic value
// and captured stack.
type PanicError = dispatch.PanicError

// ErrHandlerPanic matches any *PanicError via errors.Is.
var ErrHandlerPanic = dispatch.ErrHandlerPanic
