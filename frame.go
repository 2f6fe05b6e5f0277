package eventbus

import (
	"context"
	"reflect"

	"github.com/dshills/eventbus/internal/dispatch"
)

// frame records one in-flight delivery: which bus is delivering which
// event value of which type via which dispatcher. Frames form a chain
// through the context passed to handlers, innermost first, standing in
// for the thread-local dispatch stack of a threads-and-locks design.
// Popping is implicit: the derived context dies with the Publish call,
// panics included.
type frame struct {
	bus    *Bus
	typ    reflect.Type
	disp   *dispatch.Dispatcher
	event  any
	parent *frame
}

type frameKey struct{}

// withFrame derives a context whose frame chain has f on top.
func withFrame(ctx context.Context, f *frame) context.Context {
	f.parent = frameFromContext(ctx)
	return context.WithValue(ctx, frameKey{}, f)
}

// frameFromContext returns the innermost frame, or nil outside a dispatch.
func frameFromContext(ctx context.Context) *frame {
	f, _ := ctx.Value(frameKey{}).(*frame)
	return f
}

// findFrame walks the chain innermost-first for a delivery of typ on bus b.
func findFrame(ctx context.Context, b *Bus, typ reflect.Type) *frame {
	for f := frameFromContext(ctx); f != nil; f = f.parent {
		if f.bus == b && f.typ == typ {
			return f
		}
	}
	return nil
}
