package swapclass

import "context"

type debugKey struct{}

type Debugf func(format string, args ...any)

// WithDebug attaches a trace logger (e.g. t.Logf) to the context. The
// classifier emits its decision trail through it; without one, classification
// is silent.
func WithDebug(ctx context.Context, f Debugf) context.Context {
	if f == nil {
		return ctx
	}
	return context.WithValue(ctx, debugKey{}, f)
}

func dbg(ctx context.Context, format string, args ...any) {
	if v := ctx.Value(debugKey{}); v != nil {
		if f, ok := v.(Debugf); ok && f != nil {
			f(format, args...)
		}
	}
}
