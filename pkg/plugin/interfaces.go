package plugin

import (
	"context"
)

// HostBridge performs the visual work the lifecycle controller asks for.
// Every method is called from the controller's event loop goroutine or from
// a goroutine it starts for a single transition; implementations must not
// call back into the controller synchronously.
type HostBridge interface {
	// BuildView creates the splash view for req.Source. A missing source must
	// be reported with an error that matches ErrNotFound.
	BuildView(ctx context.Context, req ViewRequest) (ViewHandle, error)

	// Attach adds view on top of the host UI at the given alpha.
	Attach(ctx context.Context, view ViewHandle, alpha float64) error

	// Detach removes view from the host UI. Detaching a detached view is a no-op.
	Detach(ctx context.Context, view ViewHandle) error

	// Fade animates the view's alpha and returns when the animation completes.
	Fade(ctx context.Context, req FadeRequest) error
}

// AnimationDelegate is host application code that replaces the built-in
// fade out. It must eventually call exactly one of callbacks.Done or
// callbacks.Fail; the controller waits for it without a timeout.
type AnimationDelegate interface {
	AnimateSplash(ctx context.Context, event AnimationEvent, callbacks AnimationCallbacks)
}

// AnimationDelegateFunc adapts a function to AnimationDelegate.
type AnimationDelegateFunc func(ctx context.Context, event AnimationEvent, callbacks AnimationCallbacks)

// AnimateSplash calls f.
func (f AnimationDelegateFunc) AnimateSplash(ctx context.Context, event AnimationEvent, callbacks AnimationCallbacks) {
	f(ctx, event, callbacks)
}
