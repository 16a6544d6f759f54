package splash

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jmylchreest/splash/internal/config"
	"github.com/jmylchreest/splash/pkg/plugin"
)

// recordingBridge records every host call. Fades complete immediately unless
// held.
type recordingBridge struct {
	mu       sync.Mutex
	calls    []string
	fades    []plugin.FadeRequest
	buildErr error
	gate     chan struct{}
	views    int
}

func (b *recordingBridge) record(format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = append(b.calls, fmt.Sprintf(format, args...))
}

func (b *recordingBridge) BuildView(_ context.Context, req plugin.ViewRequest) (plugin.ViewHandle, error) {
	b.record("build %s launch=%v", req.Source, req.IsLaunchSplash)
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.buildErr != nil {
		return "", b.buildErr
	}
	b.views++
	return plugin.ViewHandle(fmt.Sprintf("view-%d", b.views)), nil
}

func (b *recordingBridge) Attach(_ context.Context, view plugin.ViewHandle, alpha float64) error {
	b.record("attach %s alpha=%g", view, alpha)
	return nil
}

func (b *recordingBridge) Detach(_ context.Context, view plugin.ViewHandle) error {
	b.record("detach %s", view)
	return nil
}

func (b *recordingBridge) Fade(ctx context.Context, req plugin.FadeRequest) error {
	b.record("fade %s to=%g", req.View, req.ToAlpha)
	b.mu.Lock()
	b.fades = append(b.fades, req)
	gate := b.gate
	b.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
	return nil
}

// hold makes fades block until the returned function is called.
func (b *recordingBridge) hold() func() {
	gate := make(chan struct{})
	b.mu.Lock()
	b.gate = gate
	b.mu.Unlock()
	return func() {
		b.mu.Lock()
		b.gate = nil
		b.mu.Unlock()
		close(gate)
	}
}

func (b *recordingBridge) reset() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.calls = nil
	b.fades = nil
}

func (b *recordingBridge) recorded() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.calls...)
}

func (b *recordingBridge) fadeRequests() []plugin.FadeRequest {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]plugin.FadeRequest(nil), b.fades...)
}

// fadesTo returns the fades that animate to alpha.
func (b *recordingBridge) fadesTo(alpha float64) []plugin.FadeRequest {
	var out []plugin.FadeRequest
	for _, f := range b.fadeRequests() {
		if f.ToAlpha == alpha {
			out = append(out, f)
		}
	}
	return out
}

// fakeDelegate runs a scripted reaction to each animation.
type fakeDelegate struct {
	mu     sync.Mutex
	events []plugin.AnimationEvent
	react  func(callbacks plugin.AnimationCallbacks)
	called chan plugin.AnimationCallbacks
}

func newFakeDelegate(react func(plugin.AnimationCallbacks)) *fakeDelegate {
	return &fakeDelegate{react: react, called: make(chan plugin.AnimationCallbacks, 4)}
}

func (d *fakeDelegate) AnimateSplash(_ context.Context, event plugin.AnimationEvent, callbacks plugin.AnimationCallbacks) {
	d.mu.Lock()
	d.events = append(d.events, event)
	d.mu.Unlock()
	d.called <- callbacks
	if d.react != nil {
		d.react(callbacks)
	}
}

func (d *fakeDelegate) received() []plugin.AnimationEvent {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]plugin.AnimationEvent(nil), d.events...)
}

type harness struct {
	t         *testing.T
	lifecycle *Lifecycle
	bridge    *recordingBridge
	clock     *ManualClock
}

func newHarness(t *testing.T, tree config.Tree, delegate plugin.AnimationDelegate) *harness {
	t.Helper()
	h := &harness{t: t, bridge: &recordingBridge{}, clock: NewManualClock(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))}

	b := NewBuilder().
		WithBridge(h.bridge).
		WithResolver(config.NewResolver(tree, config.PlatformIOS)).
		WithClock(h.clock)
	if delegate != nil {
		b.WithDelegate(delegate)
	}

	l, err := b.Build()
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	t.Cleanup(func() { _ = l.Close() })
	h.lifecycle = l
	return h
}

func (h *harness) ctx() context.Context {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	h.t.Cleanup(cancel)
	return ctx
}

func (h *harness) wait(call *Call) error {
	h.t.Helper()
	err := call.Wait(h.ctx())
	if err == context.DeadlineExceeded {
		h.t.Fatalf("%s call did not resolve", call.Op())
	}
	return err
}

func (h *harness) mustSucceed(call *Call) {
	h.t.Helper()
	if err := h.wait(call); err != nil {
		h.t.Fatalf("%s() error = %v", call.Op(), err)
	}
}

func (h *harness) status() Status {
	h.t.Helper()
	s, err := h.lifecycle.Status(h.ctx())
	if err != nil {
		h.t.Fatalf("Status() error = %v", err)
	}
	return s
}

// waitPhase polls until the lifecycle reaches phase.
func (h *harness) waitPhase(phase Phase) Status {
	h.t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		s := h.status()
		if s.Phase == phase {
			return s
		}
		if time.Now().After(deadline) {
			h.t.Fatalf("phase = %v, want %v", s.Phase, phase)
		}
		time.Sleep(time.Millisecond)
	}
}

func (h *harness) launch() {
	h.t.Helper()
	if err := h.lifecycle.InitializeLaunch(h.ctx()); err != nil {
		h.t.Fatalf("InitializeLaunch() error = %v", err)
	}
}
