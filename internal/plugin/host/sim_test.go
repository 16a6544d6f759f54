package host

import (
	"context"
	"errors"
	"image"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	splashimage "github.com/jmylchreest/splash/internal/image"
	"github.com/jmylchreest/splash/internal/splash"
	"github.com/jmylchreest/splash/pkg/plugin"
)

var epoch = time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

func newTestSim(t *testing.T, resources *splashimage.Resources) (*Sim, *splash.ManualClock) {
	t.Helper()
	clock := splash.NewManualClock(epoch)
	return NewSim(clock, resources, nil, 0), clock
}

// waitParked waits for n operations to be parked on the clock.
func waitParked(t *testing.T, sim *Sim, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for sim.Parked() != n {
		if time.Now().After(deadline) {
			t.Fatalf("parked = %d, want %d", sim.Parked(), n)
		}
		time.Sleep(time.Millisecond)
	}
}

func TestSimRecordsCalls(t *testing.T) {
	sim, _ := newTestSim(t, nil)
	ctx := context.Background()

	view, err := sim.BuildView(ctx, plugin.ViewRequest{Source: "*", IsLaunchSplash: true, BackgroundColor: "#000000"})
	if err != nil {
		t.Fatalf("BuildView() error = %v", err)
	}
	if view != "view-1" {
		t.Errorf("view = %s, want view-1", view)
	}
	if err := sim.Attach(ctx, view, 1); err != nil {
		t.Fatal(err)
	}
	if err := sim.Fade(ctx, plugin.FadeRequest{View: view, ToAlpha: 1}); err != nil {
		t.Fatal(err)
	}
	if err := sim.Detach(ctx, view); err != nil {
		t.Fatal(err)
	}
	if err := sim.Detach(ctx, view); err != nil {
		t.Fatal(err)
	}

	events := sim.Events()
	kinds := make([]EventKind, len(events))
	for i, e := range events {
		kinds[i] = e.Kind
	}
	want := []EventKind{EventBuild, EventAttach, EventFade, EventDetach}
	if len(kinds) != len(want) {
		t.Fatalf("events = %v, want %v", kinds, want)
	}
	for i := range want {
		if kinds[i] != want[i] {
			t.Errorf("event %d = %s, want %s", i, kinds[i], want[i])
		}
	}
	if events[0].Detail != "source=* launch=true background=#000000" {
		t.Errorf("build detail = %q", events[0].Detail)
	}
}

func TestSimFadeTakesClockTime(t *testing.T) {
	sim, clock := newTestSim(t, nil)

	done := make(chan error, 1)
	go func() {
		done <- sim.Fade(context.Background(), plugin.FadeRequest{
			View:     "view-1",
			ToAlpha:  0,
			Delay:    100 * time.Millisecond,
			Duration: 300 * time.Millisecond,
		})
	}()
	waitParked(t, sim, 1)

	clock.Advance(399 * time.Millisecond)
	select {
	case <-done:
		t.Fatal("fade returned before its delay and duration elapsed")
	default:
	}

	clock.Advance(time.Millisecond)
	if err := <-done; err != nil {
		t.Fatalf("Fade() error = %v", err)
	}
	if sim.Parked() != 0 {
		t.Errorf("parked = %d after fade, want 0", sim.Parked())
	}

	e := sim.Events()[0]
	if !e.Start.Equal(epoch.Add(100*time.Millisecond)) || !e.End.Equal(epoch.Add(400*time.Millisecond)) {
		t.Errorf("fade span = %v..%v", e.Start, e.End)
	}
}

func TestSimFadeCancelled(t *testing.T) {
	sim, _ := newTestSim(t, nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sim.Fade(ctx, plugin.FadeRequest{View: "view-1", Duration: time.Second})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Fade() error = %v, want context.Canceled", err)
	}
}

func TestSimAnimate(t *testing.T) {
	tests := []struct {
		name     string
		duration time.Duration
		options  map[string]any
		wantFail bool
	}{
		{"immediate", 0, nil, false},
		{"timed", 500 * time.Millisecond, nil, false},
		{"failure", 500 * time.Millisecond, map[string]any{SimulateFailureOption: true}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sim, clock := newTestSim(t, nil)
			result := make(chan string, 2)
			callbacks := plugin.AnimationCallbacks{
				Done: func() { result <- "done" },
				Fail: func(message string, code plugin.ErrorCode) { result <- string(code) },
			}

			sim.AnimateSplash(context.Background(), plugin.AnimationEvent{
				Type:              plugin.EventAnimate,
				View:              "view-1",
				AnimationDuration: tt.duration,
				Options:           tt.options,
			}, callbacks)

			if tt.duration > 0 {
				if sim.Parked() != 1 {
					t.Fatalf("parked = %d, want 1", sim.Parked())
				}
				select {
				case r := <-result:
					t.Fatalf("animation settled early with %s", r)
				default:
				}
				clock.Advance(tt.duration)
			}

			want := "done"
			if tt.wantFail {
				want = string(plugin.CodeAnimateMethodFailed)
			}
			if got := <-result; got != want {
				t.Errorf("animation settled with %s, want %s", got, want)
			}
		})
	}
}

func TestSimValidatesResources(t *testing.T) {
	dir := t.TempDir()
	f, err := os.Create(filepath.Join(dir, "splash.png"))
	if err != nil {
		t.Fatal(err)
	}
	if err := png.Encode(f, image.NewRGBA(image.Rect(0, 0, 8, 6))); err != nil {
		t.Fatal(err)
	}
	f.Close()

	sim, _ := newTestSim(t, splashimage.NewResources(dir))
	ctx := context.Background()

	if _, err := sim.BuildView(ctx, plugin.ViewRequest{Source: "*"}); err != nil {
		t.Fatalf("BuildView(*) error = %v", err)
	}
	if detail := sim.Events()[0].Detail; detail != "source=* launch=false png 8x6" {
		t.Errorf("build detail = %q", detail)
	}

	_, err = sim.BuildView(ctx, plugin.ViewRequest{Source: "missing"})
	if !errors.Is(err, plugin.ErrNotFound) {
		t.Errorf("BuildView(missing) error = %v, want notFound", err)
	}
}
