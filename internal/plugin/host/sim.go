package host

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/splash/internal/image"
	"github.com/jmylchreest/splash/internal/splash"
	"github.com/jmylchreest/splash/pkg/plugin"
)

// SimulateFailureOption makes the simulated delegate fail an animation when
// set to true in the animate call's options.
const SimulateFailureOption = "simulateFailure"

// EventKind identifies a recorded bridge call.
type EventKind string

const (
	EventBuild   EventKind = "build"
	EventAttach  EventKind = "attach"
	EventDetach  EventKind = "detach"
	EventFade    EventKind = "fade"
	EventAnimate EventKind = "animate"
)

// Event is one recorded bridge call. Fades and animations span Start to End;
// other calls happen at Start.
type Event struct {
	Kind   EventKind
	View   plugin.ViewHandle
	Start  time.Time
	End    time.Time
	Detail string
}

// Sim is a HostBridge and AnimationDelegate that keeps a timeline instead of
// drawing. Fades and animations take their full duration on the clock.
type Sim struct {
	clock     splash.Clock
	resources *image.Resources
	logger    hclog.Logger
	level     hclog.Level

	mu       sync.Mutex
	nextView int
	attached map[plugin.ViewHandle]bool
	events   []Event
	parked   int
}

// NewSim creates a simulated host. Events are logged at level.
func NewSim(clock splash.Clock, resources *image.Resources, logger hclog.Logger, level hclog.Level) *Sim {
	if logger == nil {
		logger = hclog.NewNullLogger()
	}
	return &Sim{
		clock:     clock,
		resources: resources,
		logger:    logger,
		level:     level,
		attached:  make(map[plugin.ViewHandle]bool),
	}
}

func (s *Sim) record(e Event) {
	s.mu.Lock()
	s.events = append(s.events, e)
	s.mu.Unlock()

	args := []any{"view", e.View, "at", e.Start.Format(time.StampMilli)}
	if !e.End.IsZero() {
		args = append(args, "span", e.End.Sub(e.Start))
	}
	if e.Detail != "" {
		args = append(args, "detail", e.Detail)
	}
	s.logger.Log(s.level, string(e.Kind), args...)
}

// BuildView implements plugin.HostBridge.
func (s *Sim) BuildView(_ context.Context, req plugin.ViewRequest) (plugin.ViewHandle, error) {
	detail := fmt.Sprintf("source=%s launch=%v", req.Source, req.IsLaunchSplash)
	if s.resources != nil {
		info, err := s.resources.Describe(req.Source)
		if err != nil {
			return "", err
		}
		detail = fmt.Sprintf("%s %s %dx%d", detail, info.Format, info.Width, info.Height)
	}
	if req.BackgroundColor != "" {
		detail += " background=" + req.BackgroundColor
	}
	if req.ShowSpinner {
		detail += " spinner=" + req.SpinnerStyle
	}

	s.mu.Lock()
	s.nextView++
	view := plugin.ViewHandle(fmt.Sprintf("view-%d", s.nextView))
	s.mu.Unlock()

	s.record(Event{Kind: EventBuild, View: view, Start: s.clock.Now(), Detail: detail})
	return view, nil
}

// Attach implements plugin.HostBridge.
func (s *Sim) Attach(_ context.Context, view plugin.ViewHandle, alpha float64) error {
	s.mu.Lock()
	s.attached[view] = true
	s.mu.Unlock()
	s.record(Event{Kind: EventAttach, View: view, Start: s.clock.Now(), Detail: fmt.Sprintf("alpha=%g", alpha)})
	return nil
}

// Detach implements plugin.HostBridge.
func (s *Sim) Detach(_ context.Context, view plugin.ViewHandle) error {
	s.mu.Lock()
	wasAttached := s.attached[view]
	delete(s.attached, view)
	s.mu.Unlock()
	if !wasAttached {
		return nil
	}
	s.record(Event{Kind: EventDetach, View: view, Start: s.clock.Now()})
	return nil
}

// Fade implements plugin.HostBridge. It returns once the clock has passed
// the fade's delay and duration.
func (s *Sim) Fade(ctx context.Context, req plugin.FadeRequest) error {
	now := s.clock.Now()
	start := now.Add(req.Delay)
	s.record(Event{
		Kind:   EventFade,
		View:   req.View,
		Start:  start,
		End:    start.Add(req.Duration),
		Detail: fmt.Sprintf("to=%g", req.ToAlpha),
	})
	return s.park(ctx, req.Delay+req.Duration)
}

// AnimateSplash implements plugin.AnimationDelegate. The animation completes
// after event.AnimationDuration on the clock.
func (s *Sim) AnimateSplash(ctx context.Context, event plugin.AnimationEvent, callbacks plugin.AnimationCallbacks) {
	now := s.clock.Now()
	fail, _ := event.Options[SimulateFailureOption].(bool)
	detail := string(event.Type)
	if fail {
		detail += " fail"
	}
	s.record(Event{Kind: EventAnimate, View: event.View, Start: now, End: now.Add(event.AnimationDuration), Detail: detail})

	finish := func() {
		if fail {
			callbacks.Fail("simulated animation failure", plugin.CodeAnimateMethodFailed)
			return
		}
		callbacks.Done()
	}
	if event.AnimationDuration <= 0 {
		finish()
		return
	}
	s.parkAsync(event.AnimationDuration, finish)
}

// park blocks until d has passed on the clock.
func (s *Sim) park(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	done := make(chan struct{})
	s.parkAsync(d, func() { close(done) })
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// parkAsync runs then after d on the clock, counting it as parked until then.
func (s *Sim) parkAsync(d time.Duration, then func()) {
	s.mu.Lock()
	s.parked++
	s.mu.Unlock()
	s.clock.AfterFunc(d, func() {
		s.mu.Lock()
		s.parked--
		s.mu.Unlock()
		then()
	})
}

// Events implements Recorder.
func (s *Sim) Events() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Event(nil), s.events...)
}

// Parked implements Recorder.
func (s *Sim) Parked() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.parked
}
