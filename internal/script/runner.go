package script

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/splash/internal/appstate"
	"github.com/jmylchreest/splash/internal/plugin/host"
	"github.com/jmylchreest/splash/internal/splash"
	"github.com/jmylchreest/splash/pkg/plugin"
)

// settleTimeout bounds how long a virtual-time run waits for the lifecycle
// and host to go quiet between clock advances.
const settleTimeout = 5 * time.Second

// ErrNotSettled is returned when a virtual-time run cannot make progress,
// typically because a delegate never reported back.
var ErrNotSettled = errors.New("lifecycle did not settle")

// Session is what a script runs against.
type Session struct {
	Lifecycle *splash.Lifecycle

	// Monitor receives suspend and resume steps. Nil creates one.
	Monitor *appstate.Monitor

	// Clock must be the lifecycle's clock. A *splash.ManualClock together with
	// a Recorder runs the script in virtual time.
	Clock splash.Clock

	// Recorder supplies host events. It may be nil.
	Recorder host.Recorder

	Logger hclog.Logger
}

type pendingCall struct {
	call   *splash.Call
	op     Op
	actor  Actor
	expect string
}

type runner struct {
	script  *Script
	session Session
	logger  hclog.Logger
	manual  *splash.ManualClock
	start   time.Time

	inflight sync.WaitGroup

	mu      sync.Mutex
	records []Record
	pending []pendingCall
	failed  []string
}

// Run executes script against session and returns the recorded timeline.
// A step whose outcome does not match its expectation is reported in
// Timeline.Failures, not as an error.
func Run(ctx context.Context, script *Script, session Session) (*Timeline, error) {
	if session.Lifecycle == nil || session.Clock == nil {
		return nil, fmt.Errorf("script session requires a lifecycle and a clock")
	}
	if session.Monitor == nil {
		session.Monitor = appstate.NewMonitor()
	}
	logger := session.Logger
	if logger == nil {
		logger = hclog.NewNullLogger()
	}

	r := &runner{script: script, session: session, logger: logger, start: session.Clock.Now()}
	if manual, ok := session.Clock.(*splash.ManualClock); ok && session.Recorder != nil {
		r.manual = manual
	}

	handle := session.Monitor.Listen(appstate.Listeners{
		OnResume:  r.hook(script.OnResume),
		OnSuspend: r.hook(script.OnSuspend),
	})
	defer handle.Remove()

	var err error
	if r.manual != nil {
		err = r.runVirtual(ctx)
	} else {
		err = r.runRealtime(ctx)
	}
	if err != nil {
		return nil, err
	}

	status, err := session.Lifecycle.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read final status: %w", err)
	}
	return r.timeline(status), nil
}

func (r *runner) offset() time.Duration {
	return r.session.Clock.Now().Sub(r.start)
}

func (r *runner) record(rec Record) {
	r.mu.Lock()
	r.records = append(r.records, rec)
	r.mu.Unlock()
}

func (r *runner) launch(ctx context.Context) error {
	if !r.script.Launch {
		return nil
	}
	r.record(Record{At: r.offset(), Actor: ActorCall, Action: "launch"})
	if err := r.session.Lifecycle.InitializeLaunch(ctx); err != nil {
		return fmt.Errorf("failed to initialize launch splash: %w", err)
	}
	return nil
}

func (r *runner) hook(h *Hook) func() {
	if h == nil {
		return nil
	}
	return func() {
		r.issue(h.Call, h.Options, "", ActorHook)
	}
}

func (r *runner) step(step Step) {
	switch step.Call {
	case OpSuspend:
		r.record(Record{At: r.offset(), Actor: ActorApp, Action: string(step.Call)})
		r.session.Monitor.SetActive(false)
	case OpResume:
		r.record(Record{At: r.offset(), Actor: ActorApp, Action: string(step.Call)})
		r.session.Monitor.SetActive(true)
	default:
		r.issue(step.Call, step.Options, step.Expect, ActorCall)
	}
}

func (r *runner) issue(op Op, opts map[string]any, expect string, actor Actor) {
	lifecycle := r.session.Lifecycle
	var call *splash.Call
	switch op {
	case OpShow:
		call = lifecycle.Show(opts)
	case OpHide:
		call = lifecycle.Hide(opts)
	case OpAnimate:
		call = lifecycle.Animate(opts)
	default:
		return
	}

	r.logger.Debug("issued call", "op", op, "call_id", call.ID(), "at", r.offset())
	r.record(Record{At: r.offset(), Actor: actor, Action: string(op), Call: call.ID(), Detail: formatOptions(opts)})

	p := pendingCall{call: call, op: op, actor: actor, expect: expect}
	if r.manual != nil {
		r.mu.Lock()
		r.pending = append(r.pending, p)
		r.mu.Unlock()
		return
	}
	r.inflight.Add(1)
	go func() {
		defer r.inflight.Done()
		<-call.Done()
		r.resolved(p)
	}()
}

// collect records the calls that resolved since the last collect.
func (r *runner) collect() {
	r.mu.Lock()
	var done, rest []pendingCall
	for _, p := range r.pending {
		select {
		case <-p.call.Done():
			done = append(done, p)
		default:
			rest = append(rest, p)
		}
	}
	r.pending = rest
	r.mu.Unlock()

	for _, p := range done {
		r.resolved(p)
	}
}

func (r *runner) resolved(p pendingCall) {
	err := p.call.Err()
	outcome := ExpectOK
	detail := ExpectOK
	if err != nil {
		outcome = string(plugin.CodeOf(err))
		detail = err.Error()
	}
	r.record(Record{At: r.offset(), Actor: ActorResult, Action: string(p.op), Call: p.call.ID(), Detail: detail})

	if p.expect != "" && p.expect != outcome {
		r.mu.Lock()
		r.failed = append(r.failed, fmt.Sprintf("%s %s: got %s, want %s", p.op, ShortID(p.call.ID()), outcome, p.expect))
		r.mu.Unlock()
	}
}

// runVirtual advances the manual clock from one deadline to the next,
// letting the lifecycle and host settle in between, so a script of any
// length runs instantly.
func (r *runner) runVirtual(ctx context.Context) error {
	if err := r.launch(ctx); err != nil {
		return err
	}
	for _, step := range r.script.Steps {
		if err := r.advanceTo(ctx, r.start.Add(step.Offset()), true); err != nil {
			return err
		}
		r.step(step)
	}
	return r.advanceTo(ctx, time.Time{}, false)
}

// advanceTo runs every timer due up to target. With bounded false it runs
// until no timers remain.
func (r *runner) advanceTo(ctx context.Context, target time.Time, bounded bool) error {
	for {
		if err := r.settle(ctx); err != nil {
			return err
		}
		next, ok := r.manual.NextDeadline()
		if !ok || (bounded && next.After(target)) {
			break
		}
		r.manual.AdvanceTo(next)
	}
	if bounded {
		r.manual.AdvanceTo(target)
		return r.settle(ctx)
	}
	return nil
}

// settle waits until every host operation the lifecycle started is parked on
// the clock, then records the calls that resolved.
func (r *runner) settle(ctx context.Context) error {
	deadline := time.Now().Add(settleTimeout)
	for {
		status, err := r.session.Lifecycle.Status(ctx)
		if err != nil {
			return err
		}
		if status.InFlight == r.session.Recorder.Parked() {
			r.collect()
			return nil
		}
		if time.Now().After(deadline) {
			return fmt.Errorf("%w: %d host operations in flight, %d parked", ErrNotSettled,
				status.InFlight, r.session.Recorder.Parked())
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(time.Millisecond):
		}
	}
}

// runRealtime sleeps until each step is due, then waits for every issued
// call to resolve.
func (r *runner) runRealtime(ctx context.Context) error {
	if err := r.launch(ctx); err != nil {
		return err
	}
	for _, step := range r.script.Steps {
		delay := r.start.Add(step.Offset()).Sub(r.session.Clock.Now())
		if delay > 0 {
			timer := time.NewTimer(delay)
			select {
			case <-timer.C:
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			}
		}
		r.step(step)
	}

	done := make(chan struct{})
	go func() {
		r.inflight.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
