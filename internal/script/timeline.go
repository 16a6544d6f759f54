package script

import (
	"fmt"
	"maps"
	"slices"
	"strings"
	"time"

	"github.com/jmylchreest/splash/internal/splash"
	"github.com/jmylchreest/splash/pkg/plugin"
)

// Actor identifies who produced a timeline record.
type Actor string

const (
	ActorApp    Actor = "app"
	ActorCall   Actor = "call"
	ActorHook   Actor = "hook"
	ActorHost   Actor = "host"
	ActorResult Actor = "result"
)

// rank orders records that share an offset.
func (a Actor) rank() int {
	switch a {
	case ActorApp:
		return 0
	case ActorCall, ActorHook:
		return 1
	case ActorHost:
		return 2
	default:
		return 3
	}
}

// Record is one line of a timeline. End is set for host fades and
// animations, which span At to End.
type Record struct {
	At     time.Duration
	End    time.Duration
	Actor  Actor
	Action string
	View   plugin.ViewHandle
	Call   string
	Detail string
}

// Timeline is the outcome of a script run.
type Timeline struct {
	Script  string
	Records []Record
	Final   splash.Status

	// Failures lists the steps whose outcome did not match their expectation.
	Failures []string
}

// Passed reports whether every expectation held.
func (t *Timeline) Passed() bool {
	return len(t.Failures) == 0
}

// Duration returns the offset of the last record.
func (t *Timeline) Duration() time.Duration {
	var d time.Duration
	for _, rec := range t.Records {
		d = max(d, rec.At, rec.End)
	}
	return d
}

func (r *runner) timeline(final splash.Status) *Timeline {
	r.mu.Lock()
	records := append([]Record(nil), r.records...)
	failures := append([]string(nil), r.failed...)
	r.mu.Unlock()

	if r.session.Recorder != nil {
		for _, e := range r.session.Recorder.Events() {
			rec := Record{
				At:     e.Start.Sub(r.start),
				Actor:  ActorHost,
				Action: string(e.Kind),
				View:   e.View,
				Detail: e.Detail,
			}
			if !e.End.IsZero() {
				rec.End = e.End.Sub(r.start)
			}
			records = append(records, rec)
		}
	}

	slices.SortStableFunc(records, func(a, b Record) int {
		if a.At != b.At {
			if a.At < b.At {
				return -1
			}
			return 1
		}
		return a.Actor.rank() - b.Actor.rank()
	})

	return &Timeline{
		Script:   r.script.Name,
		Records:  records,
		Final:    final,
		Failures: failures,
	}
}

// formatOptions renders a call's options in key order.
func formatOptions(opts map[string]any) string {
	if len(opts) == 0 {
		return ""
	}
	parts := make([]string, 0, len(opts))
	for _, key := range slices.Sorted(maps.Keys(opts)) {
		parts = append(parts, fmt.Sprintf("%s=%v", key, opts[key]))
	}
	return strings.Join(parts, " ")
}

// ShortID returns the first block of a call ID.
func ShortID(id string) string {
	if i := strings.IndexByte(id, '-'); i > 0 {
		return id[:i]
	}
	return id
}
