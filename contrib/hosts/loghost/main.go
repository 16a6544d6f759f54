// splash-host-log - Splash host that logs every bridge call
//
// This host has no UI. Views are named view-N, fades and delegate animations
// take their real duration, and every call is written to stderr, which
// go-plugin forwards to the controller's log.
//
// Build:
//   go build -o splash-host-log .
//
// Usage:
//   splash host info ./splash-host-log
//   splash run session.toml --host ./splash-host-log
//
// Options:
//   animate with simulateFailure=true fails the delegate animation.
//
// License: MIT

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/hashicorp/go-hclog"

	"github.com/jmylchreest/splash/pkg/plugin"
)

const simulateFailureOption = "simulateFailure"

// LogHost implements plugin.HostBridge and plugin.AnimationDelegate.
type LogHost struct {
	logger hclog.Logger

	mu       sync.Mutex
	nextView int
	attached map[plugin.ViewHandle]bool
}

func newLogHost(logger hclog.Logger) *LogHost {
	return &LogHost{logger: logger, attached: make(map[plugin.ViewHandle]bool)}
}

// BuildView names a new view. There is nothing to load, so every source exists.
func (h *LogHost) BuildView(_ context.Context, req plugin.ViewRequest) (plugin.ViewHandle, error) {
	h.mu.Lock()
	h.nextView++
	view := plugin.ViewHandle(fmt.Sprintf("view-%d", h.nextView))
	h.mu.Unlock()

	h.logger.Info("build view", "view", view, "source", req.Source, "launch", req.IsLaunchSplash,
		"background", req.BackgroundColor, "spinner", req.ShowSpinner)
	return view, nil
}

// Attach marks the view as attached.
func (h *LogHost) Attach(_ context.Context, view plugin.ViewHandle, alpha float64) error {
	h.mu.Lock()
	h.attached[view] = true
	h.mu.Unlock()

	h.logger.Info("attach", "view", view, "alpha", alpha)
	return nil
}

// Detach is a no-op for views that are not attached.
func (h *LogHost) Detach(_ context.Context, view plugin.ViewHandle) error {
	h.mu.Lock()
	wasAttached := h.attached[view]
	delete(h.attached, view)
	h.mu.Unlock()

	if wasAttached {
		h.logger.Info("detach", "view", view)
	}
	return nil
}

// Fade waits out the delay and duration of the fade.
func (h *LogHost) Fade(ctx context.Context, req plugin.FadeRequest) error {
	h.logger.Info("fade", "view", req.View, "to", req.ToAlpha, "delay", req.Delay, "duration", req.Duration)

	timer := time.NewTimer(req.Delay + req.Duration)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		h.logger.Debug("fade cancelled", "view", req.View)
		return ctx.Err()
	}
}

// AnimateSplash finishes after the animation duration, or fails when asked to.
func (h *LogHost) AnimateSplash(_ context.Context, event plugin.AnimationEvent, callbacks plugin.AnimationCallbacks) {
	h.logger.Info("animate", "type", event.Type, "view", event.View, "duration", event.AnimationDuration, "options", event.Options)

	if fail, _ := event.Options[simulateFailureOption].(bool); fail {
		callbacks.Fail("simulated animation failure", plugin.CodeAnimateMethodFailed)
		return
	}
	time.AfterFunc(event.AnimationDuration, callbacks.Done)
}

func info() plugin.PluginInfo {
	return plugin.PluginInfo{
		Name:            "splash-host-log",
		Version:         "0.1.0",
		ProtocolVersion: plugin.ProtocolVersion,
		Description:     "Headless host that logs every bridge call",
		Platform:        "any",
	}
}

func main() {
	// Controllers query --plugin-info before launching a host over go-plugin.
	if len(os.Args) > 1 && os.Args[1] == "--plugin-info" {
		encoder := json.NewEncoder(os.Stdout)
		encoder.SetIndent("", "  ")
		if err := encoder.Encode(info()); err != nil {
			fmt.Fprintf(os.Stderr, "Error encoding host info: %v\n", err)
			os.Exit(1)
		}
		os.Exit(0)
	}

	logger := hclog.New(&hclog.LoggerOptions{
		Name:       "splash-host-log",
		Level:      hclog.Info,
		Output:     os.Stderr,
		JSONFormat: true,
	})

	host := newLogHost(logger)
	plugin.ServeHost(host, host)
}
