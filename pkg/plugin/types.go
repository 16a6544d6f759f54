package plugin

import (
	"time"
)

// ViewHandle identifies a splash view owned by the host. It is opaque to the controller.
type ViewHandle string

// ViewRequest describes the splash view to build.
type ViewRequest struct {
	Source           string `json:"source"`
	IsLaunchSplash   bool   `json:"is_launch_splash"`
	BackgroundColor  string `json:"background_color,omitempty"`
	ShowSpinner      bool   `json:"show_spinner"`
	SpinnerStyle     string `json:"spinner_style,omitempty"`
	SpinnerColor     string `json:"spinner_color,omitempty"`
	ImageContentMode string `json:"image_content_mode,omitempty"`
}

// FadeRequest asks the host to animate a view's alpha to ToAlpha over
// Duration, starting after Delay.
type FadeRequest struct {
	View     ViewHandle    `json:"view"`
	ToAlpha  float64       `json:"to_alpha"`
	Duration time.Duration `json:"duration"`
	Delay    time.Duration `json:"delay"`
}

// EventType distinguishes animations of the launch splash from animations of
// a splash shown with show().
type EventType string

const (
	// EventAnimate is sent for a splash shown with show().
	EventAnimate EventType = "animate"

	// EventAnimateLaunch is sent for the launch splash.
	EventAnimateLaunch EventType = "animateLaunch"
)

// AnimationEvent is passed to the AnimationDelegate.
type AnimationEvent struct {
	Type              EventType      `json:"type"`
	Source            string         `json:"source"`
	View              ViewHandle     `json:"view"`
	AnimationDuration time.Duration  `json:"animation_duration"`
	Options           map[string]any `json:"options,omitempty"`
}

// AnimationCallbacks are handed to the AnimationDelegate. Only the first
// call across both functions has any effect.
type AnimationCallbacks struct {
	// Done signals that the custom animation finished.
	Done func()

	// Fail signals that the custom animation could not complete.
	Fail func(message string, code ErrorCode)
}

// PluginInfo contains metadata about an out-of-process host.
type PluginInfo struct {
	Name            string `json:"name"`
	Version         string `json:"version"`
	ProtocolVersion string `json:"protocol_version"`
	Description     string `json:"description"`
	Platform        string `json:"platform"`
}
