package engine

import (
	"github.com/Carmen-Shannon/rig-go/engine/camera"
	"github.com/Carmen-Shannon/rig-go/engine/renderer"
	"github.com/Carmen-Shannon/rig-go/engine/window"
)

// EngineBuilderOption is a functional option for configuring an engine.
// Use the With* functions to create options.
type EngineBuilderOption func(e *engine)

// WithWindow attaches the window driving the frame loop.
//
// Parameters:
//   - w: the window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithRenderer attaches the renderer used to draw each frame.
//
// Parameters:
//   - r: the renderer instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderer(r renderer.Renderer) EngineBuilderOption {
	return func(e *engine) {
		e.renderer = r
	}
}

// WithCamera attaches the viewer camera.
//
// Parameters:
//   - c: the camera instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithCamera(c camera.Camera) EngineBuilderOption {
	return func(e *engine) {
		e.camera = c
	}
}

// WithProfiling enables performance profiling from startup.
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling() EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = true
	}
}
