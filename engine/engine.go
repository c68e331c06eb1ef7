// Package engine hosts the frame loop: it owns the window, camera and
// renderer, advances every model once per frame and feeds the posed models to
// the renderer. All per-frame work runs single-threaded on the window's
// message loop; models are posed and drawn cooperatively, never concurrently.
package engine

import (
	"sync"

	"github.com/Carmen-Shannon/rig-go/engine/camera"
	"github.com/Carmen-Shannon/rig-go/engine/model"
	"github.com/Carmen-Shannon/rig-go/engine/profiler"
	"github.com/Carmen-Shannon/rig-go/engine/renderer"
	"github.com/Carmen-Shannon/rig-go/engine/renderer/draw_assembler"
	"github.com/Carmen-Shannon/rig-go/engine/window"
	"github.com/Carmen-Shannon/rig-go/logger"
	"github.com/go-gl/mathgl/mgl32"
)

// maxFrameDelta caps the per-frame elapsed time fed to animation. Long stalls
// (debugger pauses, window drags) otherwise fast-forward every clip.
const maxFrameDelta float32 = 0.25

// engine is the implementation of the Engine interface.
type engine struct {
	window   window.Window
	renderer renderer.Renderer
	camera   camera.Camera

	profiler         *profiler.Profiler
	profilingEnabled bool

	models []model.Model

	lightDirection mgl32.Vec4

	tickCallback func(deltaTime float32)

	lastFrameTime float64
	firstFrame    bool

	quitOnce sync.Once
}

// Engine is the main entry point for the viewer runtime. It drives the
// cooperative frame loop: poll input, advance animations, propagate
// transforms, refresh joint palettes, then assemble and submit the frame.
type Engine interface {
	// Window returns the underlying window.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Camera returns the viewer camera.
	//
	// Returns:
	//   - camera.Camera: the camera instance
	Camera() camera.Camera

	// AddModel uploads the model's GPU resources and adds it to the draw
	// list. Models are drawn in the order they were added.
	//
	// Parameters:
	//   - m: the loaded model to add
	//
	// Returns:
	//   - error: error if GPU resource creation fails
	AddModel(m model.Model) error

	// Models returns the current draw list.
	//
	// Returns:
	//   - []model.Model: the models in draw order
	Models() []model.Model

	// SetLightDirection sets the world-space directional light used for
	// shading. The w component is unused.
	//
	// Parameters:
	//   - dir: the light direction
	SetLightDirection(dir mgl32.Vec4)

	// SetTickCallback registers a function called once per frame before
	// models are advanced. Use this for input handling and scene changes.
	//
	// Parameters:
	//   - callback: function receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// Run starts the frame loop (blocks until the window closes).
	Run()

	// Quit closes the window, ending the frame loop.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
// The window, renderer and camera must be supplied via options; NewEngine
// wires resize events through to both the renderer and the camera.
//
// Parameters:
//   - options: functional options for engine configuration
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		profiler:       profiler.NewProfiler(),
		lightDirection: mgl32.Vec4{-0.5, -1.0, -0.3, 0},
		firstFrame:     true,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			if width <= 0 || height <= 0 {
				return
			}
			if e.renderer != nil {
				e.renderer.Resize(width, height)
			}
			if e.camera != nil {
				e.camera.SetAspect(float32(width) / float32(height))
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Camera() camera.Camera {
	return e.camera
}

func (e *engine) AddModel(m model.Model) error {
	if m == nil {
		return nil
	}
	if e.renderer != nil {
		if err := e.renderer.InitModel(m); err != nil {
			return err
		}
	}
	e.models = append(e.models, m)
	return nil
}

func (e *engine) Models() []model.Model {
	return e.models
}

func (e *engine) SetLightDirection(dir mgl32.Vec4) {
	e.lightDirection = dir
}

func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.tickCallback = callback
}

func (e *engine) EnableProfiler() {
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.profilingEnabled = false
}

func (e *engine) Run() {
	if e.window == nil {
		logger.Sugar.Error("engine started without a window")
		return
	}

	e.window.SetUpdateCallback(e.frame)
	e.window.ProcessMessages()
}

func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		if e.window != nil {
			if err := e.window.Close(); err != nil {
				logger.Sugar.Warnw("window close failed", "error", err)
			}
		}
	})
}

// frame runs one iteration of the loop: compute the clamped delta from the
// window clock, tick, advance every model, then assemble and submit the
// frame.
func (e *engine) frame() {
	now := e.window.Time()
	if e.firstFrame {
		e.lastFrameTime = now
		e.firstFrame = false
	}
	dt := float32(now - e.lastFrameTime)
	e.lastFrameTime = now
	if dt > maxFrameDelta {
		dt = maxFrameDelta
	}

	if e.tickCallback != nil {
		e.tickCallback(dt)
	}

	e.profiler.BeginPhase(profiler.PhaseUpdate)
	for _, m := range e.models {
		m.Update(dt)
	}
	e.profiler.EndPhase(profiler.PhaseUpdate)

	if e.renderer != nil && e.camera != nil {
		frame := draw_assembler.FrameInputs{
			View:           e.camera.ViewMatrix(),
			Projection:     e.camera.ProjectionMatrix(),
			LightDirection: e.lightDirection,
		}

		e.profiler.BeginPhase(profiler.PhaseRender)
		if err := e.renderer.RenderFrame(e.models, frame); err != nil {
			logger.Sugar.Warnw("frame render failed", "error", err)
		}
		e.profiler.EndPhase(profiler.PhaseRender)
	}

	if e.profilingEnabled {
		e.profiler.Tick()
	}
}
