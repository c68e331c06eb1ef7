package camera

import (
	"sync"

	"github.com/Carmen-Shannon/rig-go/common"
	"github.com/go-gl/mathgl/mgl32"
)

type cameraImpl struct {
	mu *sync.Mutex

	eye    mgl32.Vec3
	target mgl32.Vec3
	up     mgl32.Vec3

	fov    float32
	aspect float32
	near   float32
	far    float32

	viewMatrix       mgl32.Mat4
	projectionMatrix mgl32.Mat4
}

// Camera defines the interface for the viewer camera.
// The camera holds a look-at pose and perspective settings and keeps its
// view/projection matrices current as those change.
type Camera interface {
	// Eye returns the camera position in world space.
	//
	// Returns:
	//   - mgl32.Vec3: the eye position
	Eye() mgl32.Vec3

	// Target returns the world-space point the camera looks at.
	//
	// Returns:
	//   - mgl32.Vec3: the look-at target
	Target() mgl32.Vec3

	// Fov returns the vertical field of view in radians.
	//
	// Returns:
	//   - float32: field of view in radians
	Fov() float32

	// Aspect returns the aspect ratio (width / height).
	//
	// Returns:
	//   - float32: the aspect ratio
	Aspect() float32

	// ViewMatrix returns the current 4x4 view matrix.
	//
	// Returns:
	//   - mgl32.Mat4: the view matrix
	ViewMatrix() mgl32.Mat4

	// ProjectionMatrix returns the current 4x4 perspective projection matrix
	// with WebGPU's [0,1] depth range.
	//
	// Returns:
	//   - mgl32.Mat4: the projection matrix
	ProjectionMatrix() mgl32.Mat4

	// SetEye sets the camera position and recomputes the view matrix.
	//
	// Parameters:
	//   - eye: the new eye position
	SetEye(eye mgl32.Vec3)

	// SetTarget sets the look-at target and recomputes the view matrix.
	//
	// Parameters:
	//   - target: the new look-at target
	SetTarget(target mgl32.Vec3)

	// SetAspect sets the aspect ratio and recomputes the projection matrix.
	// Called on window resize.
	//
	// Parameters:
	//   - aspect: the new aspect ratio (width / height)
	SetAspect(aspect float32)

	// Zoom moves the eye along the view direction toward or away from the
	// target. The eye never crosses the target.
	//
	// Parameters:
	//   - delta: positive moves toward the target, negative away
	Zoom(delta float32)
}

var _ Camera = &cameraImpl{}

// NewCamera creates a new Camera with the specified options.
// Applies default values first, then each option in order.
//
// Parameters:
//   - options: functional options to configure the camera
//
// Returns:
//   - Camera: the configured camera
func NewCamera(options ...CameraBuilderOption) Camera {
	c := &cameraImpl{
		mu:     &sync.Mutex{},
		eye:    mgl32.Vec3{0, 1, 3},
		target: mgl32.Vec3{0, 0, 0},
		up:     mgl32.Vec3{0, 1, 0},
		fov:    mgl32.DegToRad(60),
		aspect: 16.0 / 9.0,
		near:   0.1,
		far:    100.0,
	}
	for _, opt := range options {
		opt(c)
	}
	c.updateMatrices()
	return c
}

func (c *cameraImpl) Eye() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.eye
}

func (c *cameraImpl) Target() mgl32.Vec3 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.target
}

func (c *cameraImpl) Fov() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.fov
}

func (c *cameraImpl) Aspect() float32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.aspect
}

func (c *cameraImpl) ViewMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.viewMatrix
}

func (c *cameraImpl) ProjectionMatrix() mgl32.Mat4 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.projectionMatrix
}

func (c *cameraImpl) SetEye(eye mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.eye = eye
	c.updateMatrices()
}

func (c *cameraImpl) SetTarget(target mgl32.Vec3) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.target = target
	c.updateMatrices()
}

func (c *cameraImpl) SetAspect(aspect float32) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if aspect <= 0 {
		return
	}
	c.aspect = aspect
	c.updateMatrices()
}

func (c *cameraImpl) Zoom(delta float32) {
	c.mu.Lock()
	defer c.mu.Unlock()

	dir := c.target.Sub(c.eye)
	dist := dir.Len()
	if dist <= 0 {
		return
	}

	step := delta * dist * 0.1
	if dist-step < c.near {
		step = dist - c.near
	}
	c.eye = c.eye.Add(dir.Mul(step / dist))
	c.updateMatrices()
}

// updateMatrices recomputes the view and projection matrices from the current
// pose and perspective settings. Caller must hold the mutex.
func (c *cameraImpl) updateMatrices() {
	c.viewMatrix = mgl32.LookAtV(c.eye, c.target, c.up)
	c.projectionMatrix = common.Perspective(c.fov, c.aspect, c.near, c.far)
}
