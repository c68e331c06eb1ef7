// Package animator implements keyframe sampling for node transform channels.
// Clips are immutable after extraction; sampling writes TRS state into the
// scene graph and never allocates on the per-frame path.
package animator

import (
	"github.com/go-gl/mathgl/mgl32"
)

// TargetPath identifies which TRS property a channel animates.
type TargetPath int

const (
	// PathTranslation animates Node.Translation.
	PathTranslation TargetPath = iota
	// PathRotation animates Node.Rotation.
	PathRotation
	// PathScale animates Node.Scale.
	PathScale
)

// String returns the property name of the target path.
func (p TargetPath) String() string {
	switch p {
	case PathTranslation:
		return "translation"
	case PathRotation:
		return "rotation"
	case PathScale:
		return "scale"
	default:
		return "unknown"
	}
}

// Interpolation selects how values between keyframes are computed.
type Interpolation int

const (
	// InterpolationLinear blends linearly between the bracketing keyframes.
	// Rotations use shortest-path spherical interpolation.
	InterpolationLinear Interpolation = iota
	// InterpolationStep holds the earlier keyframe's value until the next
	// keyframe time is reached.
	InterpolationStep
)

// Channel is one animated property of one node: a keyframe time track plus a
// parallel value track. Exactly one of VecKeys or QuatKeys is populated,
// matching Path. Times are strictly increasing.
type Channel struct {
	// Node is the scene graph arena index of the target node.
	Node int

	// Path is the TRS property this channel writes.
	Path TargetPath

	// Interpolation is the blend mode between keyframes.
	Interpolation Interpolation

	// Times holds keyframe timestamps in seconds, strictly increasing.
	Times []float32

	// VecKeys holds translation or scale keyframes, parallel to Times.
	VecKeys []mgl32.Vec3

	// QuatKeys holds rotation keyframes, parallel to Times.
	QuatKeys []mgl32.Quat
}

// Clip is a named animation: a set of channels over a shared timeline.
type Clip struct {
	// Name is the animation name from the source document, possibly empty.
	Name string

	// Duration is the maximum keyframe timestamp across all channels.
	Duration float32

	// Channels are the animated node properties.
	Channels []Channel
}

// ComputeDuration returns the maximum keyframe timestamp across all channels,
// or 0 for a clip with no keyframes.
func (c *Clip) ComputeDuration() float32 {
	var d float32
	for i := range c.Channels {
		ch := &c.Channels[i]
		if n := len(ch.Times); n > 0 && ch.Times[n-1] > d {
			d = ch.Times[n-1]
		}
	}
	return d
}
