package animator

import (
	"math"

	"github.com/Carmen-Shannon/rig-go/engine/scenegraph"
	"github.com/go-gl/mathgl/mgl32"
)

// Sampler plays a single clip against a scene graph. It owns the playback
// clock; Advance wraps the clock into [0, Duration) so the clip loops.
type Sampler struct {
	clip *Clip
	time float32
}

// NewSampler returns a Sampler positioned at time 0 of the given clip.
//
// Parameters:
//   - clip: the clip to play
//
// Returns:
//   - *Sampler: the sampler
func NewSampler(clip *Clip) *Sampler {
	return &Sampler{clip: clip}
}

// Clip returns the clip this sampler plays.
func (s *Sampler) Clip() *Clip {
	return s.clip
}

// Time returns the current playback time in seconds.
func (s *Sampler) Time() float32 {
	return s.time
}

// SetTime positions the playback clock, wrapping into [0, Duration).
//
// Parameters:
//   - t: the absolute playback time in seconds
func (s *Sampler) SetTime(t float32) {
	s.time = wrapTime(t, s.clip.Duration)
}

// Advance moves the playback clock forward and wraps past the clip end.
//
// Parameters:
//   - dt: elapsed time in seconds since the previous call
func (s *Sampler) Advance(dt float32) {
	s.SetTime(s.time + dt)
}

// Apply samples every channel at the current playback time and writes the
// results into the graph's node TRS state. Channels whose target node is not
// present in the graph are skipped; one bad channel must not poison the rest
// of the pose.
//
// Parameters:
//   - g: the scene graph receiving the sampled pose
func (s *Sampler) Apply(g *scenegraph.Graph) {
	ApplyClip(s.clip, g, s.time)
}

// ApplyClip samples all channels of clip at time t and writes the results into
// the graph. Out-of-range target nodes and empty channels are skipped.
//
// Parameters:
//   - clip: the clip to sample
//   - g: the scene graph receiving the sampled pose
//   - t: the sample time in seconds
func ApplyClip(clip *Clip, g *scenegraph.Graph, t float32) {
	for i := range clip.Channels {
		ch := &clip.Channels[i]
		node := g.Node(ch.Node)
		if node == nil || len(ch.Times) == 0 {
			continue
		}

		switch ch.Path {
		case PathTranslation:
			node.Translation = SampleVec3(ch, t)
		case PathRotation:
			node.Rotation = SampleQuat(ch, t)
		case PathScale:
			node.Scale = SampleVec3(ch, t)
		}
	}
}

// SampleVec3 evaluates a translation or scale channel at time t. Times before
// the first keyframe clamp to the first value and times at or past the last
// keyframe clamp to the last value.
//
// Parameters:
//   - ch: the channel, with VecKeys populated
//   - t: the sample time in seconds
//
// Returns:
//   - mgl32.Vec3: the interpolated value
func SampleVec3(ch *Channel, t float32) mgl32.Vec3 {
	i, j, alpha := bracket(ch.Times, t)
	if i == j || ch.Interpolation == InterpolationStep {
		return ch.VecKeys[i]
	}
	a, b := ch.VecKeys[i], ch.VecKeys[j]
	return a.Add(b.Sub(a).Mul(alpha))
}

// SampleQuat evaluates a rotation channel at time t using shortest-path
// spherical interpolation, clamping at the track ends like SampleVec3.
//
// Parameters:
//   - ch: the channel, with QuatKeys populated
//   - t: the sample time in seconds
//
// Returns:
//   - mgl32.Quat: the interpolated rotation (normalized)
func SampleQuat(ch *Channel, t float32) mgl32.Quat {
	i, j, alpha := bracket(ch.Times, t)
	if i == j || ch.Interpolation == InterpolationStep {
		return ch.QuatKeys[i]
	}
	return slerpShortest(ch.QuatKeys[i], ch.QuatKeys[j], alpha)
}

// bracket finds the keyframe pair surrounding t. Outside the track it returns
// the clamped end index for both i and j with alpha 0; inside it returns the
// bracketing indices and the normalized blend factor between them.
func bracket(times []float32, t float32) (i, j int, alpha float32) {
	n := len(times)
	if t <= times[0] {
		return 0, 0, 0
	}
	if t >= times[n-1] {
		return n - 1, n - 1, 0
	}

	// Tracks are short enough that a linear scan beats keeping search state.
	for k := 1; k < n; k++ {
		if t < times[k] {
			i, j = k-1, k
			span := times[j] - times[i]
			if span <= 0 {
				return i, i, 0
			}
			return i, j, (t - times[i]) / span
		}
	}
	return n - 1, n - 1, 0
}

// slerpShortest interpolates between two unit quaternions along the shorter
// arc. q and -q encode the same rotation, so the second endpoint is negated
// whenever the dot product is negative; without that the pose swings the long
// way around. Falls back to normalized lerp when the endpoints are nearly
// parallel and the sin term loses precision.
func slerpShortest(a, b mgl32.Quat, alpha float32) mgl32.Quat {
	dot := a.Dot(b)
	if dot < 0 {
		b = mgl32.Quat{W: -b.W, V: mgl32.Vec3{-b.V[0], -b.V[1], -b.V[2]}}
		dot = -dot
	}

	if dot > 0.9995 {
		return nlerp(a, b, alpha)
	}

	theta := float32(math.Acos(float64(dot)))
	sinTheta := float32(math.Sin(float64(theta)))
	wa := float32(math.Sin(float64((1-alpha)*theta))) / sinTheta
	wb := float32(math.Sin(float64(alpha*theta))) / sinTheta

	return mgl32.Quat{
		W: a.W*wa + b.W*wb,
		V: mgl32.Vec3{
			a.V[0]*wa + b.V[0]*wb,
			a.V[1]*wa + b.V[1]*wb,
			a.V[2]*wa + b.V[2]*wb,
		},
	}.Normalize()
}

// nlerp linearly blends two quaternions and renormalizes.
func nlerp(a, b mgl32.Quat, alpha float32) mgl32.Quat {
	return mgl32.Quat{
		W: a.W + (b.W-a.W)*alpha,
		V: mgl32.Vec3{
			a.V[0] + (b.V[0]-a.V[0])*alpha,
			a.V[1] + (b.V[1]-a.V[1])*alpha,
			a.V[2] + (b.V[2]-a.V[2])*alpha,
		},
	}.Normalize()
}

// wrapTime folds t into [0, duration). A non-positive duration pins the clock
// to 0 so static clips stay on their only pose.
func wrapTime(t, duration float32) float32 {
	if duration <= 0 {
		return 0
	}
	w := float32(math.Mod(float64(t), float64(duration)))
	if w < 0 {
		w += duration
	}
	return w
}
