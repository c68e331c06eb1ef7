package animator

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/rig-go/engine/scenegraph"
	"github.com/go-gl/mathgl/mgl32"
)

func vecsApproxEqual(a, b mgl32.Vec3, tol float32) bool {
	return a.Sub(b).Len() <= tol
}

func quatsApproxEqual(a, b mgl32.Quat, tol float32) bool {
	// q and -q encode the same rotation.
	d := a.Dot(b)
	if d < 0 {
		d = -d
	}
	return d >= 1-tol
}

func translationChannel(node int, times []float32, keys []mgl32.Vec3) Channel {
	return Channel{
		Node:          node,
		Path:          PathTranslation,
		Interpolation: InterpolationLinear,
		Times:         times,
		VecKeys:       keys,
	}
}

func TestSampleVec3EndpointsExact(t *testing.T) {
	ch := translationChannel(0,
		[]float32{0.25, 1},
		[]mgl32.Vec3{{1, 2, 3}, {4, 5, 6}},
	)

	// Before the first keyframe and at/past the last must be exact values,
	// not interpolated approximations.
	if got := SampleVec3(&ch, 0); got != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("t before first keyframe: got %v, want exact first key", got)
	}
	if got := SampleVec3(&ch, 0.25); got != (mgl32.Vec3{1, 2, 3}) {
		t.Errorf("t at first keyframe: got %v, want exact first key", got)
	}
	if got := SampleVec3(&ch, 1); got != (mgl32.Vec3{4, 5, 6}) {
		t.Errorf("t at last keyframe: got %v, want exact last key", got)
	}
	if got := SampleVec3(&ch, 99); got != (mgl32.Vec3{4, 5, 6}) {
		t.Errorf("t past last keyframe: got %v, want exact last key", got)
	}
}

func TestSampleVec3Linear(t *testing.T) {
	ch := translationChannel(0,
		[]float32{0, 1},
		[]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}},
	)

	got := SampleVec3(&ch, 0.5)
	if !vecsApproxEqual(got, mgl32.Vec3{0.5, 0, 0}, 1e-6) {
		t.Errorf("midpoint sample: got %v, want (0.5,0,0)", got)
	}
}

func TestSampleVec3Step(t *testing.T) {
	ch := translationChannel(0,
		[]float32{0, 1},
		[]mgl32.Vec3{{0, 0, 0}, {1, 0, 0}},
	)
	ch.Interpolation = InterpolationStep

	if got := SampleVec3(&ch, 0.999); got != (mgl32.Vec3{0, 0, 0}) {
		t.Errorf("step before next key: got %v, want first key held", got)
	}
	if got := SampleVec3(&ch, 1); got != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("step at next key: got %v, want second key", got)
	}
}

func TestSampleQuatShortestPath(t *testing.T) {
	a := mgl32.QuatRotate(0, mgl32.Vec3{0, 1, 0})
	// 270° about Y; the short way from identity is -90°, not +270°.
	b := mgl32.QuatRotate(float32(3*math.Pi/2), mgl32.Vec3{0, 1, 0})

	ch := Channel{
		Node:          0,
		Path:          PathRotation,
		Interpolation: InterpolationLinear,
		Times:         []float32{0, 1},
		QuatKeys:      []mgl32.Quat{a, b},
	}

	got := SampleQuat(&ch, 0.5)
	want := mgl32.QuatRotate(float32(-math.Pi/4), mgl32.Vec3{0, 1, 0})
	if !quatsApproxEqual(got, want, 1e-5) {
		t.Errorf("shortest-path midpoint: got %v, want %v", got, want)
	}
}

func TestSampleQuatNearlyParallel(t *testing.T) {
	a := mgl32.QuatRotate(0.0001, mgl32.Vec3{0, 1, 0})
	b := mgl32.QuatRotate(0.0002, mgl32.Vec3{0, 1, 0})

	ch := Channel{
		Path:          PathRotation,
		Interpolation: InterpolationLinear,
		Times:         []float32{0, 1},
		QuatKeys:      []mgl32.Quat{a, b},
	}

	got := SampleQuat(&ch, 0.5)
	if math.IsNaN(float64(got.W)) {
		t.Fatal("nearly-parallel slerp produced NaN")
	}
	if !quatsApproxEqual(got, a, 1e-4) {
		t.Errorf("nearly-parallel midpoint drifted: got %v", got)
	}
}

func TestSamplerWrapsTime(t *testing.T) {
	clip := &Clip{
		Duration: 1,
		Channels: []Channel{
			translationChannel(0, []float32{0, 1}, []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}}),
		},
	}

	s := NewSampler(clip)
	s.SetTime(1.5)
	if got := s.Time(); math.Abs(float64(got-0.5)) > 1e-6 {
		t.Errorf("time 1.5 with duration 1: got %v, want 0.5", got)
	}

	s.SetTime(0)
	s.Advance(2.25)
	if got := s.Time(); math.Abs(float64(got-0.25)) > 1e-6 {
		t.Errorf("advance 2.25 with duration 1: got %v, want 0.25", got)
	}
}

func TestSamplerZeroDurationPinsToZero(t *testing.T) {
	s := NewSampler(&Clip{})
	s.Advance(5)
	if s.Time() != 0 {
		t.Errorf("zero-duration clip advanced to %v, want 0", s.Time())
	}
}

func TestApplyClipWritesGraph(t *testing.T) {
	nodes := []scenegraph.Node{scenegraph.NewNode(0)}
	g, err := scenegraph.NewGraph(nodes, []int{0})
	if err != nil {
		t.Fatal(err)
	}

	clip := &Clip{
		Duration: 1,
		Channels: []Channel{
			translationChannel(0, []float32{0, 1}, []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}}),
			{
				Node:          0,
				Path:          PathScale,
				Interpolation: InterpolationLinear,
				Times:         []float32{0, 1},
				VecKeys:       []mgl32.Vec3{{1, 1, 1}, {3, 3, 3}},
			},
		},
	}

	ApplyClip(clip, g, 0.5)

	n := g.Node(0)
	if !vecsApproxEqual(n.Translation, mgl32.Vec3{0.5, 0, 0}, 1e-6) {
		t.Errorf("translation: got %v, want (0.5,0,0)", n.Translation)
	}
	if !vecsApproxEqual(n.Scale, mgl32.Vec3{2, 2, 2}, 1e-6) {
		t.Errorf("scale: got %v, want (2,2,2)", n.Scale)
	}
}

func TestApplyClipSkipsMissingNode(t *testing.T) {
	nodes := []scenegraph.Node{scenegraph.NewNode(0)}
	g, err := scenegraph.NewGraph(nodes, []int{0})
	if err != nil {
		t.Fatal(err)
	}

	clip := &Clip{
		Duration: 1,
		Channels: []Channel{
			translationChannel(42, []float32{0, 1}, []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}}),
			translationChannel(0, []float32{0, 1}, []mgl32.Vec3{{0, 0, 0}, {1, 0, 0}}),
		},
	}

	// The out-of-range channel must not prevent the valid one from applying.
	ApplyClip(clip, g, 1)
	if got := g.Node(0).Translation; got != (mgl32.Vec3{1, 0, 0}) {
		t.Errorf("valid channel not applied after skipped channel: got %v", got)
	}
}

func TestComputeDuration(t *testing.T) {
	clip := &Clip{
		Channels: []Channel{
			translationChannel(0, []float32{0, 0.5}, []mgl32.Vec3{{}, {}}),
			translationChannel(1, []float32{0, 2.5}, []mgl32.Vec3{{}, {}}),
			{Node: 2, Path: PathTranslation},
		},
	}
	if d := clip.ComputeDuration(); d != 2.5 {
		t.Errorf("duration: got %v, want 2.5", d)
	}
}
