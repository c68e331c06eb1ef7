package loader

import (
	"fmt"

	"github.com/Carmen-Shannon/rig-go/engine/animator"
	"github.com/Carmen-Shannon/rig-go/logger"
	"github.com/go-gl/mathgl/mgl32"
)

// gltfAnimationExtractorImpl is the implementation of the gltfAnimationExtractor interface.
type gltfAnimationExtractorImpl struct {
	parser gltfParser
}

// gltfAnimationExtractor defines the interface for extracting animation clips
// from a parsed glTF document. This is internal to the loader package.
type gltfAnimationExtractor interface {
	// ExtractAllAnimations converts every document animation into a clip of
	// per-property node channels. Morph weight channels are skipped.
	// CUBICSPLINE samplers degrade to linear interpolation over the value
	// keyframes (tangents dropped) with a logged warning.
	//
	// Returns:
	//   - []*animator.Clip: the clips, indexed like the document
	//   - error: error if extraction fails
	ExtractAllAnimations() ([]*animator.Clip, error)
}

var _ gltfAnimationExtractor = &gltfAnimationExtractorImpl{}

// newGLTFAnimationExtractor creates a new animation extractor using the given parser.
//
// Parameters:
//   - parser: the parser holding a loaded document
//
// Returns:
//   - gltfAnimationExtractor: the extractor
func newGLTFAnimationExtractor(parser gltfParser) gltfAnimationExtractor {
	return &gltfAnimationExtractorImpl{parser: parser}
}

func (e *gltfAnimationExtractorImpl) ExtractAllAnimations() ([]*animator.Clip, error) {
	doc := e.parser.Document()
	if doc == nil {
		return nil, errNoDocument
	}

	clips := make([]*animator.Clip, len(doc.Animations))
	for i := range doc.Animations {
		clip, err := e.extractClip(i, &doc.Animations[i])
		if err != nil {
			return nil, fmt.Errorf("animation %d: %w", i, err)
		}
		clips[i] = clip
	}

	return clips, nil
}

// extractClip converts one animation's channels, dropping unsupported targets.
func (e *gltfAnimationExtractorImpl) extractClip(index int, src *gltfAnimation) (*animator.Clip, error) {
	name := src.Name
	if name == "" {
		name = fmt.Sprintf("animation_%d", index)
	}

	clip := &animator.Clip{Name: name}

	for ci := range src.Channels {
		gc := &src.Channels[ci]

		if gc.Target.Node == nil {
			continue
		}
		if gc.Target.Path == gltfAnimPathWeights {
			logger.Sugar.Debugw("skipping morph weight channel",
				"animation", name, "channel", ci)
			continue
		}
		if gc.Sampler < 0 || gc.Sampler >= len(src.Samplers) {
			return nil, fmt.Errorf("channel %d references sampler %d out of range", ci, gc.Sampler)
		}

		ch, err := e.extractChannel(name, gc, &src.Samplers[gc.Sampler])
		if err != nil {
			return nil, fmt.Errorf("channel %d: %w", ci, err)
		}
		clip.Channels = append(clip.Channels, ch)
	}

	clip.Duration = clip.ComputeDuration()
	return clip, nil
}

// extractChannel reads one sampler's keyframe tracks into a channel.
func (e *gltfAnimationExtractorImpl) extractChannel(clipName string, gc *gltfAnimChannel, gs *gltfAnimSampler) (animator.Channel, error) {
	times, err := e.parser.ReadScalarAccessor(gs.Input)
	if err != nil {
		return animator.Channel{}, fmt.Errorf("reading keyframe times: %w", err)
	}

	interpolation := animator.InterpolationLinear
	cubic := false
	switch gs.Interpolation {
	case "", gltfAnimInterpolationLinear:
	case gltfAnimInterpolationStep:
		interpolation = animator.InterpolationStep
	case gltfAnimInterpolationCubicSpline:
		// Tangents are dropped; the value keyframes still play linearly.
		logger.Sugar.Warnw("CUBICSPLINE interpolation not supported, falling back to linear",
			"animation", clipName, "path", gc.Target.Path)
		cubic = true
	default:
		return animator.Channel{}, fmt.Errorf("unknown interpolation %q", gs.Interpolation)
	}

	ch := animator.Channel{
		Node:          *gc.Target.Node,
		Interpolation: interpolation,
		Times:         times,
	}

	switch gc.Target.Path {
	case gltfAnimPathTranslation, gltfAnimPathScale:
		values, err := e.parser.ReadVec3Accessor(gs.Output)
		if err != nil {
			return animator.Channel{}, fmt.Errorf("reading vec3 keyframes: %w", err)
		}
		if cubic {
			values = gltfCubicValues(values, len(times))
		}
		if len(values) < len(times) {
			return animator.Channel{}, fmt.Errorf("sampler has %d times but %d values", len(times), len(values))
		}
		ch.VecKeys = make([]mgl32.Vec3, len(times))
		for i := range ch.VecKeys {
			ch.VecKeys[i] = mgl32.Vec3(values[i])
		}
		if gc.Target.Path == gltfAnimPathTranslation {
			ch.Path = animator.PathTranslation
		} else {
			ch.Path = animator.PathScale
		}

	case gltfAnimPathRotation:
		values, err := e.parser.ReadVec4Accessor(gs.Output)
		if err != nil {
			return animator.Channel{}, fmt.Errorf("reading quaternion keyframes: %w", err)
		}
		if cubic {
			values = gltfCubicValues(values, len(times))
		}
		if len(values) < len(times) {
			return animator.Channel{}, fmt.Errorf("sampler has %d times but %d values", len(times), len(values))
		}
		ch.Path = animator.PathRotation
		ch.QuatKeys = make([]mgl32.Quat, len(times))
		for i := range ch.QuatKeys {
			// glTF stores quaternions as (x, y, z, w).
			v := values[i]
			ch.QuatKeys[i] = mgl32.Quat{W: v[3], V: mgl32.Vec3{v[0], v[1], v[2]}}.Normalize()
		}

	default:
		return animator.Channel{}, fmt.Errorf("unsupported target path %q", gc.Target.Path)
	}

	return ch, nil
}

// gltfCubicValues pulls the value element out of CUBICSPLINE output triples
// (in-tangent, value, out-tangent per keyframe).
func gltfCubicValues[T any](values []T, keyframes int) []T {
	if len(values) < keyframes*3 {
		return values
	}
	out := make([]T, keyframes)
	for i := 0; i < keyframes; i++ {
		out[i] = values[i*3+1]
	}
	return out
}
