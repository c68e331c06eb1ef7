// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"bytes"
	"fmt"
	"image"
	"image/draw"
	_ "image/jpeg"
	_ "image/png"
	"os"
)

// TextureStagingData holds RGBA pixel data pending GPU upload.
type TextureStagingData struct {
	// Pixels is the byte slice representing the actual pixel data for the texture. It should be in RGBA format, with 4 bytes per pixel.
	Pixels []byte
	// Width is the width of the texture in pixels.
	Width uint32
	// Height is the height of the texture in pixels.
	Height uint32
}

// ImportedTexture represents texture data extracted from a model file.
// For embedded textures (GLB), the Data field contains raw image bytes.
// For external textures, the Path field contains the file path.
type ImportedTexture struct {
	// Name is an identifier for this texture (e.g., "baseColor", "normal").
	Name string

	// Key is the cache key this texture is stored under: the source URI for
	// external textures, or "bufferView:N" for embedded ones.
	Key string

	// Path is the file path for external textures (empty for embedded).
	Path string

	// Data contains raw image bytes for embedded textures (PNG/JPEG).
	Data []byte

	// MimeType indicates the image format (e.g., "image/png", "image/jpeg").
	MimeType string

	// Width is the texture width in pixels (populated after Decode).
	Width int

	// Height is the texture height in pixels (populated after Decode).
	Height int
}

// Decode decodes the texture to raw RGBA pixel data.
// Uses either embedded Data bytes or loads from Path on disk.
// Supports PNG and JPEG formats.
// Reference: https://pkg.go.dev/image
//
// Returns:
//   - []byte: raw RGBA pixel data (4 bytes per pixel, row-major order)
//   - uint32: texture width in pixels
//   - uint32: texture height in pixels
//   - error: error if decoding fails
func (t *ImportedTexture) Decode() ([]byte, uint32, uint32, error) {
	if t == nil {
		return nil, 0, 0, fmt.Errorf("texture is nil")
	}

	var img image.Image
	var err error

	if len(t.Data) > 0 {
		img, _, err = image.Decode(bytes.NewReader(t.Data))
		if err != nil {
			return nil, 0, 0, fmt.Errorf("failed to decode embedded image: %w", err)
		}
	} else if t.Path != "" {
		file, fileErr := os.Open(t.Path)
		if fileErr != nil {
			return nil, 0, 0, fmt.Errorf("failed to open texture file %s: %w", t.Path, fileErr)
		}
		defer file.Close()

		img, _, err = image.Decode(file)
		if err != nil {
			return nil, 0, 0, fmt.Errorf("failed to decode texture file %s: %w", t.Path, err)
		}
	} else {
		return nil, 0, 0, fmt.Errorf("texture has neither data nor path")
	}

	bounds := img.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()

	rgba := image.NewRGBA(bounds)
	draw.Draw(rgba, bounds, img, bounds.Min, draw.Src)

	t.Width = width
	t.Height = height

	return rgba.Pix, uint32(width), uint32(height), nil
}

// FallbackBaseColorPixel is the 1×1 neutral base color texture (white, no-op multiply).
var FallbackBaseColorPixel = [4]byte{255, 255, 255, 255}

// FallbackNormalPixel is the 1×1 flat tangent-space normal pointing straight up: (0.5, 0.5, 1.0).
var FallbackNormalPixel = [4]byte{128, 128, 255, 255}

// FallbackMetallicRoughnessPixel follows the glTF channel packing: R=unused(0),
// G=roughness(1.0=fully rough), B=metallic(0=dielectric).
var FallbackMetallicRoughnessPixel = [4]byte{0, 255, 0, 255}

// FallbackTexture returns a 1×1 staging texture filled with the given pixel.
// Used when a material texture fails to load: visuals degrade, the scene keeps rendering.
//
// Parameters:
//   - pixel: the RGBA pixel to fill with
//
// Returns:
//   - TextureStagingData: a 1×1 RGBA staging texture
func FallbackTexture(pixel [4]byte) TextureStagingData {
	return TextureStagingData{
		Pixels: pixel[:],
		Width:  1,
		Height: 1,
	}
}
