package loader

import (
	"errors"
	"fmt"
)

// Common errors returned by the parser and extractors
var (
	errInvalidGLTFVersion  = errors.New("invalid glTF version: must be 2.0")
	errInvalidGLBMagic     = errors.New("invalid GLB magic number")
	errInvalidGLBVersion   = errors.New("invalid GLB version: must be 2")
	errMissingJSONChunk    = errors.New("GLB file missing JSON chunk")
	errTruncatedChunk      = errors.New("GLB chunk truncated")
	errInvalidBufferURI    = errors.New("invalid buffer URI")
	errBufferSizeMismatch  = errors.New("buffer size mismatch")
	errAccessorOutOfRange  = errors.New("accessor index out of range")
	errAccessorOutOfBounds = errors.New("accessor data exceeds buffer bounds")
	errNoDocument          = errors.New("no document loaded")
)

// FormatError reports a malformed asset: bad magic, unparseable JSON, missing
// required document fields, or an inconsistent node graph. It is fatal to that
// single asset's load and does not affect other loaded models.
type FormatError struct {
	// Path is the asset path, empty when loading from a reader.
	Path string

	// Err is the underlying cause.
	Err error
}

func (e *FormatError) Error() string {
	if e.Path == "" {
		return fmt.Sprintf("malformed asset: %v", e.Err)
	}
	return fmt.Sprintf("malformed asset %s: %v", e.Path, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// ResourceError reports a failure fetching the asset file itself or an
// external buffer it references. It is fatal to that load. Texture fetch
// failures are handled separately: they degrade to fallback pixels instead of
// producing a ResourceError.
type ResourceError struct {
	// URI is the resource that failed to load.
	URI string

	// Err is the underlying cause.
	Err error
}

func (e *ResourceError) Error() string {
	return fmt.Sprintf("failed to load resource %s: %v", e.URI, e.Err)
}

func (e *ResourceError) Unwrap() error {
	return e.Err
}

// wrapFormat classifies err as a FormatError for the given path unless it
// already carries a taxonomy type.
func wrapFormat(path string, err error) error {
	if err == nil {
		return nil
	}

	var fe *FormatError
	var re *ResourceError
	if errors.As(err, &fe) || errors.As(err, &re) {
		return err
	}
	return &FormatError{Path: path, Err: err}
}
