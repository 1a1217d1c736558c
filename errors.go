package hilbpix

import "errors"

var (
	// ErrInvalidDimensions indicates a non-positive width or height.
	ErrInvalidDimensions = errors.New("hilbpix: image dimensions must be positive")
	// ErrUnsupportedChannels indicates a channel count other than 1, 3 or 4.
	ErrUnsupportedChannels = errors.New("hilbpix: unsupported channel count")
	// ErrUnsupportedDepth indicates a sample depth other than 8 or 16 bit.
	ErrUnsupportedDepth = errors.New("hilbpix: unsupported sample depth")
	// ErrCurveMismatch indicates the traversal does not cover the pixel grid.
	// This is an internal invariant violation, not an input problem.
	ErrCurveMismatch = errors.New("hilbpix: curve does not match pixel grid")
	// ErrUnsupportedFormat indicates an image file extension outside the
	// supported set.
	ErrUnsupportedFormat = errors.New("hilbpix: image format not supported")
	// ErrBadCurveFile indicates a curve file that is truncated or inconsistent.
	ErrBadCurveFile = errors.New("hilbpix: malformed curve file")
)
