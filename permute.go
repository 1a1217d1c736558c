package hilbpix

import (
	"fmt"

	"github.com/OneOfOne/xxhash"
)

// Direction selects which way the cyclic shift is applied.
type Direction int

const (
	// Encrypt moves the value at curve index i to curve index (i+offset) mod total.
	Encrypt Direction = iota
	// Decrypt is the exact inverse of Encrypt for the same curve and offset.
	Decrypt
)

func (d Direction) String() string {
	if d == Decrypt {
		return "decrypt"
	}
	return "encrypt"
}

// PixelBuffer is a flat, row-major sample array with a fixed channel stride.
// Exactly one of Pix8/Pix16 is set, matching Depth. The sample block for the
// pixel at (x,y) starts at (y*Width+x)*Channels.
type PixelBuffer struct {
	Width    int
	Height   int
	Channels int // samples per pixel: 1, 3 or 4
	Depth    int // bits per sample: 8 or 16
	Pix8     []uint8
	Pix16    []uint16
}

// NewPixelBuffer allocates a zeroed buffer of the given shape.
func NewPixelBuffer(width, height, channels, depth int) (*PixelBuffer, error) {
	b := &PixelBuffer{Width: width, Height: height, Channels: channels, Depth: depth}
	if err := b.checkShape(); err != nil {
		return nil, err
	}
	n := width * height * channels
	if depth == 8 {
		b.Pix8 = make([]uint8, n)
	} else {
		b.Pix16 = make([]uint16, n)
	}
	return b, nil
}

// checkShape validates dimensions, channel count and depth, without looking
// at the sample slices.
func (b *PixelBuffer) checkShape() error {
	if b.Width <= 0 || b.Height <= 0 {
		return fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, b.Width, b.Height)
	}
	switch b.Channels {
	case 1, 3, 4:
	default:
		return fmt.Errorf("%w: %d", ErrUnsupportedChannels, b.Channels)
	}
	switch b.Depth {
	case 8, 16:
	default:
		return fmt.Errorf("%w: %d bit", ErrUnsupportedDepth, b.Depth)
	}
	return nil
}

// validate extends checkShape with a sample-count check.
func (b *PixelBuffer) validate() error {
	if err := b.checkShape(); err != nil {
		return err
	}
	n := b.Width * b.Height * b.Channels
	var have int
	if b.Depth == 8 {
		have = len(b.Pix8)
	} else {
		have = len(b.Pix16)
	}
	if have != n {
		return fmt.Errorf("%w: %d samples for %dx%dx%d buffer",
			ErrCurveMismatch, have, b.Width, b.Height, b.Channels)
	}
	return nil
}

// Clone returns a deep copy of the buffer.
func (b *PixelBuffer) Clone() *PixelBuffer {
	out := *b
	if b.Pix8 != nil {
		out.Pix8 = append([]uint8(nil), b.Pix8...)
	}
	if b.Pix16 != nil {
		out.Pix16 = append([]uint16(nil), b.Pix16...)
	}
	return &out
}

// hasNonZero reports whether any sample is non-zero.
func (b *PixelBuffer) hasNonZero() bool {
	for _, s := range b.Pix8 {
		if s != 0 {
			return true
		}
	}
	for _, s := range b.Pix16 {
		if s != 0 {
			return true
		}
	}
	return false
}

// Digest returns a 64-bit content hash of the sample data, used by the
// batch driver to report what it wrote.
func (b *PixelBuffer) Digest() uint64 {
	h := xxhash.New64()
	if b.Depth == 8 {
		_, _ = h.Write(b.Pix8)
		return h.Sum64()
	}
	var scratch [2]byte
	for _, s := range b.Pix16 {
		scratch[0] = byte(s)
		scratch[1] = byte(s >> 8)
		_, _ = h.Write(scratch[:])
	}
	return h.Sum64()
}

// Transform permutes src along the curve by the cyclic offset and returns a
// freshly allocated buffer of identical shape. The source is never written,
// so overlapping read/write index ranges under the permutation are safe.
// All preconditions are checked before the first sample is copied; on error
// no buffer is returned.
func Transform(src *PixelBuffer, curve *Curve, offset int, dir Direction) (*PixelBuffer, error) {
	if err := src.validate(); err != nil {
		return nil, err
	}
	if curve == nil || curve.Width != src.Width || curve.Height != src.Height {
		return nil, fmt.Errorf("%w: curve is not for a %dx%d grid",
			ErrCurveMismatch, src.Width, src.Height)
	}
	if err := curve.check(); err != nil {
		return nil, err
	}

	total := curve.Total()
	if total <= 1 {
		// No non-trivial shift exists; the transform is the identity.
		return src.Clone(), nil
	}
	offset = ((offset % total) + total) % total

	dst, err := NewPixelBuffer(src.Width, src.Height, src.Channels, src.Depth)
	if err != nil {
		return nil, err
	}

	ch := src.Channels
	for i := 0; i < total; i++ {
		j := i + offset
		if j >= total {
			j -= total
		}
		from, to := curve.Points[i], curve.Points[j]
		if dir == Decrypt {
			from, to = to, from
		}
		si := (from.Y*src.Width + from.X) * ch
		di := (to.Y*src.Width + to.X) * ch
		// Whole-pixel copy: all samples of one pixel move as a unit.
		if src.Depth == 8 {
			copy(dst.Pix8[di:di+ch], src.Pix8[si:si+ch])
		} else {
			copy(dst.Pix16[di:di+ch], src.Pix16[si:si+ch])
		}
	}
	return dst, nil
}
