package hilbpix

import (
	"encoding/binary"
	"fmt"
	"os"
	"sync"

	"github.com/klauspost/compress/gzip"
)

// curveMagic identifies a serialized curve file ("GIL1").
const curveMagic uint32 = 0x47494c31

// CurveCache holds generated curves keyed by grid size, so a batch of
// same-sized images builds the traversal once. Safe for concurrent use.
type CurveCache struct {
	mu     sync.RWMutex
	curves map[[2]int]*Curve
}

// NewCurveCache returns an empty cache.
func NewCurveCache() *CurveCache {
	return &CurveCache{curves: make(map[[2]int]*Curve)}
}

// Get returns the curve for width×height, generating and caching it on a
// miss. The returned curve is shared and must be treated as read-only.
func (c *CurveCache) Get(width, height int) (*Curve, error) {
	key := [2]int{width, height}
	c.mu.RLock()
	cached, ok := c.curves[key]
	c.mu.RUnlock()
	if ok {
		return cached, nil
	}

	curve, err := GenerateCurve(width, height)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if cached, ok = c.curves[key]; ok {
		// Another task generated it first; keep the established copy.
		return cached, nil
	}
	c.curves[key] = curve
	return curve, nil
}

// Put stores a pre-built curve, typically one loaded from disk.
func (c *CurveCache) Put(curve *Curve) {
	c.mu.Lock()
	c.curves[[2]int{curve.Width, curve.Height}] = curve
	c.mu.Unlock()
}

// SaveCurve writes a curve as a gzip-compressed little-endian file:
// magic, width, height, then the x,y pair of every point as uint32.
func SaveCurve(filename string, curve *Curve) error {
	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("error creating curve file: %w", err)
	}
	defer file.Close()

	gw := gzip.NewWriter(file)

	header := []uint32{curveMagic, uint32(curve.Width), uint32(curve.Height)}
	if err = binary.Write(gw, binary.LittleEndian, header); err != nil {
		return fmt.Errorf("error writing curve header: %w", err)
	}

	coords := make([]uint32, 0, 2*len(curve.Points))
	for _, p := range curve.Points {
		coords = append(coords, uint32(p.X), uint32(p.Y))
	}
	if err = binary.Write(gw, binary.LittleEndian, coords); err != nil {
		return fmt.Errorf("error writing curve points: %w", err)
	}
	if err = gw.Close(); err != nil {
		return fmt.Errorf("error flushing curve file: %w", err)
	}
	return nil
}

// LoadCurve reads a curve file written by SaveCurve and re-validates the
// bijection invariant before handing the curve out.
func LoadCurve(filename string) (*Curve, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("error opening curve file: %w", err)
	}
	defer file.Close()

	gr, err := gzip.NewReader(file)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCurveFile, err)
	}
	defer gr.Close()

	var header [3]uint32
	if err = binary.Read(gr, binary.LittleEndian, &header); err != nil {
		return nil, fmt.Errorf("%w: short header: %v", ErrBadCurveFile, err)
	}
	if header[0] != curveMagic {
		return nil, fmt.Errorf("%w: bad magic %08x", ErrBadCurveFile, header[0])
	}
	width, height := int(header[1]), int(header[2])
	if width <= 0 || height <= 0 || width > 1<<20 || height > 1<<20 {
		return nil, fmt.Errorf("%w: implausible size %dx%d", ErrBadCurveFile, width, height)
	}

	coords := make([]uint32, 2*width*height)
	if err = binary.Read(gr, binary.LittleEndian, coords); err != nil {
		return nil, fmt.Errorf("%w: short point data: %v", ErrBadCurveFile, err)
	}

	curve := &Curve{
		Width:  width,
		Height: height,
		Points: make([]Point, width*height),
	}
	for i := range curve.Points {
		curve.Points[i] = Point{X: int(coords[2*i]), Y: int(coords[2*i+1])}
	}
	if err = curve.check(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadCurveFile, err)
	}
	return curve, nil
}
