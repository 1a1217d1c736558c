package hilbpix

import "fmt"

// Point is one cell of the pixel grid.
type Point struct {
	X, Y int
}

// Curve is the traversal order of every cell in a Width×Height grid.
// Consecutive points are neighbors on the grid, every cell appears exactly
// once, and the same dimensions always produce the same ordering.
type Curve struct {
	Width  int
	Height int
	Points []Point
}

// span is one pending sub-rectangle of the subdivision. (ax,ay) is the
// signed major-direction vector, (bx,by) the orthogonal minor vector;
// magnitude encodes extent, sign encodes walk direction.
type span struct {
	x, y   int
	ax, ay int
	bx, by int
}

// GenerateCurve builds the generalized Hilbert traversal for an arbitrary
// width×height rectangle, not just powers of two. The subdivision runs on an
// explicit worklist instead of recursion so very large images cannot
// exhaust the stack; the visit order is identical to the recursive form.
func GenerateCurve(width, height int) (*Curve, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("%w: %dx%d", ErrInvalidDimensions, width, height)
	}

	pts := make([]Point, 0, width*height)

	// Orient the first span so the major axis is the longer side.
	var stack []span
	if width >= height {
		stack = append(stack, span{0, 0, width, 0, 0, height})
	} else {
		stack = append(stack, span{0, 0, 0, height, width, 0})
	}

	for len(stack) > 0 {
		s := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		w := abs(s.ax + s.ay)
		h := abs(s.bx + s.by)
		dax, day := sgn(s.ax), sgn(s.ay)
		dbx, dby := sgn(s.bx), sgn(s.by)

		if h == 1 {
			// Single row: walk the major direction.
			x, y := s.x, s.y
			for i := 0; i < w; i++ {
				pts = append(pts, Point{x, y})
				x += dax
				y += day
			}
			continue
		}
		if w == 1 {
			// Single column: walk the minor direction.
			x, y := s.x, s.y
			for i := 0; i < h; i++ {
				pts = append(pts, Point{x, y})
				x += dbx
				y += dby
			}
			continue
		}

		// Floor-halved vectors; >>1 floors for negative components too.
		ax2, ay2 := s.ax>>1, s.ay>>1
		bx2, by2 := s.bx>>1, s.by>>1
		w2 := abs(ax2 + ay2)
		h2 := abs(bx2 + by2)

		if 2*w > 3*h {
			if w2%2 != 0 && w > 2 {
				// Prefer an even split of the major axis.
				ax2 += dax
				ay2 += day
			}
			// Elongated rectangle: two halves along the major axis only.
			// Children are pushed last-first so they pop in visit order.
			stack = append(stack,
				span{s.x + ax2, s.y + ay2, s.ax - ax2, s.ay - ay2, s.bx, s.by},
				span{s.x, s.y, ax2, ay2, s.bx, s.by},
			)
		} else {
			if h2%2 != 0 && h > 2 {
				// Prefer an even split of the minor axis.
				bx2 += dbx
				by2 += dby
			}
			// Standard case: an orthogonal leg with swapped axes, the long
			// straight leg, then a point-reflected leg closing the loop
			// back toward the start corner.
			stack = append(stack,
				span{
					s.x + (s.ax - dax) + (bx2 - dbx), s.y + (s.ay - day) + (by2 - dby),
					-bx2, -by2, -(s.ax - ax2), -(s.ay - ay2),
				},
				span{s.x + bx2, s.y + by2, s.ax, s.ay, s.bx - bx2, s.by - by2},
				span{s.x, s.y, bx2, by2, ax2, ay2},
			)
		}
	}

	c := &Curve{Width: width, Height: height, Points: pts}
	if err := c.check(); err != nil {
		// Should never happen for valid inputs; a failure here is a
		// generator bug, surfaced instead of corrupting downstream state.
		return nil, err
	}
	return c, nil
}

// Total returns the number of cells covered by the traversal.
func (c *Curve) Total() int {
	return c.Width * c.Height
}

// check verifies the bijection invariant: exactly Width*Height points, all
// in bounds, no cell visited twice.
func (c *Curve) check() error {
	total := c.Width * c.Height
	if len(c.Points) != total {
		return fmt.Errorf("%w: %d points for %dx%d grid",
			ErrCurveMismatch, len(c.Points), c.Width, c.Height)
	}
	seen := make([]bool, total)
	for _, p := range c.Points {
		if p.X < 0 || p.X >= c.Width || p.Y < 0 || p.Y >= c.Height {
			return fmt.Errorf("%w: point (%d,%d) outside %dx%d grid",
				ErrCurveMismatch, p.X, p.Y, c.Width, c.Height)
		}
		idx := p.Y*c.Width + p.X
		if seen[idx] {
			return fmt.Errorf("%w: cell (%d,%d) visited twice",
				ErrCurveMismatch, p.X, p.Y)
		}
		seen[idx] = true
	}
	return nil
}

func sgn(v int) int {
	switch {
	case v > 0:
		return 1
	case v < 0:
		return -1
	}
	return 0
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
