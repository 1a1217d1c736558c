package hilbpix

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestGenerateCurve_InvalidDimensions(t *testing.T) {
	for _, tc := range [][2]int{{0, 1}, {1, 0}, {0, 0}, {-3, 4}, {4, -1}} {
		_, err := GenerateCurve(tc[0], tc[1])
		if !errors.Is(err, ErrInvalidDimensions) {
			t.Errorf("GenerateCurve(%d,%d) error = %v; want ErrInvalidDimensions", tc[0], tc[1], err)
		}
	}
}

func TestGenerateCurve_Bijection(t *testing.T) {
	for w := 1; w <= 48; w++ {
		for h := 1; h <= 48; h++ {
			c, err := GenerateCurve(w, h)
			if err != nil {
				t.Fatalf("GenerateCurve(%d,%d): %v", w, h, err)
			}
			if len(c.Points) != w*h {
				t.Fatalf("GenerateCurve(%d,%d): %d points, want %d", w, h, len(c.Points), w*h)
			}
			seen := make(map[Point]bool, w*h)
			for _, p := range c.Points {
				if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
					t.Fatalf("GenerateCurve(%d,%d): point %v out of bounds", w, h, p)
				}
				if seen[p] {
					t.Fatalf("GenerateCurve(%d,%d): point %v visited twice", w, h, p)
				}
				seen[p] = true
			}
		}
	}
}

// Every step of the traversal is a unit king move. The step is axial
// everywhere except that rectangles whose longer side is odd and shorter
// side is even contain a single diagonal join between two sub-traversals;
// that is inherent to the halving rules, not a regression.
func TestGenerateCurve_Adjacency(t *testing.T) {
	for w := 1; w <= 48; w++ {
		for h := 1; h <= 48; h++ {
			c, err := GenerateCurve(w, h)
			if err != nil {
				t.Fatalf("GenerateCurve(%d,%d): %v", w, h, err)
			}
			diagonals := 0
			for i := 1; i < len(c.Points); i++ {
				dx := abs(c.Points[i].X - c.Points[i-1].X)
				dy := abs(c.Points[i].Y - c.Points[i-1].Y)
				switch {
				case dx+dy == 1:
					// axial unit step
				case dx == 1 && dy == 1:
					diagonals++
				default:
					t.Fatalf("GenerateCurve(%d,%d): step %v -> %v is not a unit move",
						w, h, c.Points[i-1], c.Points[i])
				}
			}
			long, short := w, h
			if h > w {
				long, short = h, w
			}
			strict := long%2 == 0 || short%2 == 1
			if strict && diagonals != 0 {
				t.Fatalf("GenerateCurve(%d,%d): %d diagonal steps, want none", w, h, diagonals)
			}
			if diagonals > 1 {
				t.Fatalf("GenerateCurve(%d,%d): %d diagonal steps, want at most one", w, h, diagonals)
			}
		}
	}
}

func TestGenerateCurve_Golden(t *testing.T) {
	cases := []struct {
		name string
		w, h int
		want []Point
	}{
		{"1x1", 1, 1, []Point{{0, 0}}},
		{"5x1", 5, 1, []Point{{0, 0}, {1, 0}, {2, 0}, {3, 0}, {4, 0}}},
		{"1x5", 1, 5, []Point{{0, 0}, {0, 1}, {0, 2}, {0, 3}, {0, 4}}},
		{"2x2", 2, 2, []Point{{0, 0}, {0, 1}, {1, 1}, {1, 0}}},
		{"4x3", 4, 3, []Point{
			{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 2}, {1, 2},
			{2, 2}, {3, 2}, {3, 1}, {2, 1}, {2, 0}, {3, 0},
		}},
		{"4x4", 4, 4, []Point{
			{0, 0}, {1, 0}, {1, 1}, {0, 1}, {0, 2}, {0, 3}, {1, 3}, {1, 2},
			{2, 2}, {2, 3}, {3, 3}, {3, 2}, {3, 1}, {2, 1}, {2, 0}, {3, 0},
		}},
		{"5x3", 5, 3, []Point{
			{0, 0}, {0, 1}, {0, 2}, {1, 2}, {1, 1}, {1, 0}, {2, 0}, {2, 1},
			{2, 2}, {3, 2}, {4, 2}, {4, 1}, {3, 1}, {3, 0}, {4, 0},
		}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c, err := GenerateCurve(tc.w, tc.h)
			require.NoError(t, err)
			require.Equal(t, tc.want, c.Points)
		})
	}
}

func TestGenerateCurve_Deterministic(t *testing.T) {
	a, err := GenerateCurve(37, 23)
	require.NoError(t, err)
	b, err := GenerateCurve(37, 23)
	require.NoError(t, err)
	require.Equal(t, a.Points, b.Points)
}

func TestCurveCheck(t *testing.T) {
	c, err := GenerateCurve(6, 4)
	require.NoError(t, err)
	require.NoError(t, c.check())

	short := &Curve{Width: 6, Height: 4, Points: c.Points[:10]}
	require.ErrorIs(t, short.check(), ErrCurveMismatch)

	dup := &Curve{Width: 6, Height: 4, Points: append([]Point(nil), c.Points...)}
	dup.Points[5] = dup.Points[4]
	require.ErrorIs(t, dup.check(), ErrCurveMismatch)

	oob := &Curve{Width: 6, Height: 4, Points: append([]Point(nil), c.Points...)}
	oob.Points[0] = Point{X: 6, Y: 0}
	require.ErrorIs(t, oob.check(), ErrCurveMismatch)
}
