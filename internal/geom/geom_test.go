package geom

import (
	"image"
	"math"
	"testing"
)

func TestNormalizeRectOrderIndependent(t *testing.T) {
	pts := []Vec2{{0, 0}, {10, 5}, {-3, 7}, {4, -8}, {2.5, 2.5}}
	for _, a := range pts {
		for _, b := range pts {
			ab := NormalizeRect(a, b)
			ba := NormalizeRect(b, a)
			if ab != ba {
				t.Errorf("NormalizeRect(%v, %v) = %v, reversed %v", a, b, ab, ba)
			}
			if ab.TopLeft.X > ab.BottomRight.X || ab.TopLeft.Y > ab.BottomRight.Y {
				t.Errorf("NormalizeRect(%v, %v) not normalized: %v", a, b, ab)
			}
		}
	}
}

func TestTrueEndCoordSquare(t *testing.T) {
	begin := V(10, 10)
	ends := []Vec2{{30, 15}, {-20, 40}, {5, -50}, {-4, -9}, {10, 60}}
	for _, end := range ends {
		got := TrueEndCoord(begin, end, true)
		w := math.Abs(got.X - begin.X)
		h := math.Abs(got.Y - begin.Y)
		if w != h {
			t.Errorf("end %v: width %v != height %v", end, w, h)
		}
		if (got.X-begin.X)*(end.X-begin.X) < 0 {
			t.Errorf("end %v: x sign flipped, got %v", end, got)
		}
		if (got.Y-begin.Y)*(end.Y-begin.Y) < 0 {
			t.Errorf("end %v: y sign flipped, got %v", end, got)
		}
	}
	if got := TrueEndCoord(begin, V(30, 15), false); got != V(30, 15) {
		t.Errorf("unconstrained end changed: %v", got)
	}
	if got := TrueEndCoord(begin, V(30, 15), true); got != V(15, 15) {
		t.Errorf("TrueEndCoord = %v, want (15,15)", got)
	}
}

func TestSnapAngleDegrees(t *testing.T) {
	mouse := V(45, 55)
	if got := SnapAngleDegrees(V(55, 65), mouse); math.Abs(got-225) > 1e-9 {
		t.Fatalf("SnapAngleDegrees = %v, want 225", got)
	}
	cases := []struct {
		to   Vec2
		want float64
	}{
		{V(0, 10), 0},
		{V(10, 0), 90},
		{V(0, -10), 180},
		{V(-10, 0), 270},
	}
	for _, c := range cases {
		if got := SnapAngleDegrees(V(0, 0), c.to); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("SnapAngleDegrees(0, %v) = %v, want %v", c.to, got, c.want)
		}
	}
}

func TestSectorBoundaries(t *testing.T) {
	cases := []struct {
		angle float64
		want  int
	}{
		{0, 0}, {22.4999, 0}, {22.5, 1}, {67.4999, 1}, {67.5, 2},
		{112.5, 3}, {157.5, 4}, {202.5, 5}, {247.5, 6}, {292.5, 7},
		{337.4999, 7}, {337.5, 0}, {359.9999, 0},
	}
	for _, c := range cases {
		if got := Sector(c.angle); got != c.want {
			t.Errorf("Sector(%v) = %d, want %d", c.angle, got, c.want)
		}
	}
}

func TestSectorPartition(t *testing.T) {
	counts := make([]int, 8)
	for i := 0; i < 3600; i++ {
		counts[Sector(float64(i)/10)]++
	}
	for s, n := range counts {
		if n != 450 {
			t.Errorf("sector %d covers %d tenths of a degree, want 450", s, n)
		}
	}
}

func TestAxisSnap(t *testing.T) {
	last := V(15, 10)
	mouse := V(45, 55)
	cases := []struct {
		angle float64
		check func(Vec2) bool
		desc  string
	}{
		{3, func(p Vec2) bool { return p.X == 15 && p.Y == 55 }, "vertical keeps y"},
		{87, func(p Vec2) bool { return p.X == 45 && p.Y == 10 }, "horizontal keeps x"},
		{47, func(p Vec2) bool { return p.Y == 40 }, "diagonal down"},
		{133, func(p Vec2) bool { return p.Y == -20 }, "diagonal up"},
		{180, func(p Vec2) bool { return p.X == 15 }, "vertical up"},
		{270, func(p Vec2) bool { return p.Y == 10 }, "horizontal left"},
	}
	for _, c := range cases {
		if got := AxisSnap(c.angle, last, mouse); !c.check(got) {
			t.Errorf("%s: AxisSnap(%v) = %v", c.desc, c.angle, got)
		}
	}
}

func TestRectHelpers(t *testing.T) {
	r := NormalizeRect(V(20, 30), V(0, 10))
	if r.Width() != 20 || r.Height() != 20 {
		t.Fatalf("size = %v", r.Size())
	}
	if c := r.Center(); c != V(10, 20) {
		t.Errorf("Center = %v", c)
	}
	if !r.Contains(V(10, 20), 5) {
		t.Error("center should be inside")
	}
	if r.Contains(V(2, 20), 5) {
		t.Error("point inside margin should be outside")
	}
	if got := r.Image(); got != image.Rect(0, 10, 20, 30) {
		t.Errorf("Image = %v", got)
	}
	if Radius(30, 10) != 10 {
		t.Errorf("Radius = %v", Radius(30, 10))
	}
	if p := Clamp(V(-5, 120), 100, 100); p != V(0, 100) {
		t.Errorf("Clamp = %v", p)
	}
	if !NormalizeRect(V(3, 3), V(3, 9)).Empty() {
		t.Error("zero width rect should be empty")
	}
}
