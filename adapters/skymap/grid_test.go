package skymap

import (
	"math"
	"testing"

	"nucoinc/internal/errors"
)

func TestRenderPSF(t *testing.T) {
	r := NewRenderer(36, 18)

	grid, err := r.RenderPSF(180, 0, 5)
	if err != nil {
		t.Fatalf("RenderPSF: %v", err)
	}
	if len(grid.RADeg) != 36 || len(grid.DecDeg) != 18 || len(grid.Values) != 36 {
		t.Fatalf("grid shape = (%d, %d, %d rows), want (36, 18, 36)",
			len(grid.RADeg), len(grid.DecDeg), len(grid.Values))
	}

	// Pixel centers: first RA pixel at 5 deg, first Dec pixel at -85 deg.
	if grid.RADeg[0] != 5 {
		t.Errorf("first RA center = %g, want 5", grid.RADeg[0])
	}
	if grid.DecDeg[0] != -85 {
		t.Errorf("first Dec center = %g, want -85", grid.DecDeg[0])
	}

	// Locate the maximum; it must sit at the pixel nearest the center.
	maxI, maxJ, maxV := 0, 0, 0.0
	for i := range grid.Values {
		for j, v := range grid.Values[i] {
			if v < 0 {
				t.Fatalf("negative density at (%d, %d)", i, j)
			}
			if v > maxV {
				maxI, maxJ, maxV = i, j, v
			}
		}
	}
	if math.Abs(grid.RADeg[maxI]-180) > 10 || math.Abs(grid.DecDeg[maxJ]) > 10 {
		t.Errorf("density peaks at ra=%g dec=%g, want near (180, 0)",
			grid.RADeg[maxI], grid.DecDeg[maxJ])
	}
}

func TestRenderPSF_WrapsRA(t *testing.T) {
	r := NewRenderer(360, 18)

	// Center just east of 0: pixels near 359.5 deg are angularly close and
	// must carry nearly the same density as pixels near 0.5 deg.
	grid, err := r.RenderPSF(0.5, 0, 5)
	if err != nil {
		t.Fatalf("RenderPSF: %v", err)
	}
	j := len(grid.DecDeg) / 2
	east := grid.Values[0][j]   // ra = 0.5
	west := grid.Values[359][j] // ra = 359.5
	if east <= 0 || west <= 0 {
		t.Fatal("densities adjacent to the center must be positive")
	}
	if ratio := west / east; ratio < 0.9 || ratio > 1.1 {
		t.Errorf("wrap-around density ratio = %g, want near 1", ratio)
	}
}

func TestRenderPSF_Rejects(t *testing.T) {
	r := NewRenderer(36, 18)

	if _, err := r.RenderPSF(180, 0, 0); err == nil {
		t.Error("expected error for non-positive sigma")
	}
	_, err := r.RenderPSF(400, 0, 5)
	if err == nil {
		t.Fatal("expected error for center outside the sky")
	}
	if code := errors.GetCode(err); code != errors.CodeDomainMiss {
		t.Errorf("error code = %q, want %q", code, errors.CodeDomainMiss)
	}
}
