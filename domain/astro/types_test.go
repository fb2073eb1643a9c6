package astro

import (
	"math"
	"testing"
)

func TestUniformSkyDensity(t *testing.T) {
	want := 1 / (4 * math.Pi)

	tests := []struct {
		name    string
		ra, dec float64
		want    float64
	}{
		{"interior", 180, 45, want},
		{"ra lower corner", 0, 0, want},
		{"ra upper corner", 360, 0, want},
		{"dec bounds", 180, -90, want},
		{"ra below range", -0.1, 0, 0},
		{"ra above range", 360.1, 0, 0},
		{"dec below range", 180, -90.1, 0},
		{"dec above range", 180, 90.1, 0},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := UniformSkyDensity(tc.ra, tc.dec); got != tc.want {
				t.Errorf("UniformSkyDensity(%g, %g) = %g, want %g", tc.ra, tc.dec, got, tc.want)
			}
		})
	}
}

func TestEffectiveAreaBinContains(t *testing.T) {
	b := EffectiveAreaBin{EnergyMinLog10GeV: 2, EnergyMaxLog10GeV: 3, DecMinDeg: -10, DecMaxDeg: 10}

	tests := []struct {
		name        string
		energy, dec float64
		want        bool
	}{
		{"interior", 2.5, 0, true},
		{"at lower edges", 2, -10, true},
		{"at energy max", 3, 0, false},
		{"at dec max", 2.5, 10, false},
		{"below energy", 1.9, 0, false},
		{"above dec", 2.5, 11, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := b.Contains(tc.energy, tc.dec); got != tc.want {
				t.Errorf("Contains(%g, %g) = %v, want %v", tc.energy, tc.dec, got, tc.want)
			}
		})
	}
}

func TestCatalogEntryTotalMass(t *testing.T) {
	e := CatalogEntry{Mass1Msun: 1.46, Mass2Msun: 1.27}
	if got := e.TotalMassMsun(); got != 1.46+1.27 {
		t.Errorf("TotalMassMsun = %g, want %g", got, 1.46+1.27)
	}
}
