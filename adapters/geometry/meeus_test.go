package geometry

import (
	"math"
	"testing"

	"nucoinc/internal/errors"
)

func TestGPSToMJD(t *testing.T) {
	g := NewMeeus(IceCube)

	// GW170817 merger time.
	got := g.GPSToMJD(1187008882.43)
	want := 57982.5285
	if math.Abs(got-want) > 0.01 {
		t.Errorf("GPSToMJD(1187008882.43) = %f, want %f within 0.01 d", got, want)
	}

	// GPS epoch itself: 1980-01-06 minus the leap-second offset.
	epochMJD := 44244.0
	got = g.GPSToMJD(18)
	if math.Abs(got-epochMJD) > 1e-6 {
		t.Errorf("GPSToMJD(18) = %f, want %f", got, epochMJD)
	}
}

func TestGPSToMJD_Monotonic(t *testing.T) {
	g := NewMeeus(IceCube)

	// One day of GPS seconds is one MJD unit.
	d := g.GPSToMJD(1187008882+86400) - g.GPSToMJD(1187008882)
	if math.Abs(d-1) > 1e-9 {
		t.Errorf("86400 s advanced MJD by %g, want 1", d)
	}
}

func TestEquatorialToHorizontal_SouthPole(t *testing.T) {
	g := NewMeeus(IceCube)

	// At the pole the altitude is the negated declination, independent of
	// RA and time, up to the small offset from exactly -90 latitude.
	tests := []struct {
		ra, dec float64
	}{
		{0, 0}, {90, 30}, {180, -45}, {270, 80}, {359, -90},
	}
	for _, tc := range tests {
		alt, az, err := g.EquatorialToHorizontal(1187008882, tc.ra, tc.dec)
		if err != nil {
			t.Fatalf("EquatorialToHorizontal(%g, %g): %v", tc.ra, tc.dec, err)
		}
		if math.Abs(alt-(-tc.dec)) > 0.1 {
			t.Errorf("alt at (ra=%g, dec=%g) = %g, want %g", tc.ra, tc.dec, alt, -tc.dec)
		}
		if az < 0 || az >= 360 {
			t.Errorf("az = %g, want [0, 360)", az)
		}
	}
}

func TestEquatorialToHorizontal_TimeDependence(t *testing.T) {
	// Away from the pole the azimuth tracks the sky's rotation.
	g := NewMeeus(Site{LatitudeDeg: 46.5, LongitudeDeg: -119.4})

	_, az1, err := g.EquatorialToHorizontal(1187008882, 180, 20)
	if err != nil {
		t.Fatalf("EquatorialToHorizontal: %v", err)
	}
	_, az2, err := g.EquatorialToHorizontal(1187008882+3600, 180, 20)
	if err != nil {
		t.Fatalf("EquatorialToHorizontal: %v", err)
	}
	if az1 == az2 {
		t.Error("azimuth did not change over an hour of sidereal rotation")
	}
}

func TestEquatorialToHorizontal_RejectsBadSky(t *testing.T) {
	g := NewMeeus(IceCube)

	for _, q := range [][2]float64{{-1, 0}, {361, 0}, {180, 91}, {180, -91}} {
		_, _, err := g.EquatorialToHorizontal(1187008882, q[0], q[1])
		if err == nil {
			t.Fatalf("EquatorialToHorizontal(%g, %g): expected error", q[0], q[1])
		}
		if code := errors.GetCode(err); code != errors.CodeDomainMiss {
			t.Errorf("error code = %q, want %q", code, errors.CodeDomainMiss)
		}
	}
}
