// Package geometry implements the astronomical-geometry port on top of the
// meeus library: equatorial-to-horizontal conversion and GPS-to-MJD time
// conversion for a fixed observer site.
package geometry

import (
	"math"
	"time"

	"github.com/soniakeys/meeus/v3/coord"
	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/meeus/v3/sidereal"
	"github.com/soniakeys/unit"

	"nucoinc/internal/errors"
	"nucoinc/ports"
)

var _ ports.Geometry = (*Meeus)(nil)

// Site is an observer location. Longitude is east-positive degrees.
type Site struct {
	LatitudeDeg  float64
	LongitudeDeg float64
}

// IceCube is the detector site at the geographic South Pole. The latitude is
// kept a hair off -90 so the horizontal transform stays well conditioned.
var IceCube = Site{LatitudeDeg: -89.99, LongitudeDeg: -63.45}

// gpsEpoch is 1980-01-06T00:00:00 UTC, the origin of the GPS time scale.
var gpsEpoch = time.Date(1980, time.January, 6, 0, 0, 0, 0, time.UTC)

// gpsUTCOffsetSec is the accumulated GPS-UTC leap-second offset, current
// since 2017-01-01. Adequate for the catalogs scored here; earlier epochs
// would be off by up to a few seconds of sidereal rotation.
const gpsUTCOffsetSec = 18

const mjdOffset = 2400000.5

// Meeus is the meeus-backed implementation of ports.Geometry.
type Meeus struct {
	site Site
}

// NewMeeus creates the geometry collaborator for an observer site.
func NewMeeus(site Site) *Meeus {
	return &Meeus{site: site}
}

// GPSToMJD converts GPS seconds to modified Julian days (UTC).
func (g *Meeus) GPSToMJD(gpsTimeSec float64) float64 {
	return julian.TimeToJD(g.utc(gpsTimeSec)) - mjdOffset
}

// EquatorialToHorizontal converts (ra, dec) at a GPS time into the site's
// (altitude, azimuth), degrees, azimuth measured eastward from north.
func (g *Meeus) EquatorialToHorizontal(gpsTimeSec, raDeg, decDeg float64) (float64, float64, error) {
	if raDeg < 0 || raDeg > 360 || decDeg < -90 || decDeg > 90 {
		return 0, 0, errors.DomainMiss("equatorial position ra=%g dec=%g outside valid sky ranges", raDeg, decDeg)
	}
	jd := julian.TimeToJD(g.utc(gpsTimeSec))
	st := sidereal.Apparent(jd)

	// meeus measures observer longitude positive westward and azimuth
	// westward from south; convert on the way in and out.
	az, alt := coord.EqToHz(
		unit.RAFromDeg(raDeg),
		unit.AngleFromDeg(decDeg),
		unit.AngleFromDeg(g.site.LatitudeDeg),
		unit.AngleFromDeg(-g.site.LongitudeDeg),
		st,
	)
	azNorth := math.Mod(az.Deg()+180, 360)
	if azNorth < 0 {
		azNorth += 360
	}
	return alt.Deg(), azNorth, nil
}

func (g *Meeus) utc(gpsTimeSec float64) time.Time {
	return gpsEpoch.Add(time.Duration((gpsTimeSec - gpsUTCOffsetSec) * float64(time.Second)))
}
