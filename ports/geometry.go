package ports

// Geometry is the external astronomical-geometry collaborator. The core never
// reimplements coordinate-frame or time-scale conversions; it consumes them
// through this port.
type Geometry interface {
	// EquatorialToHorizontal converts an equatorial position at a GPS time
	// into the observer's horizontal frame (altitude, azimuth), degrees.
	EquatorialToHorizontal(gpsTimeSec, raDeg, decDeg float64) (altDeg, azDeg float64, err error)

	// GPSToMJD converts GPS seconds into modified Julian days (UTC).
	GPSToMJD(gpsTimeSec float64) float64
}
