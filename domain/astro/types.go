package astro

import "math"

// NeutrinoDetection is a single observed high-energy neutrino candidate.
// All fields carry their unit in the name; times are MJD days, angles degrees,
// energies log10(E/GeV). Detections are produced by an external loader and
// never mutated by the scoring code.
type NeutrinoDetection struct {
	TimeMJD        float64 `db:"time_mjd" json:"time_mjd"`
	RADeg          float64 `db:"ra_deg" json:"ra_deg"`
	DecDeg         float64 `db:"dec_deg" json:"dec_deg"`
	EnergyLog10GeV float64 `db:"energy_log10_gev" json:"energy_log10_gev"`
	SigmaDeg       float64 `db:"sigma_deg" json:"sigma_deg"`
}

// GWHypothesis is a candidate gravitational-wave source configuration to be
// scored. It is a hypothesis, not necessarily an observed event.
type GWHypothesis struct {
	TimeGPS     float64 `json:"time_gps"`
	RADeg       float64 `json:"ra_deg"`
	DecDeg      float64 `json:"dec_deg"`
	DistanceMpc float64 `json:"distance_mpc"`
	Mass1Msun   float64 `json:"mass1_msun"`
	Mass2Msun   float64 `json:"mass2_msun"`
}

// CatalogEntry is one reference gravitational-wave event. The catalog is
// loaded once and only ever read; the FAR matcher searches it but never
// mutates it. The four per-pipeline false-alarm rates come straight from the
// catalog table; the matcher treats GstLAL and PyCBC as the two independent
// pipelines.
type CatalogEntry struct {
	TimeGPS        float64 `db:"time_gps" json:"time_gps"`
	RADeg          float64 `db:"ra_deg" json:"ra_deg"`
	DecDeg         float64 `db:"dec_deg" json:"dec_deg"`
	AltDeg         float64 `db:"alt_deg" json:"alt_deg"`
	AzDeg          float64 `db:"az_deg" json:"az_deg"`
	DistanceMpc    float64 `db:"distance_mpc" json:"distance_mpc"`
	Mass1Msun      float64 `db:"mass1_msun" json:"mass1_msun"`
	Mass2Msun      float64 `db:"mass2_msun" json:"mass2_msun"`
	InclinationRad float64 `db:"inclination_rad" json:"inclination_rad"`
	FARGstLALHz    float64 `db:"far_gstlal_hz" json:"far_gstlal_hz"`
	FARPyCBCHz     float64 `db:"far_pycbc_hz" json:"far_pycbc_hz"`
	FARMBTAHz      float64 `db:"far_mbta_hz" json:"far_mbta_hz"`
	FARCWBHz       float64 `db:"far_cwb_hz" json:"far_cwb_hz"`
}

// TotalMassMsun returns the total binary mass of the entry.
func (e CatalogEntry) TotalMassMsun() float64 {
	return e.Mass1Msun + e.Mass2Msun
}

// EffectiveAreaBin is one rectangle of a binned effective-area table.
// Energy bounds are log10(E/GeV), declination bounds degrees. Bins are
// half-open on both axes: [EnergyMin, EnergyMax) x [DecMin, DecMax).
type EffectiveAreaBin struct {
	EnergyMinLog10GeV float64 `db:"energy_min_log10_gev" json:"energy_min_log10_gev"`
	EnergyMaxLog10GeV float64 `db:"energy_max_log10_gev" json:"energy_max_log10_gev"`
	DecMinDeg         float64 `db:"dec_min_deg" json:"dec_min_deg"`
	DecMaxDeg         float64 `db:"dec_max_deg" json:"dec_max_deg"`
	AreaCm2           float64 `db:"area_cm2" json:"area_cm2"`
}

// Contains reports whether (eLog10, decDeg) falls inside the bin.
func (b EffectiveAreaBin) Contains(eLog10, decDeg float64) bool {
	return b.EnergyMinLog10GeV <= eLog10 && eLog10 < b.EnergyMaxLog10GeV &&
		b.DecMinDeg <= decDeg && decDeg < b.DecMaxDeg
}

// Event is one historical neutrino detection from a detector/era sample,
// used only to build empirical background densities.
type Event struct {
	TimeMJD        float64 `db:"time_mjd" json:"time_mjd"`
	RADeg          float64 `db:"ra_deg" json:"ra_deg"`
	DecDeg         float64 `db:"dec_deg" json:"dec_deg"`
	EnergyLog10GeV float64 `db:"energy_log10_gev" json:"energy_log10_gev"`
	SigmaDeg       float64 `db:"sigma_deg" json:"sigma_deg"`
}

// Bundle is the full set of tables the engine scores against. It is loaded
// once at process start and treated as immutable for the lifetime of the
// process, so concurrent readers need no locking.
type Bundle struct {
	// EffectiveAreas maps detector/era name to its binned table.
	EffectiveAreas map[string][]EffectiveAreaBin
	// Events maps detector/era name to its historical detection sample.
	Events map[string][]Event
	// Catalog is the reference GW-event catalog searched by the FAR matcher.
	Catalog []CatalogEntry
	// PipelineFARsHz are pipeline-measured false-alarm rates capped at the
	// detection threshold.
	PipelineFARsHz []float64
	// BackgroundFARsHz is the full empirical background FAR catalog.
	BackgroundFARsHz []float64
}

// UniformSkyDensity is the isotropic sky density 1/(4*pi) for any position
// inside the valid spherical ranges, and 0 outside them.
func UniformSkyDensity(raDeg, decDeg float64) float64 {
	if raDeg < 0 || raDeg > 360 || decDeg < -90 || decDeg > 90 {
		return 0
	}
	return 1 / (4 * math.Pi)
}

// SkyGrid is a fixed-resolution RA/Dec raster produced by the sky-map
// collaborator. Values[i][j] is the rendered density at (RADeg[i], DecDeg[j]).
type SkyGrid struct {
	RADeg  []float64   `json:"ra_deg"`
	DecDeg []float64   `json:"dec_deg"`
	Values [][]float64 `json:"values"`
}
