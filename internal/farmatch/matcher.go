// Package farmatch imputes a representative false-alarm rate for a
// hypothetical GW source configuration by nearest-neighbor search over a
// reference catalog.
package farmatch

import (
	"math"
	"sort"

	"nucoinc/domain/astro"
	"nucoinc/ports"
)

const (
	// angularScaleDeg normalizes the horizontal-frame angular separation.
	angularScaleDeg = 5.0
	// distanceTolerance normalizes the distance deviation, as a fraction of
	// the query distance.
	distanceTolerance = 0.1
	// massTolerance normalizes the total-mass deviation, as a fraction of
	// the query total mass.
	massTolerance = 0.2
)

// Query is a hypothetical source configuration to match against the catalog.
type Query struct {
	TimeGPS     float64
	DistanceMpc float64
	RADeg       float64
	DecDeg      float64
	Mass1Msun   float64
	Mass2Msun   float64
}

// Ranked pairs a catalog entry with its normalized squared deviation from a
// query, in ascending-deviation order after Rank.
type Ranked struct {
	Entry     astro.CatalogEntry
	Deviation float64
}

// Matcher searches an immutable reference catalog. Safe for concurrent use.
type Matcher struct {
	entries     []astro.CatalogEntry
	geom        ports.Geometry
	thresholdHz float64
}

// New builds a matcher over the catalog. thresholdHz is the detection
// threshold (2/day); entries at or above it on both designated pipelines
// never qualify as a match.
func New(entries []astro.CatalogEntry, geom ports.Geometry, thresholdHz float64) *Matcher {
	return &Matcher{
		entries:     append([]astro.CatalogEntry(nil), entries...),
		geom:        geom,
		thresholdHz: thresholdHz,
	}
}

// Rank computes the deviation of every catalog entry from the query and
// returns the catalog sorted by ascending deviation. Callers scoring many
// hypotheses can use this directly to hoist the O(N log N) sort out of
// whatever scan they need; Match is the single-query convenience on top.
func (m *Matcher) Rank(q Query) ([]Ranked, error) {
	altDeg, azDeg, err := m.geom.EquatorialToHorizontal(q.TimeGPS, q.RADeg, q.DecDeg)
	if err != nil {
		return nil, err
	}
	qMass := q.Mass1Msun + q.Mass2Msun

	ranked := make([]Ranked, len(m.entries))
	for i, e := range m.entries {
		ranked[i] = Ranked{Entry: e, Deviation: deviation(e, altDeg, azDeg, q.DistanceMpc, qMass)}
	}
	// Stable sort keeps equal-deviation entries in catalog order, so two
	// identical queries always return the identical FAR.
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Deviation < ranked[j].Deviation
	})
	return ranked, nil
}

// Match returns the FAR (Hz) of the closest catalog entry that clears the
// detection threshold on at least one of the two designated pipelines,
// taking the minimum of the qualifying pipeline values. Entries at or above
// the threshold on both pipelines are skipped. If the whole catalog is
// exhausted without a qualifying entry, Match returns +Inf: no plausible
// background match exists. Callers must treat the sentinel specially (via
// the cutoff gate) rather than feed it through arithmetic.
func (m *Matcher) Match(q Query) (float64, error) {
	ranked, err := m.Rank(q)
	if err != nil {
		return 0, err
	}
	for _, r := range ranked {
		if far, ok := qualifyingFAR(r.Entry, m.thresholdHz); ok {
			return far, nil
		}
	}
	return math.Inf(1), nil
}

// Size returns the number of catalog entries.
func (m *Matcher) Size() int { return len(m.entries) }

// deviation is the sum of three squared normalized terms: horizontal-frame
// angular separation over a 5 deg scale, distance deviation over 10% of the
// query distance, and total-mass deviation over 20% of the query total mass.
func deviation(e astro.CatalogEntry, altDeg, azDeg, distMpc, totalMass float64) float64 {
	dAlt := e.AltDeg - altDeg
	dAz := e.AzDeg - azDeg
	angular := (dAlt*dAlt + dAz*dAz) / (angularScaleDeg * angularScaleDeg)

	var distTerm float64
	if distMpc > 0 {
		d := (e.DistanceMpc - distMpc) / (distanceTolerance * distMpc)
		distTerm = d * d
	}

	var massTerm float64
	if totalMass > 0 {
		d := (e.TotalMassMsun() - totalMass) / (massTolerance * totalMass)
		massTerm = d * d
	}

	return angular + distTerm + massTerm
}

// qualifyingFAR inspects the two independent pipelines of an entry and
// returns the minimum FAR strictly below the threshold, if any.
func qualifyingFAR(e astro.CatalogEntry, thresholdHz float64) (float64, bool) {
	best := math.Inf(1)
	for _, far := range [2]float64{e.FARGstLALHz, e.FARPyCBCHz} {
		if far > 0 && far < thresholdHz && far < best {
			best = far
		}
	}
	if math.IsInf(best, 1) {
		return 0, false
	}
	return best, true
}
