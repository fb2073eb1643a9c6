// Package neutrino implements the signal and background probability densities
// of the neutrino channel: time offset, sky location and energy.
package neutrino

import (
	"math"

	"nucoinc/domain/astro"
	"nucoinc/domain/search"
	"nucoinc/internal/effarea"
	"nucoinc/internal/errors"
)

const (
	// energyStepLog10 is the rectangle width in log10(E/GeV) used by the
	// Monte-Carlo integrals over the effective-area table.
	energyStepLog10 = 0.2
	// energyWindowLog10 is the half-width of the empirical energy kernel.
	energyWindowLog10 = 0.01
	// decWindowDeg is the half-width of the empirical declination kernel.
	decWindowDeg = 1.0
)

// Model evaluates the neutrino-channel densities against one effective-area
// table and one historical detection sample. All inputs are immutable, so a
// single Model is safe for concurrent use.
type Model struct {
	params search.Parameters
	table  *effarea.Table
	events []astro.Event

	// sourceProb caches EnergySignalProbability at each bin's representative
	// declination (decMin + 1 deg). The nested energy-spectrum integral
	// re-evaluates it once per bin, which is quadratic in the bin count;
	// precomputing here keeps the model referentially transparent while
	// removing the repeated inner integral from every query.
	sourceProb map[float64]float64
}

// NewModel builds a model over the given table and event sample.
func NewModel(params search.Parameters, table *effarea.Table, events []astro.Event) (*Model, error) {
	if table == nil {
		return nil, errors.BadTable("neutrino model requires an effective-area table")
	}
	m := &Model{
		params: params,
		table:  table,
		events: append([]astro.Event(nil), events...),
	}
	m.sourceProb = make(map[float64]float64)
	for _, b := range table.Bins() {
		rep := b.DecMinDeg + 1
		if _, ok := m.sourceProb[rep]; !ok {
			m.sourceProb[rep] = m.EnergySignalProbability(rep)
		}
	}
	return m, nil
}

// TemporalSignal is the uniform density of the neutrino arrival time offset
// under the signal hypothesis: 1/(t+ - t-) inside the coincidence window,
// 0 outside. Integrates to exactly 1 over the window.
func (m *Model) TemporalSignal(tNuSec, tSourceSec float64) float64 {
	dt := tNuSec - tSourceSec
	if m.params.TMinusSec <= dt && dt <= m.params.TPlusSec {
		return 1 / (m.params.TPlusSec - m.params.TMinusSec)
	}
	return 0
}

// SpatialSignal is the isotropic 2D Gaussian density of the angular offset
// between the reconstructed neutrino position and the source position, with
// standard deviation sigmaDeg. The offset is the sum of squared coordinate
// differences, a small-angle approximation: not valid near the poles or for
// sigma approaching the degree scale of the sphere.
func (m *Model) SpatialSignal(raNuDeg, decNuDeg, sigmaDeg, raSourceDeg, decSourceDeg float64) float64 {
	if sigmaDeg <= 0 {
		return 0
	}
	d2 := (raNuDeg-raSourceDeg)*(raNuDeg-raSourceDeg) +
		(decNuDeg-decSourceDeg)*(decNuDeg-decSourceDeg)
	return math.Exp(-d2/(2*sigmaDeg*sigmaDeg)) / (2 * math.Pi * sigmaDeg * sigmaDeg)
}

// EnergySignalProbability estimates P(source declination | detected as
// signal) as the ratio of two rectangle integrals over the effective-area
// table: the bins covering decSourceDeg versus the full table, each rectangle
// weighted by dE * dDec * A_eff * eps^-2 for an E^-2 source flux. Returns 0
// when the full-table integral is degenerate.
func (m *Model) EnergySignalProbability(decSourceDeg float64) float64 {
	var top float64
	for _, b := range m.table.BinsForDeclination(decSourceDeg) {
		top += fluxRectangle(b)
	}
	var bottom float64
	for _, b := range m.table.Bins() {
		bottom += fluxRectangle(b)
	}
	if bottom == 0 {
		return 0
	}
	return top / bottom
}

// EnergySpectrumSignal estimates the probability of observing reconstructed
// energy epsNu (log10 E/GeV) under the signal hypothesis, as the ratio of two
// integrals over the table where each rectangle also carries the declination
// probability of its own bin, evaluated at the bin's representative
// declination (decMin + 1 deg). Returns 0 for a degenerate denominator or a
// non-positive query.
func (m *Model) EnergySpectrumSignal(epsNu float64) float64 {
	if epsNu <= 0 {
		return 0
	}
	var top float64
	for _, b := range m.table.BinsForEnergy(epsNu) {
		dDec := b.DecMaxDeg - b.DecMinDeg
		top += energyStepLog10 * dDec * b.AreaCm2 * m.sourceProbAt(b.DecMinDeg+1) / (epsNu * epsNu)
	}
	var bottom float64
	for _, b := range m.table.Bins() {
		dDec := b.DecMaxDeg - b.DecMinDeg
		eps := (b.EnergyMaxLog10GeV - b.EnergyMinLog10GeV) / 2
		bottom += energyStepLog10 * dDec * b.AreaCm2 * m.sourceProbAt(b.DecMinDeg+1) / (eps * eps)
	}
	if bottom == 0 {
		return 0
	}
	return top / bottom
}

func (m *Model) sourceProbAt(decDeg float64) float64 {
	if p, ok := m.sourceProb[decDeg]; ok {
		return p
	}
	return m.EnergySignalProbability(decDeg)
}

// EnergyBackground is the fraction of historical detections whose energy lies
// within the +-0.01 log10(E/GeV) window around epsNu: the empirical density
// of the given energy under the background hypothesis.
func (m *Model) EnergyBackground(epsNu float64) float64 {
	if len(m.events) == 0 {
		return 0
	}
	n := 0
	for _, ev := range m.events {
		if epsNu-energyWindowLog10 <= ev.EnergyLog10GeV && ev.EnergyLog10GeV <= epsNu+energyWindowLog10 {
			n++
		}
	}
	return float64(n) / float64(len(m.events))
}

// SkyBackground counts the historical detections within +-0.01 in energy and
// +-1 deg in declination of the query. This is an unnormalized kernel count,
// deliberately on a different scale from the probability functions; callers
// must renormalize before mixing it with them.
func (m *Model) SkyBackground(decDeg, epsNu float64) float64 {
	n := 0
	for _, ev := range m.events {
		if epsNu-energyWindowLog10 <= ev.EnergyLog10GeV && ev.EnergyLog10GeV <= epsNu+energyWindowLog10 &&
			decDeg-decWindowDeg <= ev.DecDeg && ev.DecDeg <= decDeg+decWindowDeg {
			n++
		}
	}
	return float64(n)
}

// SkyEffAreaDensity is the effective-area-weighted isotropic sky density
// A_eff(epsNu, dec) * epsNu^-2 / (4*pi). A query outside the table domain is
// a loud domain miss, propagated from the table lookup.
func (m *Model) SkyEffAreaDensity(decDeg, epsNu float64) (float64, error) {
	if epsNu <= 0 {
		return 0, nil
	}
	area, err := m.table.Lookup(epsNu, decDeg)
	if err != nil {
		return 0, err
	}
	return area / (epsNu * epsNu) / (4 * math.Pi), nil
}

// SkyUniform is the uniform sky density 1/(4*pi) inside the valid spherical
// ranges, 0 outside.
func (m *Model) SkyUniform(raDeg, decDeg float64) float64 {
	return astro.UniformSkyDensity(raDeg, decDeg)
}

// fluxRectangle is the rectangle weight dE * dDec * A_eff * eps^-2, with eps
// the half-width of the bin's energy window.
func fluxRectangle(b astro.EffectiveAreaBin) float64 {
	eps := (b.EnergyMaxLog10GeV - b.EnergyMinLog10GeV) / 2
	if eps == 0 {
		return 0
	}
	dDec := b.DecMaxDeg - b.DecMinDeg
	return energyStepLog10 * dDec * b.AreaCm2 / (eps * eps)
}
