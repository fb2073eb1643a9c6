// Package effarea provides the read-only binned effective-area lookup shared
// by the neutrino density estimators.
package effarea

import (
	"sort"

	"nucoinc/domain/astro"
	"nucoinc/internal/errors"
)

// Table is an immutable (energy bin x declination bin) -> effective area
// lookup for one detector/era.
type Table struct {
	name string
	bins []astro.EffectiveAreaBin
}

// New builds a table from loaded bins. The bins are expected to partition the
// (energy, declination) plane; call Validate to check that invariant.
func New(name string, bins []astro.EffectiveAreaBin) (*Table, error) {
	if len(bins) == 0 {
		return nil, errors.BadTable("effective-area table %q has no bins", name)
	}
	for i, b := range bins {
		if b.EnergyMaxLog10GeV <= b.EnergyMinLog10GeV || b.DecMaxDeg <= b.DecMinDeg {
			return nil, errors.BadTable("effective-area table %q: bin %d has empty extent", name, i)
		}
		if b.AreaCm2 < 0 {
			return nil, errors.BadTable("effective-area table %q: bin %d has negative area", name, i)
		}
	}
	return &Table{name: name, bins: append([]astro.EffectiveAreaBin(nil), bins...)}, nil
}

// Name returns the detector/era name of the table.
func (t *Table) Name() string { return t.name }

// Bins returns the full bin set. Callers must treat it as read-only.
func (t *Table) Bins() []astro.EffectiveAreaBin { return t.bins }

// Lookup returns the effective area (cm^2) of the unique bin satisfying
// energyMin <= eLog10 < energyMax and decMin <= decDeg < decMax. A query
// outside the covered domain fails loudly: no sentinel zero is semantically
// valid for an effective area, and silently picking an arbitrary bin would
// corrupt every downstream probability.
func (t *Table) Lookup(eLog10, decDeg float64) (float64, error) {
	for _, b := range t.bins {
		if b.Contains(eLog10, decDeg) {
			return b.AreaCm2, nil
		}
	}
	return 0, errors.DomainMiss(
		"effective-area table %q: no bin covers energy=%g log10(E/GeV), dec=%g deg",
		t.name, eLog10, decDeg)
}

// BinsForDeclination returns the bins whose declination window contains
// decDeg, i.e. the energy column at that declination.
func (t *Table) BinsForDeclination(decDeg float64) []astro.EffectiveAreaBin {
	var out []astro.EffectiveAreaBin
	for _, b := range t.bins {
		if b.DecMinDeg <= decDeg && decDeg < b.DecMaxDeg {
			out = append(out, b)
		}
	}
	return out
}

// BinsForEnergy returns the bins whose energy window contains eLog10.
func (t *Table) BinsForEnergy(eLog10 float64) []astro.EffectiveAreaBin {
	var out []astro.EffectiveAreaBin
	for _, b := range t.bins {
		if b.EnergyMinLog10GeV <= eLog10 && eLog10 < b.EnergyMaxLog10GeV {
			out = append(out, b)
		}
	}
	return out
}

// Validate checks the partition invariant: every point of the covered domain
// matches exactly one bin. It samples cell midpoints of the edge grid plus
// points just inside every boundary, where gaps and overlaps hide.
func (t *Table) Validate() error {
	eEdges := t.collectEdges(func(b astro.EffectiveAreaBin) (float64, float64) {
		return b.EnergyMinLog10GeV, b.EnergyMaxLog10GeV
	})
	dEdges := t.collectEdges(func(b astro.EffectiveAreaBin) (float64, float64) {
		return b.DecMinDeg, b.DecMaxDeg
	})

	const eps = 1e-9
	for i := 0; i < len(eEdges)-1; i++ {
		eSamples := []float64{
			(eEdges[i] + eEdges[i+1]) / 2,
			eEdges[i] + eps*(eEdges[i+1]-eEdges[i]),
			eEdges[i+1] - eps*(eEdges[i+1]-eEdges[i]),
		}
		for j := 0; j < len(dEdges)-1; j++ {
			dSamples := []float64{
				(dEdges[j] + dEdges[j+1]) / 2,
				dEdges[j] + eps*(dEdges[j+1]-dEdges[j]),
				dEdges[j+1] - eps*(dEdges[j+1]-dEdges[j]),
			}
			for _, e := range eSamples {
				for _, d := range dSamples {
					if n := t.countMatches(e, d); n != 1 {
						return errors.BadTable(
							"effective-area table %q: %d bins match energy=%g, dec=%g (want exactly 1)",
							t.name, n, e, d)
					}
				}
			}
		}
	}
	return nil
}

func (t *Table) countMatches(eLog10, decDeg float64) int {
	n := 0
	for _, b := range t.bins {
		if b.Contains(eLog10, decDeg) {
			n++
		}
	}
	return n
}

func (t *Table) collectEdges(bounds func(astro.EffectiveAreaBin) (float64, float64)) []float64 {
	seen := make(map[float64]bool)
	var edges []float64
	for _, b := range t.bins {
		lo, hi := bounds(b)
		for _, v := range [2]float64{lo, hi} {
			if !seen[v] {
				seen[v] = true
				edges = append(edges, v)
			}
		}
	}
	sort.Float64s(edges)
	return edges
}
