// Package gw implements the gravitational-wave channel densities: source
// priors over distance, mass and emission energy, the empirical FAR
// backgrounds, and the background-normalized joint conditional.
package gw

import (
	"math"

	"gonum.org/v1/gonum/stat/distuv"

	"nucoinc/domain/astro"
	"nucoinc/domain/search"
	"nucoinc/internal/errors"
	"nucoinc/internal/farmatch"
	"nucoinc/internal/histogram"
)

// farFloorHz is the lowest representable FAR in the empirical binnings.
const farFloorHz = 1e-52

// backgroundFARSplitHz separates the fine and coarse segments of the full
// background binning.
const backgroundFARSplitHz = 1e-10

// backgroundFARCeilHz is the upper edge of the full background binning.
const backgroundFARCeilHz = 1e-4

// Model evaluates the GW-channel densities. It holds two independent
// empirical FAR estimators and the FAR matcher; all state is immutable after
// construction.
type Model struct {
	params  search.Parameters
	farBG   *histogram.Estimator
	farFull *histogram.Estimator
	matcher *farmatch.Matcher
}

// NewModel builds the GW model. pipelineFARsHz is the pipeline-measured FAR
// population capped at the detection threshold; backgroundFARsHz the full
// empirical background catalog spanning a wider range.
func NewModel(params search.Parameters, pipelineFARsHz, backgroundFARsHz []float64, matcher *farmatch.Matcher) (*Model, error) {
	// Narrow, log-spaced binning from the floor up to the detection
	// threshold, built from the sub-threshold pipeline population.
	narrowEdges, err := histogram.LogEdges(farFloorHz, params.FARThresholdHz, 100)
	if err != nil {
		return nil, err
	}
	capped := make([]float64, 0, len(pipelineFARsHz))
	for _, far := range pipelineFARsHz {
		if far <= params.FARThresholdHz {
			capped = append(capped, far)
		}
	}
	farBG, err := histogram.New(capped, narrowEdges)
	if err != nil {
		return nil, errors.Wrap(errors.CodeBadTable, "pipeline FAR background", err)
	}

	// Two-segment binning for the full background catalog: finer below the
	// split, coarser above, normalization preserved across the concatenation.
	fullEdges, err := histogram.TwoSegmentLogEdges(farFloorHz, backgroundFARSplitHz, backgroundFARCeilHz, 200, 60)
	if err != nil {
		return nil, err
	}
	farFull, err := histogram.New(backgroundFARsHz, fullEdges)
	if err != nil {
		return nil, errors.Wrap(errors.CodeBadTable, "empirical FAR background", err)
	}

	return &Model{
		params:  params,
		farBG:   farBG,
		farFull: farFull,
		matcher: matcher,
	}, nil
}

// DistancePrior is the uniform-in-volume source distance prior
// r^2 / (rMax^3 / 3), normalized against the maximum catalog distance.
// Zero outside [0, rMax].
func (m *Model) DistancePrior(rMpc float64) float64 {
	rMax := m.params.MaxDistanceMpc
	if rMpc < 0 || rMpc > rMax {
		return 0
	}
	return rMpc * rMpc / (rMax * rMax * rMax / 3)
}

// MassPrior is the product of independent log-uniform priors on each
// component mass within [Mmin, Mmax]. Zero outside the bounds.
func (m *Model) MassPrior(m1Msun, m2Msun float64) float64 {
	lo, hi := m.params.MassMinMsun, m.params.MassMaxMsun
	if m1Msun < lo || m1Msun > hi || m2Msun < lo || m2Msun > hi {
		return 0
	}
	norm := math.Log(hi / lo)
	return 1 / (m1Msun * norm) / (m2Msun * norm)
}

// EnergyPrior is the log-uniform prior on the isotropic-equivalent neutrino
// emission energy within [Emin, Emax] erg. Zero outside the bounds.
func (m *Model) EnergyPrior(enuErg float64) float64 {
	lo, hi := m.params.EnergyMinErg, m.params.EnergyMaxErg
	if enuErg < lo || enuErg > hi {
		return 0
	}
	return 1 / (enuErg * math.Log(hi/lo))
}

// ExpectedNeutrinoCount is the deterministic scaling law for the expected
// number of detected neutrinos from a source at rMpc emitting enuErg:
// N(100 Mpc, Emax) * (Enu/Emax) * (100/r)^2. A count, not a probability.
func (m *Model) ExpectedNeutrinoCount(rMpc, enuErg float64) float64 {
	if rMpc <= 0 || enuErg <= 0 {
		return 0
	}
	scale := 100 / rMpc
	return m.params.NAt100Mpc * (enuErg / m.params.EnergyMaxErg) * scale * scale
}

// DetectionCountProbability is the Poisson probability of detecting exactly k
// neutrinos given the expected count for (rMpc, enuErg).
func (m *Model) DetectionCountProbability(k int, rMpc, enuErg float64) float64 {
	if k < 0 {
		return 0
	}
	lambda := m.ExpectedNeutrinoCount(rMpc, enuErg)
	if lambda <= 0 {
		if k == 0 {
			return 1
		}
		return 0
	}
	return distuv.Poisson{Lambda: lambda}.Prob(float64(k))
}

// FARBackground is the empirical probability of a sub-threshold pipeline FAR,
// from the narrow log-spaced binning. Zero outside the binned range.
func (m *Model) FARBackground(farHz float64) float64 {
	return m.farBG.Probability(farHz)
}

// FARBackgroundFull is the empirical probability of a FAR under the full
// background catalog, from the two-segment binning. Zero outside the range,
// including the +Inf exhaustion sentinel.
func (m *Model) FARBackgroundFull(farHz float64) float64 {
	return m.farFull.Probability(farHz)
}

// cutOff gates source configurations by their imputed FAR. The background
// ("missed") model must exclude configurations that would have been flagged
// as detections, so configurations at or below the detection threshold are
// gated out and everything above it, the exhaustion sentinel included, passes.
func (m *Model) cutOff(farHz float64) float64 {
	if farHz > m.params.FARThresholdHz {
		return 1
	}
	return 0
}

// JointConditional is the background-normalized conditional density of a GW
// source configuration: uniform temporal density over the observation period
// times the distance, sky and mass priors, gated by the FAR cutoff on the
// matcher-imputed FAR. The catalog-exhaustion sentinel passes the gate, so it
// never reaches arithmetic that could produce NaN.
func (m *Model) JointConditional(gpsTimeSec, distMpc, raDeg, decDeg, m1Msun, m2Msun float64) (float64, error) {
	far, err := m.matcher.Match(farmatch.Query{
		TimeGPS:     gpsTimeSec,
		DistanceMpc: distMpc,
		RADeg:       raDeg,
		DecDeg:      decDeg,
		Mass1Msun:   m1Msun,
		Mass2Msun:   m2Msun,
	})
	if err != nil {
		return 0, err
	}
	temporal := 1 / m.params.ObservationPeriodSec
	return temporal *
		m.DistancePrior(distMpc) *
		astro.UniformSkyDensity(raDeg, decDeg) *
		m.MassPrior(m1Msun, m2Msun) *
		m.cutOff(far), nil
}
