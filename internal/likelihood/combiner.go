// Package likelihood composes the per-dimension probabilities of the
// neutrino and GW channels into the signal and background quantities used to
// rank candidate coincidences.
package likelihood

import (
	"context"
	"encoding/json"
	"math"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"nucoinc/domain/astro"
	"nucoinc/domain/search"
	"nucoinc/internal/farmatch"
	"nucoinc/internal/gw"
	"nucoinc/internal/neutrino"
	"nucoinc/ports"
)

const secondsPerDay = 86400.0

// Terms holds one factor per likelihood dimension. Factors not applicable to
// a hypothesis are left at 1 so Product stays a plain product.
type Terms struct {
	Temporal float64 `json:"temporal"`
	Spatial  float64 `json:"spatial"`
	Energy   float64 `json:"energy"`
	Sky      float64 `json:"sky"`
	Distance float64 `json:"distance"`
	Mass     float64 `json:"mass"`
	FAR      float64 `json:"far"`
}

// Product multiplies the factors into a single density.
func (t Terms) Product() float64 {
	return t.Temporal * t.Spatial * t.Energy * t.Sky * t.Distance * t.Mass * t.FAR
}

// Combiner evaluates one candidate pair at a time. It holds only immutable
// state, so a single Combiner is safe for concurrent batch scoring.
type Combiner struct {
	params  search.Parameters
	nu      *neutrino.Model
	gwm     *gw.Model
	matcher *farmatch.Matcher
	geom    ports.Geometry
}

// NewCombiner wires the two channel models, the matcher and the geometry
// collaborator.
func NewCombiner(params search.Parameters, nu *neutrino.Model, gwm *gw.Model, matcher *farmatch.Matcher, geom ports.Geometry) *Combiner {
	return &Combiner{params: params, nu: nu, gwm: gwm, matcher: matcher, geom: geom}
}

// SignalTerms evaluates the common-source hypothesis for one pair: temporal
// coincidence, spatial overlap, energy spectrum, source declination, and the
// GW distance and mass priors.
func (c *Combiner) SignalTerms(det astro.NeutrinoDetection, hyp astro.GWHypothesis) (Terms, error) {
	gwMJD := c.geom.GPSToMJD(hyp.TimeGPS)
	dtSec := (det.TimeMJD - gwMJD) * secondsPerDay

	return Terms{
		Temporal: c.nu.TemporalSignal(dtSec, 0),
		Spatial:  c.nu.SpatialSignal(det.RADeg, det.DecDeg, det.SigmaDeg, hyp.RADeg, hyp.DecDeg),
		Energy:   c.nu.EnergySpectrumSignal(det.EnergyLog10GeV),
		Sky:      c.nu.EnergySignalProbability(hyp.DecDeg),
		Distance: c.gwm.DistancePrior(hyp.DistanceMpc),
		Mass:     c.gwm.MassPrior(hyp.Mass1Msun, hyp.Mass2Msun),
		FAR:      1,
	}, nil
}

// BackgroundTerms evaluates the unrelated-coincidence hypothesis: the
// neutrino is a uniform draw over the observation period and the sky, its
// energy follows the historical background, and the GW configuration's
// imputed FAR follows the full empirical FAR background. The exhaustion
// sentinel +Inf lands outside the FAR binning and yields 0 there.
func (c *Combiner) BackgroundTerms(det astro.NeutrinoDetection, farHz float64) Terms {
	return Terms{
		Temporal: 1 / c.params.ObservationPeriodSec,
		Spatial:  astro.UniformSkyDensity(det.RADeg, det.DecDeg),
		Energy:   c.nu.EnergyBackground(det.EnergyLog10GeV),
		Sky:      1,
		Distance: 1,
		Mass:     1,
		FAR:      c.gwm.FARBackgroundFull(farHz),
	}
}

// Ratio is the signal-over-background ranking statistic. Degenerate
// denominators never propagate: 0/0 is 0 and s/0 with s > 0 is +Inf, which
// callers may rank but must not feed back into arithmetic.
func (c *Combiner) Ratio(sig, bg Terms) float64 {
	s, b := sig.Product(), bg.Product()
	if b == 0 {
		if s == 0 {
			return 0
		}
		return math.Inf(1)
	}
	r := s / b
	if math.IsNaN(r) {
		return 0
	}
	return r
}

// CandidatePair is one neutrino/GW pairing to score.
type CandidatePair struct {
	Neutrino astro.NeutrinoDetection `json:"neutrino"`
	GW       astro.GWHypothesis      `json:"gw"`
}

// Score is the full per-pair result.
type Score struct {
	ID            string  `json:"id"`
	Signal        Terms   `json:"signal"`
	Background    Terms   `json:"background"`
	Ratio         float64 `json:"ratio"`
	MatchedFARHz  float64 `json:"matched_far_hz"`
	GWConditional float64 `json:"gw_conditional"`
}

// MarshalJSON encodes the two fields that may carry the +Inf sentinel as the
// string "inf", since JSON has no non-finite numbers.
func (s Score) MarshalJSON() ([]byte, error) {
	type alias Score
	return json.Marshal(struct {
		alias
		Ratio        jsonFloat `json:"ratio"`
		MatchedFARHz jsonFloat `json:"matched_far_hz"`
	}{alias: alias(s), Ratio: jsonFloat(s.Ratio), MatchedFARHz: jsonFloat(s.MatchedFARHz)})
}

// jsonFloat marshals non-finite values as strings.
type jsonFloat float64

func (f jsonFloat) MarshalJSON() ([]byte, error) {
	v := float64(f)
	switch {
	case math.IsInf(v, 1):
		return []byte(`"inf"`), nil
	case math.IsInf(v, -1):
		return []byte(`"-inf"`), nil
	case math.IsNaN(v):
		return []byte(`"nan"`), nil
	}
	return json.Marshal(v)
}

// ScorePair evaluates both hypotheses for one candidate pair.
func (c *Combiner) ScorePair(pair CandidatePair) (Score, error) {
	sig, err := c.SignalTerms(pair.Neutrino, pair.GW)
	if err != nil {
		return Score{}, err
	}

	far, err := c.matcher.Match(farmatch.Query{
		TimeGPS:     pair.GW.TimeGPS,
		DistanceMpc: pair.GW.DistanceMpc,
		RADeg:       pair.GW.RADeg,
		DecDeg:      pair.GW.DecDeg,
		Mass1Msun:   pair.GW.Mass1Msun,
		Mass2Msun:   pair.GW.Mass2Msun,
	})
	if err != nil {
		return Score{}, err
	}

	cond, err := c.gwm.JointConditional(pair.GW.TimeGPS, pair.GW.DistanceMpc,
		pair.GW.RADeg, pair.GW.DecDeg, pair.GW.Mass1Msun, pair.GW.Mass2Msun)
	if err != nil {
		return Score{}, err
	}

	bg := c.BackgroundTerms(pair.Neutrino, far)
	return Score{
		ID:            uuid.NewString(),
		Signal:        sig,
		Background:    bg,
		Ratio:         c.Ratio(sig, bg),
		MatchedFARHz:  far,
		GWConditional: cond,
	}, nil
}

// ScoreBatch scores many candidate pairs in parallel. Scoring is
// embarrassingly parallel over pairs; workers bounds the concurrency
// (0 means one goroutine per pair). Results keep the input order.
func (c *Combiner) ScoreBatch(ctx context.Context, pairs []CandidatePair, workers int) ([]Score, error) {
	scores := make([]Score, len(pairs))
	g, ctx := errgroup.WithContext(ctx)
	if workers > 0 {
		g.SetLimit(workers)
	}
	for i, pair := range pairs {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			s, err := c.ScorePair(pair)
			if err != nil {
				return err
			}
			scores[i] = s
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return scores, nil
}
