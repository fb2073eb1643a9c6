package likelihood

import (
	"context"
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nucoinc/domain/astro"
	"nucoinc/domain/search"
	"nucoinc/internal/effarea"
	"nucoinc/internal/farmatch"
	"nucoinc/internal/gw"
	"nucoinc/internal/neutrino"
)

// flatGeometry keeps test pairs in a frame where the catalog entries can be
// written down directly: time converts by the plain day ratio and the sky maps
// to a fixed horizontal position.
type flatGeometry struct{}

func (flatGeometry) EquatorialToHorizontal(_, _, _ float64) (float64, float64, error) {
	return 45, 180, nil
}

func (flatGeometry) GPSToMJD(gpsSec float64) float64 { return gpsSec / 86400.0 }

func testCombiner(t *testing.T) *Combiner {
	t.Helper()

	params, err := search.ForPopulation(search.PopulationBNS)
	require.NoError(t, err)

	table, err := effarea.New("test", []astro.EffectiveAreaBin{
		{EnergyMinLog10GeV: 2, EnergyMaxLog10GeV: 2.2, DecMinDeg: -90, DecMaxDeg: 0, AreaCm2: 1},
		{EnergyMinLog10GeV: 2, EnergyMaxLog10GeV: 2.2, DecMinDeg: 0, DecMaxDeg: 90, AreaCm2: 3},
	})
	require.NoError(t, err)

	events := []astro.Event{
		{EnergyLog10GeV: 2.1, DecDeg: 10},
		{EnergyLog10GeV: 2.1, DecDeg: -20},
		{EnergyLog10GeV: 3.5, DecDeg: 40},
	}
	nu, err := neutrino.NewModel(params, table, events)
	require.NoError(t, err)

	catalog := []astro.CatalogEntry{
		{AltDeg: 45, AzDeg: 180, DistanceMpc: 100, Mass1Msun: 1.4, Mass2Msun: 1.4},
	}
	geom := flatGeometry{}
	matcher := farmatch.New(catalog, geom, params.FARThresholdHz)

	gwm, err := gw.NewModel(params,
		[]float64{1e-12, 1e-10},
		[]float64{1e-30, 1e-12, 1e-8, 1e-6},
		matcher)
	require.NoError(t, err)

	return NewCombiner(params, nu, gwm, matcher, geom)
}

func coincidentPair() CandidatePair {
	// GW at GPS 86400*100 s; the neutrino 100 s later at the same sky
	// position, inside the energy table.
	gwGPS := 86400.0 * 100
	return CandidatePair{
		Neutrino: astro.NeutrinoDetection{
			TimeMJD:        gwGPS/86400.0 + 100.0/86400.0,
			RADeg:          180,
			DecDeg:         45,
			EnergyLog10GeV: 2.1,
			SigmaDeg:       0.5,
		},
		GW: astro.GWHypothesis{
			TimeGPS:     gwGPS,
			RADeg:       180,
			DecDeg:      45,
			DistanceMpc: 100,
			Mass1Msun:   1.4,
			Mass2Msun:   1.4,
		},
	}
}

func TestSignalTerms_CoincidentPair(t *testing.T) {
	c := testCombiner(t)
	pair := coincidentPair()

	sig, err := c.SignalTerms(pair.Neutrino, pair.GW)
	require.NoError(t, err)

	assert.InDelta(t, 1.0/500.0, sig.Temporal, 1e-9, "100 s offset is inside the window")
	peak := 1 / (2 * math.Pi * 0.25)
	assert.InDelta(t, peak, sig.Spatial, 1e-9, "zero angular offset hits the Gaussian peak")
	assert.InDelta(t, 0.01/(2.1*2.1), sig.Energy, 1e-12)
	assert.InDelta(t, 0.75, sig.Sky, 1e-12)
	assert.Greater(t, sig.Distance, 0.0)
	assert.Greater(t, sig.Mass, 0.0)
	assert.Equal(t, 1.0, sig.FAR)
	assert.Greater(t, sig.Product(), 0.0)
}

func TestSignalTerms_OutsideWindow(t *testing.T) {
	c := testCombiner(t)
	pair := coincidentPair()
	pair.Neutrino.TimeMJD += 1 // a full day late

	sig, err := c.SignalTerms(pair.Neutrino, pair.GW)
	require.NoError(t, err)
	assert.Zero(t, sig.Temporal)
	assert.Zero(t, sig.Product())
}

func TestBackgroundTerms(t *testing.T) {
	c := testCombiner(t)
	pair := coincidentPair()

	bg := c.BackgroundTerms(pair.Neutrino, 1e-6)
	assert.InDelta(t, 1/3.156e7, bg.Temporal, 1e-15)
	assert.InDelta(t, 1/(4*math.Pi), bg.Spatial, 1e-15)
	assert.InDelta(t, 2.0/3.0, bg.Energy, 1e-12, "two of three events in the energy window")
	assert.Equal(t, 1.0, bg.Sky)
	assert.Equal(t, 1.0, bg.Distance)
	assert.Equal(t, 1.0, bg.Mass)
	assert.Greater(t, bg.FAR, 0.0)

	// The exhaustion sentinel lands outside the FAR binning.
	bgInf := c.BackgroundTerms(pair.Neutrino, math.Inf(1))
	assert.Zero(t, bgInf.FAR)
}

func TestRatio(t *testing.T) {
	c := testCombiner(t)

	unit := Terms{Temporal: 1, Spatial: 1, Energy: 1, Sky: 1, Distance: 1, Mass: 1, FAR: 1}
	half := unit
	half.Energy = 0.5

	assert.Equal(t, 0.5, c.Ratio(half, unit))
	assert.Equal(t, 0.0, c.Ratio(Terms{}, Terms{}), "0/0 collapses to 0")
	assert.True(t, math.IsInf(c.Ratio(unit, Terms{}), 1), "s/0 with s > 0 is +Inf")

	inf := unit
	inf.FAR = math.Inf(1)
	assert.Equal(t, 0.0, c.Ratio(inf, inf), "Inf/Inf NaN collapses to 0")
}

func TestScorePair(t *testing.T) {
	c := testCombiner(t)

	score, err := c.ScorePair(coincidentPair())
	require.NoError(t, err)

	assert.NotEmpty(t, score.ID)
	// The one catalog entry is undetected, so the matcher exhausts.
	assert.True(t, math.IsInf(score.MatchedFARHz, 1))
	// Background FAR term is then 0 while the signal is positive.
	assert.Zero(t, score.Background.FAR)
	assert.Greater(t, score.Signal.Product(), 0.0)
	assert.True(t, math.IsInf(score.Ratio, 1))
	// The sentinel passes the cutoff gate, so the conditional survives.
	assert.Greater(t, score.GWConditional, 0.0)
}

func TestScoreBatch_PreservesOrderAndMatchesScorePair(t *testing.T) {
	c := testCombiner(t)

	pairs := make([]CandidatePair, 8)
	for i := range pairs {
		p := coincidentPair()
		p.Neutrino.TimeMJD += float64(i) * 10.0 / 86400.0
		pairs[i] = p
	}

	scores, err := c.ScoreBatch(context.Background(), pairs, 3)
	require.NoError(t, err)
	require.Len(t, scores, len(pairs))

	ids := make(map[string]bool)
	for i, s := range scores {
		single, err := c.ScorePair(pairs[i])
		require.NoError(t, err)
		assert.Equal(t, single.Signal, s.Signal, "pair %d", i)
		assert.Equal(t, single.Background, s.Background, "pair %d", i)
		assert.Equal(t, single.Ratio, s.Ratio, "pair %d", i)
		assert.False(t, ids[s.ID], "score IDs must be unique")
		ids[s.ID] = true
	}
}

func TestScore_MarshalJSON_Sentinels(t *testing.T) {
	s := Score{ID: "abc", Ratio: math.Inf(1), MatchedFARHz: math.Inf(1), GWConditional: 0.5}

	data, err := json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ratio":"inf"`)
	assert.Contains(t, string(data), `"matched_far_hz":"inf"`)
	assert.Contains(t, string(data), `"gw_conditional":0.5`)

	s.Ratio = 2.5
	s.MatchedFARHz = 1e-9
	data, err = json.Marshal(s)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"ratio":2.5`)
	assert.Contains(t, string(data), `"matched_far_hz":1e-09`)
}

func TestScoreBatch_CancelledContext(t *testing.T) {
	c := testCombiner(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := c.ScoreBatch(ctx, []CandidatePair{coincidentPair()}, 1)
	assert.Error(t, err)
}
