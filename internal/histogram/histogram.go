// Package histogram turns a sample of scalar observations into a normalized
// empirical probability function over a fixed set of bins.
package histogram

import (
	"math"
	"sort"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat"

	"nucoinc/internal/errors"
)

// Estimator answers "what fraction of the sample falls in the bin containing
// x". Probabilities are normalized against the full sample size, so they sum
// to at most 1 over all bins, and to exactly 1 when the whole sample lies
// inside the binned range.
type Estimator struct {
	edges []float64
	probs []float64
}

// New builds an estimator from a sample and ascending bin edges. Edges may be
// uniform or log-spaced; only monotonicity matters here.
func New(sample, edges []float64) (*Estimator, error) {
	if len(edges) < 2 {
		return nil, errors.BadTable("histogram needs at least 2 bin edges, got %d", len(edges))
	}
	for i := 1; i < len(edges); i++ {
		if edges[i] <= edges[i-1] {
			return nil, errors.BadTable("histogram edges must be strictly ascending at index %d", i)
		}
	}

	// gonum's stat.Histogram requires a sorted sample strictly inside the
	// divider range, so clip first. Values at or beyond the last edge are
	// dropped, consistent with half-open bins.
	inRange := make([]float64, 0, len(sample))
	for _, x := range sample {
		if x >= edges[0] && x < edges[len(edges)-1] {
			inRange = append(inRange, x)
		}
	}
	sort.Float64s(inRange)

	counts := make([]float64, len(edges)-1)
	if len(inRange) > 0 {
		stat.Histogram(counts, edges, inRange, nil)
	}

	probs := make([]float64, len(counts))
	if total := float64(len(sample)); total > 0 {
		for i, c := range counts {
			probs[i] = c / total
		}
	}

	return &Estimator{
		edges: append([]float64(nil), edges...),
		probs: probs,
	}, nil
}

// Probability returns the probability mass of the bin containing x, or 0 when
// x lies outside [edges[0], edges[last]].
func (e *Estimator) Probability(x float64) float64 {
	n := len(e.edges)
	if math.IsNaN(x) || x < e.edges[0] || x > e.edges[n-1] {
		return 0
	}
	// Bins are half-open [edge[i], edge[i+1]): a query equal to an edge
	// belongs to the bin starting there.
	idx := sort.SearchFloat64s(e.edges, x)
	if idx < n && e.edges[idx] == x {
		idx++
	}
	bin := idx - 1
	// A query equal to the last edge lands one past the final bin.
	if bin < 0 || bin >= len(e.probs) {
		return 0
	}
	return e.probs[bin]
}

// TotalMass returns the summed probability over all bins, i.e. the fraction
// of the sample inside the binned range.
func (e *Estimator) TotalMass() float64 {
	var sum float64
	for _, p := range e.probs {
		sum += p
	}
	return sum
}

// NumBins returns the number of bins.
func (e *Estimator) NumBins() int {
	return len(e.probs)
}

// Edges returns a copy of the bin edges.
func (e *Estimator) Edges() []float64 {
	return append([]float64(nil), e.edges...)
}

// LogEdges returns n+1 logarithmically spaced edges covering [lo, hi].
func LogEdges(lo, hi float64, n int) ([]float64, error) {
	if n < 1 {
		return nil, errors.BadTable("log edges need at least 1 bin, got %d", n)
	}
	if lo <= 0 || hi <= lo {
		return nil, errors.BadTable("log edges need 0 < lo < hi, got lo=%g hi=%g", lo, hi)
	}
	logLo, logHi := math.Log10(lo), math.Log10(hi)
	edges := make([]float64, n+1)
	for i := 0; i <= n; i++ {
		edges[i] = math.Pow(10, logLo+(logHi-logLo)*float64(i)/float64(n))
	}
	// Pin the endpoints so range checks compare against the exact bounds.
	edges[0], edges[n] = lo, hi
	return edges, nil
}

// TwoSegmentLogEdges concatenates a fine log-spaced segment over [lo, split]
// with a coarser one over [split, hi], sharing the split edge. Because the
// segments tile the range without gap or overlap, probability normalization
// is preserved across the concatenated edges.
func TwoSegmentLogEdges(lo, split, hi float64, nFine, nCoarse int) ([]float64, error) {
	if !(lo < split && split < hi) {
		return nil, errors.BadTable("two-segment edges need lo < split < hi, got %g, %g, %g", lo, split, hi)
	}
	fine, err := LogEdges(lo, split, nFine)
	if err != nil {
		return nil, err
	}
	coarse, err := LogEdges(split, hi, nCoarse)
	if err != nil {
		return nil, err
	}
	return append(fine, coarse[1:]...), nil
}

// EdgesFromSample derives n log-spaced bins spanning the sample extrema.
// Intended for positive-valued samples such as false-alarm rates.
func EdgesFromSample(sample []float64, n int) ([]float64, error) {
	lo, err := stats.Min(sample)
	if err != nil {
		return nil, errors.Wrap(errors.CodeBadTable, "empty sample for edge derivation", err)
	}
	hi, err := stats.Max(sample)
	if err != nil {
		return nil, errors.Wrap(errors.CodeBadTable, "empty sample for edge derivation", err)
	}
	if hi == lo {
		// Degenerate sample: widen so the single value falls inside a bin.
		hi = lo * 10
	}
	return LogEdges(lo, hi, n)
}
