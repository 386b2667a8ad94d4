package stats

import (
	"time"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/danielpatrickdp/posetrack/go-logger/internal/eval"
)

// #region solve
// Solve is the outcome of one IK solver invocation for one end-effector.
type Solve struct {
	Iterations int
	ErrorPos   float64
	ErrorRot   float64
	Elapsed    time.Duration
	Reached    bool
}

// #endregion solve

// #region holder
// Holder accumulates solver outcomes between evaluation snapshots. It
// implements eval.StatsSource.
type Holder struct {
	iterations    []float64
	errorPos      []float64
	errorRot      []float64
	millis        []float64
	millisPerIter []float64
	reached       int
}

// NewHolder returns an empty holder.
func NewHolder() *Holder {
	return &Holder{}
}

// Observe records one solver outcome.
func (h *Holder) Observe(s Solve) {
	ms := float64(s.Elapsed) / float64(time.Millisecond)
	iters := s.Iterations
	if iters < 1 {
		iters = 1
	}
	h.iterations = append(h.iterations, float64(s.Iterations))
	h.errorPos = append(h.errorPos, s.ErrorPos)
	h.errorRot = append(h.errorRot, s.ErrorRot)
	h.millis = append(h.millis, ms)
	h.millisPerIter = append(h.millisPerIter, ms/float64(iters))
	if s.Reached {
		h.reached++
	}
}

// Len returns the number of outcomes observed since the last Reset.
func (h *Holder) Len() int { return len(h.iterations) }

// Snapshot reduces the observed outcomes to mean, min and max. Times are in
// milliseconds. An empty holder yields the zero record.
func (h *Holder) Snapshot() eval.MetricsRecord {
	n := len(h.iterations)
	if n == 0 {
		return eval.MetricsRecord{}
	}
	series := [][]float64{h.iterations, h.errorPos, h.errorRot, h.millis, h.millisPerIter}
	var avg, lo, hi [5]float64
	for i, s := range series {
		avg[i] = stat.Mean(s, nil)
		lo[i] = floats.Min(s)
		hi[i] = floats.Max(s)
	}
	return eval.MetricsRecord{
		Avg:     aggregate(avg),
		Min:     aggregate(lo),
		Max:     aggregate(hi),
		Reached: 100 * float64(h.reached) / float64(n),
	}
}

// Reset clears everything observed so far.
func (h *Holder) Reset() {
	h.iterations = h.iterations[:0]
	h.errorPos = h.errorPos[:0]
	h.errorRot = h.errorRot[:0]
	h.millis = h.millis[:0]
	h.millisPerIter = h.millisPerIter[:0]
	h.reached = 0
}

func aggregate(v [5]float64) eval.Aggregate {
	return eval.Aggregate{
		Iterations:       v[0],
		ErrorPos:         v[1],
		ErrorRot:         v[2],
		Time:             v[3],
		TimePerIteration: v[4],
	}
}

// #endregion holder
