package replay

import (
	"fmt"

	"github.com/danielpatrickdp/posetrack/go-logger/internal/pose"
)

// #region types
// Result is one replayed frame.
type Result struct {
	Index    int
	Frame    pose.Frame
	Complete bool
}

// Summary provides aggregate stats from a replay run.
type Summary struct {
	TotalFrames int
	Complete    int
	Incomplete  int
	Points      int
}

// #endregion types

// #region replay
// Run drives reader the way a simulation loop does: one ReadFrame per step
// with increasing indices starting at from. It stops after the first
// incomplete frame (the stream has rewound by then) or after maxFrames frames
// when maxFrames > 0. Indices advance in frame units, so from and the returned
// Index are line offsets divided by points.
func Run(reader *FrameReader, path string, points, from, maxFrames int) ([]Result, error) {
	if points <= 0 {
		return nil, fmt.Errorf("replay: points must be positive, got %d", points)
	}
	var results []Result
	for i := from; maxFrames <= 0 || len(results) < maxFrames; i++ {
		frame, complete, err := reader.ReadFrame(i*points, points, path)
		if err != nil {
			return results, fmt.Errorf("replay frame %d: %w", i, err)
		}
		results = append(results, Result{Index: i, Frame: frame, Complete: complete})
		if !complete {
			break
		}
	}
	return results, nil
}

// Summarize computes aggregate stats from replay results.
func Summarize(results []Result) Summary {
	s := Summary{TotalFrames: len(results)}
	for _, r := range results {
		if r.Complete {
			s.Complete++
		} else {
			s.Incomplete++
		}
		if len(r.Frame) > s.Points {
			s.Points = len(r.Frame)
		}
	}
	return s
}

// #endregion replay
