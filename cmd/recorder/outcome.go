package main

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/danielpatrickdp/posetrack/go-logger/internal/record"
	"github.com/danielpatrickdp/posetrack/go-logger/internal/stats"
)

// parseSolve reads iterations;errorPos;errorRot;elapsedMillis;reached.
func parseSolve(line string) (stats.Solve, error) {
	tok := record.Tokens(line)
	if len(tok) < 5 {
		return stats.Solve{}, fmt.Errorf("parse outcome: want 5 fields, got %d", len(tok))
	}
	var vals [4]float64
	for i := range vals {
		v, err := strconv.ParseFloat(strings.TrimSpace(tok[i]), 64)
		if err != nil {
			return stats.Solve{}, &record.ParseError{Line: line, Column: i, Err: err}
		}
		vals[i] = v
	}
	reached, err := strconv.ParseBool(strings.TrimSpace(tok[4]))
	if err != nil {
		return stats.Solve{}, &record.ParseError{Line: line, Column: 4, Err: err}
	}
	return stats.Solve{
		Iterations: int(vals[0]),
		ErrorPos:   vals[1],
		ErrorRot:   vals[2],
		Elapsed:    time.Duration(vals[3] * float64(time.Millisecond)),
		Reached:    reached,
	}, nil
}
