package session

import (
	"fmt"
	"path/filepath"
	"time"

	"github.com/danielpatrickdp/posetrack/go-logger/internal/config"
)

// #region paths
// Paths names every file written by one session. All four share the same
// timestamp so a run's files sort together.
type Paths struct {
	Pose             string
	InitialTransform string
	EvaluationData   string
	EvaluationConfig string
}

// NewPaths builds <dir>/<prefix>_<unix>.<ext> for each stream.
func NewPaths(dir string, files config.FileConfig, t time.Time) Paths {
	stamp := t.Unix()
	name := func(prefix string) string {
		return filepath.Join(dir, fmt.Sprintf("%s_%d.%s", prefix, stamp, files.Extension))
	}
	return Paths{
		Pose:             name(files.PosePrefix),
		InitialTransform: name(files.InitialTransformPrefix),
		EvaluationData:   name(files.EvaluationDataPrefix),
		EvaluationConfig: name(files.EvaluationConfigPrefix),
	}
}

// #endregion paths
