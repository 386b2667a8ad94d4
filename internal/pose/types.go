package pose

import (
	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// FieldCount is the number of scalar columns in one serialized sample.
const FieldCount = 7

// #region sample
// Sample is one tracked point's 6-DoF state at one time step.
// Orientation is stored as-is; this layer does not normalize it.
type Sample struct {
	Position    r3.Vec
	Orientation quat.Number
}

// Neutral returns the default-fill sample: zero position, identity orientation.
func Neutral() Sample {
	return Sample{Orientation: quat.Number{Real: 1}}
}

// Fields returns the sample in column order: px, py, pz, qx, qy, qz, qw.
func (s Sample) Fields() [FieldCount]float64 {
	return [FieldCount]float64{
		s.Position.X, s.Position.Y, s.Position.Z,
		s.Orientation.Imag, s.Orientation.Jmag, s.Orientation.Kmag, s.Orientation.Real,
	}
}

// Set assigns column i. Columns past the last orientation component are ignored.
func (s *Sample) Set(i int, v float64) {
	switch i {
	case 0:
		s.Position.X = v
	case 1:
		s.Position.Y = v
	case 2:
		s.Position.Z = v
	case 3:
		s.Orientation.Imag = v
	case 4:
		s.Orientation.Jmag = v
	case 5:
		s.Orientation.Kmag = v
	case 6:
		s.Orientation.Real = v
	}
}

// #endregion sample

// #region frame
// Frame holds one sample per tracked point. Index is the point identity.
type Frame []Sample

// NewFrame returns a frame of k neutral samples.
func NewFrame(k int) Frame {
	f := make(Frame, k)
	for i := range f {
		f[i] = Neutral()
	}
	return f
}

// #endregion frame
