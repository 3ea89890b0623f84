package motion

import (
	"fmt"
	"math"

	"github.com/motionlink/go-rtde/rtde"
)

// Violation reports the first joint whose movement exceeds the envelope bound.
type Violation struct {
	// Joint is the zero-based index of the offending joint.
	Joint int
	// Delta is the measured |target - reference| for that joint, in radians.
	Delta float64
	// Limit is the bound the delta exceeded.
	Limit float64
}

func (v *Violation) Error() string {
	return fmt.Sprintf("joint %d movement too large: %.4f rad (max %.4f)",
		v.Joint, v.Delta, v.Limit)
}

// Validate checks that target is within maxDelta of reference on every joint.
//
// It is pure and stateless, callable without a live session. Both vectors must
// have exactly rtde.JointCount elements; any other length is a dimension error,
// never a silent truncation. On a bound breach it returns a *Violation for the
// first offending joint.
//
// Validation is always performed against the immediately preceding commanded or
// reached position, not the original start position, so that chained movements
// are each individually bounded.
func Validate(reference, target []float64, maxDelta float64) error {
	if len(reference) != rtde.JointCount || len(target) != rtde.JointCount {
		return fmt.Errorf("%w: reference has %d, target has %d",
			rtde.ErrJointDimension, len(reference), len(target))
	}

	for i := range reference {
		delta := math.Abs(target[i] - reference[i])
		if delta > maxDelta {
			return &Violation{Joint: i, Delta: delta, Limit: maxDelta}
		}
	}

	return nil
}
