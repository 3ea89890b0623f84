package rtde

import (
	"fmt"
	"math"
	"strings"
)

// JointCount is the number of joints the controller reports and accepts.
// Every joint-space vector on this interface has exactly this many elements.
const JointCount = 6

// Controller mode values reported in telemetry. Diagnostic only; the session
// layer does not gate operations on them.
const (
	// RobotModeRunning indicates the arm is powered, released and executing.
	RobotModeRunning int32 = 7
	// SafetyModeNormal indicates no safety limit is active.
	SafetyModeNormal int32 = 1
)

// JointVector is a fixed-shape joint-space value in radians (or rad/s for
// velocities). It is always passed by value; successive setpoints never alias.
type JointVector [JointCount]float64

// JointVectorFromSlice converts raw telemetry values into a JointVector.
// Any length other than JointCount is malformed telemetry and returns an error
// wrapping ErrJointDimension; values are never truncated or padded.
func JointVectorFromSlice(values []float64) (JointVector, error) {
	var v JointVector
	if len(values) != JointCount {
		return v, fmt.Errorf("%w: got %d elements", ErrJointDimension, len(values))
	}
	copy(v[:], values)

	return v, nil
}

// Slice returns a copy of the vector as a slice.
func (v JointVector) Slice() []float64 {
	out := make([]float64, JointCount)
	copy(out, v[:])

	return out
}

// Offset returns a copy of the vector with joint i shifted by delta.
func (v JointVector) Offset(i int, delta float64) JointVector {
	v[i] += delta
	return v
}

// MaxAbs returns the largest absolute element, e.g. the peak joint speed of a
// velocity vector.
func (v JointVector) MaxAbs() float64 {
	maxAbs := 0.0
	for _, val := range v {
		if abs := math.Abs(val); abs > maxAbs {
			maxAbs = abs
		}
	}

	return maxAbs
}

// Degrees returns the vector converted from radians to degrees.
func (v JointVector) Degrees() JointVector {
	for i := range v {
		v[i] = v[i] * 180.0 / math.Pi
	}

	return v
}

// String renders the vector with four decimals, matching the precision the
// controller log viewer uses.
func (v JointVector) String() string {
	parts := make([]string, JointCount)
	for i, val := range v {
		parts[i] = fmt.Sprintf("%.4f", val)
	}

	return "[" + strings.Join(parts, ", ") + "]"
}

// TelemetrySample is one point-in-time snapshot produced by a synchronization
// cycle. Samples are transient; they may be stale the instant motion resumes
// and must not be cached beyond one decision step.
type TelemetrySample struct {
	// ActualQ is the measured joint position in radians.
	ActualQ JointVector
	// ActualQD is the measured joint velocity in rad/s.
	ActualQD JointVector
	// TargetQ is the position the controller is currently tracking.
	TargetQ JointVector

	RobotMode  int32
	SafetyMode int32
}
