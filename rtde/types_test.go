package rtde

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestJointVectorFromSlice(t *testing.T) {
	require := require.New(t)

	t.Run("Exact Dimension", func(t *testing.T) {
		v, err := JointVectorFromSlice([]float64{0, -1.57, 0, -1.57, 0, 0.03})
		require.NoError(err)
		require.Equal(JointVector{0, -1.57, 0, -1.57, 0, 0.03}, v)
	})

	t.Run("Too Short", func(t *testing.T) {
		_, err := JointVectorFromSlice([]float64{1, 2, 3, 4, 5})
		require.ErrorIs(err, ErrJointDimension)
	})

	t.Run("Too Long", func(t *testing.T) {
		_, err := JointVectorFromSlice(make([]float64, 7))
		require.ErrorIs(err, ErrJointDimension)
	})

	t.Run("Nil", func(t *testing.T) {
		_, err := JointVectorFromSlice(nil)
		require.ErrorIs(err, ErrJointDimension)
	})
}

func TestJointVectorOffset(t *testing.T) {
	require := require.New(t)

	base := JointVector{0, -1.57, 0, -1.57, 0, 0}
	shifted := base.Offset(5, 0.03)

	require.InDelta(0.03, shifted[5], 1e-12)
	// value semantics; the receiver is untouched
	require.Equal(0.0, base[5])

	back := shifted.Offset(5, -0.03)
	require.InDelta(0.0, back[5], 1e-12)
}

func TestJointVectorMaxAbs(t *testing.T) {
	require := require.New(t)

	require.Equal(0.0, JointVector{}.MaxAbs())
	require.Equal(1.57, JointVector{0, -1.57, 0, 1.2, 0, 0}.MaxAbs())
	require.Equal(0.0009, JointVector{0.0001, -0.0009, 0, 0, 0, 0}.MaxAbs())
}

func TestJointVectorString(t *testing.T) {
	require := require.New(t)

	v := JointVector{0, -1.57, 0, -1.57, 0, 0.03}
	require.Equal("[0.0000, -1.5700, 0.0000, -1.5700, 0.0000, 0.0300]", v.String())
}

func TestJointVectorDegrees(t *testing.T) {
	require := require.New(t)

	deg := JointVector{0, -3.14159265358979, 0, 0, 0, 0}.Degrees()
	require.InDelta(-180.0, deg[1], 1e-9)
	require.Equal(0.0, deg[0])
}

func TestJointVectorSlice(t *testing.T) {
	require := require.New(t)

	v := JointVector{1, 2, 3, 4, 5, 6}
	s := v.Slice()
	require.Equal([]float64{1, 2, 3, 4, 5, 6}, s)

	// mutating the slice must not touch the vector
	s[0] = 99
	require.Equal(1.0, v[0])
}
