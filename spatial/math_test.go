package spatial

import (
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

const testEpsilon = 1e-9

func TestEuler(t *testing.T) {
	t.Run("yaw turns forward to the right", func(t *testing.T) {
		v := Rotate(Euler(0, 90, 0), Forward)
		require.True(t, VecEqualWithEpsilon(v, Right, testEpsilon), "%v", v)
	})

	t.Run("pitch turns forward down", func(t *testing.T) {
		v := Rotate(Euler(90, 0, 0), Forward)
		require.True(t, VecEqualWithEpsilon(v, Vec3{Y: -1}, testEpsilon), "%v", v)
	})

	t.Run("roll is applied before pitch and yaw", func(t *testing.T) {
		q := Euler(30, 45, 60)
		expected := Rotate(Euler(0, 45, 0), Rotate(Euler(30, 0, 0), Rotate(Euler(0, 0, 60), Right)))
		require.True(t, VecEqualWithEpsilon(Rotate(q, Right), expected, testEpsilon))
	})

	t.Run("zero angles are the identity", func(t *testing.T) {
		require.True(t, QuatEqualWithEpsilon(Euler(0, 0, 0), Identity, testEpsilon))
	})
}

func TestCombine(t *testing.T) {
	a := Euler(0, 90, 0)
	b := Euler(90, 0, 0)

	v := Vec3{X: 1, Y: 2, Z: 3}
	require.True(t, VecEqualWithEpsilon(Rotate(Combine(a, b), v), Rotate(a, Rotate(b, v)), testEpsilon))
}

func TestInverse(t *testing.T) {
	q := Euler(12, 250, -33)
	v := Vec3{X: -4, Y: 0.5, Z: 17}

	require.True(t, VecEqualWithEpsilon(InverseRotate(q, Rotate(q, v)), v, testEpsilon))
	require.True(t, QuatEqualWithEpsilon(Combine(q, Inverse(q)), Identity, testEpsilon))
}

func TestNormalize(t *testing.T) {
	require.Equal(t, Identity, Normalize(Quat{}))

	q := Normalize(Quat{Real: 2, Jmag: 2})
	require.True(t, EqualWithEpsilon(q.Real, math.Sqrt2/2, testEpsilon))
	require.True(t, EqualWithEpsilon(q.Jmag, math.Sqrt2/2, testEpsilon))

	// The zero quaternion rotates like the identity.
	v := Vec3{X: 1, Y: 2, Z: 3}
	require.Equal(t, v, Rotate(Quat{}, v))
}

func TestQuatEqualWithEpsilon(t *testing.T) {
	q := Euler(10, 20, 30)
	negated := Quat{Real: -q.Real, Imag: -q.Imag, Jmag: -q.Jmag, Kmag: -q.Kmag}

	require.True(t, QuatEqualWithEpsilon(q, negated, testEpsilon))
	require.False(t, QuatEqualWithEpsilon(q, Identity, testEpsilon))
}

func TestVectorHelpers(t *testing.T) {
	a := Vec3{X: 1, Y: 2, Z: 2}
	b := Vec3{X: -1, Y: 2, Z: 2}

	require.Equal(t, 3.0, Length(a))
	require.Equal(t, 9.0, SqrLength(a))
	require.Equal(t, 2.0, Distance(a, b))
	require.Equal(t, 4.0, SqrDistance(a, b))
	require.Equal(t, Vec3{X: 1, Y: 2, Z: 2}, Abs(b))
	require.Equal(t, Vec3{X: 2, Y: 4, Z: 4}, Mul(a, 2))
	require.Equal(t, 1.0, Clamp(4, -1, 1))
	require.Equal(t, -1.0, Clamp(-4, -1, 1))
	require.Equal(t, 0.5, Clamp(0.5, -1, 1))
}
