package spatial

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBounds(t *testing.T) {
	b := NewBounds(Vec3{Y: 15}, Vec3{X: -30, Y: 30, Z: 30})

	require.Equal(t, Vec3{X: 30, Y: 30, Z: 30}, b.Size)
	require.Equal(t, Vec3{X: 15, Y: 15, Z: 15}, b.Extents())
	require.Equal(t, Vec3{X: -15, Y: 0, Z: -15}, b.Min())
	require.Equal(t, Vec3{X: 15, Y: 30, Z: 15}, b.Max())
	require.False(t, b.IsEmpty())
	require.True(t, Bounds{}.IsEmpty())

	require.True(t, b.Contains(Vec3{Y: 15}))
	require.True(t, b.Contains(Vec3{X: 15, Y: 30, Z: -15}))
	require.False(t, b.Contains(Vec3{Y: -1}))

	require.Zero(t, b.SqrDistance(Vec3{X: 1, Y: 1, Z: 1}))
	require.Equal(t, 25.0, b.SqrDistance(Vec3{X: 20, Y: 15}))
}
