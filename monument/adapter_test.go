package monument

import (
	"math"
	"testing"

	"github.com/aukilabs/monumentfinder/models"
	"github.com/aukilabs/monumentfinder/spatial"
	"github.com/segmentio/encoding/json"
	"github.com/stretchr/testify/require"
)

func box(x, y, z, half float64) spatial.OrientedBox {
	return spatial.NewOrientedBox(
		spatial.Vec3{X: x, Y: y, Z: z},
		spatial.Identity,
		spatial.NewBounds(spatial.Zero, spatial.Vec3{X: half * 2, Y: half * 2, Z: half * 2}),
	)
}

func TestShape(t *testing.T) {
	t.Run("single box", func(t *testing.T) {
		s := Single(box(0, 0, 0, 1))
		require.Equal(t, SingleBox, s.Kind())
		require.True(t, s.Contains(spatial.Vec3{X: 0.5}))
		require.Equal(t, spatial.Vec3{X: 1}, s.ClosestPoint(spatial.Vec3{X: 3}))
		require.False(t, s.IsDegenerate())
	})

	t.Run("multi box picks the closest box", func(t *testing.T) {
		s := Multi(box(0, 0, 0, 1), box(10, 0, 0, 1))
		require.Equal(t, MultiBox, s.Kind())
		require.Len(t, s.Boxes(), 2)

		require.True(t, s.Contains(spatial.Vec3{X: 10.5}))
		require.False(t, s.Contains(spatial.Vec3{X: 5}))
		require.Equal(t, spatial.Vec3{X: 9}, s.ClosestPoint(spatial.Vec3{X: 6}))
		require.Equal(t, spatial.Vec3{X: 1}, s.ClosestPoint(spatial.Vec3{X: 4}))
	})

	t.Run("empty multi box", func(t *testing.T) {
		s := Multi()
		require.False(t, s.Contains(spatial.Zero))
		require.True(t, math.IsInf(s.ClosestPoint(spatial.Zero).X, 1))
		require.True(t, s.IsDegenerate())
	})

	t.Run("boxes are copied", func(t *testing.T) {
		boxes := []spatial.OrientedBox{box(0, 0, 0, 1)}
		s := Multi(boxes...)
		boxes[0] = box(100, 0, 0, 1)

		s.Boxes()[0] = box(200, 0, 0, 1)
		require.Equal(t, spatial.Zero, s.Boxes()[0].Center)
	})
}

func TestAdapterTransform(t *testing.T) {
	a := &Adapter{
		Position: spatial.Vec3{X: 10, Y: 0, Z: 10},
		Rotation: spatial.Euler(0, 90, 0),
	}

	world := a.TransformPoint(spatial.Vec3{Z: 5})
	require.True(t, spatial.VecEqualWithEpsilon(spatial.Vec3{X: 15, Z: 10}, world, 1e-9), "%v", world)

	local := a.InverseTransformPoint(world)
	require.True(t, spatial.VecEqualWithEpsilon(spatial.Vec3{Z: 5}, local, 1e-9), "%v", local)
}

func TestAdapterBounds(t *testing.T) {
	a := &Adapter{shape: Single(box(0, 0, 0, 1))}
	require.True(t, a.HasBounds())
	require.True(t, a.IsInBounds(spatial.Zero))
	require.Equal(t, spatial.Vec3{X: 1}, a.ClosestPointOnBounds(spatial.Vec3{X: 2}))

	degenerate := &Adapter{shape: Single(spatial.NewOrientedBox(spatial.Vec3{X: 3}, spatial.Identity, spatial.Bounds{}))}
	require.False(t, degenerate.HasBounds())
	require.False(t, degenerate.IsInBounds(spatial.Vec3{X: 3.5}))
	require.Equal(t, spatial.Vec3{X: 3}, degenerate.ClosestPointOnBounds(spatial.Vec3{X: 50}))
}

func TestAdapterMatchesFilter(t *testing.T) {
	lighthouse := &Adapter{
		Kind:       KindMonument,
		PrefabName: "assets/bundled/prefabs/autospawn/monument/lighthouse/lighthouse.prefab",
		ShortName:  "lighthouse",
		TypeLabel:  "Lighthouse",
	}
	cave := &Adapter{
		Kind:       KindMonument,
		PrefabName: "assets/bundled/prefabs/autospawn/monument/cave/cave_small_easy.prefab",
		ShortName:  "cave_small_easy",
		TypeLabel:  "Cave",
	}
	tunnel := &Adapter{
		Kind:       KindTrainTunnel,
		PrefabName: "assets/bundled/prefabs/autospawn/tunnel/intersection-n.prefab",
		ShortName:  "intersection-n",
		Alias:      "Intersection",
		TypeLabel:  "ignored",
	}

	str := func(s string) *string { return &s }

	tests := []struct {
		name     string
		filter   Filter
		expected []*Adapter
	}{
		{
			name:     "empty filter matches everything",
			expected: []*Adapter{lighthouse, cave, tunnel},
		},
		{
			name:     "substring of the prefab name",
			filter:   Filter{Text: "MONUMENT/"},
			expected: []*Adapter{lighthouse, cave},
		},
		{
			name:     "monument type label",
			filter:   Filter{Text: "cav"},
			expected: []*Adapter{cave},
		},
		{
			name:     "type label is only used by monuments",
			filter:   Filter{Text: "ignored"},
			expected: nil,
		},
		{
			name:     "exact short name",
			filter:   Filter{ShortName: str("LightHouse"), Text: "cave"},
			expected: []*Adapter{lighthouse},
		},
		{
			name:     "short name is not a substring match",
			filter:   Filter{ShortName: str("light")},
			expected: nil,
		},
		{
			name:     "exact alias",
			filter:   Filter{Alias: str("intersection"), ShortName: str("lighthouse")},
			expected: []*Adapter{tunnel},
		},
		{
			name:     "unknown alias",
			filter:   Filter{Alias: str("TrainStation")},
			expected: nil,
		},
		{
			name:     "empty alias never matches regions without alias",
			filter:   Filter{Alias: str("")},
			expected: nil,
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			var matches []*Adapter
			for _, a := range []*Adapter{lighthouse, cave, tunnel} {
				if a.MatchesFilter(test.filter) {
					matches = append(matches, a)
				}
			}
			require.Equal(t, test.expected, matches)
		})
	}
}

func TestAdapterView(t *testing.T) {
	a := &Adapter{
		ID:         "train_tunnel-1",
		Kind:       KindTrainTunnel,
		PrefabName: "assets/bundled/prefabs/autospawn/tunnel/intersection.prefab",
		ShortName:  "intersection",
		Alias:      "LargeIntersection",
		Position:   spatial.Vec3{X: 1, Y: 2, Z: 3},
		Rotation:   spatial.Identity,
		shape:      Single(box(1, 2, 3, 4)),
	}

	b, err := json.Marshal(a.View())
	require.NoError(t, err)

	var v map[string]any
	require.NoError(t, json.Unmarshal(b, &v))
	require.Equal(t, "train_tunnel-1", v["id"])
	require.Equal(t, "LargeIntersection", v["alias"])
	require.Equal(t, "single_box", v["shape"])
	require.Len(t, v["boxes"], 1)

	corners := a.View().Boxes[0].Corners
	require.Len(t, corners, 8)
	require.Equal(t, models.Vector3{X: -3, Y: -2, Z: -1}, corners[0])
	require.Equal(t, models.Vector3{X: 5, Y: 6, Z: 7}, corners[7])

	a.Alias = ""
	b, err = json.Marshal(a.View())
	require.NoError(t, err)
	require.Contains(t, string(b), `"alias":null`)
}
