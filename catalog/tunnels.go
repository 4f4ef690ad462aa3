package catalog

import (
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/monumentfinder/spatial"
)

const (
	ErrTypeTunnelNotRecognized = "tunnel_not_recognized"
)

// Tunnel aliases. Rotational variants of the same piece share an alias.
const (
	AliasTrainStation      = "TrainStation"
	AliasBarricadeTunnel   = "BarricadeTunnel"
	AliasLootTunnel        = "LootTunnel"
	AliasSplitTunnel       = "SplitTunnel"
	AliasIntersection      = "Intersection"
	AliasLargeIntersection = "LargeIntersection"
	AliasCornerTunnel      = "CornerTunnel"
)

// TunnelDefinition describes the canonical geometry of a procedural tunnel
// piece.
type TunnelDefinition struct {
	Rotation spatial.Quat
	Bounds   spatial.Bounds
	Alias    string
}

type tunnelShape struct {
	alias  string
	bounds spatial.Bounds
}

var (
	trainStation = tunnelShape{
		alias:  AliasTrainStation,
		bounds: bounds(0, 8.75, 0, 108, 18, 216),
	}

	// Straight tunnels that contain barricades, loot and tunnel dwellers.
	barricadeTunnel = tunnelShape{
		alias:  AliasBarricadeTunnel,
		bounds: bounds(0, 4.25, 0, 45, 9, 216),
	}

	lootTunnel = tunnelShape{
		alias:  AliasLootTunnel,
		bounds: bounds(0, 4.25, 0, 16.5, 9, 216),
	}

	// Straight tunnels with a divider in the tracks.
	splitTunnel = tunnelShape{
		alias:  AliasSplitTunnel,
		bounds: bounds(0, 4.25, 0, 16.5, 9, 216),
	}

	// 3-way.
	intersection = tunnelShape{
		alias:  AliasIntersection,
		bounds: bounds(0, 4.25, 49.875, 216, 9, 116.25),
	}

	// 4-way.
	largeIntersection = tunnelShape{
		alias:  AliasLargeIntersection,
		bounds: bounds(0, 4.25, 0, 216, 9, 216),
	}

	cornerTunnel = tunnelShape{
		alias:  AliasCornerTunnel,
		bounds: bounds(-49.875, 4.25, 49.875, 116.25, 9, 116.25),
	}
)

var tunnels = map[string]TunnelDefinition{
	"station-sn-0": trainStation.rotated(180),
	"station-sn-1": trainStation.rotated(0),
	"station-sn-2": trainStation.rotated(180),
	"station-sn-3": trainStation.rotated(0),
	"station-we-0": trainStation.rotated(90),
	"station-we-1": trainStation.rotated(270),
	"station-we-2": trainStation.rotated(90),
	"station-we-3": trainStation.rotated(270),

	"straight-sn-4": barricadeTunnel.rotated(180),
	"straight-sn-5": barricadeTunnel.rotated(0),
	"straight-we-4": barricadeTunnel.rotated(90),
	"straight-we-5": barricadeTunnel.rotated(270),

	"straight-sn-0": lootTunnel.rotated(180),
	"straight-sn-1": lootTunnel.rotated(0),
	"straight-we-0": lootTunnel.rotated(90),
	"straight-we-1": lootTunnel.rotated(270),

	"straight-we-2": splitTunnel.rotated(90),
	"straight-we-3": splitTunnel.rotated(270),
	"straight-sn-2": splitTunnel.rotated(180),
	"straight-sn-3": splitTunnel.rotated(0),

	"intersection-n": intersection.rotated(0),
	"intersection-e": intersection.rotated(90),
	"intersection-s": intersection.rotated(180),
	"intersection-w": intersection.rotated(270),

	"intersection": largeIntersection.rotated(0),

	"curve-ne-0": cornerTunnel.rotated(90),
	"curve-ne-1": cornerTunnel.rotated(90),
	"curve-nw-0": cornerTunnel.rotated(0),
	"curve-nw-1": cornerTunnel.rotated(0),
	"curve-se-0": cornerTunnel.rotated(180),
	"curve-se-1": cornerTunnel.rotated(180),
	"curve-sw-0": cornerTunnel.rotated(270),
	"curve-sw-1": cornerTunnel.rotated(270),
}

// Decorative cells that are not regions of their own.
var ignoredTunnelPrefabs = map[string]struct{}{
	"assets/bundled/prefabs/autospawn/tunnel-transition/transition-sn-0.prefab": {},
	"assets/bundled/prefabs/autospawn/tunnel-transition/transition-sn-1.prefab": {},
	"assets/bundled/prefabs/autospawn/tunnel-transition/transition-we-0.prefab": {},
	"assets/bundled/prefabs/autospawn/tunnel-transition/transition-we-1.prefab": {},
}

// LookupTunnel returns the definition of the tunnel piece with the given
// short name. An error of type ErrTypeTunnelNotRecognized is returned for
// unknown pieces.
func LookupTunnel(shortName string) (TunnelDefinition, error) {
	def, ok := tunnels[shortName]
	if !ok {
		return TunnelDefinition{}, errors.New("tunnel type not recognized").
			WithType(ErrTypeTunnelNotRecognized).
			WithTag("short_name", shortName)
	}
	return def, nil
}

// IsIgnoredTunnelPrefab reports whether the grid cell prefab is purely
// decorative and must not produce a region.
func IsIgnoredTunnelPrefab(prefabName string) bool {
	_, ok := ignoredTunnelPrefabs[strings.ToLower(prefabName)]
	return ok
}

func (s tunnelShape) rotated(yaw float64) TunnelDefinition {
	return TunnelDefinition{
		Rotation: spatial.Euler(0, yaw, 0),
		Bounds:   s.bounds,
		Alias:    s.alias,
	}
}

func bounds(cx, cy, cz, sx, sy, sz float64) spatial.Bounds {
	return spatial.NewBounds(
		spatial.Vec3{X: cx, Y: cy, Z: cz},
		spatial.Vec3{X: sx, Y: sy, Z: sz},
	)
}
