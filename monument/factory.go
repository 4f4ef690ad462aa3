package monument

import (
	"strconv"
	"strings"

	"github.com/aukilabs/go-tooling/pkg/errors"
	"github.com/aukilabs/monumentfinder/catalog"
	"github.com/aukilabs/monumentfinder/models"
	"github.com/aukilabs/monumentfinder/resolver"
	"github.com/aukilabs/monumentfinder/spatial"
)

const customMarkerPrefab = "monument_marker.prefab"

// Factory builds adapters from raw world objects.
type Factory struct {
	Resolver *resolver.Resolver

	ids models.SequentialIDGenerator
}

// NewMonument builds the adapter of a hand placed monument or of a custom
// monument marker.
func (f *Factory) NewMonument(m models.MonumentMarker) *Adapter {
	prefabName := m.PrefabName
	shortName := ShortName(m.PrefabName)
	custom := IsCustomMonument(m.PrefabName)

	// Markers of a custom monument collapse to the object holding them.
	if custom && m.RootName != "" {
		prefabName = m.RootName
		shortName = m.RootName
	}

	res := f.resolver().Resolve(resolver.Input{
		Keys:      []string{shortName},
		ShortName: shortName,
		Position:  m.Position.Vec(),
		Rotation:  m.Rotation.Quat(),
		Scale:     m.Scale.Vec(),
		Bounds:    m.Bounds.Bounds(),
		Custom:    custom,
	})

	return &Adapter{
		ID:             f.newID(KindMonument),
		Kind:           KindMonument,
		Custom:         custom,
		PrefabName:     prefabName,
		ShortName:      shortName,
		TypeLabel:      m.Type,
		Position:       res.Position,
		PositionSource: res.PositionSource,
		Rotation:       res.Rotation,
		RotationSource: res.RotationSource,
		Bounds:         res.Bounds,
		BoundsSource:   res.BoundsSource,
		shape:          Single(spatial.NewOrientedBox(res.Position, res.Rotation, res.Bounds)),
	}
}

// NewTrainTunnel builds the adapter of a procedural tunnel piece. The
// rotation and the alias of the piece come from the tunnel catalog. An error
// of type catalog.ErrTypeTunnelNotRecognized is returned for unknown pieces.
func (f *Factory) NewTrainTunnel(c models.GridCell) (*Adapter, error) {
	shortName := ShortName(c.PrefabName)

	def, err := catalog.LookupTunnel(shortName)
	if err != nil {
		return nil, errors.New("creating train tunnel failed").
			WithType(errors.Type(err)).
			WithTag("prefab", c.PrefabName).
			Wrap(err)
	}

	res := f.resolver().Resolve(resolver.Input{
		Keys:     []string{def.Alias, shortName},
		Position: c.Position.Vec(),
		Rotation: def.Rotation,
		Bounds:   def.Bounds,
	})

	return &Adapter{
		ID:             f.newID(KindTrainTunnel),
		Kind:           KindTrainTunnel,
		PrefabName:     c.PrefabName,
		ShortName:      shortName,
		Alias:          def.Alias,
		Position:       res.Position,
		PositionSource: res.PositionSource,
		Rotation:       res.Rotation,
		RotationSource: res.RotationSource,
		Bounds:         res.Bounds,
		BoundsSource:   res.BoundsSource,
		shape:          Single(spatial.NewOrientedBox(res.Position, res.Rotation, res.Bounds)),
	}, nil
}

// NewLabModule builds the adapter of an underwater lab module, with one box
// per volume attached to the link.
func (f *Factory) NewLabModule(l models.BaseLink) *Adapter {
	boxes := make([]spatial.OrientedBox, len(l.Volumes))
	for i, v := range l.Volumes {
		boxes[i] = spatial.NewOrientedBox(v.Position.Vec(), v.Rotation.Quat(), v.Bounds.Bounds())
	}

	return &Adapter{
		ID:             f.newID(KindLabModule),
		Kind:           KindLabModule,
		PrefabName:     l.PrefabName,
		ShortName:      ShortName(l.PrefabName),
		Position:       l.Position.Vec(),
		PositionSource: resolver.TransformSourceEngine,
		Rotation:       l.Rotation.Quat(),
		RotationSource: resolver.TransformSourceEngine,
		shape:          Multi(boxes...),
	}
}

func (f *Factory) resolver() *resolver.Resolver {
	if f.Resolver == nil {
		return &resolver.Resolver{}
	}
	return f.Resolver
}

func (f *Factory) newID(kind Kind) string {
	return string(kind) + "-" + strconv.FormatUint(uint64(f.ids.New()), 10)
}

// ShortName returns the prefab name without its path and its .prefab
// extension.
func ShortName(prefabName string) string {
	if i := strings.LastIndex(prefabName, "/"); i != -1 {
		prefabName = prefabName[i+1:]
	}
	return strings.ReplaceAll(prefabName, ".prefab", "")
}

// IsCustomMonument reports whether the prefab is a custom monument marker.
func IsCustomMonument(prefabName string) bool {
	return strings.Contains(prefabName, customMarkerPrefab)
}
