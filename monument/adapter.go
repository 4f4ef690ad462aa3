// Package monument provides a uniform view over the different kinds of
// regions of a world: monuments, train tunnel pieces and underwater lab
// modules.
package monument

import (
	"math"
	"strings"

	"github.com/aukilabs/monumentfinder/models"
	"github.com/aukilabs/monumentfinder/resolver"
	"github.com/aukilabs/monumentfinder/spatial"
)

// Kind is the category of a region.
type Kind string

const (
	KindMonument    Kind = "monument"
	KindTrainTunnel Kind = "train_tunnel"
	KindLabModule   Kind = "lab_module"
)

// ShapeKind tells whether a shape is made of one box or of several disjoint
// boxes.
type ShapeKind int

const (
	SingleBox ShapeKind = iota
	MultiBox
)

func (k ShapeKind) String() string {
	switch k {
	case SingleBox:
		return "single_box"
	case MultiBox:
		return "multi_box"
	default:
		return "unknown"
	}
}

// Shape is the volume covered by a region.
type Shape struct {
	kind  ShapeKind
	boxes []spatial.OrientedBox
}

func Single(box spatial.OrientedBox) Shape {
	return Shape{
		kind:  SingleBox,
		boxes: []spatial.OrientedBox{box},
	}
}

func Multi(boxes ...spatial.OrientedBox) Shape {
	return Shape{
		kind:  MultiBox,
		boxes: append([]spatial.OrientedBox(nil), boxes...),
	}
}

func (s Shape) Kind() ShapeKind {
	return s.kind
}

// Boxes returns a copy of the boxes of the shape.
func (s Shape) Boxes() []spatial.OrientedBox {
	return append([]spatial.OrientedBox(nil), s.boxes...)
}

func (s Shape) Contains(p spatial.Vec3) bool {
	for _, b := range s.boxes {
		if b.Contains(p) {
			return true
		}
	}
	return false
}

// ClosestPoint returns the point of the shape closest to p. A shape without
// boxes returns a point at infinity.
func (s Shape) ClosestPoint(p spatial.Vec3) spatial.Vec3 {
	closest := spatial.Vec3{X: math.Inf(1), Y: math.Inf(1), Z: math.Inf(1)}
	closestSqrDist := math.Inf(1)

	for _, b := range s.boxes {
		c := b.ClosestPoint(p)
		if d := spatial.SqrDistance(p, c); d < closestSqrDist {
			closest = c
			closestSqrDist = d
		}
	}
	return closest
}

// IsDegenerate reports whether the shape has no meaningful volume.
func (s Shape) IsDegenerate() bool {
	for _, b := range s.boxes {
		if !b.IsDegenerate() {
			return false
		}
	}
	return true
}

// Adapter wraps a region of the world. Adapters are immutable once built.
type Adapter struct {
	ID   string
	Kind Kind

	// Custom monuments are placed by map makers with monument markers.
	Custom bool

	PrefabName string
	ShortName  string

	// Shared by the regions that only differ by their rotation. Empty when
	// the region has no alias.
	Alias string

	// The monument category, such as Cave. Only set for monuments.
	TypeLabel string

	Position       spatial.Vec3
	PositionSource resolver.TransformSource
	Rotation       spatial.Quat
	RotationSource resolver.TransformSource

	// Local bounds of single box regions, after configuration overrides.
	Bounds       spatial.Bounds
	BoundsSource resolver.BoundsSource

	shape Shape
}

func (a *Adapter) Shape() Shape {
	return a.shape
}

func (a *Adapter) Boxes() []spatial.OrientedBox {
	return a.shape.Boxes()
}

// TransformPoint converts a point from the region local space to world
// space.
func (a *Adapter) TransformPoint(local spatial.Vec3) spatial.Vec3 {
	return spatial.Add(a.Position, spatial.Rotate(a.Rotation, local))
}

// InverseTransformPoint converts a world point to the region local space.
func (a *Adapter) InverseTransformPoint(world spatial.Vec3) spatial.Vec3 {
	return spatial.InverseRotate(a.Rotation, spatial.Sub(world, a.Position))
}

func (a *Adapter) ClosestPointOnBounds(p spatial.Vec3) spatial.Vec3 {
	return a.shape.ClosestPoint(p)
}

func (a *Adapter) IsInBounds(p spatial.Vec3) bool {
	return a.shape.Contains(p)
}

// HasBounds reports whether the region covers any volume. Regions without
// bounds are typically not drawn.
func (a *Adapter) HasBounds() bool {
	return !a.shape.IsDegenerate()
}

// Filter selects regions. Alias has priority over ShortName, which has
// priority over Text. A zero filter matches every region.
type Filter struct {
	// Case insensitive substring of the prefab name or, for monuments, of
	// the type label.
	Text string

	// Case insensitive exact short name.
	ShortName *string

	// Case insensitive exact alias.
	Alias *string
}

func (a *Adapter) MatchesFilter(f Filter) bool {
	if f.Alias != nil {
		return a.Alias != "" && strings.EqualFold(a.Alias, *f.Alias)
	}

	if f.ShortName != nil {
		return strings.EqualFold(a.ShortName, *f.ShortName)
	}

	if f.Text == "" {
		return true
	}

	text := strings.ToLower(f.Text)
	if strings.Contains(strings.ToLower(a.PrefabName), text) {
		return true
	}
	return a.Kind == KindMonument && strings.Contains(strings.ToLower(a.TypeLabel), text)
}

// View is the serialized form of an adapter.
type View struct {
	ID           string                `json:"id"`
	Kind         Kind                  `json:"kind"`
	PrefabName   string                `json:"prefab_name"`
	ShortName    string                `json:"short_name"`
	Alias        *string               `json:"alias"`
	Type         string                `json:"type,omitempty"`
	Position     models.Vector3        `json:"position"`
	Rotation     models.Quaternion     `json:"rotation"`
	Shape        string                `json:"shape"`
	Boxes        []BoxView             `json:"boxes"`
	BoundsSource resolver.BoundsSource `json:"bounds_source,omitempty"`
}

type BoxView struct {
	Center      models.Vector3    `json:"center"`
	Rotation    models.Quaternion `json:"rotation"`
	HalfExtents models.Vector3    `json:"half_extents"`

	// World space corners, for clients drawing the box outline.
	Corners []models.Vector3 `json:"corners"`
}

func (a *Adapter) View() View {
	boxes := a.Boxes()

	v := View{
		ID:           a.ID,
		Kind:         a.Kind,
		PrefabName:   a.PrefabName,
		ShortName:    a.ShortName,
		Type:         a.TypeLabel,
		Position:     models.NewVector3(a.Position),
		Rotation:     models.NewQuaternion(a.Rotation),
		Shape:        a.shape.Kind().String(),
		Boxes:        make([]BoxView, 0, len(boxes)),
		BoundsSource: a.BoundsSource,
	}

	if a.Alias != "" {
		alias := a.Alias
		v.Alias = &alias
	}

	for _, b := range boxes {
		corners := b.Corners()

		bv := BoxView{
			Center:      models.NewVector3(b.Center),
			Rotation:    models.NewQuaternion(b.Rotation),
			HalfExtents: models.NewVector3(b.HalfExtents),
			Corners:     make([]models.Vector3, 0, len(corners)),
		}
		for _, c := range corners {
			bv.Corners = append(bv.Corners, models.NewVector3(c))
		}
		v.Boxes = append(v.Boxes, bv)
	}
	return v
}
