package spatial

import (
	"math"

	"github.com/dhconnelly/rtreego"
)

const (
	rtreeMinChildren = 25
	rtreeMaxChildren = 50

	// Minimal edge length given to flat or empty volumes since the r-tree
	// does not accept zero sized rectangles.
	rtreeMinEdge = 1e-3
)

// Volume is a runtime collider placed in the world, described by its world
// axis-aligned bounds and its transform.
type Volume struct {
	Name     string
	Position Vec3
	Rotation Quat
	Bounds   Bounds
}

// VolumeIndex answers radius queries over a static set of volumes.
type VolumeIndex struct {
	tree  *rtreego.Rtree
	count int
}

type indexedVolume struct {
	index  int
	volume Volume
	rect   rtreego.Rect
}

func (v *indexedVolume) Bounds() rtreego.Rect {
	return v.rect
}

// NewVolumeIndex indexes the given volumes. The order of the slice is used
// to break ties between equally distant volumes.
func NewVolumeIndex(volumes []Volume) *VolumeIndex {
	tree := rtreego.NewTree(3, rtreeMinChildren, rtreeMaxChildren)

	count := 0
	for i, v := range volumes {
		rect, err := boundsToRect(v.Bounds, 0)
		if err != nil {
			continue
		}

		tree.Insert(&indexedVolume{
			index:  i,
			volume: v,
			rect:   rect,
		})
		count++
	}

	return &VolumeIndex{
		tree:  tree,
		count: count,
	}
}

// Len returns the number of indexed volumes.
func (idx *VolumeIndex) Len() int {
	if idx == nil {
		return 0
	}
	return idx.count
}

// FindWithin returns the volume accepted by match whose bounds intersect the
// sphere of the given radius around center. When several volumes qualify,
// the one with the closest position wins.
func (idx *VolumeIndex) FindWithin(center Vec3, radius float64, match func(Volume) bool) (Volume, bool) {
	if idx.Len() == 0 || radius < 0 {
		return Volume{}, false
	}

	// Rectangles that only touch do not intersect in the r-tree.
	query, err := boundsToRect(NewBounds(center, Mul(One, radius*2)), rtreeMinEdge)
	if err != nil {
		return Volume{}, false
	}

	var (
		best     *indexedVolume
		bestDist = math.Inf(1)
	)

	sqrRadius := radius * radius
	for _, s := range idx.tree.SearchIntersect(query) {
		candidate := s.(*indexedVolume)
		if candidate.volume.Bounds.SqrDistance(center) > sqrRadius {
			continue
		}
		if match != nil && !match(candidate.volume) {
			continue
		}

		dist := SqrDistance(candidate.volume.Position, center)
		if dist < bestDist || (dist == bestDist && best != nil && candidate.index < best.index) {
			best = candidate
			bestDist = dist
		}
	}

	if best == nil {
		return Volume{}, false
	}
	return best.volume, true
}

func boundsToRect(b Bounds, padding float64) (rtreego.Rect, error) {
	min := b.Min()
	size := b.Size

	lengths := []float64{
		math.Max(math.Abs(size.X)+padding*2, rtreeMinEdge),
		math.Max(math.Abs(size.Y)+padding*2, rtreeMinEdge),
		math.Max(math.Abs(size.Z)+padding*2, rtreeMinEdge),
	}

	return rtreego.NewRect(rtreego.Point{
		min.X - padding,
		min.Y - padding,
		min.Z - padding,
	}, lengths)
}
