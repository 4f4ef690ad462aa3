package spatial

// Bounds is an axis-aligned box expressed by its center and its full size.
type Bounds struct {
	Center Vec3
	Size   Vec3
}

func NewBounds(center Vec3, size Vec3) Bounds {
	return Bounds{Center: center, Size: Abs(size)}
}

// Extents returns the half size of the bounds.
func (b Bounds) Extents() Vec3 {
	return Mul(Abs(b.Size), 0.5)
}

func (b Bounds) Min() Vec3 {
	return Sub(b.Center, b.Extents())
}

func (b Bounds) Max() Vec3 {
	return Add(b.Center, b.Extents())
}

// IsEmpty reports whether the bounds have no size at all.
func (b Bounds) IsEmpty() bool {
	return b.Size == Zero
}

func (b Bounds) Contains(p Vec3) bool {
	min, max := b.Min(), b.Max()
	return p.X >= min.X && p.X <= max.X &&
		p.Y >= min.Y && p.Y <= max.Y &&
		p.Z >= min.Z && p.Z <= max.Z
}

// SqrDistance returns the squared distance between p and the closest point
// of the bounds. It is 0 when p is inside.
func (b Bounds) SqrDistance(p Vec3) float64 {
	min, max := b.Min(), b.Max()
	closest := Vec3{
		X: Clamp(p.X, min.X, max.X),
		Y: Clamp(p.Y, min.Y, max.Y),
		Z: Clamp(p.Z, min.Z, max.Z),
	}
	return SqrDistance(p, closest)
}
