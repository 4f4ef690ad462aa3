package spatial

// Tolerance used when testing local coordinates against the box faces. It
// absorbs the rounding of a world -> local -> world round trip so that a
// closest point always tests as contained.
const containsEpsilon = 1e-6

// OrientedBox is a rotated rectangular volume.
//
// A box whose half extents are all zero is the degenerate sentinel used for
// regions without meaningful bounds. It only contains its exact center and
// its closest point is always the center.
type OrientedBox struct {
	Center      Vec3
	Rotation    Quat
	HalfExtents Vec3
}

// NewOrientedBox places the local bounds of an object located at position
// and oriented by rotation in world space.
func NewOrientedBox(position Vec3, rotation Quat, bounds Bounds) OrientedBox {
	rotation = Normalize(rotation)

	return OrientedBox{
		Center:      Add(position, Rotate(rotation, bounds.Center)),
		Rotation:    rotation,
		HalfExtents: bounds.Extents(),
	}
}

// IsDegenerate reports whether the box is the "no bounds" sentinel.
func (b OrientedBox) IsDegenerate() bool {
	return b.HalfExtents == Zero
}

// ToLocal expresses a world point in the box frame.
func (b OrientedBox) ToLocal(p Vec3) Vec3 {
	return InverseRotate(b.Rotation, Sub(p, b.Center))
}

// ToWorld expresses a point of the box frame in world space.
func (b OrientedBox) ToWorld(p Vec3) Vec3 {
	return Add(b.Center, Rotate(b.Rotation, p))
}

// Contains reports whether p is inside the box, faces included.
func (b OrientedBox) Contains(p Vec3) bool {
	if b.IsDegenerate() {
		return p == b.Center
	}

	local := b.ToLocal(p)
	h := Abs(b.HalfExtents)
	return InRangeWithEpsilon(local.X, -h.X, h.X, containsEpsilon) &&
		InRangeWithEpsilon(local.Y, -h.Y, h.Y, containsEpsilon) &&
		InRangeWithEpsilon(local.Z, -h.Z, h.Z, containsEpsilon)
}

// ClosestPoint returns the point of the box closest to p. Points inside the
// box are returned unchanged.
func (b OrientedBox) ClosestPoint(p Vec3) Vec3 {
	if b.IsDegenerate() {
		return b.Center
	}

	local := b.ToLocal(p)
	h := Abs(b.HalfExtents)

	inside := true
	clamped := local
	for _, axis := range []struct {
		v    *float64
		half float64
	}{
		{&clamped.X, h.X},
		{&clamped.Y, h.Y},
		{&clamped.Z, h.Z},
	} {
		if *axis.v < -axis.half || *axis.v > axis.half {
			inside = false
			*axis.v = Clamp(*axis.v, -axis.half, axis.half)
		}
	}

	if inside {
		return p
	}
	return b.ToWorld(clamped)
}

// SqrDistance returns the squared distance between p and the box.
func (b OrientedBox) SqrDistance(p Vec3) float64 {
	return SqrDistance(p, b.ClosestPoint(p))
}

// Corners returns the eight corners of the box in world space.
func (b OrientedBox) Corners() [8]Vec3 {
	var corners [8]Vec3
	h := b.HalfExtents

	i := 0
	for _, x := range []float64{-h.X, h.X} {
		for _, y := range []float64{-h.Y, h.Y} {
			for _, z := range []float64{-h.Z, h.Z} {
				corners[i] = b.ToWorld(Vec3{X: x, Y: y, Z: z})
				i++
			}
		}
	}
	return corners
}
