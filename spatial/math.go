package spatial

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
	"gonum.org/v1/gonum/spatial/r3"
)

// Vec3 is a point or a direction, in world or local space.
type Vec3 = r3.Vec

// Quat is a unit quaternion describing an orientation. The zero value is
// treated as the identity rotation.
type Quat = r3.Rotation

// Identity is the rotation that leaves vectors unchanged.
var Identity = Quat{Real: 1}

var (
	Zero = Vec3{}
	One  = Vec3{X: 1, Y: 1, Z: 1}

	Up      = Vec3{Y: 1}
	Right   = Vec3{X: 1}
	Forward = Vec3{Z: 1}
)

func EqualWithEpsilon(a float64, b float64, epsilon float64) bool {
	return math.Abs(a-b) <= epsilon
}

func InRangeWithEpsilon(value float64, min float64, max float64, epsilon float64) bool {
	return value+epsilon >= min && value-epsilon <= max
}

func VecEqualWithEpsilon(a Vec3, b Vec3, epsilon float64) bool {
	return EqualWithEpsilon(a.X, b.X, epsilon) &&
		EqualWithEpsilon(a.Y, b.Y, epsilon) &&
		EqualWithEpsilon(a.Z, b.Z, epsilon)
}

func QuatEqualWithEpsilon(a Quat, b Quat, epsilon float64) bool {
	a, b = normalized(a), normalized(b)

	// q and -q describe the same orientation.
	dot := a.Real*b.Real + a.Imag*b.Imag + a.Jmag*b.Jmag + a.Kmag*b.Kmag
	return EqualWithEpsilon(math.Abs(dot), 1, epsilon)
}

func Add(a Vec3, b Vec3) Vec3 {
	return r3.Add(a, b)
}

func Sub(a Vec3, b Vec3) Vec3 {
	return r3.Sub(a, b)
}

func Mul(a Vec3, s float64) Vec3 {
	return r3.Scale(s, a)
}

func Abs(a Vec3) Vec3 {
	return Vec3{X: math.Abs(a.X), Y: math.Abs(a.Y), Z: math.Abs(a.Z)}
}

func Length(a Vec3) float64 {
	return r3.Norm(a)
}

func SqrLength(a Vec3) float64 {
	return r3.Norm2(a)
}

func SqrDistance(a Vec3, b Vec3) float64 {
	return r3.Norm2(r3.Sub(a, b))
}

func Distance(a Vec3, b Vec3) float64 {
	return r3.Norm(r3.Sub(a, b))
}

func Clamp(v float64, min float64, max float64) float64 {
	return math.Max(min, math.Min(max, v))
}

// Euler returns the rotation for the given angles in degrees. The rotation
// is applied around the z axis first, then x, then y.
func Euler(x, y, z float64) Quat {
	qx := r3.NewRotation(x*math.Pi/180, Right)
	qy := r3.NewRotation(y*math.Pi/180, Up)
	qz := r3.NewRotation(z*math.Pi/180, Forward)
	return Combine(Combine(qy, qx), qz)
}

// Combine returns the rotation that applies b and then a.
func Combine(a Quat, b Quat) Quat {
	return Quat(quat.Mul(quat.Number(normalized(a)), quat.Number(normalized(b))))
}

// Inverse returns the rotation that undoes q.
func Inverse(q Quat) Quat {
	return Quat(quat.Conj(quat.Number(normalized(q))))
}

// Rotate applies q to v.
func Rotate(q Quat, v Vec3) Vec3 {
	return normalized(q).Rotate(v)
}

// InverseRotate applies the inverse of q to v.
func InverseRotate(q Quat, v Vec3) Vec3 {
	return Inverse(q).Rotate(v)
}

func normalized(q Quat) Quat {
	if q == (Quat{}) {
		return Identity
	}

	n := quat.Abs(quat.Number(q))
	if n == 1 {
		return q
	}
	return Quat(quat.Scale(1/n, quat.Number(q)))
}

// Normalize returns q scaled to unit length. The zero quaternion becomes the
// identity rotation.
func Normalize(q Quat) Quat {
	return normalized(q)
}
