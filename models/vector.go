package models

import "github.com/aukilabs/monumentfinder/spatial"

// Vector3 is the serialized form of a position, a direction or a size.
type Vector3 struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
}

func NewVector3(v spatial.Vec3) Vector3 {
	return Vector3{X: v.X, Y: v.Y, Z: v.Z}
}

func (v Vector3) Vec() spatial.Vec3 {
	return spatial.Vec3{X: v.X, Y: v.Y, Z: v.Z}
}

// Quaternion is the serialized form of a rotation. An all zero quaternion is
// read as the identity rotation.
type Quaternion struct {
	X float64 `json:"x" yaml:"x"`
	Y float64 `json:"y" yaml:"y"`
	Z float64 `json:"z" yaml:"z"`
	W float64 `json:"w" yaml:"w"`
}

func NewQuaternion(q spatial.Quat) Quaternion {
	return Quaternion{X: q.Imag, Y: q.Jmag, Z: q.Kmag, W: q.Real}
}

func (q Quaternion) Quat() spatial.Quat {
	return spatial.Normalize(spatial.Quat{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z})
}

// Box is the serialized form of axis-aligned bounds.
type Box struct {
	Center Vector3 `json:"center" yaml:"center"`
	Size   Vector3 `json:"size" yaml:"size"`
}

func NewBox(b spatial.Bounds) Box {
	return Box{Center: NewVector3(b.Center), Size: NewVector3(b.Size)}
}

func (b Box) Bounds() spatial.Bounds {
	return spatial.NewBounds(b.Center.Vec(), b.Size.Vec())
}
