// Copyright 2019 Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Initially copied from G3N: github.com/g3n/engine/math32
// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// with modifications needed to suit configurator functionality.

package math32

import "fmt"

// Dims is a list of vector dimension (component) names
type Dims int32

const (
	X Dims = iota
	Y
	Z
)

func (d Dims) String() string {
	switch d {
	case X:
		return "X"
	case Y:
		return "Y"
	case Z:
		return "Z"
	}
	return fmt.Sprintf("Dims(%d)", int32(d))
}

// Vector3 is a 3D vector/point with X, Y and Z components.
type Vector3 struct {
	X float32 `json:"x" yaml:"x" toml:"x"`
	Y float32 `json:"y" yaml:"y" toml:"y"`
	Z float32 `json:"z" yaml:"z" toml:"z"`
}

// Vec3 returns a new [Vector3] with the given x, y and z components.
func Vec3(x, y, z float32) Vector3 {
	return Vector3{x, y, z}
}

// Vector3Scalar returns a new [Vector3] with all components set to the given scalar value.
func Vector3Scalar(scalar float32) Vector3 {
	return Vector3{scalar, scalar, scalar}
}

// Vector3FromSlice returns a new [Vector3] from the first three
// values of the given slice, with missing values set to zero.
func Vector3FromSlice(s []float32) Vector3 {
	v := Vector3{}
	for i := range min(len(s), 3) {
		v.SetDim(Dims(i), s[i])
	}
	return v
}

// Slice returns the vector as a three element slice.
func (v Vector3) Slice() []float32 {
	return []float32{v.X, v.Y, v.Z}
}

// Set sets this vector X, Y and Z components.
func (v *Vector3) Set(x, y, z float32) {
	v.X = x
	v.Y = y
	v.Z = z
}

// SetScalar sets all vector X, Y and Z components to same scalar value.
func (v *Vector3) SetScalar(s float32) {
	v.X = s
	v.Y = s
	v.Z = s
}

// SetDim sets this vector component value by dimension index.
func (v *Vector3) SetDim(dim Dims, value float32) {
	switch dim {
	case X:
		v.X = value
	case Y:
		v.Y = value
	case Z:
		v.Z = value
	default:
		panic("dim is out of range")
	}
}

// Dim returns this vector component
func (v Vector3) Dim(dim Dims) float32 {
	switch dim {
	case X:
		return v.X
	case Y:
		return v.Y
	case Z:
		return v.Z
	default:
		panic("dim is out of range")
	}
}

func (v Vector3) String() string {
	return fmt.Sprintf("(%g, %g, %g)", v.X, v.Y, v.Z)
}

// IsNil returns true if all values are 0 (uninitialized).
func (v Vector3) IsNil() bool {
	return v.X == 0 && v.Y == 0 && v.Z == 0
}

// Add adds other vector to this one and returns result in a new vector.
func (v Vector3) Add(other Vector3) Vector3 {
	return Vec3(v.X+other.X, v.Y+other.Y, v.Z+other.Z)
}

// SetAdd sets this to addition with other vector (i.e., += or plus-equals).
func (v *Vector3) SetAdd(other Vector3) {
	v.X += other.X
	v.Y += other.Y
	v.Z += other.Z
}

// Sub subtracts other vector from this one and returns result in new vector.
func (v Vector3) Sub(other Vector3) Vector3 {
	return Vec3(v.X-other.X, v.Y-other.Y, v.Z-other.Z)
}

// MulScalar multiplies each component of this vector by the scalar s and returns resulting vector.
func (v Vector3) MulScalar(s float32) Vector3 {
	return Vec3(v.X*s, v.Y*s, v.Z*s)
}

// Abs returns a vector with the absolute value of each component.
func (v Vector3) Abs() Vector3 {
	return Vec3(Abs(v.X), Abs(v.Y), Abs(v.Z))
}

// SetMin sets this vector components to the minimum values of itself and other vector.
func (v *Vector3) SetMin(other Vector3) {
	v.X = Min(v.X, other.X)
	v.Y = Min(v.Y, other.Y)
	v.Z = Min(v.Z, other.Z)
}

// SetMax sets this vector components to the maximum value of itself and other vector.
func (v *Vector3) SetMax(other Vector3) {
	v.X = Max(v.X, other.X)
	v.Y = Max(v.Y, other.Y)
	v.Z = Max(v.Z, other.Z)
}

// Dot returns the dot product of this vector with other.
func (v Vector3) Dot(other Vector3) float32 {
	return v.X*other.X + v.Y*other.Y + v.Z*other.Z
}

// LengthSquared returns the length squared of this vector.
// LengthSquared can be used to compare the lengths of vectors
// without the need to perform a square root.
func (v Vector3) LengthSquared() float32 {
	return v.X*v.X + v.Y*v.Y + v.Z*v.Z
}

// Length returns the length of this vector.
func (v Vector3) Length() float32 {
	return Sqrt(v.LengthSquared())
}

// DistanceToSquared returns the squared distance from this vector to other vector.
func (v Vector3) DistanceToSquared(other Vector3) float32 {
	return v.Sub(other).LengthSquared()
}

// RotateZ returns this vector rotated about the Z axis by
// the given angle in radians (counter-clockwise seen from +Z).
func (v Vector3) RotateZ(rad float32) Vector3 {
	s, c := Sincos(rad)
	return Vec3(v.X*c-v.Y*s, v.X*s+v.Y*c, v.Z)
}

// DominantAxis returns the dimension along which this vector has
// strictly the largest magnitude, along with the sign of that component.
// ok is false when no single component dominates (e.g., ties or a nil vector).
func (v Vector3) DominantAxis() (dim Dims, sign float32, ok bool) {
	va := v.Abs()
	switch {
	case va.X > va.Y && va.X > va.Z:
		return X, Sign(v.X), true
	case va.Y > va.X && va.Y > va.Z:
		return Y, Sign(v.Y), true
	case va.Z > va.X && va.Z > va.Y:
		return Z, Sign(v.Z), true
	}
	return X, 0, false
}

// Nearest returns the point in pts closest to v, with the first
// one winning on exact ties. It returns v itself when pts is empty.
func (v Vector3) Nearest(pts ...Vector3) Vector3 {
	minDist := Infinity
	nearest := v
	for _, p := range pts {
		d := p.DistanceToSquared(v)
		if d < minDist {
			minDist = d
			nearest = p
		}
	}
	return nearest
}
