// Copyright 2019 Cogent Core. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Initially copied from G3N: github.com/g3n/engine/math32
// Copyright 2016 The G3N Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.
// with modifications needed to suit configurator functionality.

package math32

// Box3 represents a 3D bounding box defined by two points:
// the point with minimum coordinates and the point with maximum coordinates.
type Box3 struct {
	Min Vector3
	Max Vector3
}

// B3 returns a new [Box3] from the given minimum and maximum x, y, and z coordinates.
func B3(x0, y0, z0, x1, y1, z1 float32) Box3 {
	return Box3{Vec3(x0, y0, z0), Vec3(x1, y1, z1)}
}

// B3Empty returns a new [Box3] with empty minimum and maximum values.
func B3Empty() Box3 {
	bx := Box3{}
	bx.SetEmpty()
	return bx
}

// SetEmpty set this bounding box to empty (min / max +/- Infinity)
func (b *Box3) SetEmpty() {
	b.Min.SetScalar(Infinity)
	b.Max.SetScalar(-Infinity)
}

// IsEmpty returns true if this bounding box is empty (max < min on any coord).
func (b Box3) IsEmpty() bool {
	return (b.Max.X < b.Min.X) || (b.Max.Y < b.Min.Y) || (b.Max.Z < b.Min.Z)
}

// ExpandByPoint may expand this bounding box to include the specified point.
func (b *Box3) ExpandByPoint(point Vector3) {
	b.Min.SetMin(point)
	b.Max.SetMax(point)
}

// ExpandByBox may expand this bounding box to include the specified box.
// Empty boxes are ignored.
func (b *Box3) ExpandByBox(box Box3) {
	if box.IsEmpty() {
		return
	}
	b.ExpandByPoint(box.Min)
	b.ExpandByPoint(box.Max)
}

// Center returns the center of the bounding box.
func (b Box3) Center() Vector3 {
	return b.Min.Add(b.Max).MulScalar(0.5)
}

// Size calculates the size of this bounding box: the vector from
// its minimum point to its maximum point.
func (b Box3) Size() Vector3 {
	return b.Max.Sub(b.Min)
}

// Diagonal returns the length of the box diagonal, or 0 for an empty box.
func (b Box3) Diagonal() float32 {
	if b.IsEmpty() {
		return 0
	}
	return b.Size().Length()
}

// ContainsPoint returns if this bounding box contains the specified point.
func (b Box3) ContainsPoint(point Vector3) bool {
	if point.X < b.Min.X || point.X > b.Max.X ||
		point.Y < b.Min.Y || point.Y > b.Max.Y ||
		point.Z < b.Min.Z || point.Z > b.Max.Z {
		return false
	}
	return true
}

// Union returns the union with other box.
func (b Box3) Union(other Box3) Box3 {
	nb := b
	nb.ExpandByBox(other)
	return nb
}

// Translate returns translated position of this box by offset.
func (b Box3) Translate(offset Vector3) Box3 {
	nb := Box3{}
	nb.Min = b.Min.Add(offset)
	nb.Max = b.Max.Add(offset)
	return nb
}

// Corners returns the eight corners of the box.
func (b Box3) Corners() [8]Vector3 {
	return [8]Vector3{
		Vec3(b.Min.X, b.Min.Y, b.Min.Z),
		Vec3(b.Min.X, b.Min.Y, b.Max.Z),
		Vec3(b.Min.X, b.Max.Y, b.Min.Z),
		Vec3(b.Max.X, b.Min.Y, b.Min.Z),
		Vec3(b.Max.X, b.Max.Y, b.Max.Z),
		Vec3(b.Max.X, b.Max.Y, b.Min.Z),
		Vec3(b.Max.X, b.Min.Y, b.Max.Z),
		Vec3(b.Min.X, b.Max.Y, b.Max.Z),
	}
}

// RotateZ rotates the box about the Z axis through the origin by
// the given angle in radians and returns the box spanning the
// transformed corners.
func (b Box3) RotateZ(rad float32) Box3 {
	if b.IsEmpty() || rad == 0 {
		return b
	}
	nb := B3Empty()
	for _, c := range b.Corners() {
		nb.ExpandByPoint(c.RotateZ(rad))
	}
	return nb
}

// EdgeMidpoints returns the midpoints of the four box edges that run
// parallel to the given dimension, in a fixed enumeration order:
// (min,min), (max,min), (min,max), (max,max) over the two other dimensions.
func (b Box3) EdgeMidpoints(dim Dims) [4]Vector3 {
	mid := b.Center().Dim(dim)
	var pts [4]Vector3
	var o1, o2 Dims
	switch dim {
	case X:
		o1, o2 = Y, Z
	case Y:
		o1, o2 = X, Z
	default:
		o1, o2 = X, Y
	}
	for i := range 4 {
		var p Vector3
		p.SetDim(dim, mid)
		if i&1 == 0 {
			p.SetDim(o1, b.Min.Dim(o1))
		} else {
			p.SetDim(o1, b.Max.Dim(o1))
		}
		if i&2 == 0 {
			p.SetDim(o2, b.Min.Dim(o2))
		} else {
			p.SetDim(o2, b.Max.Dim(o2))
		}
		pts[i] = p
	}
	return pts
}
