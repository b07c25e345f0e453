package linear

import "math"

// AABB is an axis-aligned bounding box in world or local space,
// matching the Min/Max pair spec §6 carries in MeshBinary and the
// SDF instance buffer.
type AABB struct {
	Min, Max V3
}

// FromPositions builds the tightest AABB enclosing positions.
func FromPositions(positions []V3) AABB {
	bb := AABB{
		Min: V3{math.MaxFloat32, math.MaxFloat32, math.MaxFloat32},
		Max: V3{-math.MaxFloat32, -math.MaxFloat32, -math.MaxFloat32},
	}
	for _, p := range positions {
		bb.Min.Min(&bb.Min, &p)
		bb.Max.Max(&bb.Max, &p)
	}
	return bb
}

// Transformed returns the AABB enclosing bb after transform by m: the
// eight corners of bb are transformed individually and a new min/max
// is taken across them, since an axis-aligned box does not remain
// axis-aligned under an arbitrary transform.
func (bb AABB) Transformed(m *M4) AABB {
	corners := [8]V3{
		{bb.Min[0], bb.Min[1], bb.Min[2]},
		{bb.Min[0], bb.Min[1], bb.Max[2]},
		{bb.Min[0], bb.Max[1], bb.Min[2]},
		{bb.Min[0], bb.Max[1], bb.Max[2]},
		{bb.Max[0], bb.Min[1], bb.Min[2]},
		{bb.Max[0], bb.Min[1], bb.Max[2]},
		{bb.Max[0], bb.Max[1], bb.Min[2]},
		{bb.Max[0], bb.Max[1], bb.Max[2]},
	}

	var transformed [8]V3
	for i, c := range corners {
		transformed[i].Mul(m, &c)
	}
	return FromPositions(transformed[:])
}

// Union sets bb to the smallest box enclosing both a and b.
func (bb *AABB) Union(a, b AABB) {
	bb.Min.Min(&a.Min, &b.Min)
	bb.Max.Max(&a.Max, &b.Max)
}

// Center returns the midpoint of the box.
func (bb AABB) Center() V3 {
	var c V3
	var sum V3
	sum.Add(&bb.Min, &bb.Max)
	c.Scale(0.5, &sum)
	return c
}
