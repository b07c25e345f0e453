package linear

import "math"

// Frustum is the eight corner points of a camera's view volume, built
// the same way original_source's computeViewFrustum does: from camera
// position/basis and intrinsics rather than by decomposing a
// projection matrix.
type Frustum struct {
	NearUR, NearUL, NearLR, NearLL V3
	FarUR, FarUL, FarLR, FarLL     V3
}

// FromCamera builds the view frustum looking down -forward from
// position, matching original_source's ViewFrustum.cpp construction.
func FromCamera(position, forward, up, right V3, fovYRadians, aspect, near, far float32) Frustum {
	var nearCenter, farCenter V3
	var tmp V3

	tmp.Scale(near, &forward)
	nearCenter.Sub(&position, &tmp)
	tmp.Scale(far, &forward)
	farCenter.Sub(&position, &tmp)

	tanFov := float32(math.Tan(float64(fovYRadians) / 2))
	heightNear := tanFov * near
	heightFar := tanFov * far
	widthNear := heightNear * aspect
	widthFar := heightFar * aspect

	var f Frustum
	corner := func(center V3, h, w float32, upSign, rightSign float32) V3 {
		var a, b, c V3
		a.Scale(h*upSign, &up)
		b.Scale(w*rightSign, &right)
		c.Add(&a, &b)
		var out V3
		out.Add(&center, &c)
		return out
	}

	f.FarUR = corner(farCenter, heightFar, widthFar, 1, 1)
	f.FarUL = corner(farCenter, heightFar, widthFar, 1, -1)
	f.FarLR = corner(farCenter, heightFar, widthFar, -1, 1)
	f.FarLL = corner(farCenter, heightFar, widthFar, -1, -1)
	f.NearUR = corner(nearCenter, heightNear, widthNear, 1, 1)
	f.NearUL = corner(nearCenter, heightNear, widthNear, 1, -1)
	f.NearLR = corner(nearCenter, heightNear, widthNear, -1, 1)
	f.NearLL = corner(nearCenter, heightNear, widthNear, -1, -1)
	return f
}

// Plane is a half-space boundary: points p with Normal.Dot(p) - Dist >= 0
// are on the inside.
type Plane struct {
	Normal V3
	Dist   float32
}

// planeFromTriangle builds the plane through a, b, c and flips its
// normal, if needed, so that inside points toward the frustum
// centroid — the triangle winding order depends on an arbitrary
// camera basis, so the centroid check is what actually pins down
// "inward" rather than the winding itself.
func planeFromTriangle(a, b, c, centroid V3) Plane {
	var e1, e2, n V3
	e1.Sub(&b, &a)
	e2.Sub(&c, &a)
	n.Cross(&e1, &e2)
	n.Norm(&n)
	dist := n.Dot(&a)
	if n.Dot(&centroid)-dist < 0 {
		n.Scale(-1, &n)
		dist = -dist
	}
	return Plane{Normal: n, Dist: dist}
}

func (f Frustum) centroid() V3 {
	corners := [8]V3{f.NearUR, f.NearUL, f.NearLR, f.NearLL, f.FarUR, f.FarUL, f.FarLR, f.FarLL}
	var sum V3
	for _, c := range corners {
		sum.Add(&sum, &c)
	}
	var center V3
	center.Scale(1.0/8, &sum)
	return center
}

// Planes derives the six inward-facing frustum planes from the eight
// corners (near, far, left, right, top, bottom).
func (f Frustum) Planes() [6]Plane {
	c := f.centroid()
	return [6]Plane{
		planeFromTriangle(f.NearLL, f.NearLR, f.NearUR, c), // near
		planeFromTriangle(f.FarUR, f.FarLR, f.FarLL, c),    // far
		planeFromTriangle(f.NearUL, f.NearLL, f.FarLL, c),  // left
		planeFromTriangle(f.NearLR, f.NearUR, f.FarUR, c),  // right
		planeFromTriangle(f.NearUR, f.NearUL, f.FarUL, c),  // top
		planeFromTriangle(f.NearLL, f.NearLR, f.FarLR, c),  // bottom
	}
}

// Intersects reports whether bb touches or lies inside the frustum,
// using the standard p-vertex test: for each plane, the AABB corner
// furthest along the plane's normal is checked; if even that corner
// is outside, the whole box is outside and culling can stop early
// (spec §8 "a box strictly outside the plane set returns no-intersect").
func (f Frustum) Intersects(bb AABB) bool {
	for _, p := range f.Planes() {
		var pVertex V3
		for i := 0; i < 3; i++ {
			if p.Normal[i] >= 0 {
				pVertex[i] = bb.Max[i]
			} else {
				pVertex[i] = bb.Min[i]
			}
		}
		if p.Normal.Dot(&pVertex)-p.Dist < 0 {
			return false
		}
	}
	return true
}
