package linear

import "testing"

func approxEq(a, b float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d < 1e-4
}

func TestAABBTransformedByTranslation(t *testing.T) {
	unit := AABB{Min: V3{0, 0, 0}, Max: V3{1, 1, 1}}
	m := Translation(V3{1, 2, 3})

	got := unit.Transformed(&m)

	want := AABB{Min: V3{1, 2, 3}, Max: V3{2, 3, 4}}
	for i := 0; i < 3; i++ {
		if !approxEq(got.Min[i], want.Min[i]) {
			t.Fatalf("Min[%d] = %v, want %v", i, got.Min[i], want.Min[i])
		}
		if !approxEq(got.Max[i], want.Max[i]) {
			t.Fatalf("Max[%d] = %v, want %v", i, got.Max[i], want.Max[i])
		}
	}
}

func testFrustum() Frustum {
	return FromCamera(
		V3{0, 0, 0}, V3{0, 0, -1}, V3{0, 1, 0}, V3{1, 0, 0},
		1.5707963, 1, 1, 10,
	)
}

func TestFrustumCullsBoxStrictlyOutside(t *testing.T) {
	f := testFrustum()

	// Past the far plane: the test frustum spans z in [1,10].
	outside := AABB{Min: V3{-1, -1, 100}, Max: V3{1, 1, 101}}
	if f.Intersects(outside) {
		t.Fatalf("expected a box far past the far plane to be culled")
	}
}

func TestFrustumIntersectsBoxContainingNearPoint(t *testing.T) {
	f := testFrustum()

	// A box straddling the near-plane centre point (0,0,1) must intersect.
	containing := AABB{Min: V3{-0.5, -0.5, 0.5}, Max: V3{0.5, 0.5, 1.5}}
	if !f.Intersects(containing) {
		t.Fatalf("expected a box containing the near point to intersect")
	}
}

func TestFrustumIntersectsBoxInsideFrustum(t *testing.T) {
	f := testFrustum()
	center := AABB{Min: V3{-0.1, -0.1, 4.9}, Max: V3{0.1, 0.1, 5.1}}
	if !f.Intersects(center) {
		t.Fatalf("expected a box well inside the frustum to intersect")
	}
}

func TestApplyProjectionMatrixJitterIdentityAtZero(t *testing.T) {
	var p M4
	p.I()
	got := ApplyProjectionMatrixJitter(p, V2{0, 0})
	if got != p {
		t.Fatalf("zero jitter must leave the matrix unchanged: got %+v, want %+v", got, p)
	}
}

func TestApplyProjectionMatrixJitterOffsetsXY(t *testing.T) {
	var p M4
	p.I()
	got := ApplyProjectionMatrixJitter(p, V2{0.01, -0.02})
	if !approxEq(got[2][0], 0.01) || !approxEq(got[2][1], -0.02) {
		t.Fatalf("jitter not applied to projection offset terms: %+v", got)
	}
}

func TestJitterOffsetRepeatsEveryEightFrames(t *testing.T) {
	for i := uint64(0); i < 8; i++ {
		a := JitterOffset(i)
		b := JitterOffset(i + JitterSampleCount)
		if a != b {
			t.Fatalf("frame %d and %d should repeat the same jitter, got %v vs %v", i, i+JitterSampleCount, a, b)
		}
	}
}

func TestJitterOffsetVariesWithinCycle(t *testing.T) {
	seen := make(map[V2]bool)
	for i := uint64(0); i < JitterSampleCount; i++ {
		seen[JitterOffset(i)] = true
	}
	if len(seen) != JitterSampleCount {
		t.Fatalf("expected %d distinct jitter samples in one cycle, got %d", JitterSampleCount, len(seen))
	}
}

func TestM4InvertRoundTrips(t *testing.T) {
	m := Translation(V3{2, -3, 5})
	var inv, identity M4
	inv.Invert(&m)
	identity.Mul(&m, &inv)

	var want M4
	want.I()
	for i := range identity {
		for j := range identity[i] {
			if !approxEq(identity[i][j], want[i][j]) {
				t.Fatalf("m * inv(m) != identity at [%d][%d]: got %v", i, j, identity[i][j])
			}
		}
	}
}
