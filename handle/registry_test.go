package handle

import "testing"

func TestHandleRecycling(t *testing.T) {
	r := NewRegistry[string, ImageKind]()

	h1 := r.Create("a")
	h2 := r.Create("b")

	if _, ok := r.Destroy(h1); !ok {
		t.Fatalf("Destroy(h1) failed")
	}

	h3 := r.Create("c")
	if h3.Index() != h1.Index() {
		t.Fatalf("expected recycled index %d, got %d", h1.Index(), h3.Index())
	}

	if _, ok := r.Get(h2); !ok {
		t.Fatalf("h2 should still resolve")
	}
}

func TestRegistryCreateGetDestroy(t *testing.T) {
	r := NewRegistry[int, BufferKind]()

	var handles []Handle[BufferKind]
	for i := 0; i < 8; i++ {
		handles = append(handles, r.Create(i))
	}

	for i, h := range handles {
		v, ok := r.Get(h)
		if !ok || v != i {
			t.Fatalf("Get(%d) = %v, %v; want %d, true", i, v, ok, i)
		}
	}

	if r.Count() != 8 {
		t.Fatalf("Count() = %d, want 8", r.Count())
	}

	if _, ok := r.Destroy(handles[3]); !ok {
		t.Fatalf("Destroy failed")
	}
	if r.Count() != 7 {
		t.Fatalf("Count() after destroy = %d, want 7", r.Count())
	}
	if _, ok := r.Get(handles[3]); ok {
		t.Fatalf("Get() after destroy should fail")
	}
	if _, ok := r.Destroy(handles[3]); ok {
		t.Fatalf("double Destroy should fail")
	}
}

func TestRegistryMutate(t *testing.T) {
	r := NewRegistry[int, SamplerKind]()
	h := r.Create(10)

	ok := r.Mutate(h, func(v *int) { *v = 20 })
	if !ok {
		t.Fatalf("Mutate failed")
	}
	v, _ := r.Get(h)
	if v != 20 {
		t.Fatalf("Get() after Mutate = %d, want 20", v)
	}
}

func TestInvalidHandle(t *testing.T) {
	r := NewRegistry[int, MeshKind]()
	if _, ok := r.Get(InvalidMesh); ok {
		t.Fatalf("Get(invalid) should fail")
	}
	if _, ok := r.Destroy(InvalidMesh); ok {
		t.Fatalf("Destroy(invalid) should fail")
	}
}

func TestForEachStopsEarly(t *testing.T) {
	r := NewRegistry[int, FramebufferKind]()
	for i := 0; i < 5; i++ {
		r.Create(i)
	}

	seen := 0
	r.ForEach(func(h Handle[FramebufferKind], v int) bool {
		seen++
		return seen < 3
	})
	if seen != 3 {
		t.Fatalf("ForEach visited %d items, want 3", seen)
	}
}
