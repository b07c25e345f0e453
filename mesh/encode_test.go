package mesh

import "testing"

func approx(a, b, tol float32) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= tol
}

func TestPack1010102RoundTripPositiveX(t *testing.T) {
	packed := Pack1010102(1, 0, 0)
	x, y, z := Unpack1010102(packed)
	if !approx(x, 1, 1.0/511) || !approx(y, 0, 1.0/511) || !approx(z, 0, 1.0/511) {
		t.Fatalf("got (%v,%v,%v), want approx (1,0,0)", x, y, z)
	}
}

func TestPack1010102RoundTripNegativeX(t *testing.T) {
	packed := Pack1010102(-1, 0, 0)
	x, y, z := Unpack1010102(packed)
	if !approx(x, -1, 1.0/511) || !approx(y, 0, 1.0/511) || !approx(z, 0, 1.0/511) {
		t.Fatalf("got (%v,%v,%v), want approx (-1,0,0)", x, y, z)
	}
}

func TestPack1010102RoundTripZero(t *testing.T) {
	packed := Pack1010102(0, 0, 0)
	x, y, z := Unpack1010102(packed)
	if !approx(x, 0, 1.0/511) || !approx(y, 0, 1.0/511) || !approx(z, 0, 1.0/511) {
		t.Fatalf("got (%v,%v,%v), want approx (0,0,0)", x, y, z)
	}
}

func TestPack1010102ClampsOutOfRangeInputs(t *testing.T) {
	packed := Pack1010102(2, -3, 1.5)
	x, y, z := Unpack1010102(packed)
	if !approx(x, 1, 1.0/511) || !approx(y, -1, 1.0/511) || !approx(z, 1, 1.0/511) {
		t.Fatalf("expected clamping to [-1,1], got (%v,%v,%v)", x, y, z)
	}
}

func TestFloat16RoundTripCommonValues(t *testing.T) {
	cases := []float32{0, 1, -1, 0.5, -0.5, 0.25, 2, 100}
	for _, c := range cases {
		h := PackFloat16(c)
		got := UnpackFloat16(h)
		if !approx(got, c, 0.01) {
			t.Errorf("float16 roundtrip(%v) = %v", c, got)
		}
	}
}

func TestFloat16ZeroPreservesSign(t *testing.T) {
	if PackFloat16(0) != 0 {
		t.Fatalf("PackFloat16(0) = %#x, want 0", PackFloat16(0))
	}
}
