package types

import (
	"math"
	"testing"
)

func TestVec3Ops(t *testing.T) {
	v1 := XYZ(1, 2, 3)
	v2 := XYZ(4, -5, 6)

	specs := []struct {
		got Vec3
		exp Vec3
	}{
		{v1.Add(v2), XYZ(5, -3, 9)},
		{v1.Sub(v2), XYZ(-3, 7, -3)},
		{v1.Mul(2), XYZ(2, 4, 6)},
		{v1.MulVec(v2), XYZ(4, -10, 18)},
		{v1.Negate(), XYZ(-1, -2, -3)},
		{XYZ(1, 0, 0).Cross(XYZ(0, 1, 0)), XYZ(0, 0, 1)},
		{XYZ(1, -1, 0).Reflect(XYZ(0, 1, 0)), XYZ(1, 1, 0)},
		{XYZ(0, 0, 0).Lerp(XYZ(2, 4, 6), 0.5), XYZ(1, 2, 3)},
		{XYZ(-1, 0.5, 2).Clamp(0, 1), XYZ(0, 0.5, 1)},
		{Splat3(0.25), XYZ(0.25, 0.25, 0.25)},
		{v1.Vec4(1).Vec3(), v1},
		{XYZW(1, 2, 3, 4).Mul(2).Vec3(), XYZ(2, 4, 6)},
	}

	for specIndex, spec := range specs {
		if !ApproxEqual(spec.got, spec.exp, 1e-6) {
			t.Errorf("[spec %d] expected %v; got %v", specIndex, spec.exp, spec.got)
		}
	}

	if got := v1.Dot(v2); got != 12 {
		t.Errorf("expected dot product 12; got %f", got)
	}
	if got := XY(1, 2).Add(XY(3, 4)).Dot(XY(1, 1)); got != 10 {
		t.Errorf("expected 2d dot product 10; got %f", got)
	}
}

func TestVec3Normalize(t *testing.T) {
	v := XYZ(3, 0, 4)
	if v.Len() != 5 || v.LenSquared() != 25 {
		t.Fatalf("expected len 5; got %f", v.Len())
	}

	n := v.Normalize()
	if math.Abs(float64(n.Len())-1) > 1e-6 {
		t.Fatalf("expected unit vector; got len %f", n.Len())
	}
	if !ApproxEqual(n, XYZ(0.6, 0, 0.8), 1e-6) {
		t.Fatalf("expected (0.6, 0, 0.8); got %v", n)
	}

	if !XYZ(1e-9, -1e-9, 0).NearZero() {
		t.Fatal("expected vector to be near zero")
	}
	if XYZ(0, 0.1, 0).NearZero() {
		t.Fatal("expected vector not to be near zero")
	}
}

func TestRayAt(t *testing.T) {
	r := NewRay(XYZ(1, 1, 1), XYZ(0, 0, -10))
	if r.Dir != XYZ(0, 0, -1) {
		t.Fatalf("expected normalized direction; got %v", r.Dir)
	}
	if got := r.At(2); got != XYZ(1, 1, -1) {
		t.Fatalf("expected (1, 1, -1); got %v", got)
	}
}
