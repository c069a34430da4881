package pathtrace

import (
	"errors"
	"math"
	"testing"
)

func TestCameraBasisOrthonormal(t *testing.T) {
	c := Camera{Origin: V3(0, 0, 5), Dir: V3(0, 0, -1), Up: V3(0, 1, 0), FieldOfView: 1}
	b, err := c.Basis()
	if err != nil {
		t.Fatalf("Basis() error = %v", err)
	}
	for _, v := range []Vec3{b.forward, b.right, b.up} {
		if diff := v.Length() - 1; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("basis vector %v not unit length", v)
		}
	}
	if math.Abs(b.forward.Dot(b.right)) > 1e-9 || math.Abs(b.forward.Dot(b.up)) > 1e-9 || math.Abs(b.right.Dot(b.up)) > 1e-9 {
		t.Errorf("basis %+v not orthogonal", b)
	}
}

func TestCameraBasisDegenerateWhenUpParallelToDir(t *testing.T) {
	c := Camera{Origin: V3(0, 0, 5), Dir: V3(0, 1, 0), Up: V3(0, 1, 0), FieldOfView: 1}
	_, err := c.Basis()
	if !errors.Is(err, ErrDegenerateNormalize) {
		t.Errorf("Basis() error = %v, want ErrDegenerateNormalize", err)
	}
}

func TestAspectCorrectedNDCCenterIsZero(t *testing.T) {
	u, v := aspectCorrectedNDC(50, 50, 100, 100)
	if math.Abs(u) > 0.03 || math.Abs(v) > 0.03 {
		t.Errorf("aspectCorrectedNDC(center) = (%v, %v), want ~(0,0)", u, v)
	}
}

func TestAspectCorrectedNDCInvertsY(t *testing.T) {
	_, topV := aspectCorrectedNDC(50, 0, 100, 100)
	_, bottomV := aspectCorrectedNDC(50, 99, 100, 100)
	if topV <= bottomV {
		t.Errorf("top v = %v, bottom v = %v, want top > bottom (image rows grow downward)", topV, bottomV)
	}
}

func TestCameraRayStraightAhead(t *testing.T) {
	c := Camera{Origin: V3(0, 0, 5), Dir: V3(0, 0, -1), Up: V3(0, 1, 0), FieldOfView: 1}
	b, err := c.Basis()
	if err != nil {
		t.Fatalf("Basis() error = %v", err)
	}
	r := c.Ray(b, 0, 0, nil)
	if !r.Direction.Approx(V3(0, 0, -1), 1e-9) {
		t.Errorf("Ray(0,0) direction = %v, want (0,0,-1)", r.Direction)
	}
}

func TestNewLookAtCameraPointsAtTarget(t *testing.T) {
	c := NewLookAtCamera(V3(0, 0, 5), V3(0, 0, 0), V3(0, 1, 0), 1)
	b, err := c.Basis()
	if err != nil {
		t.Fatalf("Basis() error = %v", err)
	}
	if !b.forward.Approx(V3(0, 0, -1), 1e-9) {
		t.Errorf("forward = %v, want (0,0,-1)", b.forward)
	}
	if diff := c.DOFDistance - 5; diff > 1e-9 || diff < -1e-9 {
		t.Errorf("DOFDistance = %v, want 5", c.DOFDistance)
	}
}
