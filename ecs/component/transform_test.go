package component_test

import (
	"errors"
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/milk9111/twobd/ecs"
	"github.com/milk9111/twobd/ecs/component"
)

func near(a, b float32) bool {
	return math.Abs(float64(a-b)) < 1e-5
}

func nearVec3(a, b mgl32.Vec3) bool {
	return near(a[0], b[0]) && near(a[1], b[1]) && near(a[2], b[2])
}

func TestWorldMatrixWithoutRotationIsTranslation(t *testing.T) {
	for _, pos := range []mgl32.Vec3{{}, {1, 2, 3}, {-4, 0.5, 100}} {
		tr := component.NewTransform(pos)
		if got, want := tr.WorldMatrix(), mgl32.Translate3D(pos[0], pos[1], pos[2]); got != want {
			t.Fatalf("pos %v: expected %v, got %v", pos, want, got)
		}
	}
}

func TestWorldMatrixComposition(t *testing.T) {
	cases := []struct {
		name  string
		tr    component.Transform
		point mgl32.Vec3
		want  mgl32.Vec3
	}{
		{
			name:  "scale before rotate before translate",
			tr:    component.Transform{Position: mgl32.Vec3{1, 0, 0}, Rotation: mgl32.Vec3{0, 0, 90}, Scale: mgl32.Vec3{2, 1, 1}},
			point: mgl32.Vec3{1, 0, 0},
			want:  mgl32.Vec3{1, 2, 0},
		},
		{
			name:  "x rotation applied before y",
			tr:    component.Transform{Rotation: mgl32.Vec3{90, 90, 0}, Scale: mgl32.Vec3{1, 1, 1}},
			point: mgl32.Vec3{0, 1, 0},
			want:  mgl32.Vec3{1, 0, 0},
		},
		{
			name:  "y rotation applied before z",
			tr:    component.Transform{Rotation: mgl32.Vec3{0, 90, 90}, Scale: mgl32.Vec3{1, 1, 1}},
			point: mgl32.Vec3{0, 0, 1},
			want:  mgl32.Vec3{0, 1, 0},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.tr.WorldMatrix().Mul4x1(tc.point.Vec4(1)).Vec3()
			if !nearVec3(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}
}

func TestNormalMatrixNonUniformScale(t *testing.T) {
	cases := []struct {
		name   string
		tr     component.Transform
		normal mgl32.Vec3
		want   mgl32.Vec3
	}{
		{
			name:   "scale only",
			tr:     component.Transform{Scale: mgl32.Vec3{2, 1, 1}},
			normal: mgl32.Vec3{1, 0, 0},
			want:   mgl32.Vec3{0.5, 0, 0},
		},
		{
			name:   "rotated and scaled",
			tr:     component.Transform{Position: mgl32.Vec3{5, 5, 5}, Rotation: mgl32.Vec3{0, 0, 90}, Scale: mgl32.Vec3{2, 1, 1}},
			normal: mgl32.Vec3{1, 0, 0},
			want:   mgl32.Vec3{0, 0.5, 0},
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := tc.tr.NormalMatrix().Mul3x1(tc.normal)
			if !nearVec3(got, tc.want) {
				t.Fatalf("expected %v, got %v", tc.want, got)
			}
		})
	}

	// A normal of a sheared surface stays perpendicular to its tangent.
	tr := component.Transform{Rotation: mgl32.Vec3{0, 0, 30}, Scale: mgl32.Vec3{3, 1, 1}}
	tangent := mgl32.Vec3{1, -1, 0}
	normal := mgl32.Vec3{1, 1, 0}
	wt := tr.WorldMatrix().Mat3().Mul3x1(tangent)
	wn := tr.NormalMatrix().Mul3x1(normal)
	if !near(wt.Dot(wn), 0) {
		t.Fatalf("expected transformed normal %v perpendicular to %v", wn, wt)
	}
}

func TestTransformValidate(t *testing.T) {
	nan := float32(math.NaN())
	inf := float32(math.Inf(1))
	cases := []struct {
		name  string
		scale mgl32.Vec3
		ok    bool
	}{
		{"unit", mgl32.Vec3{1, 1, 1}, true},
		{"negative", mgl32.Vec3{-1, 2, 0.5}, true},
		{"zero", mgl32.Vec3{1, 0, 1}, false},
		{"nan", mgl32.Vec3{1, 1, nan}, false},
		{"positive infinity", mgl32.Vec3{inf, 1, 1}, false},
		{"negative infinity", mgl32.Vec3{1, -inf, 1}, false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := component.Transform{Scale: tc.scale}.Validate()
			if tc.ok && err != nil {
				t.Fatalf("expected valid, got %v", err)
			}
			if !tc.ok && !errors.Is(err, component.ErrDegenerateScale) {
				t.Fatalf("expected ErrDegenerateScale, got %v", err)
			}
		})
	}
}

func TestAttachedTransformHasUnitScale(t *testing.T) {
	w := ecs.NewWorld()
	e := ecs.CreateEntity(w)
	tr, err := ecs.Attach(w, e, component.TransformComponent.Kind())
	if err != nil {
		t.Fatal(err)
	}
	if tr.Scale != (mgl32.Vec3{1, 1, 1}) {
		t.Fatalf("expected unit scale, got %v", tr.Scale)
	}
	if err := tr.Validate(); err != nil {
		t.Fatalf("attached transform should validate: %v", err)
	}

	tr.Translate(mgl32.Vec3{1, 2, 3})
	tr.Rotate(mgl32.Vec3{0, 0, 45})
	tr.Rotate(mgl32.Vec3{0, 0, 45})
	if tr.Position != (mgl32.Vec3{1, 2, 3}) || tr.Rotation != (mgl32.Vec3{0, 0, 90}) {
		t.Fatalf("unexpected transform after moves: %+v", *tr)
	}
}
