package geom

import "testing"

func TestVec3Add(t *testing.T) {
	tests := []struct {
		name string
		a, b Vec3
		want Vec3
	}{
		{"zero", Vec3{}, Vec3{}, Vec3{}},
		{"simple", Vec3{1, 2, 3}, Vec3{4, 5, 6}, Vec3{5, 7, 9}},
		{"negative", Vec3{1, -2, 3}, Vec3{-1, 2, -3}, Vec3{0, 0, 0}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.a.Add(tt.b); got != tt.want {
				t.Errorf("Add() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestVec3SubRoundTrip(t *testing.T) {
	v := Vec3{10, -20, 30}
	translated := v.Add(Vec3{1, 2, 3}).Sub(Vec3{1, 2, 3})
	if !translated.ApproxEqual(v, 1e-9) {
		t.Errorf("translate then inverse-translate = %v, want %v", translated, v)
	}
}

func TestVec3Normalize(t *testing.T) {
	tests := []struct {
		name string
		in   Vec3
		want Vec3
	}{
		{"unit x", Vec3{2, 0, 0}, Vec3{1, 0, 0}},
		{"zero vector unchanged", Vec3{}, Vec3{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.Normalize()
			if !got.ApproxEqual(tt.want, 1e-9) {
				t.Errorf("Normalize() = %v, want %v", got, tt.want)
			}
		})
	}
	t.Run("length is 1", func(t *testing.T) {
		got := Vec3{3, 4, 0}.Normalize()
		if diff := got.Length() - 1; diff > 1e-9 || diff < -1e-9 {
			t.Errorf("Normalize() length = %v, want 1", got.Length())
		}
	})
}

func TestVec3CrossDot(t *testing.T) {
	x, y, z := WorldX, WorldY, WorldZ
	if got := x.Cross(y); !got.ApproxEqual(z, 1e-9) {
		t.Errorf("x cross y = %v, want %v", got, z)
	}
	if got := x.Dot(y); got != 0 {
		t.Errorf("x dot y = %v, want 0", got)
	}
}

func TestAxisVec(t *testing.T) {
	tests := []struct {
		name  string
		axis  string
		want  Vec3
		found bool
	}{
		{"x", "x", WorldX, true},
		{"Y", "Y", WorldY, true},
		{"z", "z", WorldZ, true},
		{"invalid", "w", Vec3{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := AxisVec(tt.axis)
			if ok != tt.found {
				t.Fatalf("AxisVec(%q) ok = %v, want %v", tt.axis, ok, tt.found)
			}
			if ok && got != tt.want {
				t.Errorf("AxisVec(%q) = %v, want %v", tt.axis, got, tt.want)
			}
		})
	}
}
