package ai

import "testing"

func TestClampVector_Truncates(t *testing.T) {
	vec := []float32{1, 2, 3, 4, 5}
	out := ClampVector(vec, 3)
	if len(out) != 3 {
		t.Fatalf("expected length 3, got %d", len(out))
	}
	if out[0] != 1 || out[2] != 3 {
		t.Fatalf("unexpected values: %v", out)
	}
}

func TestClampVector_Pads(t *testing.T) {
	vec := []float32{1, 2}
	out := ClampVector(vec, 4)
	if len(out) != 4 {
		t.Fatalf("expected length 4, got %d", len(out))
	}
	if out[1] != 2 || out[3] != 0 {
		t.Fatalf("unexpected values: %v", out)
	}
}

func TestClampVector_ExactOrUnbounded(t *testing.T) {
	vec := []float32{1, 2, 3}
	if out := ClampVector(vec, 3); len(out) != 3 {
		t.Fatalf("expected length 3, got %d", len(out))
	}
	if out := ClampVector(vec, 0); len(out) != 3 {
		t.Fatalf("expected original vector for dim 0, got %v", out)
	}
}
