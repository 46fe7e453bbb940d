// ABOUTME: Tests for vector math primitives
// ABOUTME: Covers dimension mismatches, zero vectors, and degenerate lengths
package vecmath

import (
	"errors"
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestDot_Basic(t *testing.T) {
	got, err := Dot([]float64{1, 2, 3}, []float64{4, 5, 6})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 32 {
		t.Errorf("expected 32, got %v", got)
	}
}

func TestDot_DimensionMismatch(t *testing.T) {
	_, err := Dot([]float64{1, 2}, []float64{1})
	var dimErr *DimensionError
	if !errors.As(err, &dimErr) {
		t.Fatalf("expected DimensionError, got %v", err)
	}
	if dimErr.LenA != 2 || dimErr.LenB != 1 {
		t.Errorf("expected lengths 2 and 1, got %d and %d", dimErr.LenA, dimErr.LenB)
	}
}

func TestDot_EmptyVectors(t *testing.T) {
	got, err := Dot([]float64{}, []float64{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("expected 0 for empty vectors, got %v", got)
	}
}

func TestAdd_Basic(t *testing.T) {
	got, err := Add([]float64{1, 2}, []float64{3, 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != 4 || got[1] != 6 {
		t.Errorf("expected [4 6], got %v", got)
	}
}

func TestAdd_DoesNotMutateInputs(t *testing.T) {
	a := []float64{1, 2}
	b := []float64{3, 4}
	_, err := Add(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a[0] != 1 || b[0] != 3 {
		t.Error("inputs were mutated")
	}
}

func TestSubtract_Basic(t *testing.T) {
	got, err := Subtract([]float64{5, 7}, []float64{2, 3})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got[0] != 3 || got[1] != 4 {
		t.Errorf("expected [3 4], got %v", got)
	}
}

func TestSubtract_DimensionMismatch(t *testing.T) {
	if _, err := Subtract([]float64{1}, []float64{1, 2}); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestScale_Basic(t *testing.T) {
	got := Scale([]float64{1, -2, 3}, 2)
	if got[0] != 2 || got[1] != -4 || got[2] != 6 {
		t.Errorf("expected [2 -4 6], got %v", got)
	}
}

func TestScale_SingleElement(t *testing.T) {
	got := Scale([]float64{3}, 0.5)
	if got[0] != 1.5 {
		t.Errorf("expected [1.5], got %v", got)
	}
}

func TestMagnitude_Basic(t *testing.T) {
	if got := Magnitude([]float64{3, 4}); got != 5 {
		t.Errorf("expected 5, got %v", got)
	}
}

func TestMagnitude_ZeroAndEmpty(t *testing.T) {
	if got := Magnitude([]float64{0, 0, 0}); got != 0 {
		t.Errorf("expected 0 for zero vector, got %v", got)
	}
	if got := Magnitude([]float64{}); got != 0 {
		t.Errorf("expected 0 for empty vector, got %v", got)
	}
}

func TestNormalize_UnitLength(t *testing.T) {
	got, err := Normalize([]float64{3, 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(Magnitude(got), 1) {
		t.Errorf("expected unit magnitude, got %v", Magnitude(got))
	}
}

func TestNormalize_ZeroVector(t *testing.T) {
	_, err := Normalize([]float64{0, 0, 0})
	if !errors.Is(err, ErrZeroVector) {
		t.Errorf("expected ErrZeroVector, got %v", err)
	}
}

func TestNormalize_DoesNotMutateInput(t *testing.T) {
	a := []float64{3, 4}
	_, err := Normalize(a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if a[0] != 3 || a[1] != 4 {
		t.Error("input was mutated")
	}
}

func TestDistance_Basic(t *testing.T) {
	got, err := Distance([]float64{0, 0}, []float64{3, 4})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 5 {
		t.Errorf("expected 5, got %v", got)
	}
}

func TestDistance_Symmetric(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{4, 0, -1}
	d1, _ := Distance(a, b)
	d2, _ := Distance(b, a)
	if !almostEqual(d1, d2) {
		t.Errorf("distance not symmetric: %v vs %v", d1, d2)
	}
}

func TestDistance_DimensionMismatch(t *testing.T) {
	if _, err := Distance([]float64{1, 2}, []float64{1, 2, 3}); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestCosineSimilarity_Symmetric(t *testing.T) {
	a := []float64{1, 2, 3}
	b := []float64{-1, 0.5, 2}
	s1, _ := CosineSimilarity(a, b)
	s2, _ := CosineSimilarity(b, a)
	if !almostEqual(s1, s2) {
		t.Errorf("cosine similarity not symmetric: %v vs %v", s1, s2)
	}
}

func TestCosineSimilarity_SelfSimilarity(t *testing.T) {
	a := []float64{0.3, -0.7, 1.2}
	got, err := CosineSimilarity(a, a)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !almostEqual(got, 1) {
		t.Errorf("expected ~1 for self-similarity, got %v", got)
	}
}

func TestCosineSimilarity_ZeroVectorIsZeroNotNaN(t *testing.T) {
	got, err := CosineSimilarity([]float64{0, 0}, []float64{1, 2})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("expected exactly 0 for zero-magnitude operand, got %v", got)
	}
	if math.IsNaN(got) {
		t.Error("result must never be NaN")
	}
}

func TestCosineSimilarity_DimensionMismatch(t *testing.T) {
	if _, err := CosineSimilarity([]float64{1}, []float64{1, 2}); err == nil {
		t.Error("expected dimension mismatch error")
	}
}

func TestCosineSimilarity_OppositeVectors(t *testing.T) {
	got, _ := CosineSimilarity([]float64{1, 0}, []float64{-1, 0})
	if !almostEqual(got, -1) {
		t.Errorf("expected -1 for opposite vectors, got %v", got)
	}
}
