// ABOUTME: Pure vector math primitives for embedding vectors
// ABOUTME: All operations return new slices and validate dimensions up front
package vecmath

import (
	"fmt"
	"math"
)

// ErrZeroVector is returned when normalizing a vector with magnitude 0.
var ErrZeroVector = fmt.Errorf("cannot normalize zero vector")

// DimensionError reports an operation over vectors of different lengths.
type DimensionError struct {
	LenA int
	LenB int
}

func (e *DimensionError) Error() string {
	return fmt.Sprintf("dimension mismatch: %d vs %d", e.LenA, e.LenB)
}

func checkDims(a, b []float64) error {
	if len(a) != len(b) {
		return &DimensionError{LenA: len(a), LenB: len(b)}
	}
	return nil
}

// Dot computes the dot product of two equal-length vectors.
// The empty vector dots to 0.
func Dot(a, b []float64) (float64, error) {
	if err := checkDims(a, b); err != nil {
		return 0, err
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum, nil
}

// Add returns the element-wise sum of two equal-length vectors.
func Add(a, b []float64) ([]float64, error) {
	if err := checkDims(a, b); err != nil {
		return nil, err
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] + b[i]
	}
	return out, nil
}

// Subtract returns a minus b, element-wise.
func Subtract(a, b []float64) ([]float64, error) {
	if err := checkDims(a, b); err != nil {
		return nil, err
	}
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] - b[i]
	}
	return out, nil
}

// Scale returns a copy of a with every element multiplied by k.
func Scale(a []float64, k float64) []float64 {
	out := make([]float64, len(a))
	for i := range a {
		out[i] = a[i] * k
	}
	return out
}

// Magnitude computes the Euclidean norm. The zero-length vector has magnitude 0.
func Magnitude(a []float64) float64 {
	var sum float64
	for _, v := range a {
		sum += v * v
	}
	return math.Sqrt(sum)
}

// Normalize returns a unit-length copy of a.
// Returns ErrZeroVector when the magnitude is exactly 0.
func Normalize(a []float64) ([]float64, error) {
	mag := Magnitude(a)
	if mag == 0 {
		return nil, ErrZeroVector
	}
	return Scale(a, 1/mag), nil
}

// Distance computes the Euclidean distance between two equal-length vectors.
func Distance(a, b []float64) (float64, error) {
	if err := checkDims(a, b); err != nil {
		return 0, err
	}
	var sum float64
	for i := range a {
		d := a[i] - b[i]
		sum += d * d
	}
	return math.Sqrt(sum), nil
}

// CosineSimilarity computes dot(a,b) / (|a| * |b|).
// Returns exactly 0 (never NaN) when either vector has zero magnitude.
func CosineSimilarity(a, b []float64) (float64, error) {
	if err := checkDims(a, b); err != nil {
		return 0, err
	}
	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0, nil
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB)), nil
}
