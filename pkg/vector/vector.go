package vector

import "math"

// Dot returns the dot product of two equal-length vectors.
// Mismatched dimensions are a programming error and panic loudly rather
// than being coerced.
func Dot(a, b []float64) float64 {
	if len(a) != len(b) {
		panic("vector: dimension mismatch")
	}
	var sum float64
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}

// Norm returns the Euclidean norm of v.
func Norm(v []float64) float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	return math.Sqrt(sum)
}

// Normalize returns v scaled to unit length. The zero vector is returned
// unchanged; it is the neutral taste vector, not an error.
func Normalize(v []float64) []float64 {
	n := Norm(v)
	if n == 0 {
		return v
	}
	out := make([]float64, len(v))
	for i, x := range v {
		out[i] = x / n
	}
	return out
}

// Cosine returns the cosine similarity of a and b. Either zero vector
// yields 0.
func Cosine(a, b []float64) float64 {
	na, nb := Norm(a), Norm(b)
	if na == 0 || nb == 0 {
		return 0
	}
	return Dot(a, b) / (na * nb)
}

// IsZero reports whether every component of v is zero.
func IsZero(v []float64) bool {
	for _, x := range v {
		if x != 0 {
			return false
		}
	}
	return true
}
