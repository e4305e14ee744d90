// Package slice has the element-wise helpers the profile code needs on top of
// the standard slices package.
package slice

func Map[T any, U any](input []T, fn func(T) U) []U {
	result := make([]U, len(input))
	for i, v := range input {
		result[i] = fn(v)
	}
	return result
}

// Map2 combines two slices element by element. The result is as long as the
// shorter input.
func Map2[A any, B any, U any](a []A, b []B, fn func(A, B) U) []U {
	n := min(len(a), len(b))
	result := make([]U, n)
	for i := 0; i < n; i++ {
		result[i] = fn(a[i], b[i])
	}
	return result
}

// Reversed returns a reversed copy, the input is left untouched.
func Reversed[T any](input []T) []T {
	result := make([]T, len(input))
	for i, v := range input {
		result[len(input)-1-i] = v
	}
	return result
}
