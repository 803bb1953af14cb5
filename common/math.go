package common

// Lerp blends a towards b by t.
func Lerp(a, b, t float32) float32 {
	return a + t*(b-a)
}
