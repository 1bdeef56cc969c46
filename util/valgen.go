// Some helpers using closures to generate values
package valgen

func MakeConstGen(constant uint32) func() uint32 {
	return func() uint32 {
		return constant
	}
}

func MakeIncreasingGen(start uint32) func() uint32 {
	current := start
	return func() uint32 {
		current++
		return current
	}
}

// Take fills a slice with the next n values of a generator.
func Take(gen func() uint32, n int) []uint32 {
	out := make([]uint32, n)
	for i := range out {
		out[i] = gen()
	}

	return out
}
