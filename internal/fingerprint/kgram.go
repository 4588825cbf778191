package fingerprint

// KGrams returns every contiguous window of length k over seq, in order.
// Each window is an owned copy. k == 0 or len(seq) < k yields an empty result.
func KGrams[T any](seq []T, k int) [][]T {
	if k <= 0 || len(seq) < k {
		return [][]T{}
	}

	count := len(seq) - k + 1
	kgrams := make([][]T, 0, count)
	for i := 0; i < count; i++ {
		window := make([]T, k)
		copy(window, seq[i:i+k])
		kgrams = append(kgrams, window)
	}

	return kgrams
}
