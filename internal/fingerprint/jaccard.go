package fingerprint

// Jaccard returns |A ∩ B| / |A ∪ B|. Two empty sets are identical (1.0).
func Jaccard[K comparable](a, b map[K]struct{}) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}

	shared := Intersection(a, b)
	union := len(a) + len(b) - shared
	if union == 0 {
		return 0.0
	}

	return float64(shared) / float64(union)
}

// Intersection counts the elements present in both sets.
func Intersection[K comparable](a, b map[K]struct{}) int {
	if len(b) < len(a) {
		a, b = b, a
	}

	shared := 0
	for k := range a {
		if _, ok := b[k]; ok {
			shared++
		}
	}
	return shared
}
