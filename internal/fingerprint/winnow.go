package fingerprint

// Winnow selects the local-minimum fingerprint of every window of w consecutive fingerprints.
// Ties go to the rightmost position. Input shorter than w yields its single minimum.
// w == 0 or empty input yields an empty set.
func Winnow(fps []Fingerprint, w int) map[Fingerprint]struct{} {
	selected := make(map[Fingerprint]struct{})
	if w <= 0 || len(fps) == 0 {
		return selected
	}

	if len(fps) < w {
		selected[minRightmost(fps)] = struct{}{}
		return selected
	}

	for start := 0; start+w <= len(fps); start++ {
		selected[minRightmost(fps[start:start+w])] = struct{}{}
	}

	return selected
}

func minRightmost(window []Fingerprint) Fingerprint {
	best := window[0]
	for _, fp := range window[1:] {
		if fp.Hash < best.Hash || (fp.Hash == best.Hash && fp.Position > best.Position) {
			best = fp
		}
	}
	return best
}

// HashesOf drops positions and collapses duplicate hash values.
func HashesOf(fps map[Fingerprint]struct{}) map[uint64]struct{} {
	hashes := make(map[uint64]struct{}, len(fps))
	for fp := range fps {
		hashes[fp.Hash] = struct{}{}
	}
	return hashes
}
