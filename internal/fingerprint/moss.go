package fingerprint

const (
	DefaultMossK      = 4
	DefaultMossWindow = 5
)

// MossResult is the outcome of a token-winnowing comparison of two documents.
type MossResult struct {
	Similarity    float64 `json:"similarityScore" bson:"similarityScore"`
	FingerprintsA int     `json:"fingerprintsDoc1" bson:"fingerprintsDoc1"`
	FingerprintsB int     `json:"fingerprintsDoc2" bson:"fingerprintsDoc2"`
	Matched       int     `json:"matchedFingerprints" bson:"matchedFingerprints"`
}

// DocumentFingerprints tokenizes doc, winnows its token k-gram hashes and returns the selected hash set
// together with the number of k-grams the document produced.
func DocumentFingerprints(doc string, k, w int) (map[uint64]struct{}, int) {
	kgrams := KGrams(Tokenize(doc), k)
	if len(kgrams) == 0 {
		return map[uint64]struct{}{}, 0
	}
	return HashesOf(Winnow(HashTokenKGrams(kgrams), w)), len(kgrams)
}

// CompareMoss scores two documents with the MOSS-like pipeline:
// tokenize, k-gram, hash, winnow, then Jaccard over the selected hash values.
func CompareMoss(docA, docB string, k, w int) MossResult {
	hashesA, kgramsA := DocumentFingerprints(docA, k, w)
	hashesB, kgramsB := DocumentFingerprints(docB, k, w)

	switch {
	case kgramsA == 0 && kgramsB == 0:
		// Both too short to fingerprint: treated as identical
		return MossResult{Similarity: 1.0}
	case kgramsA == 0 || kgramsB == 0:
		return MossResult{
			Similarity:    0.0,
			FingerprintsA: len(hashesA),
			FingerprintsB: len(hashesB),
		}
	}

	return MossResult{
		Similarity:    Jaccard(hashesA, hashesB),
		FingerprintsA: len(hashesA),
		FingerprintsB: len(hashesB),
		Matched:       Intersection(hashesA, hashesB),
	}
}
