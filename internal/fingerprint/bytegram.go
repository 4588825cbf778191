package fingerprint

const DefaultByteK = 25

// ByteResult is the outcome of a byte k-gram comparison of two documents.
//
// Similarity is the Jaccard index over (hash, position) pairs: a window only matches
// a window with the same content at the same offset. SharedHashes ignores position and
// counts distinct window contents the documents have in common anywhere.
type ByteResult struct {
	Similarity   float64 `json:"similarityScore" bson:"similarityScore"`
	KGramsA      int     `json:"kgramsDoc1" bson:"kgramsDoc1"`
	KGramsB      int     `json:"kgramsDoc2" bson:"kgramsDoc2"`
	Matched      int     `json:"matchedKgrams" bson:"matchedKgrams"`
	SharedHashes int     `json:"sharedHashes" bson:"sharedHashes"`
}

// CompareBytes fingerprints every k-byte window of both documents (no winnowing)
// and scores them with Jaccard. An empty document or k == 0 scores 0. When both documents
// are shorter than k there is nothing to fingerprint, so they score 1 only if equal.
func CompareBytes(docA, docB string, k int) ByteResult {
	if k <= 0 || docA == "" || docB == "" {
		return ByteResult{}
	}
	if len(docA) < k && len(docB) < k {
		if docA == docB {
			return ByteResult{Similarity: 1.0}
		}
		return ByteResult{}
	}

	pairsA := toSet(HashByteKGrams([]byte(docA), k))
	pairsB := toSet(HashByteKGrams([]byte(docB), k))

	return ByteResult{
		Similarity:   Jaccard(pairsA, pairsB),
		KGramsA:      len(pairsA),
		KGramsB:      len(pairsB),
		Matched:      Intersection(pairsA, pairsB),
		SharedHashes: Intersection(HashesOf(pairsA), HashesOf(pairsB)),
	}
}

func toSet(fps []Fingerprint) map[Fingerprint]struct{} {
	set := make(map[Fingerprint]struct{}, len(fps))
	for _, fp := range fps {
		set[fp] = struct{}{}
	}
	return set
}
