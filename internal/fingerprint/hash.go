package fingerprint

import (
	"sync"

	"github.com/aclements/go-rabin/rabin"
	"github.com/cespare/xxhash/v2"
)

// Fingerprint is a k-gram hash paired with the index of the k-gram it came from.
type Fingerprint struct {
	Hash     uint64
	Position int
}

// tokenSeparator keeps ["ab","c"] and ["a","bc"] from hashing alike.
var tokenSeparator = []byte{0x1f}

// HashTokens hashes an ordered token k-gram. Equal sequences hash equal.
func HashTokens(kgram []string) uint64 {
	d := xxhash.New()
	for _, token := range kgram {
		d.WriteString(token)
		d.Write(tokenSeparator)
	}
	return d.Sum64()
}

// HashTokenKGrams hashes each k-gram and tags it with its index.
func HashTokenKGrams(kgrams [][]string) []Fingerprint {
	fps := make([]Fingerprint, len(kgrams))
	for i, kgram := range kgrams {
		fps[i] = Fingerprint{Hash: HashTokens(kgram), Position: i}
	}
	return fps
}

// Rabin tables are read-only once built. One per window size.
var rabinTables sync.Map // int -> *rabin.Table

func rabinTable(k int) *rabin.Table {
	if t, ok := rabinTables.Load(k); ok {
		return t.(*rabin.Table)
	}
	t, _ := rabinTables.LoadOrStore(k, rabin.NewTable(rabin.Poly64, k))
	return t.(*rabin.Table)
}

// HashByteKGrams fingerprints every k-byte window of data with a rolling Rabin hash.
// The position of each fingerprint is the window's starting offset.
func HashByteKGrams(data []byte, k int) []Fingerprint {
	if k <= 0 || len(data) < k {
		return []Fingerprint{}
	}

	h := rabin.New(rabinTable(k))
	fps := make([]Fingerprint, 0, len(data)-k+1)

	h.Write(data[:k-1])
	for end := k - 1; end < len(data); end++ {
		h.Write(data[end : end+1])
		fps = append(fps, Fingerprint{Hash: h.Sum64(), Position: end - k + 1})
	}

	return fps
}
