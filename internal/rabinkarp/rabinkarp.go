// Package rabinkarp implements the Rabin-Karp polynomial rolling hash and
// exact substring search over raw bytes.
//
// H(s) = (s[0]*radix^(m-1) + ... + s[m-1]) mod prime
package rabinkarp

import (
	"bytes"
	"math/bits"
)

const (
	DefaultRadix uint64 = 256
	// TestPrime keeps hand-computed hashes small.
	TestPrime uint64 = 101
	// ProductionPrime is the Mersenne prime 2^61-1.
	ProductionPrime uint64 = 1<<61 - 1
)

// mulMod computes a*b mod m without overflowing 64 bits.
func mulMod(a, b, m uint64) uint64 {
	hi, lo := bits.Mul64(a, b)
	_, rem := bits.Div64(hi%m, lo, m)
	return rem
}

// addMod and subMod take operands already reduced mod m, so any 64-bit prime is safe.
func addMod(a, b, m uint64) uint64 {
	sum, carry := bits.Add64(a, b, 0)
	if carry != 0 || sum >= m {
		sum -= m
	}
	return sum
}

func subMod(a, b, m uint64) uint64 {
	if a >= b {
		return a - b
	}
	return m - b + a
}

// Hash computes H(kgram) iteratively as h = (h*radix + b) mod prime.
// Empty input hashes to 0, as does a zero prime.
func Hash(kgram []byte, radix, prime uint64) uint64 {
	if prime == 0 {
		return 0
	}
	var h uint64
	for _, b := range kgram {
		h = addMod(mulMod(h, radix, prime), uint64(b)%prime, prime)
	}
	return h
}

// RollingHash maintains H over a fixed-size window that slides one byte at a time.
type RollingHash struct {
	radix uint64
	prime uint64
	// lead is radix^(m-1) mod prime: the weight of the outgoing byte
	lead uint64
	sum  uint64
}

// NewRollingHash seeds the rolling hash with the first window.
func NewRollingHash(window []byte, radix, prime uint64) *RollingHash {
	r := &RollingHash{radix: radix, prime: prime}
	if prime == 0 {
		return r
	}
	r.lead = 1 % prime
	for i := 1; i < len(window); i++ {
		r.lead = mulMod(r.lead, radix, prime)
	}
	r.sum = Hash(window, radix, prime)
	return r
}

// Roll removes out from the front of the window and appends in.
func (r *RollingHash) Roll(out, in byte) {
	if r.prime == 0 {
		return
	}
	weighted := mulMod(uint64(out)%r.prime, r.lead, r.prime)
	h := subMod(r.sum, weighted, r.prime)
	r.sum = addMod(mulMod(h, r.radix, r.prime), uint64(in)%r.prime, r.prime)
}

// Sum returns the hash of the current window.
func (r *RollingHash) Sum() uint64 {
	return r.sum
}

// Search returns every offset in text where pattern occurs, in ascending order.
// Hash hits are confirmed byte by byte before being reported.
func Search(text, pattern []byte, radix, prime uint64) []int {
	m, n := len(pattern), len(text)
	if m == 0 || n == 0 || m > n || prime == 0 {
		return []int{}
	}

	target := Hash(pattern, radix, prime)
	rolling := NewRollingHash(text[:m], radix, prime)

	matches := []int{}
	for i := 0; ; i++ {
		if rolling.Sum() == target && bytes.Equal(text[i:i+m], pattern) {
			matches = append(matches, i)
		}
		if i+m >= n {
			break
		}
		rolling.Roll(text[i], text[i+m])
	}

	return matches
}

// SearchString is Search over strings with the default radix and production prime.
func SearchString(text, pattern string) []int {
	return Search([]byte(text), []byte(pattern), DefaultRadix, ProductionPrime)
}
