package rabinkarp

import (
	"math/big"
	"reflect"
	"testing"
)

// largePrime is the largest prime below 2^64.
const largePrime uint64 = 18446744073709551557

func TestHashKnownValues(t *testing.T) {
	cases := []struct {
		in    string
		prime uint64
		want  uint64
	}{
		{"", TestPrime, 0},
		{"A", TestPrime, 65},
		{"AB", TestPrime, 41},  // (65*256 + 66) % 101
		{"ABC", TestPrime, 59}, // (41*256 + 67) % 101
		{"a", 257, 97},
		{"ab", 257, 1}, // (97*256 + 98) % 257
	}
	for _, tc := range cases {
		if got := Hash([]byte(tc.in), DefaultRadix, tc.prime); got != tc.want {
			t.Errorf("Hash(%q, 256, %d) = %d, want %d", tc.in, tc.prime, got, tc.want)
		}
	}
}

func TestRollingMatchesDirect(t *testing.T) {
	inputs := []string{
		"the quick brown fox jumps over the lazy dog",
		"\x00\xff\x00\xff\x80\x7f\x01\xfe\x00\x00\xff\xff",
		"AAAAAAAAAAAAAAAA",
	}
	for _, prime := range []uint64{TestPrime, 257, 1_000_000_007, ProductionPrime, largePrime} {
		for _, in := range inputs {
			data := []byte(in)
			for _, m := range []int{1, 3, 8} {
				r := NewRollingHash(data[:m], DefaultRadix, prime)
				for i := 0; ; i++ {
					if want := Hash(data[i:i+m], DefaultRadix, prime); r.Sum() != want {
						t.Fatalf("prime=%d m=%d offset=%d: rolling %d, direct %d", prime, m, i, r.Sum(), want)
					}
					if i+m >= len(data) {
						break
					}
					r.Roll(data[i], data[i+m])
				}
			}
		}
	}
}

func TestSearch(t *testing.T) {
	cases := []struct {
		name          string
		text, pattern string
		want          []int
	}{
		{"empty pattern", "abc", "", []int{}},
		{"empty text", "", "a", []int{}},
		{"pattern longer", "ab", "abc", []int{}},
		{"overlapping", "AAAAA", "AAA", []int{0, 1, 2}},
		{"whole text", "needle", "needle", []int{0}},
		{"several", "abracadabra", "abra", []int{0, 7}},
		{"absent", "abracadabra", "zzz", []int{}},
	}
	for _, tc := range cases {
		for _, prime := range []uint64{TestPrime, ProductionPrime} {
			got := Search([]byte(tc.text), []byte(tc.pattern), DefaultRadix, prime)
			if !reflect.DeepEqual(got, tc.want) {
				t.Errorf("%s (prime %d): got %v, want %v", tc.name, prime, got, tc.want)
			}
		}
	}
}

func TestSearchRejectsCollisions(t *testing.T) {
	// With prime 101 many distinct windows share a hash; only true matches may be reported
	text := []byte("int main() { int a = 1; int b = 2; return a + b; }")
	pattern := []byte("int")
	got := Search(text, pattern, DefaultRadix, TestPrime)
	want := []int{0, 13, 24}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("got %v, want %v", got, want)
	}
}

func TestSearchString(t *testing.T) {
	got := SearchString("copy copy copy", "copy")
	if !reflect.DeepEqual(got, []int{0, 5, 10}) {
		t.Fatalf("got %v", got)
	}
}

func TestHashWithPrimeAbove2To63(t *testing.T) {
	in := []byte("\xff\xfe\xfd\xfc\xfb\xfa\xf9\xf8\xf7\xf6\xf5\xf4")
	p := new(big.Int).SetUint64(largePrime)
	want := new(big.Int)
	for _, b := range in {
		want.Mul(want, big.NewInt(int64(DefaultRadix)))
		want.Add(want, big.NewInt(int64(b)))
		want.Mod(want, p)
	}
	if got := Hash(in, DefaultRadix, largePrime); got != want.Uint64() {
		t.Fatalf("Hash = %d, want %d", got, want.Uint64())
	}

	text := append(append([]byte("\xff\xff\xff"), in...), in...)
	got := Search(text, in, DefaultRadix, largePrime)
	if !reflect.DeepEqual(got, []int{3, 3 + len(in)}) {
		t.Fatalf("Search = %v", got)
	}
}
