// Package style implements C4 (CSS scoping) and C5 (the hash allocator).
package style

import (
	"strings"

	"github.com/iancoleman/strcase"
)

// alphabet is the character set short hashes are drawn from: letters,
// digits, underscore and hyphen — 64 symbols.
const alphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789_-"

// startAlphabet excludes digits and hyphen so the generated identifier is
// always a valid CSS ident/class-name start character.
const startAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ_"

// populationAt(k) is len(startAlphabet) * len(alphabet)^(k-1), the
// number of distinct length-k strings reachable with a valid start char.
// Used to decide how long a hash must be once the `used` population grows.
func populationAt(length int) int {
	if length <= 0 {
		return 0
	}
	n := len(startAlphabet)
	for i := 1; i < length; i++ {
		n *= len(alphabet)
	}
	return n
}

// Allocator is the deterministic, collision-free short-identifier
// generator described in §4.5. Callers seed it with an input name; the
// same seed always yields the same hash for the lifetime of the
// Allocator (via cache), and seeds that normalize to different strings
// never collide (via used); seeds that normalize alike share a hash.
type Allocator struct {
	used  map[string]bool
	cache map[string]string
}

func NewAllocator() *Allocator {
	return &Allocator{used: map[string]bool{}, cache: map[string]string{}}
}

// Seed pre-registers a hash as already in use (e.g. when resuming from a
// prior compilation's rename table), so subsequent Generate calls never
// reissue it.
func (a *Allocator) Seed(hash string) {
	a.used[hash] = true
}

// fnvFold is the "FNV-like 5381 xor hash" §4.5 specifies: a djb2/FNV
// hybrid that starts from the classic 5381 seed and xors in each byte.
func fnvFold(s string) uint64 {
	var h uint64 = 5381
	for i := 0; i < len(s); i++ {
		h = h*33 ^ uint64(s[i])
	}
	return h
}

// Generate returns a deterministic, collision-free hash for seed, with
// length chosen between min and max (growing as the `used` population
// fills a given length's addressable space) and first character always
// non-digit/non-hyphen.
func (a *Allocator) Generate(seed string, min, max int) string {
	normalized := normalizeSeed(seed)
	if h, ok := a.cache[normalized]; ok {
		return h
	}
	if min <= 0 {
		min = 6
	}
	if max < min {
		max = min
	}

	length := min
	for length < max && len(a.used) >= populationAt(length) {
		length++
	}

	index := fnvFold(normalized)
	for {
		candidate := indexToString(index, length)
		if !a.used[candidate] {
			a.used[candidate] = true
			a.cache[normalized] = candidate
			return candidate
		}
		index = nextIndex(index, length)
		if length < max && index == 0 {
			length++
		}
	}
}

func normalizeSeed(seed string) string {
	// strcase keeps hashing stable across path/punctuation variation in
	// seeds like "my-component.svelte" vs "my_component.svelte".
	return strcase.ToSnake(strings.ReplaceAll(seed, "/", "_"))
}

// indexToString renders index as a base-N string of exactly length
// characters, first digit drawn from startAlphabet, the rest from
// alphabet — the "lexicographic carry order" stepping §4.5 describes.
func indexToString(index uint64, length int) string {
	digits := make([]byte, length)
	startN := uint64(len(startAlphabet))
	n := uint64(len(alphabet))

	digits[0] = startAlphabet[index%startN]
	rem := index / startN
	for i := 1; i < length; i++ {
		digits[i] = alphabet[rem%n]
		rem /= n
	}
	return string(digits)
}

func nextIndex(index uint64, length int) uint64 {
	return index + 1
}
