// Package prng provides a small deterministic random stream and a pure
// shuffle built on it. The generator is fully specified here (32-bit
// mulberry32 update rule) so that the same seed yields the same
// permutation on every platform and in every reimplementation;
// math/rand makes no such cross-version promise.
package prng

import "hash/fnv"

const (
	questionSeedStep = 10007
	poolSeedStep     = 9973
)

// Stream is a seeded mulberry32 generator.
type Stream struct {
	state uint32
}

// New returns a stream seeded with the given value.
func New(seed uint32) *Stream {
	return &Stream{state: seed}
}

func (s *Stream) next() uint32 {
	s.state += 0x6D2B79F5
	z := s.state
	z = (z ^ (z >> 15)) * (z | 1)
	z ^= z + (z^(z>>7))*(z|61)
	return z ^ (z >> 14)
}

// Float64 returns the next value in [0, 1).
func (s *Stream) Float64() float64 {
	return float64(s.next()) / 4294967296.0
}

// Shuffle returns a new slice holding a Fisher–Yates permutation of in,
// driven entirely by the seed. The input is never modified. Slices of
// length <= 1 come back as plain copies.
func Shuffle[T any](seed uint32, in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	if len(out) <= 1 {
		return out
	}
	s := New(seed)
	for i := len(out) - 1; i > 0; i-- {
		j := int(s.Float64() * float64(i+1))
		out[i], out[j] = out[j], out[i]
	}
	return out
}

// QuestionSeed derives the per-question shuffle seed for a given day.
// A non-empty nonce perturbs every question's seed at once.
func QuestionSeed(dayKey uint32, nonce string, index int) uint32 {
	s := dayKey
	if nonce != "" {
		s ^= hashNonce(nonce)
	}
	return s + uint32(index)*questionSeedStep
}

// PoolSeed derives the seed used to permute a difficulty pool before
// selection when a reroll nonce is in play.
func PoolSeed(dayKey uint32, nonce string, ordinal int) uint32 {
	s := dayKey
	if nonce != "" {
		s ^= hashNonce(nonce)
	}
	return s + uint32(ordinal)*poolSeedStep
}

func hashNonce(nonce string) uint32 {
	h := fnv.New32a()
	h.Write([]byte(nonce))
	return h.Sum32()
}
