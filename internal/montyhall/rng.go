package montyhall

import (
	cryptoRand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand/v2"
)

// RandomSource abstract
// Implementations are not required to be safe for concurrent use; give each
// goroutine its own source.
type RandomSource interface {
	IntN(n int) int // [0, n)
}

// DefaultRNG returns a PCG source seeded from the operating system's entropy.
func DefaultRNG() RandomSource {
	return NewSeededRNG(NewSeed())
}

// NewSeed reads 64 bits from crypto/rand. Entropy failure is fatal.
func NewSeed() uint64 {
	var buf [8]byte
	if _, err := cryptoRand.Read(buf[:]); err != nil {
		panic(fmt.Errorf("montyhall: read random seed: %w", err))
	}
	return binary.BigEndian.Uint64(buf[:])
}

// Replicable RNG (e.g. Monte Carlo)
type seededRNG struct{ r *rand.Rand }

func NewSeededRNG(seed uint64) RandomSource {
	return NewStreamRNG(seed, 0)
}

// NewStreamRNG returns a PCG source on the given stream. Sources sharing a
// seed but not a stream produce independent sequences, one per worker.
func NewStreamRNG(seed, stream uint64) RandomSource {
	return &seededRNG{r: rand.New(rand.NewPCG(seed, stream))}
}

func (s *seededRNG) IntN(n int) int { return s.r.IntN(n) }
