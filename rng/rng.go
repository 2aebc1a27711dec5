package rng

import (
	"crypto/rand"
	"encoding/binary"
	"math/big"
	mrand "math/rand"
	"sync"
)

// Source is the uniform random generator consumed by shuffles and crash sampling.
type Source interface {
	// Intn returns a uniform int in [0, n). n <= 0 returns 0.
	Intn(n int) int
	// Float64 returns a uniform float in [0, 1).
	Float64() float64
}

// Secure draws from crypto/rand (CSPRNG) for fair, unpredictable outcomes.
type Secure struct{}

func NewSecure() Secure {
	return Secure{}
}

func (Secure) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	max := big.NewInt(int64(n))
	v, err := rand.Int(rand.Reader, max)
	if err != nil {
		return 0
	}
	return int(v.Int64())
}

func (Secure) Float64() float64 {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0
	}
	// 53 random bits -> [0, 1)
	return float64(binary.BigEndian.Uint64(b[:])>>11) / (1 << 53)
}

// Seeded is a deterministic source for tests and replays. Safe for concurrent use.
type Seeded struct {
	mu sync.Mutex
	r  *mrand.Rand
}

func NewSeeded(seed int64) *Seeded {
	return &Seeded{r: mrand.New(mrand.NewSource(seed))}
}

func (s *Seeded) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Intn(n)
}

func (s *Seeded) Float64() float64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.r.Float64()
}

// Fixed replays a scripted sequence of floats; Intn scales the same values.
// When the script runs out it repeats the last value.
type Fixed struct {
	mu     sync.Mutex
	values []float64
	pos    int
}

func NewFixed(values ...float64) *Fixed {
	return &Fixed{values: values}
}

func (f *Fixed) next() float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.values) == 0 {
		return 0
	}
	if f.pos >= len(f.values) {
		return f.values[len(f.values)-1]
	}
	v := f.values[f.pos]
	f.pos++
	return v
}

func (f *Fixed) Float64() float64 {
	return f.next()
}

func (f *Fixed) Intn(n int) int {
	if n <= 0 {
		return 0
	}
	v := int(f.next() * float64(n))
	if v >= n {
		v = n - 1
	}
	if v < 0 {
		v = 0
	}
	return v
}
