package crash

import (
	"math"

	"github.com/shopspring/decimal"

	"github.com/Ashenafi-pixel/minicasino/rng"
)

const (
	DefaultMaxMultiplier = 50.0
	DefaultSkew          = 4.0
)

// Sampler draws crash points from 1 + U^Skew * (Max-1). Higher skew pushes
// mass toward 1.00 while keeping the tail up to Max.
type Sampler struct {
	Max  float64
	Skew float64
	src  rng.Source
}

func NewSampler(src rng.Source, max, skew float64) *Sampler {
	if src == nil {
		src = rng.NewSecure()
	}
	if max <= 1 {
		max = DefaultMaxMultiplier
	}
	if skew <= 0 {
		skew = DefaultSkew
	}
	return &Sampler{Max: max, Skew: skew, src: src}
}

// Sample returns a crash point floored to 2 decimals, never below 1.00.
func (s *Sampler) Sample() decimal.Decimal {
	u := s.src.Float64()
	raw := 1 + math.Pow(u, s.Skew)*(s.Max-1)
	p := decimal.NewFromFloat(raw).RoundFloor(2)
	if p.LessThan(one) {
		return one
	}
	return p
}
