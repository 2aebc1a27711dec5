package cards

import (
	"errors"

	"github.com/Ashenafi-pixel/minicasino/rng"
)

// DeckSize is the number of cards in a fresh shoe.
const DeckSize = 52

var ErrDuplicateCard = errors.New("cards: duplicate card in stack")

// Shoe deals from a shuffled 52-card deck and refills itself when empty,
// so it never runs out. Not safe for concurrent use; the owning engine serialises access.
type Shoe struct {
	src        rng.Source
	cards      []Card // top of the shoe is the end of the slice
	drawn      int
	reshuffles int
}

func NewShoe(src rng.Source) *Shoe {
	if src == nil {
		src = rng.NewSecure()
	}
	s := &Shoe{src: src}
	s.refill()
	return s
}

func (s *Shoe) refill() {
	s.cards = shuffle(StandardSet(), s.src)
	s.drawn = 0
}

// shuffle is an in-place Fisher-Yates permutation.
func shuffle(deck []Card, src rng.Source) []Card {
	for i := len(deck) - 1; i > 0; i-- {
		j := src.Intn(i + 1)
		deck[i], deck[j] = deck[j], deck[i]
	}
	return deck
}

// Draw removes and returns the top card, reshuffling a fresh deck first if the shoe is empty.
func (s *Shoe) Draw() Card {
	if len(s.cards) == 0 {
		s.refill()
		s.reshuffles++
	}
	c := s.cards[len(s.cards)-1]
	s.cards = s.cards[:len(s.cards)-1]
	s.drawn++
	return c
}

func (s *Shoe) Remaining() int {
	return len(s.cards)
}

func (s *Shoe) Drawn() int {
	return s.drawn
}

// Reshuffles counts the implicit refills triggered by drawing from an empty shoe.
func (s *Shoe) Reshuffles() int {
	return s.reshuffles
}

// Stack replaces the shoe with a fresh deck whose next draws are top, in order.
// The rest of the deck is shuffled beneath them.
func (s *Shoe) Stack(top ...Card) error {
	seen := make(map[Card]bool, len(top))
	for _, c := range top {
		if seen[c] {
			return ErrDuplicateCard
		}
		seen[c] = true
	}
	rest := make([]Card, 0, DeckSize-len(top))
	for _, c := range StandardSet() {
		if !seen[c] {
			rest = append(rest, c)
		}
	}
	rest = shuffle(rest, s.src)
	for i := len(top) - 1; i >= 0; i-- {
		rest = append(rest, top[i])
	}
	s.cards = rest
	s.drawn = 0
	return nil
}
