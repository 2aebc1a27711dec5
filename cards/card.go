package cards

import (
	"fmt"
	"strings"
)

type Suit string

const (
	Clubs    Suit = "c"
	Diamonds Suit = "d"
	Hearts   Suit = "h"
	Spades   Suit = "s"
)

var Suits = []Suit{Clubs, Diamonds, Hearts, Spades}

var suitNames = map[Suit]string{
	Clubs:    "Clubs",
	Diamonds: "Diamonds",
	Hearts:   "Hearts",
	Spades:   "Spades",
}

func (s Suit) Name() string {
	return suitNames[s]
}

// Rank is 1 (Ace) through 13 (King).
type Rank int

const (
	Ace Rank = iota + 1
	Two
	Three
	Four
	Five
	Six
	Seven
	Eight
	Nine
	Ten
	Jack
	Queen
	King
)

var Ranks = []Rank{Ace, Two, Three, Four, Five, Six, Seven, Eight, Nine, Ten, Jack, Queen, King}

func (r Rank) String() string {
	switch r {
	case Ace:
		return "A"
	case Jack:
		return "J"
	case Queen:
		return "Q"
	case King:
		return "K"
	}
	return fmt.Sprintf("%d", int(r))
}

func (r Rank) Name() string {
	switch r {
	case Ace:
		return "Ace"
	case Jack:
		return "Jack"
	case Queen:
		return "Queen"
	case King:
		return "King"
	}
	return r.String()
}

func (r Rank) IsFace() bool {
	return r == Jack || r == Queen || r == King
}

func (r Rank) Valid() bool {
	return r >= Ace && r <= King
}

// Card is an immutable rank x suit value.
type Card struct {
	Rank Rank `json:"rank"`
	Suit Suit `json:"suit"`
}

func New(rank Rank, suit Suit) Card {
	return Card{Rank: rank, Suit: suit}
}

// String is the short code, e.g. "As", "10h", "Kd".
func (c Card) String() string {
	return c.Rank.String() + string(c.Suit)
}

// Name is the display name, e.g. "Ace of Spades".
func (c Card) Name() string {
	return c.Rank.Name() + " of " + c.Suit.Name()
}

// Parse reads a short code produced by String.
func Parse(code string) (Card, error) {
	code = strings.TrimSpace(code)
	if len(code) < 2 {
		return Card{}, fmt.Errorf("cards: invalid card %q", code)
	}
	suit := Suit(strings.ToLower(code[len(code)-1:]))
	if _, ok := suitNames[suit]; !ok {
		return Card{}, fmt.Errorf("cards: invalid suit in %q", code)
	}
	rankStr := strings.ToUpper(code[:len(code)-1])
	for _, r := range Ranks {
		if r.String() == rankStr {
			return New(r, suit), nil
		}
	}
	return Card{}, fmt.Errorf("cards: invalid rank in %q", code)
}

// MustParse is Parse for literals in tests and fixtures.
func MustParse(code string) Card {
	c, err := Parse(code)
	if err != nil {
		panic(err)
	}
	return c
}

// StandardSet returns the 52 distinct cards in suit-major order.
func StandardSet() []Card {
	set := make([]Card, 0, len(Suits)*len(Ranks))
	for _, s := range Suits {
		for _, r := range Ranks {
			set = append(set, New(r, s))
		}
	}
	return set
}
