package blackjack

import (
	"github.com/thoas/go-funk"

	"github.com/Ashenafi-pixel/minicasino/cards"
)

// BlackjackTotal is the best possible hand value.
const BlackjackTotal = 21

// Hand is the ordered set of cards held by the player or the dealer for one round.
type Hand []cards.Card

func cardValue(r cards.Rank) int {
	switch {
	case r == cards.Ace:
		return 11
	case r.IsFace():
		return 10
	}
	return int(r)
}

// evaluate returns the hand total and how many aces are still counted as 11.
func evaluate(h Hand) (total, softAces int) {
	for _, c := range h {
		total += cardValue(c.Rank)
		if c.Rank == cards.Ace {
			softAces++
		}
	}
	for total > BlackjackTotal && softAces > 0 {
		total -= 10
		softAces--
	}
	return total, softAces
}

// Value is the largest total <= 21 reachable by counting aces as 1 or 11,
// or the all-aces-as-1 total when every option busts.
func Value(h Hand) int {
	total, _ := evaluate(h)
	return total
}

// IsSoft reports whether an ace is still counted as 11.
func IsSoft(h Hand) bool {
	_, soft := evaluate(h)
	return soft > 0
}

func IsBlackjack(h Hand) bool {
	return len(h) == 2 && Value(h) == BlackjackTotal
}

func IsBust(h Hand) bool {
	return Value(h) > BlackjackTotal
}

// Codes returns the short card codes, e.g. ["As", "Kd"].
func (h Hand) Codes() []string {
	if len(h) == 0 {
		return []string{}
	}
	return funk.Map([]cards.Card(h), func(c cards.Card) string {
		return c.String()
	}).([]string)
}
