package cards

import "strings"

const (
	// BlackjackScore is the highest score a hand can have without busting.
	BlackjackScore = 21

	// MaxHandSize is the number of cards that makes a Ngu Linh hand.
	// A hand of this size cannot draw again.
	MaxHandSize = 5

	// MinPlayerScore is the lowest score a player can stay with.
	MinPlayerScore = 16

	// MinDealerScore is the score the dealer keeps drawing below.
	MinDealerScore = 15
)

type Hand []Card

func (h Hand) Clone() Hand {
	if h == nil {
		return nil
	}
	return append(Hand{}, h...)
}

// FaceUp returns only the visible cards of the hand.
func (h Hand) FaceUp() Hand {
	visible := make(Hand, 0, len(h))
	for _, card := range h {
		if card.FaceUp {
			visible = append(visible, card)
		}
	}
	return visible
}

func (h Hand) String() string {
	parts := make([]string, 0, len(h))
	for _, card := range h {
		if card.FaceUp {
			parts = append(parts, card.String())
		} else {
			parts = append(parts, "??")
		}
	}
	return strings.Join(parts, " ")
}

// Score sums the hand. Aces are resolved one by one in hand order: each ace
// takes 11, else 10, else 1, as long as the total plus 1 for every ace not yet
// resolved stays within 21.
func Score(hand Hand) int {
	total := 0
	aces := 0

	for _, card := range hand {
		if card.Rank == Ace {
			aces++
			continue
		}
		total += card.Rank.Value()
	}

	for i := 0; i < aces; i++ {
		remaining := aces - i - 1
		switch {
		case total+11+remaining <= BlackjackScore:
			total += 11
		case total+10+remaining <= BlackjackScore:
			total += 10
		default:
			total += 1
		}
	}

	return total
}
