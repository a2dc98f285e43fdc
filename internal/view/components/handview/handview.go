// Package handview renders cards and hands as short colored strings.
package handview

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/six78/xidach-cli/pkg/cards"
)

const hiddenCard = "🂠"

var (
	cardStyle   = lipgloss.NewStyle().Bold(true)
	redStyle    = cardStyle.Copy().Foreground(lipgloss.Color("#FF5252"))
	blackStyle  = cardStyle.Copy().Foreground(lipgloss.Color("#FAFAFA"))
	hiddenStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#555555"))
)

func Card(card cards.Card) string {
	if !card.FaceUp {
		return hiddenStyle.Render(hiddenCard)
	}
	switch card.Suit {
	case cards.Hearts, cards.Diamonds:
		return redStyle.Render(card.String())
	default:
		return blackStyle.Render(card.String())
	}
}

func Hand(hand cards.Hand) string {
	if len(hand) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(hand))
	for _, card := range hand {
		parts = append(parts, Card(card))
	}
	return strings.Join(parts, " ")
}

// Score shows the score of the visible cards, with a question mark
// while some cards are still face down.
func Score(hand cards.Hand) string {
	if len(hand) == 0 {
		return ""
	}
	visible := hand.FaceUp()
	score := fmt.Sprintf("%d", cards.Score(visible))
	if len(visible) != len(hand) {
		return score + "+?"
	}
	handType := cards.Classify(hand)
	if handType != cards.Normal {
		return fmt.Sprintf("%s (%s)", score, handType)
	}
	return score
}
