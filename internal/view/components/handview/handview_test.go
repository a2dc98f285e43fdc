package handview

import (
	"testing"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/stretchr/testify/require"

	"github.com/six78/xidach-cli/pkg/cards"
)

func init() {
	lipgloss.SetColorProfile(termenv.Ascii)
}

func TestHand(t *testing.T) {
	hand := cards.Hand{
		{Suit: cards.Hearts, Rank: cards.Ten, FaceUp: true},
		{Suit: cards.Spades, Rank: cards.Seven, FaceUp: true},
	}
	require.Equal(t, "10♥ 7♠", Hand(hand))
	require.Equal(t, "17", Score(hand))
}

func TestHiddenCard(t *testing.T) {
	hand := cards.Hand{
		{Suit: cards.Hearts, Rank: cards.Ten, FaceUp: false},
		{Suit: cards.Clubs, Rank: cards.Five, FaceUp: true},
	}
	require.Equal(t, hiddenCard+" 5♣", Hand(hand))
	require.Equal(t, "5+?", Score(hand))
}

func TestSpecialHand(t *testing.T) {
	hand := cards.Hand{
		{Suit: cards.Hearts, Rank: cards.Ace, FaceUp: true},
		{Suit: cards.Clubs, Rank: cards.King, FaceUp: true},
	}
	require.Equal(t, "21 (Xì Dách)", Score(hand))
}

func TestEmptyHand(t *testing.T) {
	require.Equal(t, "-", Hand(nil))
	require.Empty(t, Score(nil))
}
