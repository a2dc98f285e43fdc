package commentary

import (
	"context"
	"fmt"
	"strings"

	"github.com/six78/xidach-cli/pkg/cards"
	"github.com/six78/xidach-cli/pkg/protocol"
)

const (
	// Fallback is returned whenever a comment cannot be produced.
	Fallback = "Lên bài nào!"

	// EmptyReply replaces a blank answer of the model.
	EmptyReply = "Chúc may mắn!"
)

// Service produces a short dealer remark. It never fails: any error
// is reported as the Fallback text.
type Service interface {
	Comment(ctx context.Context, request Request) string
}

type Request struct {
	PlayerHand  cards.Hand
	DealerHand  cards.Hand
	Phase       protocol.Phase
	PlayerScore int
	DealerScore int
	Result      string
}

// NewRequest describes the table from the point of view of the active
// player, or of the first player when nobody is active. The dealer score
// only counts visible cards.
func NewRequest(session *protocol.Session) Request {
	request := Request{
		DealerHand:  session.DealerHand.Clone(),
		Phase:       session.Phase,
		DealerScore: cards.Score(session.DealerHand.FaceUp()),
	}

	player := session.ActivePlayer()
	if player == nil && len(session.Players) > 0 {
		player = &session.Players[0]
	}
	if player != nil {
		request.PlayerHand = player.Hand.Clone()
		request.PlayerScore = player.Score()
	}

	if session.Phase == protocol.PhaseResolution {
		request.Result = session.Message
	}

	return request
}

func (r Request) prompt() string {
	result := r.Result
	if result == "" {
		result = "Game in progress"
	}

	playerCards := make([]string, 0, len(r.PlayerHand))
	for _, card := range r.PlayerHand {
		playerCards = append(playerCards, card.String())
	}

	dealerCards := strings.ReplaceAll(r.DealerHand.String(), " ", ", ")

	return fmt.Sprintf(`You are a charismatic, slightly witty Vietnamese casino dealer playing "Xì Dách".
Current Game State:
- Phase: %s
- Player Hand: [%s] (Total: %d)
- Dealer Visible Hand: [%s] (Total: %d)
- Result of turn: %s

Rules brief: Xi Bang (2 Aces), Xi Dach (A+10/J/Q/K), Ngu Linh (5 cards <= 21).
Min points to stay: Player 16, Dealer 15.

Task: Give a short, engaging comment in Vietnamese (under 20 words) as the dealer.
Be encouraging if they are losing, or slightly salty if they are winning with a big hand like Xi Bang.
Don't repeat yourself. Use casino slang like "Quắc rồi", "Dằn chưa?", "Ăn non thế".`,
		r.Phase,
		strings.Join(playerCards, ", "), r.PlayerScore,
		dealerCards, r.DealerScore,
		result,
	)
}
