package protocol

import "github.com/six78/xidach-cli/pkg/cards"

type Phase string

const (
	PhaseLobby       Phase = "LOBBY"
	PhaseBetting     Phase = "BETTING"
	PhaseInitialDeal Phase = "INITIAL_DEAL"
	PhaseTurns       Phase = "TURNS"
	PhaseDealerTurn  Phase = "DEALER_TURN"
	PhaseResolution  Phase = "RESOLUTION"
)

// RoundInProgress is true between the bets and the resolution.
func (p Phase) RoundInProgress() bool {
	switch p {
	case PhaseBetting, PhaseInitialDeal, PhaseTurns, PhaseDealerTurn:
		return true
	default:
		return false
	}
}

// Session is the whole table. The host owns the only mutable instance,
// every STATE_UPDATE carries a full copy of it.
type Session struct {
	RoomCode          RoomCode    `json:"roomCode"`
	Round             int         `json:"round"`
	Players           PlayersList `json:"players"`
	DealerHand        cards.Hand  `json:"dealerHand"`
	Phase             Phase       `json:"phase"`
	ActivePlayerIndex int         `json:"activePlayerIndex"`
	Deck              cards.Deck  `json:"deck"`
	Message           string      `json:"message"`
	Commentary        string      `json:"commentary"`

	// Local presentation fields, never taken from a snapshot.
	IsHost    bool `json:"-"`
	Connected bool `json:"-"`
}

func NewSession(code RoomCode) *Session {
	return &Session{
		RoomCode:          code,
		Round:             0,
		Players:           PlayersList{},
		DealerHand:        cards.Hand{},
		Phase:             PhaseLobby,
		ActivePlayerIndex: 0,
		Deck:              cards.Deck{},
	}
}

// ActivePlayer returns nil when nobody is left to act.
func (s *Session) ActivePlayer() *Player {
	if s.ActivePlayerIndex < 0 || s.ActivePlayerIndex >= len(s.Players) {
		return nil
	}
	return &s.Players[s.ActivePlayerIndex]
}

func (s *Session) IsActive(id PlayerID) bool {
	player := s.ActivePlayer()
	return player != nil && player.ID == id
}

// CardsInPlay counts every card of the round: deck, player hands and dealer hand.
func (s *Session) CardsInPlay() int {
	total := len(s.Deck) + len(s.DealerHand)
	for _, player := range s.Players {
		total += len(player.Hand)
	}
	return total
}

// Clone returns a deep copy.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	clone := *s
	clone.Players = s.Players.Clone()
	clone.DealerHand = s.DealerHand.Clone()
	clone.Deck = s.Deck.Clone()
	return &clone
}

// ApplySnapshot replaces the local view with the received snapshot, keeping
// only the fields owned by the local participant: its role flag, the room code
// it displays and its connection flag.
func ApplySnapshot(local *Session, snapshot Session) *Session {
	next := snapshot.Clone()
	if local == nil {
		next.IsHost = false
		next.Connected = true
		return next
	}
	next.IsHost = local.IsHost
	next.Connected = local.Connected
	if !local.RoomCode.Empty() {
		next.RoomCode = local.RoomCode
	}
	return next
}
