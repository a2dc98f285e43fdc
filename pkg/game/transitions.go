package game

import (
	"fmt"

	"github.com/pkg/errors"

	"github.com/six78/xidach-cli/pkg/cards"
	"github.com/six78/xidach-cli/pkg/protocol"
)

const (
	InitialChips = 1000

	// MaxPlayers keeps every possible hand within one deck: 8*5 + 5 <= 52.
	MaxPlayers = 8
)

const (
	WelcomeMessage    = "Chào mừng đến với Sòng Bài Xì Dách!"
	WelcomeCommentary = "Sòng đang mở, vào kiếm tí lộc nào!"
	BettingMessage    = "Mời cả sòng đặt cược!"
	DealingMessage    = "Nhà cái đang chia bài..."
	DealerTurnMessage = "Nhà cái lật bài!"
	ResolutionMessage = "Kết thúc ván"
)

var (
	ErrWrongPhase     = errors.New("action is not allowed in the current phase")
	ErrNotYourTurn    = errors.New("not your turn")
	ErrUnknownPlayer  = errors.New("unknown player")
	ErrInvalidBet     = errors.New("bet must be positive and within chips")
	ErrAlreadyReady   = errors.New("bet is already placed")
	ErrNoPlayers      = errors.New("no players at the table")
	ErrHandFull       = errors.New("hand already has five cards")
	ErrTableFull      = errors.New("table is full")
	ErrAlreadySeated  = errors.New("player is already seated")
	ErrDeckIncomplete = errors.New("deck must contain 52 cards")
)

// Every transition takes a session and returns the next one. The input is
// never modified, the result is a deep copy.

func requirePhase(s *protocol.Session, phases ...protocol.Phase) error {
	for _, phase := range phases {
		if s.Phase == phase {
			return nil
		}
	}
	return errors.Wrapf(ErrWrongPhase, "phase is %s", s.Phase)
}

func StartRound(s *protocol.Session, deck cards.Deck) (*protocol.Session, error) {
	if err := requirePhase(s, protocol.PhaseLobby, protocol.PhaseResolution); err != nil {
		return nil, err
	}
	if len(s.Players) == 0 {
		return nil, ErrNoPlayers
	}
	if len(deck) != len(cards.Suits)*len(cards.Ranks) {
		return nil, ErrDeckIncomplete
	}

	next := s.Clone()
	next.Deck = deck.Clone()
	next.DealerHand = cards.Hand{}
	next.ActivePlayerIndex = 0
	next.Round++
	next.Phase = protocol.PhaseBetting
	next.Message = BettingMessage

	for i := range next.Players {
		player := &next.Players[i]
		player.Hand = cards.Hand{}
		player.Bet = 0
		player.IsReady = false
		player.Status = protocol.StatusWaiting
		player.Outcome = ""
		if player.Chips <= 0 {
			player.Chips = InitialChips
		}
	}

	return next, nil
}

func PlaceBet(s *protocol.Session, id protocol.PlayerID, amount int) (*protocol.Session, error) {
	if err := requirePhase(s, protocol.PhaseBetting); err != nil {
		return nil, err
	}
	index := s.Players.Index(id)
	if index < 0 {
		return nil, ErrUnknownPlayer
	}
	player := s.Players[index]
	if player.IsReady {
		return nil, ErrAlreadyReady
	}
	if amount <= 0 || amount > player.Chips {
		return nil, errors.Wrapf(ErrInvalidBet, "bet %d with %d chips", amount, player.Chips)
	}

	next := s.Clone()
	next.Players[index].Bet = amount
	next.Players[index].IsReady = true
	checkAllReady(next)

	return next, nil
}

// checkAllReady moves a betting table to the deal once every seated player is ready.
func checkAllReady(s *protocol.Session) {
	if s.Phase == protocol.PhaseBetting && s.Players.AllReady() {
		s.Phase = protocol.PhaseInitialDeal
		s.Message = DealingMessage
	}
}

func DealInitialCards(s *protocol.Session) (*protocol.Session, error) {
	if err := requirePhase(s, protocol.PhaseInitialDeal); err != nil {
		return nil, err
	}

	next := s.Clone()

	for i := range next.Players {
		player := &next.Players[i]
		if !player.IsReady {
			continue
		}
		for j := 0; j < 2; j++ {
			card, err := next.Deck.Draw()
			if err != nil {
				return nil, err
			}
			player.Hand = append(player.Hand, card.Up())
		}
		player.Status = protocol.StatusPlaying
	}

	hole, err := next.Deck.Draw()
	if err != nil {
		return nil, err
	}
	shown, err := next.Deck.Draw()
	if err != nil {
		return nil, err
	}
	next.DealerHand = cards.Hand{hole.Down(), shown.Up()}

	next.Phase = protocol.PhaseTurns
	next.ActivePlayerIndex = -1
	advanceTurn(next)

	return next, nil
}

func requireActive(s *protocol.Session, id protocol.PlayerID) (int, error) {
	if err := requirePhase(s, protocol.PhaseTurns); err != nil {
		return -1, err
	}
	index := s.Players.Index(id)
	if index < 0 {
		return -1, ErrUnknownPlayer
	}
	if index != s.ActivePlayerIndex {
		return -1, ErrNotYourTurn
	}
	return index, nil
}

func Hit(s *protocol.Session, id protocol.PlayerID) (*protocol.Session, error) {
	index, err := requireActive(s, id)
	if err != nil {
		return nil, err
	}
	if len(s.Players[index].Hand) >= cards.MaxHandSize {
		return nil, ErrHandFull
	}

	next := s.Clone()
	card, err := next.Deck.Draw()
	if err != nil {
		return nil, err
	}

	player := &next.Players[index]
	player.Hand = append(player.Hand, card.Up())
	if player.Score() > cards.BlackjackScore {
		player.Status = protocol.StatusQuac
		advanceTurn(next)
	}

	return next, nil
}

func Stand(s *protocol.Session, id protocol.PlayerID) (*protocol.Session, error) {
	index, err := requireActive(s, id)
	if err != nil {
		return nil, err
	}

	next := s.Clone()
	next.Players[index].Status = protocol.StatusStay
	advanceTurn(next)

	return next, nil
}

// advanceTurn moves to the next player still playing the round.
// Past the last player the dealer takes the turn.
func advanceTurn(s *protocol.Session) {
	index := s.ActivePlayerIndex + 1
	for index < len(s.Players) && s.Players[index].Status != protocol.StatusPlaying {
		index++
	}
	setActive(s, index)
}

func setActive(s *protocol.Session, index int) {
	if index >= len(s.Players) {
		s.ActivePlayerIndex = len(s.Players)
		s.Phase = protocol.PhaseDealerTurn
		s.Message = DealerTurnMessage
		return
	}
	s.ActivePlayerIndex = index
	s.Message = fmt.Sprintf("Lượt của %s", s.Players[index].Name)
}

func RevealDealerHand(s *protocol.Session) (*protocol.Session, error) {
	if err := requirePhase(s, protocol.PhaseDealerTurn); err != nil {
		return nil, err
	}
	next := s.Clone()
	for i := range next.DealerHand {
		next.DealerHand[i].FaceUp = true
	}
	return next, nil
}

func DealerShouldDraw(s *protocol.Session) bool {
	return cards.Score(s.DealerHand) < cards.MinDealerScore && len(s.DealerHand) < cards.MaxHandSize
}

func DealerDraw(s *protocol.Session) (*protocol.Session, error) {
	if err := requirePhase(s, protocol.PhaseDealerTurn); err != nil {
		return nil, err
	}
	if len(s.DealerHand) >= cards.MaxHandSize {
		return nil, ErrHandFull
	}
	next := s.Clone()
	card, err := next.Deck.Draw()
	if err != nil {
		return nil, err
	}
	next.DealerHand = append(next.DealerHand, card.Up())
	return next, nil
}

// Resolve compares every player who played the round against the dealer
// and settles the bets: a win adds the bet, a loss takes it, a push keeps it.
func Resolve(s *protocol.Session) (*protocol.Session, error) {
	if err := requirePhase(s, protocol.PhaseDealerTurn); err != nil {
		return nil, err
	}

	next := s.Clone()
	next.Phase = protocol.PhaseResolution
	next.Message = ResolutionMessage

	for i := range next.DealerHand {
		next.DealerHand[i].FaceUp = true
	}

	for i := range next.Players {
		player := &next.Players[i]
		if !playedRound(*player) {
			continue
		}
		player.Outcome = cards.Compare(player.Hand, next.DealerHand)
		switch player.Outcome {
		case cards.PlayerWins:
			player.Chips += player.Bet
		case cards.DealerWins:
			player.Chips -= player.Bet
		}
		player.Status = protocol.StatusDone
	}

	return next, nil
}

func playedRound(player protocol.Player) bool {
	return player.Status == protocol.StatusStay ||
		player.Status == protocol.StatusQuac ||
		player.Status == protocol.StatusPlaying
}

// AddPlayer seats a new player. Late joiners wait for the next round.
func AddPlayer(s *protocol.Session, id protocol.PlayerID, name string, chips int) (*protocol.Session, error) {
	if s.Players.Contains(id) {
		return nil, ErrAlreadySeated
	}
	if len(s.Players) >= MaxPlayers {
		return nil, ErrTableFull
	}
	if chips <= 0 {
		chips = InitialChips
	}

	next := s.Clone()
	next.Players = append(next.Players, protocol.Player{
		ID:      id,
		Name:    name,
		Hand:    cards.Hand{},
		Chips:   chips,
		Bet:     0,
		IsReady: false,
		Status:  protocol.StatusWaiting,
	})

	// Nobody is left to act once the dealer plays.
	switch next.Phase {
	case protocol.PhaseDealerTurn, protocol.PhaseResolution:
		next.ActivePlayerIndex = len(next.Players)
	}

	return next, nil
}

// RemovePlayer takes a player off the table. A bet on the table is forfeited.
func RemovePlayer(s *protocol.Session, id protocol.PlayerID) (*protocol.Session, error) {
	index := s.Players.Index(id)
	if index < 0 {
		return nil, ErrUnknownPlayer
	}

	next := s.Clone()
	next.Players = append(next.Players[:index], next.Players[index+1:]...)

	if len(next.Players) == 0 && next.Phase.RoundInProgress() {
		next.Phase = protocol.PhaseLobby
		next.ActivePlayerIndex = 0
		next.DealerHand = cards.Hand{}
		next.Message = WelcomeMessage
		return next, nil
	}

	switch next.Phase {
	case protocol.PhaseBetting:
		checkAllReady(next)
	case protocol.PhaseTurns:
		switch {
		case index < next.ActivePlayerIndex:
			next.ActivePlayerIndex--
		case index == next.ActivePlayerIndex:
			// The next player inherits the turn.
			next.ActivePlayerIndex--
			advanceTurn(next)
		}
	case protocol.PhaseDealerTurn, protocol.PhaseResolution:
		next.ActivePlayerIndex = len(next.Players)
	}

	return next, nil
}
