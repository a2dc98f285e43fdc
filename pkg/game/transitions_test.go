package game

import (
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/require"
	"golang.org/x/exp/slices"

	"github.com/six78/xidach-cli/pkg/cards"
	"github.com/six78/xidach-cli/pkg/protocol"
)

func card(rank cards.Rank, suit cards.Suit) cards.Card {
	return cards.Card{Suit: suit, Rank: rank}
}

// stackedDeck returns a full deck whose first draws are the given cards.
func stackedDeck(t *testing.T, draws ...cards.Card) cards.Deck {
	deck := cards.NewDeck()
	for _, c := range draws {
		index := slices.Index(deck, c.Down())
		require.GreaterOrEqual(t, index, 0, "card %s drawn twice", c)
		deck = slices.Delete(deck, index, index+1)
	}
	for i := len(draws) - 1; i >= 0; i-- {
		deck = append(deck, draws[i].Down())
	}
	require.Len(t, deck, 52)
	return deck
}

func tableWith(t *testing.T, count int) *protocol.Session {
	state := protocol.NewSession("123456")
	for i := 0; i < count; i++ {
		var err error
		state, err = AddPlayer(state, protocol.NewClientID().PlayerID(), gofakeit.Username(), 0)
		require.NoError(t, err)
	}
	return state
}

func bettingTable(t *testing.T, count int, draws ...cards.Card) *protocol.Session {
	state, err := StartRound(tableWith(t, count), stackedDeck(t, draws...))
	require.NoError(t, err)
	return state
}

func placeAll(t *testing.T, state *protocol.Session, amount int) *protocol.Session {
	for _, player := range state.Players {
		var err error
		state, err = PlaceBet(state, player.ID, amount)
		require.NoError(t, err)
	}
	return state
}

func TestAddPlayer(t *testing.T) {
	state := protocol.NewSession("123456")
	id := protocol.NewClientID().PlayerID()

	next, err := AddPlayer(state, id, "An", 0)
	require.NoError(t, err)
	require.Empty(t, state.Players)
	require.Len(t, next.Players, 1)

	player := next.Players[0]
	require.Equal(t, InitialChips, player.Chips)
	require.Equal(t, protocol.StatusWaiting, player.Status)
	require.False(t, player.IsReady)
	require.Empty(t, player.Hand)

	_, err = AddPlayer(next, id, "An", 0)
	require.ErrorIs(t, err, ErrAlreadySeated)

	restored, err := AddPlayer(next, protocol.NewClientID().PlayerID(), "Bình", 420)
	require.NoError(t, err)
	require.Equal(t, 420, restored.Players[1].Chips)

	full := tableWith(t, MaxPlayers)
	_, err = AddPlayer(full, protocol.NewClientID().PlayerID(), "Chi", 0)
	require.ErrorIs(t, err, ErrTableFull)
}

func TestStartRound(t *testing.T) {
	_, err := StartRound(protocol.NewSession("123456"), cards.NewDeck())
	require.ErrorIs(t, err, ErrNoPlayers)

	state := tableWith(t, 2)
	state.Players[1].Chips = 0
	state.Players[0].Hand = cards.Hand{card(cards.Two, cards.Clubs)}
	state.Players[0].Outcome = cards.DealerWins
	state.DealerHand = cards.Hand{card(cards.Ten, cards.Clubs)}

	_, err = StartRound(state, cards.Deck{})
	require.ErrorIs(t, err, ErrDeckIncomplete)

	next, err := StartRound(state, cards.NewDeck())
	require.NoError(t, err)
	require.Equal(t, protocol.PhaseBetting, next.Phase)
	require.Equal(t, 1, next.Round)
	require.Equal(t, BettingMessage, next.Message)
	require.Equal(t, 0, next.ActivePlayerIndex)
	require.Empty(t, next.DealerHand)
	require.Len(t, next.Deck, 52)
	require.Equal(t, InitialChips, next.Players[1].Chips)
	for _, player := range next.Players {
		require.Empty(t, player.Hand)
		require.Zero(t, player.Bet)
		require.False(t, player.IsReady)
		require.Empty(t, player.Outcome)
		require.Equal(t, protocol.StatusWaiting, player.Status)
	}

	// The input is untouched.
	require.Equal(t, protocol.PhaseLobby, state.Phase)
	require.Len(t, state.Players[0].Hand, 1)

	_, err = StartRound(next, cards.NewDeck())
	require.ErrorIs(t, err, ErrWrongPhase)
}

func TestPlaceBet(t *testing.T) {
	state := bettingTable(t, 2)
	first := state.Players[0].ID
	second := state.Players[1].ID

	testCases := []struct {
		name   string
		player protocol.PlayerID
		amount int
		err    error
	}{
		{"zero", first, 0, ErrInvalidBet},
		{"negative", first, -50, ErrInvalidBet},
		{"above chips", first, InitialChips + 1, ErrInvalidBet},
		{"unknown player", protocol.NewClientID().PlayerID(), 50, ErrUnknownPlayer},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := PlaceBet(state, tc.player, tc.amount)
			require.ErrorIs(t, err, tc.err)
		})
	}

	next, err := PlaceBet(state, first, InitialChips)
	require.NoError(t, err)
	require.Equal(t, InitialChips, next.Players[0].Bet)
	require.True(t, next.Players[0].IsReady)
	require.Equal(t, protocol.PhaseBetting, next.Phase)

	_, err = PlaceBet(next, first, 50)
	require.ErrorIs(t, err, ErrAlreadyReady)

	next, err = PlaceBet(next, second, 50)
	require.NoError(t, err)
	require.Equal(t, protocol.PhaseInitialDeal, next.Phase)

	_, err = PlaceBet(next, second, 50)
	require.ErrorIs(t, err, ErrWrongPhase)
}

func TestDealInitialCards(t *testing.T) {
	state := bettingTable(t, 2,
		card(cards.Ten, cards.Hearts), card(cards.Six, cards.Hearts),
		card(cards.Nine, cards.Spades), card(cards.Nine, cards.Clubs),
		card(cards.King, cards.Diamonds), card(cards.Five, cards.Diamonds),
	)

	_, err := DealInitialCards(state)
	require.ErrorIs(t, err, ErrWrongPhase)

	state = placeAll(t, state, 100)
	next, err := DealInitialCards(state)
	require.NoError(t, err)

	require.Equal(t, protocol.PhaseTurns, next.Phase)
	require.Equal(t, 0, next.ActivePlayerIndex)
	require.Equal(t, "Lượt của "+next.Players[0].Name, next.Message)
	require.Len(t, next.Deck, 46)
	require.Equal(t, 52, next.CardsInPlay())

	first := next.Players[0]
	require.Equal(t, cards.Hand{card(cards.Ten, cards.Hearts).Up(), card(cards.Six, cards.Hearts).Up()}, first.Hand)
	require.Equal(t, protocol.StatusPlaying, first.Status)
	require.Equal(t, 18, next.Players[1].Score())

	require.Len(t, next.DealerHand, 2)
	require.False(t, next.DealerHand[0].FaceUp)
	require.True(t, next.DealerHand[1].FaceUp)
	require.Equal(t, 5, cards.Score(next.DealerHand.FaceUp()))
}

func TestLateJoinerIsSkipped(t *testing.T) {
	state := placeAll(t, bettingTable(t, 1), 100)

	late := protocol.NewClientID().PlayerID()
	state, err := AddPlayer(state, late, "Muộn", 0)
	require.NoError(t, err)
	require.Equal(t, protocol.PhaseInitialDeal, state.Phase)

	state, err = DealInitialCards(state)
	require.NoError(t, err)

	player, _ := state.Players.Get(late)
	require.Empty(t, player.Hand)
	require.Equal(t, protocol.StatusWaiting, player.Status)

	_, err = Hit(state, late)
	require.ErrorIs(t, err, ErrNotYourTurn)

	state, err = Stand(state, state.Players[0].ID)
	require.NoError(t, err)
	require.Equal(t, protocol.PhaseDealerTurn, state.Phase)
	require.Equal(t, len(state.Players), state.ActivePlayerIndex)

	state, err = Resolve(state)
	require.NoError(t, err)
	player, _ = state.Players.Get(late)
	require.Empty(t, player.Outcome)
	require.Equal(t, InitialChips, player.Chips)
}

func TestHitAndStand(t *testing.T) {
	state := bettingTable(t, 2,
		card(cards.Ten, cards.Hearts), card(cards.Two, cards.Hearts),
		card(cards.Nine, cards.Spades), card(cards.Seven, cards.Clubs),
		card(cards.King, cards.Diamonds), card(cards.Five, cards.Diamonds),
		card(cards.Three, cards.Clubs), card(cards.Queen, cards.Clubs),
	)
	state, err := DealInitialCards(placeAll(t, state, 100))
	require.NoError(t, err)

	first := state.Players[0].ID
	second := state.Players[1].ID

	_, err = Hit(state, second)
	require.ErrorIs(t, err, ErrNotYourTurn)
	_, err = Stand(state, second)
	require.ErrorIs(t, err, ErrNotYourTurn)

	// 12 + 3 keeps the turn.
	state, err = Hit(state, first)
	require.NoError(t, err)
	require.Equal(t, 15, state.Players[0].Score())
	require.Equal(t, 0, state.ActivePlayerIndex)
	require.Equal(t, protocol.StatusPlaying, state.Players[0].Status)

	// 15 + 10 busts and passes the turn.
	state, err = Hit(state, first)
	require.NoError(t, err)
	require.Equal(t, protocol.StatusQuac, state.Players[0].Status)
	require.Equal(t, 1, state.ActivePlayerIndex)
	require.Equal(t, protocol.PhaseTurns, state.Phase)

	_, err = Hit(state, first)
	require.ErrorIs(t, err, ErrNotYourTurn)

	state, err = Stand(state, second)
	require.NoError(t, err)
	require.Equal(t, protocol.StatusStay, state.Players[1].Status)
	require.Equal(t, protocol.PhaseDealerTurn, state.Phase)
	require.Equal(t, 2, state.ActivePlayerIndex)
	require.Equal(t, DealerTurnMessage, state.Message)
}

func TestHitFullHand(t *testing.T) {
	state := bettingTable(t, 1,
		card(cards.Two, cards.Hearts), card(cards.Two, cards.Spades),
		card(cards.King, cards.Diamonds), card(cards.Five, cards.Diamonds),
		card(cards.Three, cards.Hearts), card(cards.Three, cards.Spades), card(cards.Four, cards.Hearts),
	)
	state, err := DealInitialCards(placeAll(t, state, 100))
	require.NoError(t, err)

	id := state.Players[0].ID
	for i := 0; i < 3; i++ {
		state, err = Hit(state, id)
		require.NoError(t, err)
	}
	require.Len(t, state.Players[0].Hand, cards.MaxHandSize)
	require.Equal(t, cards.NguLinh, state.Players[0].HandType())
	require.Equal(t, protocol.PhaseTurns, state.Phase)

	_, err = Hit(state, id)
	require.ErrorIs(t, err, ErrHandFull)
}

func TestDealerTurn(t *testing.T) {
	state := bettingTable(t, 1,
		card(cards.Ten, cards.Hearts), card(cards.Nine, cards.Hearts),
		card(cards.Two, cards.Diamonds), card(cards.Three, cards.Diamonds),
		card(cards.Four, cards.Clubs), card(cards.Five, cards.Clubs),
	)
	state, err := DealInitialCards(placeAll(t, state, 100))
	require.NoError(t, err)

	_, err = RevealDealerHand(state)
	require.ErrorIs(t, err, ErrWrongPhase)
	_, err = DealerDraw(state)
	require.ErrorIs(t, err, ErrWrongPhase)

	state, err = Stand(state, state.Players[0].ID)
	require.NoError(t, err)

	state, err = RevealDealerHand(state)
	require.NoError(t, err)
	require.True(t, state.DealerHand[0].FaceUp)
	require.True(t, DealerShouldDraw(state))

	state, err = DealerDraw(state)
	require.NoError(t, err)
	require.Equal(t, 9, cards.Score(state.DealerHand))
	require.True(t, DealerShouldDraw(state))

	state, err = DealerDraw(state)
	require.NoError(t, err)
	require.Equal(t, 14, cards.Score(state.DealerHand))
	require.True(t, state.DealerHand[3].FaceUp)

	// Five cards stop the dealer even below 15.
	state.DealerHand = append(state.DealerHand, card(cards.Ace, cards.Spades).Up())
	require.Len(t, state.DealerHand, cards.MaxHandSize)
	require.False(t, DealerShouldDraw(state))
	_, err = DealerDraw(state)
	require.ErrorIs(t, err, ErrHandFull)
}

func TestJoinWhileDealerPlays(t *testing.T) {
	state := bettingTable(t, 1,
		card(cards.Ten, cards.Hearts), card(cards.Nine, cards.Hearts),
		card(cards.Ten, cards.Diamonds), card(cards.Seven, cards.Diamonds),
	)
	state, err := DealInitialCards(placeAll(t, state, 100))
	require.NoError(t, err)

	state, err = Stand(state, state.Players[0].ID)
	require.NoError(t, err)
	require.Equal(t, protocol.PhaseDealerTurn, state.Phase)
	require.Equal(t, len(state.Players), state.ActivePlayerIndex)

	late := protocol.NewClientID().PlayerID()
	state, err = AddPlayer(state, late, gofakeit.Username(), 0)
	require.NoError(t, err)
	require.Len(t, state.Players, 2)
	require.Equal(t, len(state.Players), state.ActivePlayerIndex)
	require.Nil(t, state.ActivePlayer())

	state, err = Resolve(state)
	require.NoError(t, err)
	require.Equal(t, len(state.Players), state.ActivePlayerIndex)
	require.Nil(t, state.ActivePlayer())

	player, _ := state.Players.Get(late)
	require.Equal(t, protocol.StatusWaiting, player.Status)
	require.Empty(t, player.Outcome)

	state, err = AddPlayer(state, protocol.NewClientID().PlayerID(), gofakeit.Username(), 0)
	require.NoError(t, err)
	require.Equal(t, protocol.PhaseResolution, state.Phase)
	require.Equal(t, len(state.Players), state.ActivePlayerIndex)
}

func TestResolveSettlement(t *testing.T) {
	state := tableWith(t, 4)
	state.Phase = protocol.PhaseDealerTurn
	state.ActivePlayerIndex = 4
	state.DealerHand = cards.Hand{card(cards.Ten, cards.Clubs).Up(), card(cards.Eight, cards.Clubs).Up()}

	hands := []cards.Hand{
		{card(cards.Ten, cards.Hearts).Up(), card(cards.Nine, cards.Hearts).Up()},
		{card(cards.Ten, cards.Spades).Up(), card(cards.Seven, cards.Spades).Up()},
		{card(cards.Nine, cards.Diamonds).Up(), card(cards.Nine, cards.Spades).Up()},
	}
	statuses := []protocol.PlayerStatus{protocol.StatusStay, protocol.StatusStay, protocol.StatusStay, protocol.StatusWaiting}
	for i := range state.Players {
		state.Players[i].Bet = 100
		state.Players[i].IsReady = true
		state.Players[i].Status = statuses[i]
		if i < len(hands) {
			state.Players[i].Hand = hands[i]
		}
	}

	next, err := Resolve(state)
	require.NoError(t, err)
	require.Equal(t, protocol.PhaseResolution, next.Phase)
	require.Equal(t, ResolutionMessage, next.Message)

	expected := []struct {
		outcome cards.Result
		chips   int
	}{
		{cards.PlayerWins, InitialChips + 100},
		{cards.DealerWins, InitialChips - 100},
		{cards.Push, InitialChips},
		{"", InitialChips},
	}
	for i, e := range expected {
		require.Equal(t, e.outcome, next.Players[i].Outcome, "player %d", i)
		require.Equal(t, e.chips, next.Players[i].Chips, "player %d", i)
	}
	require.Equal(t, protocol.StatusDone, next.Players[0].Status)
	require.Equal(t, protocol.StatusWaiting, next.Players[3].Status)

	_, err = Resolve(next)
	require.ErrorIs(t, err, ErrWrongPhase)

	restarted, err := StartRound(next, cards.NewDeck())
	require.NoError(t, err)
	require.Equal(t, next.Round+1, restarted.Round)
}

func TestRemovePlayer(t *testing.T) {
	_, err := RemovePlayer(tableWith(t, 1), protocol.NewClientID().PlayerID())
	require.ErrorIs(t, err, ErrUnknownPlayer)

	t.Run("betting completes when the last unready player leaves", func(t *testing.T) {
		state := bettingTable(t, 2)
		state, err := PlaceBet(state, state.Players[0].ID, 100)
		require.NoError(t, err)

		next, err := RemovePlayer(state, state.Players[1].ID)
		require.NoError(t, err)
		require.Equal(t, protocol.PhaseInitialDeal, next.Phase)
	})

	t.Run("empty table returns to lobby", func(t *testing.T) {
		state := bettingTable(t, 1)
		next, err := RemovePlayer(state, state.Players[0].ID)
		require.NoError(t, err)
		require.Equal(t, protocol.PhaseLobby, next.Phase)
		require.Equal(t, WelcomeMessage, next.Message)
	})

	turns := func(t *testing.T) *protocol.Session {
		state, err := DealInitialCards(placeAll(t, bettingTable(t, 3), 100))
		require.NoError(t, err)
		state, err = Stand(state, state.Players[0].ID)
		require.NoError(t, err)
		require.Equal(t, 1, state.ActivePlayerIndex)
		return state
	}

	t.Run("player before the active one", func(t *testing.T) {
		state := turns(t)
		active := state.ActivePlayer().ID
		next, err := RemovePlayer(state, state.Players[0].ID)
		require.NoError(t, err)
		require.Equal(t, 0, next.ActivePlayerIndex)
		require.Equal(t, active, next.ActivePlayer().ID)
	})

	t.Run("active player passes the turn", func(t *testing.T) {
		state := turns(t)
		following := state.Players[2].ID
		next, err := RemovePlayer(state, state.Players[1].ID)
		require.NoError(t, err)
		require.Equal(t, protocol.PhaseTurns, next.Phase)
		require.Equal(t, following, next.ActivePlayer().ID)
		require.Equal(t, "Lượt của "+next.ActivePlayer().Name, next.Message)
	})

	t.Run("last active player ends the turns", func(t *testing.T) {
		state := turns(t)
		state, err := Stand(state, state.Players[1].ID)
		require.NoError(t, err)
		next, err := RemovePlayer(state, state.Players[2].ID)
		require.NoError(t, err)
		require.Equal(t, protocol.PhaseDealerTurn, next.Phase)
		require.Equal(t, 2, next.ActivePlayerIndex)
	})

	t.Run("player after the active one", func(t *testing.T) {
		state := turns(t)
		next, err := RemovePlayer(state, state.Players[2].ID)
		require.NoError(t, err)
		require.Equal(t, 1, next.ActivePlayerIndex)
		require.Equal(t, protocol.PhaseTurns, next.Phase)
	})
}

func TestTransitionsDoNotMutateInput(t *testing.T) {
	state := bettingTable(t, 2)
	before := state.Clone()

	_, err := PlaceBet(state, state.Players[0].ID, 100)
	require.NoError(t, err)
	_, err = RemovePlayer(state, state.Players[1].ID)
	require.NoError(t, err)
	_, err = AddPlayer(state, protocol.NewClientID().PlayerID(), "Dũng", 0)
	require.NoError(t, err)

	require.Equal(t, before, state)
}
