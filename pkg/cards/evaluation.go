package cards

type HandType string

const (
	XiBang  HandType = "XI_BANG"
	XiDach  HandType = "XI_DACH"
	NguLinh HandType = "NGU_LINH"
	Normal  HandType = "NORMAL"
	Quac    HandType = "QUAC"
	Non     HandType = "NON"
)

var handTypeRanks = map[HandType]int{
	XiBang:  5,
	XiDach:  4,
	NguLinh: 3,
	Normal:  2,
	Quac:    1,
	Non:     0,
}

// Rank orders hand types from Non (0) to XiBang (5).
func (t HandType) Rank() int {
	return handTypeRanks[t]
}

func (t HandType) String() string {
	switch t {
	case XiBang:
		return "Xì Bàng"
	case XiDach:
		return "Xì Dách"
	case NguLinh:
		return "Ngũ Linh"
	case Quac:
		return "Quắc"
	case Non:
		return "Non"
	default:
		return "Normal"
	}
}

// Classify checks two-card hands first, then the five-card hand,
// then falls back to the score.
func Classify(hand Hand) HandType {
	score := Score(hand)

	if len(hand) == 2 {
		if hand[0].Rank == Ace && hand[1].Rank == Ace {
			return XiBang
		}
		hasAce := hand[0].Rank == Ace || hand[1].Rank == Ace
		hasTen := hand[0].Rank.TenValued() || hand[1].Rank.TenValued()
		if hasAce && hasTen {
			return XiDach
		}
	}

	if len(hand) == MaxHandSize && score <= BlackjackScore {
		return NguLinh
	}

	switch {
	case score > BlackjackScore:
		return Quac
	case score < MinPlayerScore:
		return Non
	default:
		return Normal
	}
}

type Result string

const (
	PlayerWins Result = "PLAYER"
	DealerWins Result = "DEALER"
	Push       Result = "PUSH"
)

// Compare decides a player hand against the dealer hand.
// Between two Ngu Linh hands the lower score wins.
func Compare(player, dealer Hand) Result {
	playerType := Classify(player)
	dealerType := Classify(dealer)

	if playerType.Rank() > dealerType.Rank() {
		return PlayerWins
	}
	if dealerType.Rank() > playerType.Rank() {
		return DealerWins
	}

	playerScore := Score(player)
	dealerScore := Score(dealer)

	switch playerType {
	case Normal:
		return compareScores(playerScore, dealerScore)
	case NguLinh:
		return compareScores(dealerScore, playerScore)
	default:
		return Push
	}
}

func compareScores(player, dealer int) Result {
	switch {
	case player > dealer:
		return PlayerWins
	case dealer > player:
		return DealerWins
	default:
		return Push
	}
}
