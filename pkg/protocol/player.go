package protocol

import "github.com/six78/xidach-cli/pkg/cards"

type PlayerID string

type PlayerStatus string

const (
	StatusWaiting PlayerStatus = "WAITING"
	StatusPlaying PlayerStatus = "PLAYING"
	StatusStay    PlayerStatus = "STAY"
	StatusQuac    PlayerStatus = "QUAC"
	StatusDone    PlayerStatus = "DONE"
)

// Finished reports whether the player can no longer act in the round.
func (s PlayerStatus) Finished() bool {
	return s == StatusStay || s == StatusQuac || s == StatusDone
}

type Player struct {
	ID      PlayerID     `json:"id"`
	Name    string       `json:"name"`
	Hand    cards.Hand   `json:"hand"`
	Chips   int          `json:"chips"`
	Bet     int          `json:"bet"`
	IsReady bool         `json:"isReady"`
	Status  PlayerStatus `json:"status"`

	// Outcome is set on resolution for players who played the round.
	Outcome cards.Result `json:"outcome,omitempty"`
}

func (p Player) Score() int {
	return cards.Score(p.Hand)
}

func (p Player) HandType() cards.HandType {
	return cards.Classify(p.Hand)
}

func (p Player) Clone() Player {
	p.Hand = p.Hand.Clone()
	return p
}
