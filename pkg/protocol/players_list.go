package protocol

import "golang.org/x/exp/slices"

type PlayersList []Player

func (l PlayersList) Get(id PlayerID) (Player, bool) {
	index := l.Index(id)
	if index < 0 {
		return Player{}, false
	}
	return l[index], true
}

func (l PlayersList) Index(id PlayerID) int {
	return slices.IndexFunc(l, func(player Player) bool {
		return player.ID == id
	})
}

func (l PlayersList) Contains(id PlayerID) bool {
	return l.Index(id) >= 0
}

// AllReady is false for an empty list.
func (l PlayersList) AllReady() bool {
	if len(l) == 0 {
		return false
	}
	for _, player := range l {
		if !player.IsReady {
			return false
		}
	}
	return true
}

func (l PlayersList) Clone() PlayersList {
	if l == nil {
		return nil
	}
	result := make(PlayersList, 0, len(l))
	for _, player := range l {
		result = append(result, player.Clone())
	}
	return result
}
