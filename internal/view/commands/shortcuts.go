package commands

import "github.com/charmbracelet/bubbles/key"

type KeyMap struct {
	StartRound key.Binding
	SmallBet   key.Binding
	MediumBet  key.Binding
	LargeBet   key.Binding
	Hit        key.Binding
	Stand      key.Binding
	ToggleChat key.Binding
	Quit       key.Binding
}

// Bets placed by the bet shortcuts, in the order of the keys.
var BetAmounts = []int{50, 100, 500}

var DefaultKeyMap = KeyMap{
	StartRound: key.NewBinding(
		key.WithKeys("s"),
		key.WithHelp("S", "Chia ván mới"),
	),
	SmallBet: key.NewBinding(
		key.WithKeys("1"),
		key.WithHelp("1", "Cược 50"),
	),
	MediumBet: key.NewBinding(
		key.WithKeys("2"),
		key.WithHelp("2", "Cược 100"),
	),
	LargeBet: key.NewBinding(
		key.WithKeys("3"),
		key.WithHelp("3", "Cược 500"),
	),
	Hit: key.NewBinding(
		key.WithKeys("h"),
		key.WithHelp("H", "Rút bài"),
	),
	Stand: key.NewBinding(
		key.WithKeys(" "),
		key.WithHelp("Space", "Dằn bài"),
	),
	ToggleChat: key.NewBinding(
		key.WithKeys("tab"),
		key.WithHelp("Tab", "Chat"),
	),
	Quit: key.NewBinding(
		key.WithKeys("q", "ctrl+c"),
		key.WithHelp("Q", "Rời sòng"),
	),
}

// BetBindings pairs every bet shortcut with its amount.
func (k KeyMap) BetBindings() []key.Binding {
	return []key.Binding{k.SmallBet, k.MediumBet, k.LargeBet}
}
