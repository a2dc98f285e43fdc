package update

import (
	tea "github.com/charmbracelet/bubbletea"
)

// Commands collects the commands of a single model update: the ones
// produced by the model itself and one per component.
type Commands struct {
	commands                []tea.Cmd
	SpinnerCommand          tea.Cmd
	ChatCommand             tea.Cmd
	GameEventHandlerCommand tea.Cmd
	ChatEventHandlerCommand tea.Cmd
}

func NewUpdateCommands() *Commands {
	return &Commands{
		commands: make([]tea.Cmd, 0, 4),
	}
}

func (u *Commands) AppendCommand(command tea.Cmd) {
	u.commands = append(u.commands, command)
}

func (u *Commands) AppendMessage(message tea.Msg) {
	u.commands = append(u.commands, func() tea.Msg {
		return message
	})
}

func (u *Commands) Batch() tea.Cmd {
	u.commands = append(u.commands,
		u.SpinnerCommand,
		u.ChatCommand,
		u.GameEventHandlerCommand,
		u.ChatEventHandlerCommand,
	)
	return tea.Batch(u.commands...)
}
