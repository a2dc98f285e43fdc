package view

import (
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/six78/xidach-cli/internal/config"
	"github.com/six78/xidach-cli/internal/view/commands"
	"github.com/six78/xidach-cli/internal/view/components/chatview"
	"github.com/six78/xidach-cli/internal/view/components/errorview"
	"github.com/six78/xidach-cli/internal/view/components/eventhandler"
	"github.com/six78/xidach-cli/internal/view/components/shortcutsview"
	"github.com/six78/xidach-cli/internal/view/components/statusview"
	"github.com/six78/xidach-cli/internal/view/components/tableview"
	"github.com/six78/xidach-cli/internal/view/messages"
	"github.com/six78/xidach-cli/internal/view/states"
	"github.com/six78/xidach-cli/internal/view/update"
	"github.com/six78/xidach-cli/pkg/game"
	"github.com/six78/xidach-cli/pkg/protocol"
)

// Entry tells the program which room to enter once the game is initialized.
type Entry struct {
	Host     bool
	RoomCode protocol.RoomCode
}

type model struct {
	game  *game.Game
	entry Entry

	// Actual state that will be rendered in components.
	// This is filled from the game during Update stage.
	state      states.AppState
	fatalError error
	gameState  *protocol.Session
	roomCode   protocol.RoomCode
	chatMode   bool

	// UI components state
	errorView        errorview.Model
	tableView        tableview.Model
	shortcutsView    shortcutsview.Model
	statusView       statusview.Model
	chatView         chatview.Model
	gameEventHandler eventhandler.Model[*protocol.Session, messages.GameStateMessage]
	chatEventHandler eventhandler.Model[protocol.ChatLine, messages.ChatMessage]

	spinner spinner.Model
}

func initialModel(game *game.Game, entry Entry) model {
	return model{
		game:  game,
		entry: entry,
		// Initial model values
		state:     states.Initializing,
		gameState: nil,
		roomCode:  "",
		chatMode:  false,
		// View components
		errorView:     errorview.New(),
		tableView:     tableview.New(),
		shortcutsView: shortcutsview.New(),
		statusView:    statusview.New(),
		chatView:      chatview.New(),
		spinner:       createSpinner(),
		gameEventHandler: eventhandler.New[*protocol.Session, messages.GameStateMessage](
			func(state *protocol.Session) messages.GameStateMessage {
				return messages.GameStateMessage{State: state}
			},
		),
		chatEventHandler: eventhandler.New[protocol.ChatLine, messages.ChatMessage](
			func(line protocol.ChatLine) messages.ChatMessage {
				return messages.ChatMessage{Line: line}
			},
		),
	}
}

func createSpinner() spinner.Model {
	s := spinner.New()
	s.Spinner = spinner.MiniDot
	return s
}

func (m model) Init() tea.Cmd {
	return tea.Batch(
		m.spinner.Tick,
		m.errorView.Init(),
		m.tableView.Init(),
		m.shortcutsView.Init(),
		m.statusView.Init(),
		m.chatView.Init(),
		commands.InitializeApp(m.game),
	)
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	cmds := update.NewUpdateCommands()

	switchToState := func(state states.AppState) {
		m.state = state
		cmds.AppendMessage(messages.AppStateMessage{State: state})
	}

	switch msg := msg.(type) {
	case messages.FatalErrorMessage:
		m.fatalError = msg.Err

	case messages.AppStateFinishedMessage:
		switch msg.State {
		case states.Initializing:
			switchToState(states.EnteringRoom)
			if m.entry.Host {
				cmds.AppendCommand(commands.CreateRoom(m.game, m.entry.RoomCode))
			} else {
				cmds.AppendCommand(commands.JoinRoom(m.game, m.entry.RoomCode))
			}
		default:
		}

	case messages.RoomJoin:
		m.roomCode = msg.RoomCode
		config.Logger.Debug("room entered",
			zap.String("roomCode", msg.RoomCode.String()),
			zap.Bool("isHost", msg.IsHost))

		cmds.AppendMessage(messages.PlayerIDMessage{PlayerID: m.game.PlayerID()})
		cmds.AppendCommand(m.gameEventHandler.Init(
			m.game.SubscribeToStateChanges(),
			m.game.CurrentState(),
		))
		cmds.AppendCommand(m.chatEventHandler.Listen(m.game.SubscribeToChat()))
		switchToState(states.Playing)

	case messages.GameStateMessage:
		m.gameState = msg.State

	case messages.ChatModeChange:
		m.chatMode = msg.ChatMode

	case tea.KeyMsg:
		cmds.AppendCommand(m.handleKey(msg))
	}

	m.spinner, cmds.SpinnerCommand = m.spinner.Update(msg)
	m.errorView = m.errorView.Update(msg)
	m.tableView = m.tableView.Update(msg)
	m.shortcutsView = m.shortcutsView.Update(msg)
	m.statusView = m.statusView.Update(msg)
	m.chatView, cmds.ChatCommand = m.chatView.Update(msg)
	m.gameEventHandler, cmds.GameEventHandlerCommand = m.gameEventHandler.Update(msg)
	m.chatEventHandler, cmds.ChatEventHandlerCommand = m.chatEventHandler.Update(msg)

	return m, cmds.Batch()
}

// handleKey maps a key press to a single command. Keys typed while
// chatting go to the chat input only.
func (m *model) handleKey(msg tea.KeyMsg) tea.Cmd {
	keys := commands.DefaultKeyMap

	if msg.Type == tea.KeyCtrlC {
		return commands.QuitApp(m.game)
	}

	if m.chatMode {
		switch msg.Type {
		case tea.KeyEnter:
			text := m.chatView.Take()
			if text == "" {
				return nil
			}
			return commands.SendChat(m.game, text)
		case tea.KeyEsc, tea.KeyTab:
			return chatModeCommand(false)
		}
		return nil
	}

	switch {
	case key.Matches(msg, keys.Quit):
		return commands.QuitApp(m.game)
	case key.Matches(msg, keys.ToggleChat):
		if m.state != states.Playing {
			return nil
		}
		return chatModeCommand(true)
	}

	if m.state != states.Playing {
		return nil
	}

	switch {
	case key.Matches(msg, keys.StartRound):
		return commands.StartRound(m.game)
	case key.Matches(msg, keys.Hit):
		return commands.Hit(m.game)
	case key.Matches(msg, keys.Stand):
		return commands.Stand(m.game)
	}

	for i, binding := range keys.BetBindings() {
		if key.Matches(msg, binding) {
			return commands.PlaceBet(m.game, commands.BetAmounts[i])
		}
	}

	return nil
}

func chatModeCommand(enabled bool) tea.Cmd {
	return func() tea.Msg {
		return messages.ChatModeChange{ChatMode: enabled}
	}
}

func (m model) View() string {
	if m.fatalError != nil {
		return fmt.Sprintf(" ☠️ fatal error: %s\n%s", m.fatalError, renderLogPath())
	}

	view := "\n"
	if config.Debug() {
		view += fmt.Sprintf("%s\n\n", renderLogPath())
	}
	view += m.renderAppState()

	return lipgloss.JoinHorizontal(lipgloss.Left, "  ", view)
}

// Ensure that model fulfils the tea.Model interface at compile time.
// ref: https://www.inngest.com/blog/interactive-clis-with-bubbletea
var _ tea.Model = (*model)(nil)
