package states

type AppState int

const (
	Idle AppState = iota
	Initializing
	EnteringRoom
	Playing
)

func (s AppState) String() string {
	switch s {
	case Idle:
		return "idle"
	case Initializing:
		return "initializing"
	case EnteringRoom:
		return "entering room"
	case Playing:
		return "playing"
	default:
		return "unknown"
	}
}
