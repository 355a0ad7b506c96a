package game

type ControllerKind string

const (
	ControllerHuman ControllerKind = "human"
)

// Controller decides who acts for a seat. Only remote humans exist today;
// a bot taking over a disconnected seat would be another implementation.
type Controller interface {
	Kind() ControllerKind
	Connected() bool
}

type Human struct {
	connected bool
}

func NewHuman() *Human {
	return &Human{connected: true}
}

func (h *Human) Kind() ControllerKind {
	return ControllerHuman
}

func (h *Human) Connected() bool {
	return h.connected
}

func (h *Human) Disconnect() {
	h.connected = false
}
