package game

import "fmt"

const FiguresPerPlayer = 4

type Player struct {
	Color         PlayerColor
	Name          string
	ClientName    string
	ClientVersion float64
	Ready         bool
	Figures       [FiguresPerPlayer]*Figure
	Dice          *Dice
	Controller    Controller
}

type PlayerView struct {
	Color         PlayerColor    `json:"color"`
	Name          string         `json:"name"`
	ClientName    string         `json:"clientName"`
	ClientVersion float64        `json:"clientVersion"`
	Ready         bool           `json:"ready"`
	Connected     bool           `json:"connected"`
	Controller    ControllerKind `json:"controller"`
	Dice          int            `json:"dice"`
	Figures       []FigureView   `json:"figures"`
}

func NewPlayer(color PlayerColor, name, clientName string, clientVersion float64, roller Roller) *Player {
	p := &Player{
		Color:         color,
		Name:          name,
		ClientName:    clientName,
		ClientVersion: clientVersion,
		Dice:          NewDice(roller),
		Controller:    NewHuman(),
	}
	for i := range p.Figures {
		p.Figures[i] = NewFigure(color, i)
	}
	return p
}

// AllIn reports whether every figure of the player stands in the zone.
func (p *Player) AllIn(zone Zone) bool {
	for _, f := range p.Figures {
		if f.Zone() != zone {
			return false
		}
	}
	return true
}

func (p *Player) Figure(index int) (*Figure, bool) {
	if index < 0 || index >= len(p.Figures) {
		return nil, false
	}
	return p.Figures[index], true
}

// Disconnect leaves the seat in place for a later takeover.
func (p *Player) Disconnect() {
	if h, ok := p.Controller.(*Human); ok {
		h.Disconnect()
	}
}

func (p *Player) View() PlayerView {
	figures := make([]FigureView, 0, len(p.Figures))
	for _, f := range p.Figures {
		figures = append(figures, f.View())
	}
	return PlayerView{
		Color:         p.Color,
		Name:          p.Name,
		ClientName:    p.ClientName,
		ClientVersion: p.ClientVersion,
		Ready:         p.Ready,
		Connected:     p.Controller.Connected(),
		Controller:    p.Controller.Kind(),
		Dice:          p.Dice.Value(),
		Figures:       figures,
	}
}

func (p *Player) String() string {
	return fmt.Sprintf("%s(%s, %s %.1f, ready=%t)", p.Color, p.Name, p.ClientName, p.ClientVersion, p.Ready)
}
