package game

// Figure is one of the four tokens of a player.
type Figure struct {
	Index    int
	Color    PlayerColor
	Position Position
}

type FigureView struct {
	Index    int         `json:"figure"`
	Color    PlayerColor `json:"color"`
	Position Position    `json:"position"`
}

func NewFigure(color PlayerColor, index int) *Figure {
	return &Figure{
		Index:    index,
		Color:    color,
		Position: At(ZoneStart, index),
	}
}

func (f *Figure) Zone() Zone {
	return f.Position.Zone
}

func (f *Figure) SendToStart() {
	f.Position = StartPosition()
}

func (f *Figure) View() FigureView {
	return FigureView{Index: f.Index, Color: f.Color, Position: f.Position}
}
