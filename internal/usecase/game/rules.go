package game

import (
	domain "maedn/internal/domain/game"
)

// Players maps every registered color to its player.
type Players map[domain.PlayerColor]*domain.Player

// RuleSet decides where a figure may go with the acting player's roll.
// DryRun never mutates; Execute re-checks legality before it moves anything.
type RuleSet struct{}

// DryRun reports the outcome of moving figure with the acting player's current roll.
func (r RuleSet) DryRun(acting domain.PlayerColor, figure *domain.Figure, players Players) domain.Option {
	opt := domain.Option{
		Figure:   figure.Index,
		Color:    figure.Color,
		Position: figure.Position,
	}
	if p, ok := players[acting]; ok {
		opt.Dice = p.Dice.Value()
	}

	dest, captured, ok := r.target(acting, figure, players)
	if !ok {
		return opt
	}
	opt.NewPosition = &dest
	if captured != nil {
		opt.Capture = &domain.Capture{Color: captured.Color, Figure: captured.Index}
	}
	return opt
}

// Execute moves figure if the move is still legal and applies any capture.
func (r RuleSet) Execute(acting domain.PlayerColor, figure *domain.Figure, players Players) bool {
	dest, captured, ok := r.target(acting, figure, players)
	if !ok {
		return false
	}
	if captured != nil {
		captured.SendToStart()
	}
	figure.Position = dest
	return true
}

func (r RuleSet) target(acting domain.PlayerColor, figure *domain.Figure, players Players) (domain.Position, *domain.Figure, bool) {
	player, ok := players[acting]
	if !ok || figure == nil || figure.Color != acting {
		return domain.Position{}, nil, false
	}
	roll := player.Dice.Value()
	if roll < 1 || roll > domain.Six {
		return domain.Position{}, nil, false
	}

	if figure.Zone() == domain.ZoneStart && firstInStart(player) != figure {
		return domain.Position{}, nil, false
	}
	dest, ok := advance(figure, roll)
	if !ok {
		return domain.Position{}, nil, false
	}

	occupant := occupantOf(dest, figure.Color, players)
	if occupant == nil {
		return dest, nil, true
	}
	if occupant.Color == figure.Color {
		return domain.Position{}, nil, false
	}
	return dest, occupant, true
}

// advance computes the square a figure reaches, ignoring other figures.
func advance(figure *domain.Figure, roll int) (domain.Position, bool) {
	switch figure.Zone() {
	case domain.ZoneStart:
		if roll != domain.Six {
			return domain.Position{}, false
		}
		return domain.At(domain.ZoneField, domain.EntrySquare(figure.Color)), true
	case domain.ZoneField:
		steps := domain.Progress(figure.Color, figure.Position.Offset) + roll
		if steps < domain.FieldSize {
			return domain.At(domain.ZoneField, (domain.EntrySquare(figure.Color)+steps)%domain.FieldSize), true
		}
		if lane := steps - domain.FieldSize; lane < domain.HomeSize {
			return domain.At(domain.ZoneHome, lane), true
		}
		return domain.Position{}, false
	default:
		return domain.Position{}, false
	}
}

// firstInStart is the only start figure allowed to leave.
func firstInStart(player *domain.Player) *domain.Figure {
	for _, f := range player.Figures {
		if f.Zone() == domain.ZoneStart {
			return f
		}
	}
	return nil
}

// occupantOf finds the figure standing on pos. Home lanes are private, so
// only the mover's own figures can occupy a home square.
func occupantOf(pos domain.Position, mover domain.PlayerColor, players Players) *domain.Figure {
	for slot := 0; slot < domain.TableSize; slot++ {
		color, _ := domain.ColorBySlot(slot)
		player, ok := players[color]
		if !ok {
			continue
		}
		if pos.Zone == domain.ZoneHome && color != mover {
			continue
		}
		for _, f := range player.Figures {
			if f.Position.Placed && f.Position.Zone == pos.Zone && f.Position.Offset == pos.Offset {
				return f
			}
		}
	}
	return nil
}
