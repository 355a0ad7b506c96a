package game

import (
	"encoding/json"
	"fmt"
)

// Zone is the first part of a figure position.
type Zone string

const (
	ZoneStart Zone = "start"
	ZoneField Zone = "field"
	ZoneHome  Zone = "home"
)

// Board geometry: a shared ring of FieldSize squares and a private home lane
// of HomeSize squares per color. Each color enters the ring EntryDistance
// squares after the previous slot.
const (
	FieldSize     = 40
	HomeSize      = 4
	EntryDistance = FieldSize / TableSize
)

// Position is a zone plus an offset. A figure sent back to start has no offset.
type Position struct {
	Zone   Zone
	Offset int
	Placed bool
}

func StartPosition() Position {
	return Position{Zone: ZoneStart}
}

func At(zone Zone, offset int) Position {
	return Position{Zone: zone, Offset: offset, Placed: true}
}

func (p Position) String() string {
	if !p.Placed {
		return fmt.Sprintf("[%s,null]", p.Zone)
	}
	return fmt.Sprintf("[%s,%d]", p.Zone, p.Offset)
}

// MarshalJSON encodes the position as the protocol pair, e.g. ["field",24].
func (p Position) MarshalJSON() ([]byte, error) {
	var offset any
	if p.Placed {
		offset = p.Offset
	}
	return json.Marshal([]any{p.Zone, offset})
}

func (p *Position) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("position must have 2 elements, got %d", len(pair))
	}
	var zone Zone
	if err := json.Unmarshal(pair[0], &zone); err != nil {
		return err
	}
	var offset *int
	if err := json.Unmarshal(pair[1], &offset); err != nil {
		return err
	}
	*p = Position{Zone: zone}
	if offset != nil {
		p.Offset = *offset
		p.Placed = true
	}
	return nil
}

// EntrySquare is the ring square a color's figures enter on from start.
func EntrySquare(c PlayerColor) int {
	return c.Slot() * EntryDistance
}

// Progress is how far a field square lies past the color's entry square.
func Progress(c PlayerColor, fieldOffset int) int {
	return ((fieldOffset-EntrySquare(c))%FieldSize + FieldSize) % FieldSize
}
