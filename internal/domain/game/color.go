package game

import (
	"encoding/json"
	"fmt"
	"strings"
)

// PlayerColor is a seat at the table. The numeric value is the slot index.
type PlayerColor int

const (
	Red PlayerColor = iota
	Green
	Yellow
	Blue
)

// NoColor marks an absent color (no request, failed assignment).
const NoColor PlayerColor = -1

// TableSize is the number of seats a match needs before it can start.
const TableSize = 4

var colorNames = [TableSize]string{"RED", "GREEN", "YELLOW", "BLUE"}

func ColorBySlot(slot int) (PlayerColor, bool) {
	if slot < 0 || slot >= TableSize {
		return NoColor, false
	}
	return PlayerColor(slot), true
}

func ParseColor(s string) (PlayerColor, error) {
	for i, name := range colorNames {
		if strings.EqualFold(name, s) {
			return PlayerColor(i), nil
		}
	}
	return NoColor, fmt.Errorf("unknown color %q", s)
}

func (c PlayerColor) Slot() int {
	return int(c)
}

func (c PlayerColor) Valid() bool {
	return c >= Red && c <= Blue
}

func (c PlayerColor) String() string {
	if !c.Valid() {
		return "null"
	}
	return colorNames[c]
}

func (c PlayerColor) MarshalJSON() ([]byte, error) {
	if !c.Valid() {
		return []byte("null"), nil
	}
	return json.Marshal(c.String())
}

func (c *PlayerColor) UnmarshalJSON(data []byte) error {
	var s *string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	if s == nil || *s == "" || *s == "null" {
		*c = NoColor
		return nil
	}
	parsed, err := ParseColor(*s)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}

// ColorRegistry tracks which colors are still free in one match.
type ColorRegistry struct {
	taken [TableSize]bool
}

func NewColorRegistry() *ColorRegistry {
	return &ColorRegistry{}
}

func (r *ColorRegistry) Available(c PlayerColor) bool {
	return c.Valid() && !r.taken[c]
}

// Claim takes the requested color if it is free, otherwise the lowest free slot.
func (r *ColorRegistry) Claim(requested PlayerColor) (PlayerColor, bool) {
	if r.Available(requested) {
		r.taken[requested] = true
		return requested, true
	}
	for slot := range r.taken {
		if !r.taken[slot] {
			r.taken[slot] = true
			return PlayerColor(slot), true
		}
	}
	return NoColor, false
}

func (r *ColorRegistry) Release(c PlayerColor) {
	if c.Valid() {
		r.taken[c] = false
	}
}
