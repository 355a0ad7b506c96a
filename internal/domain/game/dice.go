package game

const (
	Unrolled = 0
	Six      = 6
)

// Roller produces die faces in 1..6.
type Roller interface {
	Roll() int
}

// Dice holds the last rolled value of one player.
type Dice struct {
	roller Roller
	value  int
}

func NewDice(roller Roller) *Dice {
	return &Dice{roller: roller}
}

func (d *Dice) Roll() int {
	d.value = d.roller.Roll()
	return d.value
}

// StartRoll is the forced six a player gets while all figures wait in start.
func (d *Dice) StartRoll() int {
	d.value = Six
	return d.value
}

func (d *Dice) Reset() {
	d.value = Unrolled
}

func (d *Dice) Value() int {
	return d.value
}

func (d *Dice) Rolled() bool {
	return d.value != Unrolled
}
