package random

import (
	"math/rand/v2"
	"sync"
)

const faces = 6

// Die is a uniform six-sided die.
type Die struct {
	mu  sync.Mutex
	rng *rand.Rand
}

func NewDie() *Die {
	return &Die{rng: rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))}
}

func NewSeededDie(seed uint64) *Die {
	return &Die{rng: rand.New(rand.NewPCG(seed, seed))}
}

func (d *Die) Roll() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rng.IntN(faces) + 1
}

// Sequence replays the given faces in order and wraps around.
type Sequence struct {
	mu     sync.Mutex
	values []int
	next   int
}

func NewSequence(values ...int) *Sequence {
	if len(values) == 0 {
		values = []int{1}
	}
	return &Sequence{values: values}
}

func (s *Sequence) Roll() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := s.values[s.next%len(s.values)]
	s.next++
	return v
}

// Push appends faces to the end of the sequence.
func (s *Sequence) Push(values ...int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.values = append(s.values, values...)
}
