package game

import (
	"fmt"

	"golang.org/x/exp/rand"
)

// Dice is the engine's only source of roll randomness. Implementations must
// be deterministic for a given construction.
type Dice interface {
	Roll() (int, int)
}

type seededDice struct {
	rng *rand.Rand
}

// NewDice returns seeded two-die rolls.
func NewDice(seed uint64) Dice {
	return &seededDice{rng: rand.New(rand.NewSource(seed))}
}

func (d *seededDice) Roll() (int, int) {
	return d.rng.Intn(6) + 1, d.rng.Intn(6) + 1
}

// FixedDice replays a scripted roll sequence. Tests use it to force exact
// movement.
type FixedDice struct {
	Rolls [][2]int
	next  int
}

func (d *FixedDice) Roll() (int, int) {
	if d.next >= len(d.Rolls) {
		panic(fmt.Sprintf("fixed dice exhausted after %d rolls", len(d.Rolls)))
	}
	r := d.Rolls[d.next]
	d.next++
	return r[0], r[1]
}

// Named sub-streams derived from the run seed. Dice, deck shuffles, and
// baseline agents each draw from their own stream so consuming one never
// shifts another.
const (
	StreamDice uint64 = iota + 1
	StreamChance
	StreamChest
	StreamAgent
)

// DeriveSeed mixes a run seed with a stream id using the splitmix64 finalizer,
// giving each consumer an independent, reproducible sequence.
func DeriveSeed(seed, stream uint64) uint64 {
	z := seed + stream*0x9e3779b97f4a7c15
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
