package game

import "gorgonia.org/tensor"

// State is any two-player simultaneous-move game the search can drive.
// Move advances the receiver; everything else only reads it.
type State interface {
	// Per-player move legality against the current position.
	P1Valid(d Direction) bool
	P2Valid(d Direction) bool

	// Move applies one simultaneous step and returns the new status.
	Move(d1, d2 Direction) Status

	// Meta-game stuff.
	Status() Status
	IsTerminal() bool

	// Encode projects the position onto the network's feature planes.
	Encode() *tensor.Dense

	// generics
	Clone() State
}
