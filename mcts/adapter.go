package mcts

import (
	"github.com/pkg/errors"

	"github.com/snakezero/game"
)

// Adapter rewrites a simultaneous-move game into alternating sequential
// decisions so vanilla MCTS applies. The first Execute of a round latches
// player 1's move; the second applies both at once. An adapter is frozen
// once its node is in the tree: walks clone it before executing.
type Adapter struct {
	state   game.State
	queued  game.Direction
	latched bool
}

// NewAdapter wraps a game state. The first decision belongs to player 1.
func NewAdapter(s game.State) Adapter {
	return Adapter{state: s}
}

// Clone deep-copies the adapter.
func (a Adapter) Clone() Adapter {
	a.state = a.state.Clone()
	return a
}

// Execute plays d for the player to decide. Unlatched, it queues d as
// player 1's pending move; latched, it commits the queued move together
// with d and advances the game.
func (a *Adapter) Execute(d game.Direction) error {
	if !a.ValidAction(d) {
		return errors.Wrapf(ErrIllegalMove, "%v for player %d", d, a.Player())
	}
	if a.latched {
		a.state.Move(a.queued, d)
		a.latched = false
	} else {
		a.latched = true
		a.queued = d
	}
	return nil
}

// ValidAction reports whether the player to decide may play d. When
// latched this consults player 2's legality against the latched state.
func (a Adapter) ValidAction(d game.Direction) bool {
	if a.latched {
		return a.state.P2Valid(d)
	}
	return a.state.P1Valid(d)
}

// ValidActions returns the legality of every action for the player to
// decide. Non-empty unless the position is terminal.
func (a Adapter) ValidActions() [game.NumDirections]bool {
	var result [game.NumDirections]bool
	for i := 0; i < game.NumDirections; i++ {
		result[i] = a.ValidAction(game.Direction(i))
	}
	return result
}

// IsTerminal reports whether the underlying game has ended.
func (a Adapter) IsTerminal() bool { return a.state.IsTerminal() }

// Value returns the terminal value from player 1's perspective.
func (a Adapter) Value() (float32, error) {
	switch a.state.Status() {
	case game.P1Win:
		return 1, nil
	case game.P2Win:
		return -1, nil
	case game.Draw:
		return 0, nil
	}
	return 0, errors.WithStack(ErrNotTerminal)
}

// Player returns -1 when player 1 decides next, +1 when player 2 does.
func (a Adapter) Player() int {
	if a.latched {
		return 1
	}
	return -1
}

// State returns the wrapped game state. Read-only for callers.
func (a Adapter) State() game.State { return a.state }

// mustValue is Value on positions already known to be terminal.
func (a Adapter) mustValue() float32 {
	v, err := a.Value()
	if err != nil {
		panic(err)
	}
	return v
}
