package snakezero

import (
	"github.com/google/uuid"

	"github.com/snakezero/game"
	"github.com/snakezero/mcts"
)

// SelfPlay plays one game between two agents: a decides the unlatched
// plies (player 1), b the latched ones (player 2). Every searched
// position is recorded with its root visit distribution; the final
// outcome is broadcast as the value label. maxPlies of 0 means play to
// termination.
func SelfPlay(a, b *Agent, state game.State, maxPlies int) (*Trajectory, error) {
	adapter := mcts.NewAdapter(state)
	traj := &Trajectory{ID: uuid.New()}

	current := a
	for !adapter.IsTerminal() && (maxPlies == 0 || len(traj.Boards) < maxPlies) {
		d, err := current.Search(adapter)
		if err != nil {
			return nil, err
		}
		policy, err := current.Engine.Policies()
		if err != nil {
			return nil, err
		}
		traj.Boards = append(traj.Boards, adapter.State().Encode())
		traj.Policies = append(traj.Policies, policy)
		if err := adapter.Execute(d); err != nil {
			return nil, err
		}
		if current == a {
			current = b
		} else {
			current = a
		}
	}

	// A ply cap that stopped a live game labels it a draw.
	var outcome float32
	if adapter.IsTerminal() {
		v, err := adapter.Value()
		if err != nil {
			return nil, err
		}
		outcome = v
	}
	traj.Values = make([]float32, len(traj.Boards))
	for i := range traj.Values {
		traj.Values[i] = outcome
	}
	return traj, nil
}
