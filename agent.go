package snakezero

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/snakezero/batching"
	"github.com/snakezero/game"
	"github.com/snakezero/mcts"
)

// An Agent is one search fiber's engine bound to its batching handle.
// The agent is the engine's evaluator: each leaf evaluation becomes one
// work item on the handle, suspending the fiber until the coordinator
// delivers the network's reply.
type Agent struct {
	Engine *mcts.MCTS
	client *batching.Client[*tensor.Dense, Prediction]
}

// NewAgent binds a fresh engine to a batching handle.
func NewAgent(conf mcts.Config, client *batching.Client[*tensor.Dense, Prediction]) *Agent {
	a := &Agent{client: client}
	a.Engine = mcts.New(conf, a)
	return a
}

// Evaluate implements mcts.Evaluator over the batching handle.
func (a *Agent) Evaluate(ad *mcts.Adapter) ([]float32, float32, error) {
	out, err := a.client.Do(ad.State().Encode())
	if err != nil {
		if errors.Is(err, batching.ErrClosed) {
			return nil, 0, errors.WithStack(mcts.ErrEvaluatorClosed)
		}
		return nil, 0, errors.Wrap(mcts.ErrEvaluatorUnavailable, err.Error())
	}
	return out.Policy, out.Value, nil
}

// Search searches the position and returns a suggested move.
func (a *Agent) Search(ad mcts.Adapter) (game.Direction, error) {
	return a.Engine.Search(ad)
}

// Close retires the agent's batching handle.
func (a *Agent) Close() {
	a.client.Close()
}
