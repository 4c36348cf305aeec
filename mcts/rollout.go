package mcts

import (
	"math/rand"
	"time"

	"github.com/snakezero/game"
)

// RolloutEvaluator plays uniformly random legal moves to termination and
// returns the outcome. A player left with no legal move plays a random
// one, which ends the game. It never issues external I/O and has no
// policy opinion. Not safe for concurrent use: give each engine its own.
type RolloutEvaluator struct {
	rand *rand.Rand
}

// NewRolloutEvaluator makes a rollout evaluator with a time-based seed.
func NewRolloutEvaluator() *RolloutEvaluator {
	return &RolloutEvaluator{rand: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Evaluate runs one random playout from the position.
func (e *RolloutEvaluator) Evaluate(a *Adapter) ([]float32, float32, error) {
	s := a.Clone()
	for !s.IsTerminal() {
		d := game.Direction(e.rand.Intn(game.NumDirections))
		if !s.ValidAction(d) {
			if s.ValidActions() != ([game.NumDirections]bool{}) {
				continue
			}
			// No legal move: the trapped snake dies on whatever it plays.
			if s.latched {
				s.state.Move(s.queued, d)
				s.latched = false
			} else {
				s.latched, s.queued = true, d
			}
			continue
		}
		if err := s.Execute(d); err != nil {
			return nil, 0, err
		}
	}
	return nil, s.mustValue(), nil
}
