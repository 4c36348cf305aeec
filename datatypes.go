package snakezero

import (
	"github.com/google/uuid"
	"gorgonia.org/tensor"
)

// Prediction is one evaluator result: a policy over the four actions and
// a value in [-1, +1] from player 1's perspective.
type Prediction struct {
	Policy []float32
	Value  float32
}

// BatchPredictor is the network contract the farm consumes: one forward
// pass over a (n, height, width, features) batch, results positionally
// aligned. Implementations must tolerate concurrent batch calls.
type BatchPredictor interface {
	BatchPredict(batch *tensor.Dense) (policies [][]float32, values []float32, err error)
}

// Sink consumes finished trajectories. Store must be idempotent with
// respect to duplicate trajectory IDs.
type Sink interface {
	Store(t *Trajectory) error
}

// Trajectory is one finished game: the searched positions with their
// root visit distributions, and the final outcome broadcast over them.
type Trajectory struct {
	ID       uuid.UUID
	Boards   []*tensor.Dense
	Policies [][]float32
	Values   []float32
}

// UniformPredictor predicts a uniform policy and a neutral value. It
// stands in for a network before the first checkpoint exists.
type UniformPredictor struct{}

// BatchPredict implements BatchPredictor.
func (UniformPredictor) BatchPredict(batch *tensor.Dense) ([][]float32, []float32, error) {
	n := batch.Shape()[0]
	policies := make([][]float32, n)
	for i := range policies {
		policies[i] = []float32{0.25, 0.25, 0.25, 0.25}
	}
	return policies, make([]float32, n), nil
}
