package snakezero

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"

	"github.com/snakezero/game"
	"github.com/snakezero/replay"
)

// ReplaySink stores trajectories in a remote replay-buffer service.
type ReplaySink struct {
	client *replay.Client
}

// NewReplaySink makes a sink for the given host:port endpoint.
func NewReplaySink(endpoint string) *ReplaySink {
	return &ReplaySink{client: replay.NewClient(endpoint)}
}

// Store implements Sink.
func (s *ReplaySink) Store(t *Trajectory) error {
	req, err := storeRequest(t)
	if err != nil {
		return err
	}
	_, err = s.client.Store(*req)
	return err
}

// storeRequest assembles the three parallel wire tensors from a
// trajectory.
func storeRequest(t *Trajectory) (*replay.StoreRequest, error) {
	n := len(t.Boards)
	if n == 0 || len(t.Policies) != n || len(t.Values) != n {
		return nil, errors.Errorf("trajectory %s: %d boards, %d policies, %d values",
			t.ID, n, len(t.Policies), len(t.Values))
	}
	boards, err := game.Stack(t.Boards)
	if err != nil {
		return nil, errors.WithMessage(err, "stack boards")
	}
	boardPayload, err := replay.FromDense(boards)
	if err != nil {
		return nil, err
	}

	values := make([]float32, n)
	copy(values, t.Values)
	policies := make([]float32, 0, n*game.NumDirections)
	for i, p := range t.Policies {
		if len(p) != game.NumDirections {
			return nil, errors.Errorf("trajectory %s: policy %d has %d entries", t.ID, i, len(p))
		}
		policies = append(policies, p...)
	}

	valuePayload, err := replay.FromDense(tensor.New(
		tensor.WithShape(n, 1), tensor.WithBacking(values)))
	if err != nil {
		return nil, err
	}
	policyPayload, err := replay.FromDense(tensor.New(
		tensor.WithShape(n, game.NumDirections), tensor.WithBacking(policies)))
	if err != nil {
		return nil, err
	}

	return &replay.StoreRequest{
		ID:           t.ID.String(),
		Boards:       boardPayload,
		ValueLabels:  valuePayload,
		PolicyLabels: policyPayload,
	}, nil
}
