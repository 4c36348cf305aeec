// Package replay implements the replay-buffer wire format and the two
// ends speaking it: the self-play client storing trajectories and the
// buffer service holding them for training.
package replay

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// TensorPayload is a dense float tensor on the wire.
type TensorPayload struct {
	Shape []int     `json:"shape"`
	Data  []float32 `json:"data"`
}

// FromDense converts a tensor to its wire form.
func FromDense(t *tensor.Dense) (TensorPayload, error) {
	data, ok := t.Data().([]float32)
	if !ok {
		return TensorPayload{}, errors.Errorf("replay: tensor is %v, want float32", t.Dtype())
	}
	return TensorPayload{Shape: append([]int(nil), t.Shape()...), Data: data}, nil
}

// Dense converts the payload back into a tensor.
func (p TensorPayload) Dense() (*tensor.Dense, error) {
	size := 1
	for _, d := range p.Shape {
		size *= d
	}
	if size != len(p.Data) {
		return nil, errors.Errorf("replay: shape %v does not hold %d elements", p.Shape, len(p.Data))
	}
	return tensor.New(tensor.WithShape(p.Shape...), tensor.WithBacking(p.Data)), nil
}

// Rows returns the leading dimension.
func (p TensorPayload) Rows() int {
	if len(p.Shape) == 0 {
		return 0
	}
	return p.Shape[0]
}

// StoreRequest carries one trajectory: three parallel tensors with the
// same leading dimension, plus an idempotency key.
type StoreRequest struct {
	ID           string        `json:"id"`
	Boards       TensorPayload `json:"boards"`
	ValueLabels  TensorPayload `json:"value_labels"`
	PolicyLabels TensorPayload `json:"policy_labels"`
}

// Validate checks the parallel-tensor contract.
func (r StoreRequest) Validate() error {
	if r.Boards.Rows() != r.ValueLabels.Rows() || r.Boards.Rows() != r.PolicyLabels.Rows() {
		return errors.Errorf("replay: size mismatch: boards %d, values %d, policies %d",
			r.Boards.Rows(), r.ValueLabels.Rows(), r.PolicyLabels.Rows())
	}
	if r.Boards.Rows() == 0 {
		return errors.New("replay: empty trajectory")
	}
	return nil
}

// StoreResponse reports what the buffer did with a trajectory.
type StoreResponse struct {
	Stored    int  `json:"stored"`
	Duplicate bool `json:"duplicate"`
}

// SampleResponse is a uniform sample of buffered positions.
type SampleResponse struct {
	Boards       TensorPayload `json:"boards"`
	ValueLabels  TensorPayload `json:"value_labels"`
	PolicyLabels TensorPayload `json:"policy_labels"`
}
