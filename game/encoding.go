package game

import (
	"github.com/pkg/errors"
	"gorgonia.org/tensor"
)

// Feature plane assignments.
const (
	PlaneP1 = iota
	PlaneP2
	PlaneApple
	NumPlanes
)

// Encode projects the board onto a (ArenaSize, ArenaSize, NumPlanes)
// float tensor: each snake's body as ordinals from the tail, the apple
// as a one-hot plane.
func (b *Board) Encode() *tensor.Dense {
	backing := make([]float32, ArenaSize*ArenaSize*NumPlanes)
	encodeInto(backing, b)
	return tensor.New(
		tensor.WithShape(ArenaSize, ArenaSize, NumPlanes),
		tensor.WithBacking(backing))
}

// EncodeBatch stacks boards into one (n, ArenaSize, ArenaSize, NumPlanes)
// tensor, positionally aligned with the input.
func EncodeBatch(boards []*Board) *tensor.Dense {
	stride := ArenaSize * ArenaSize * NumPlanes
	backing := make([]float32, len(boards)*stride)
	for i, b := range boards {
		encodeInto(backing[i*stride:(i+1)*stride], b)
	}
	return tensor.New(
		tensor.WithShape(len(boards), ArenaSize, ArenaSize, NumPlanes),
		tensor.WithBacking(backing))
}

// Stack concatenates single-position tensors into one batch tensor.
func Stack(states []*tensor.Dense) (*tensor.Dense, error) {
	stride := ArenaSize * ArenaSize * NumPlanes
	backing := make([]float32, len(states)*stride)
	for i, s := range states {
		data, ok := s.Data().([]float32)
		if !ok || len(data) != stride {
			return nil, errors.Errorf("state %d: want %d float32 features, got %v", i, stride, s.Shape())
		}
		copy(backing[i*stride:], data)
	}
	return tensor.New(
		tensor.WithShape(len(states), ArenaSize, ArenaSize, NumPlanes),
		tensor.WithBacking(backing)), nil
}

func encodeInto(dst []float32, b *Board) {
	at := func(p Point, plane int) *float32 {
		return &dst[(int(p.Y)*ArenaSize+int(p.X))*NumPlanes+plane]
	}
	for i, p := range b.p1.Points() {
		*at(p, PlaneP1) = float32(b.p1.Len() - i)
	}
	for i, p := range b.p2.Points() {
		*at(p, PlaneP2) = float32(b.p2.Len() - i)
	}
	*at(b.applePos, PlaneApple) = 1
}
