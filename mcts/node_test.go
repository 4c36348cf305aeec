package mcts

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snakezero/game"
)

func TestExpandLowestIndexFirst(t *testing.T) {
	n := newNode(NewAdapter(openBoard()), game.Up, nil)
	require.Equal(t, 4, n.numValid)

	for i := 0; i < game.NumDirections; i++ {
		require.False(t, n.IsFullyExpanded())
		child := n.Expand()
		assert.Equal(t, game.Direction(i), child.Action())
		assert.Same(t, n, child.parent)
		assert.Same(t, child, n.Child(game.Direction(i)))
		assert.Equal(t, i+1, n.expanded)
	}
	require.True(t, n.IsFullyExpanded())
	require.Panics(t, func() { n.Expand() })
}

func TestExpandSkipsIllegalSlots(t *testing.T) {
	// p1 against the left wall: Left is illegal
	b := game.NewBoardWithSnakes(
		game.NewSnake(game.Point{0, 4}),
		game.NewSnake(game.Point{12, 8}),
		fixedApple(game.Point{15, 15}))
	n := newNode(NewAdapter(b), game.Up, nil)
	require.Equal(t, 3, n.numValid)

	var actions []game.Direction
	for !n.IsFullyExpanded() {
		actions = append(actions, n.Expand().Action())
	}
	assert.Equal(t, []game.Direction{game.Up, game.Down, game.Right}, actions)
	assert.Nil(t, n.Child(game.Left))
}

func TestExpandedChildAlternatesPly(t *testing.T) {
	n := newNode(NewAdapter(openBoard()), game.Up, nil)
	child := n.Expand()
	assert.Equal(t, -1, n.adapter.Player())
	assert.Equal(t, 1, child.adapter.Player())

	grandchild := child.Expand()
	assert.Equal(t, -1, grandchild.adapter.Player())
}

func TestExpandDoesNotMutateAncestors(t *testing.T) {
	n := newNode(NewAdapter(openBoard()), game.Up, nil)
	head := n.adapter.State().(*game.Board).P1View().Player.Head()

	child := n.Expand()
	grandchild := child.Expand()
	backpropagate(grandchild, 1)

	assert.Equal(t, head, n.adapter.State().(*game.Board).P1View().Player.Head())
	assert.Equal(t, -1, n.adapter.Player())
	// only count/reward statistics changed
	assert.Equal(t, 1, n.visits)
	assert.Equal(t, float32(1), n.reward)
	assert.Equal(t, 1, child.visits)
}

func TestSetPriorsRenormalizesOverLegal(t *testing.T) {
	b := game.NewBoardWithSnakes(
		game.NewSnake(game.Point{0, 4}),
		game.NewSnake(game.Point{12, 8}),
		fixedApple(game.Point{15, 15}))
	n := newNode(NewAdapter(b), game.Up, nil)

	n.setPriors([]float32{0.2, 0.2, 0.4, 0.2}) // Left is illegal here
	assert.Equal(t, float32(0), n.priors[game.Left])
	var sum float32
	for _, p := range n.priors {
		sum += p
	}
	assert.InDelta(t, 1.0, sum, 1e-5)

	// degenerate policies fall back to uniform
	n.setPriors([]float32{0, 0, 0, 0})
	assert.InDelta(t, 1.0/3, n.priors[game.Up], 1e-5)
}

func TestBackpropagateCounts(t *testing.T) {
	root := newNode(NewAdapter(openBoard()), game.Up, nil)
	c1 := root.Expand()
	c2 := root.Expand()
	g1 := c1.Expand()

	backpropagate(g1, 1)
	backpropagate(g1, -1)
	backpropagate(c2, 0.5)

	assert.Equal(t, 3, root.visits)
	assert.Equal(t, 2, c1.visits)
	assert.Equal(t, 1, c2.visits)
	assert.Equal(t, 2, g1.visits)
	assert.Equal(t, float32(0.5), root.reward)
	assert.Equal(t, float32(0), c1.reward)
}
