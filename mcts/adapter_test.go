package mcts

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snakezero/game"
)

func fixedApple(p game.Point) game.Spawner {
	return func(*game.Board) game.Point { return p }
}

func openBoard() *game.Board {
	return game.NewBoardWithSnakes(
		game.NewSnake(game.Point{4, 8}),
		game.NewSnake(game.Point{12, 8}),
		fixedApple(game.Point{15, 15}))
}

func TestAdapterLatch(t *testing.T) {
	a := NewAdapter(openBoard())

	assert.Equal(t, -1, a.Player())
	require.NoError(t, a.Execute(game.Right))
	assert.Equal(t, 1, a.Player())
	// the game does not advance until both moves are in
	assert.Equal(t, game.Point{4, 8}, a.State().(*game.Board).P1View().Player.Head())

	require.NoError(t, a.Execute(game.Left))
	assert.Equal(t, -1, a.Player())
	assert.Equal(t, game.Point{5, 8}, a.State().(*game.Board).P1View().Player.Head())
	assert.Equal(t, game.Point{11, 8}, a.State().(*game.Board).P2View().Player.Head())
}

func TestAdapterValidActionsSwitchPlayer(t *testing.T) {
	// p1 is free, p2 sits against the left wall
	b := game.NewBoardWithSnakes(
		game.NewSnake(game.Point{8, 8}),
		game.NewSnake(game.Point{0, 4}),
		fixedApple(game.Point{15, 15}))
	a := NewAdapter(b)

	unlatched := a.ValidActions()
	assert.Equal(t, [4]bool{true, true, true, true}, unlatched)

	require.NoError(t, a.Execute(game.Up))
	latched := a.ValidActions()
	assert.False(t, latched[game.Left], "p2 cannot move into the wall")
	assert.True(t, latched[game.Right])
}

func TestAdapterIllegalMove(t *testing.T) {
	b := game.NewBoardWithSnakes(
		game.NewSnake(game.Point{0, 4}),
		game.NewSnake(game.Point{12, 8}),
		fixedApple(game.Point{15, 15}))
	a := NewAdapter(b)

	err := a.Execute(game.Left)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrIllegalMove))
	// the failed execute must not latch
	assert.Equal(t, -1, a.Player())
}

func TestAdapterValue(t *testing.T) {
	a := NewAdapter(openBoard())
	_, err := a.Value()
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotTerminal))

	// drive to a head-on draw
	b := game.NewBoardWithSnakes(
		game.NewSnake(game.Point{4, 4}),
		game.NewSnake(game.Point{6, 4}),
		fixedApple(game.Point{15, 15}))
	d := NewAdapter(b)
	require.NoError(t, d.Execute(game.Right))
	require.NoError(t, d.Execute(game.Left))
	require.True(t, d.IsTerminal())
	v, err := d.Value()
	require.NoError(t, err)
	assert.Equal(t, float32(0), v)
}

func TestAdapterCloneIsIndependent(t *testing.T) {
	a := NewAdapter(openBoard())
	c := a.Clone()
	require.NoError(t, c.Execute(game.Right))
	require.NoError(t, c.Execute(game.Left))

	assert.Equal(t, -1, a.Player())
	assert.Equal(t, game.Point{4, 8}, a.State().(*game.Board).P1View().Player.Head())
}
