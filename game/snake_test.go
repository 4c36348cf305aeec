package game

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fixedApple(p Point) Spawner {
	return func(*Board) Point { return p }
}

func TestBoardSetup(t *testing.T) {
	b := NewBoardWithSnakes(
		NewSnake(Point{0, 3}, Point{0, 2}, Point{0, 1}, Point{0, 0}),
		NewSnake(Point{1, 5}, Point{1, 4}, Point{1, 3}, Point{1, 2}),
		fixedApple(Point{15, 15}))

	assert.Equal(t, Running, b.Status())
	assert.False(t, b.IsTerminal())
	assert.Equal(t, P1, b.At(Point{0, 0}))
	assert.Equal(t, P2, b.At(Point{1, 2}))
	assert.Equal(t, Apple, b.At(Point{15, 15}))
	assert.Equal(t, Point{15, 15}, b.ApplePosition())
	assert.Equal(t, 4, b.P1View().Player.Len())
}

func TestMoveBasics(t *testing.T) {
	b := NewBoardWithSnakes(
		NewSnake(Point{4, 8}),
		NewSnake(Point{12, 8}),
		fixedApple(Point{0, 0}))

	require.Equal(t, Running, b.Move(Right, Left))
	assert.Equal(t, Point{5, 8}, b.P1View().Player.Head())
	assert.Equal(t, Point{11, 8}, b.P2View().Player.Head())
	assert.Equal(t, Empty, b.At(Point{4, 8}))
	assert.Equal(t, Empty, b.At(Point{12, 8}))
	assert.Equal(t, P1, b.At(Point{5, 8}))
	assert.Equal(t, 1, b.P1View().Player.MovesSinceApple())
}

func TestAppleGrowsSnake(t *testing.T) {
	apples := []Point{{2, 0}, {9, 9}}
	spawn := func(*Board) Point {
		p := apples[0]
		if len(apples) > 1 {
			apples = apples[1:]
		}
		return p
	}
	b := NewBoardWithSnakes(
		NewSnake(Point{1, 0}),
		NewSnake(Point{10, 10}),
		spawn)

	require.Equal(t, Running, b.Move(Right, Up))
	assert.Equal(t, 2, b.P1View().Player.Len())
	assert.Equal(t, 0, b.P1View().Player.MovesSinceApple())
	// eating respawns the apple
	assert.Equal(t, Point{9, 9}, b.ApplePosition())
	assert.Equal(t, Apple, b.At(Point{9, 9}))
}

func TestHeadOnCollision(t *testing.T) {
	t.Run("equal size is a draw", func(t *testing.T) {
		b := NewBoardWithSnakes(
			NewSnake(Point{4, 4}),
			NewSnake(Point{6, 4}),
			fixedApple(Point{15, 15}))
		assert.Equal(t, Draw, b.Move(Right, Left))
		assert.True(t, b.IsTerminal())
	})
	t.Run("bigger snake wins", func(t *testing.T) {
		b := NewBoardWithSnakes(
			NewSnake(Point{4, 4}, Point{3, 4}),
			NewSnake(Point{6, 4}),
			fixedApple(Point{15, 15}))
		assert.Equal(t, P1Win, b.Move(Right, Left))
	})
}

func TestWallKills(t *testing.T) {
	b := NewBoardWithSnakes(
		NewSnake(Point{0, 4}),
		NewSnake(Point{10, 10}),
		fixedApple(Point{15, 15}))
	assert.False(t, b.P1Valid(Left))
	assert.Equal(t, P2Win, b.Move(Left, Up))
}

func TestBodyBlocks(t *testing.T) {
	b := NewBoardWithSnakes(
		NewSnake(Point{4, 4}, Point{5, 4}, Point{6, 4}),
		NewSnake(Point{10, 10}),
		fixedApple(Point{15, 15}))
	assert.False(t, b.P1Valid(Right))
	// the tail has not moved yet when legality is checked
	assert.True(t, b.P1Valid(Up))
	assert.True(t, b.P1Valid(Down))
	assert.True(t, b.P1Valid(Left))
}

func TestStarvation(t *testing.T) {
	b := NewBoardWithSnakes(
		NewSnake(Point{0, 0}),
		NewSnake(Point{5, 5}),
		fixedApple(Point{15, 15}))

	status := Running
	moves := 0
	for status == Running {
		if moves%2 == 0 {
			status = b.Move(Right, Right)
		} else {
			status = b.Move(Left, Left)
		}
		moves++
	}
	assert.Equal(t, StarvationLimit+1, moves)
	assert.Equal(t, Draw, status) // equal size, both starve together
}

func TestMoveOnTerminalBoardPanics(t *testing.T) {
	b := NewBoardWithSnakes(
		NewSnake(Point{4, 4}),
		NewSnake(Point{6, 4}),
		fixedApple(Point{15, 15}))
	require.Equal(t, Draw, b.Move(Right, Left))
	require.Panics(t, func() { b.Move(Up, Up) })
}

func TestCloneIsDeep(t *testing.T) {
	b := NewBoardWithSnakes(
		NewSnake(Point{4, 8}),
		NewSnake(Point{12, 8}),
		fixedApple(Point{0, 0}))
	c := b.Clone().(*Board)
	c.Move(Right, Left)

	assert.Equal(t, Point{4, 8}, b.P1View().Player.Head())
	assert.Equal(t, P1, b.At(Point{4, 8}))
	assert.Equal(t, Point{5, 8}, c.P1View().Player.Head())
}

func TestGreedyChasesApple(t *testing.T) {
	b := NewBoardWithSnakes(
		NewSnake(Point{4, 8}),
		NewSnake(Point{12, 8}),
		fixedApple(Point{8, 8}))
	assert.Equal(t, Right, Greedy(b.P1View()))
	assert.Equal(t, Left, Greedy(b.P2View()))
}

func TestGreedyAvoidsOccupied(t *testing.T) {
	// the apple is straight ahead but behind the opponent's body
	b := NewBoardWithSnakes(
		NewSnake(Point{4, 8}),
		NewSnake(Point{5, 8}, Point{5, 7}, Point{5, 9}),
		fixedApple(Point{8, 8}))
	d := Greedy(b.P1View())
	assert.True(t, b.P1Valid(d), "greedy picked occupied cell %v", d)
}

func TestRunGameTerminates(t *testing.T) {
	status := RunGame(Greedy, Greedy, nil)
	assert.NotEqual(t, Running, status)
}
