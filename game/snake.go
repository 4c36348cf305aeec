package game

import (
	"math/rand"
)

// ArenaSize is the side length of the square board.
const ArenaSize = 16

// StarvationLimit kills a snake that went this many moves without an apple.
const StarvationLimit = 100

// Pixel is the content of one board cell.
type Pixel uint8

// Cell contents.
const (
	Empty Pixel = iota
	P1
	P2
	Apple
)

// Snake is one player's body. The head is the first point.
type Snake struct {
	points          []Point
	movesSinceApple int
}

// NewSnake makes a snake from its points, head first.
func NewSnake(points ...Point) Snake {
	ps := make([]Point, len(points))
	copy(ps, points)
	return Snake{points: ps}
}

// Move advances the head in direction d and returns the vacated tail point.
func (s *Snake) Move(d Direction) Point {
	tail := s.points[len(s.points)-1]
	s.points = append([]Point{s.Head().Peek(d)}, s.points[:len(s.points)-1]...)
	s.movesSinceApple++
	return tail
}

// Grow advances the head in direction d without moving the tail.
func (s *Snake) Grow(d Direction) {
	s.points = append([]Point{s.Head().Peek(d)}, s.points...)
	s.movesSinceApple = 0
}

// Head returns the head point.
func (s Snake) Head() Point { return s.points[0] }

// Peek returns the point the head would occupy after moving in d.
func (s Snake) Peek(d Direction) Point { return s.points[0].Peek(d) }

// Points returns the body, head first.
func (s Snake) Points() []Point { return s.points }

// Len returns the body length.
func (s Snake) Len() int { return len(s.points) }

// MovesSinceApple returns the number of moves since the last apple.
func (s Snake) MovesSinceApple() int { return s.movesSinceApple }

func (s Snake) clone() Snake {
	ps := make([]Point, len(s.points))
	copy(ps, s.points)
	return Snake{points: ps, movesSinceApple: s.movesSinceApple}
}

// Spawner picks the cell for the next apple. Tests inject a fixed one.
type Spawner func(b *Board) Point

// Board is the full game state of a two-snake match. Both players move
// simultaneously through Move; the board keeps its own outcome status.
type Board struct {
	p1, p2   Snake
	applePos Point
	pixels   [ArenaSize * ArenaSize]Pixel
	status   Status
	spawn    Spawner
}

// NewBoard makes a board with both snakes in their starting positions
// and a randomly placed apple.
func NewBoard() *Board {
	return NewBoardWithSnakes(
		NewSnake(Point{ArenaSize / 4, ArenaSize / 2}),
		NewSnake(Point{3 * ArenaSize / 4, ArenaSize / 2}),
		nil)
}

// NewBoardWithSnakes makes a board from explicit snakes. A nil spawner
// places apples on uniformly random free cells.
func NewBoardWithSnakes(p1, p2 Snake, spawn Spawner) *Board {
	b := &Board{p1: p1, p2: p2, spawn: spawn}
	if b.spawn == nil {
		b.spawn = randomFreePosition
	}
	for _, p := range b.p1.Points() {
		b.setAt(p, P1)
	}
	for _, p := range b.p2.Points() {
		b.setAt(p, P2)
	}
	b.spawnApple()
	return b
}

// BoardFromView reconstructs a board from one player's view, with the
// viewing player as player 1. Search strategies use this to think from
// their own perspective.
func BoardFromView(v PlayerView) *Board {
	b := &Board{p1: v.Player.clone(), p2: v.Opponent.clone(), spawn: randomFreePosition}
	for _, p := range b.p1.Points() {
		b.setAt(p, P1)
	}
	for _, p := range b.p2.Points() {
		b.setAt(p, P2)
	}
	b.applePos = v.Board.applePos
	b.setAt(b.applePos, Apple)
	return b
}

// PlayerView is the board as seen by one player.
type PlayerView struct {
	Player   Snake
	Opponent Snake
	Board    *Board
}

// ValidMove reports whether the viewing player's head may move in d.
func (v PlayerView) ValidMove(d Direction) bool {
	return v.Board.IsUnoccupied(v.Player.Peek(d))
}

// P1View returns player 1's view.
func (b *Board) P1View() PlayerView { return PlayerView{Player: b.p1, Opponent: b.p2, Board: b} }

// P2View returns player 2's view.
func (b *Board) P2View() PlayerView { return PlayerView{Player: b.p2, Opponent: b.p1, Board: b} }

// At returns the cell content at p. p must be in bounds.
func (b *Board) At(p Point) Pixel {
	return b.pixels[int(p.X)+ArenaSize*int(p.Y)]
}

func (b *Board) setAt(p Point, px Pixel) {
	b.pixels[int(p.X)+ArenaSize*int(p.Y)] = px
}

// IsOOB reports whether p is outside the board.
func (b *Board) IsOOB(p Point) bool {
	return p.X < 0 || p.Y < 0 || p.X >= ArenaSize || p.Y >= ArenaSize
}

// IsEmpty reports whether p is in bounds and empty.
func (b *Board) IsEmpty(p Point) bool {
	return !b.IsOOB(p) && b.At(p) == Empty
}

// IsUnoccupied reports whether p is in bounds and not covered by a snake.
func (b *Board) IsUnoccupied(p Point) bool {
	return !b.IsOOB(p) && (b.At(p) == Empty || b.At(p) == Apple)
}

// ApplePosition returns the current apple cell.
func (b *Board) ApplePosition() Point { return b.applePos }

// Status returns the board outcome.
func (b *Board) Status() Status { return b.status }

// IsTerminal reports whether the game has ended.
func (b *Board) IsTerminal() bool { return b.status != Running }

// Move applies one simultaneous step: d1 for player 1, d2 for player 2.
// It returns the resulting status. Moving a terminal board is a caller bug.
func (b *Board) Move(d1, d2 Direction) Status {
	if b.status != Running {
		panic("game: move on a terminal board")
	}
	p1next := b.p1.Peek(d1)
	p2next := b.p2.Peek(d2)

	p1Alive := b.IsUnoccupied(p1next) && b.p1.MovesSinceApple() < StarvationLimit
	p2Alive := b.IsUnoccupied(p2next) && b.p2.MovesSinceApple() < StarvationLimit

	// A head-on collision, or both snakes dying at once, is decided by size.
	if p1next == p2next || (!p1Alive && !p2Alive) {
		switch {
		case b.p1.Len() == b.p2.Len():
			b.status = Draw
		case b.p1.Len() > b.p2.Len():
			b.status = P1Win
		default:
			b.status = P2Win
		}
		return b.status
	}

	if p1Alive != p2Alive {
		if p1Alive {
			b.status = P1Win
		} else {
			b.status = P2Win
		}
		return b.status
	}

	appleConsumed := false
	if b.At(p1next) == Apple {
		appleConsumed = true
		b.p1.Grow(d1)
	} else {
		b.setAt(b.p1.Move(d1), Empty)
	}

	if b.At(p2next) == Apple {
		appleConsumed = true
		b.p2.Grow(d2)
	} else {
		b.setAt(b.p2.Move(d2), Empty)
	}

	b.setAt(p1next, P1)
	b.setAt(p2next, P2)

	if appleConsumed {
		b.spawnApple()
	}
	return b.status
}

// P1Valid reports player 1 move legality.
func (b *Board) P1Valid(d Direction) bool { return b.P1View().ValidMove(d) }

// P2Valid reports player 2 move legality.
func (b *Board) P2Valid(d Direction) bool { return b.P2View().ValidMove(d) }

// Clone deep-copies the board.
func (b *Board) Clone() State {
	n := *b
	n.p1 = b.p1.clone()
	n.p2 = b.p2.clone()
	return &n
}

func (b *Board) spawnApple() {
	b.applePos = b.spawn(b)
	b.setAt(b.applePos, Apple)
}

func randomFreePosition(b *Board) Point {
	pos := rand.Intn(ArenaSize * ArenaSize)
	initial := pos
	for b.pixels[pos] != Empty {
		pos++
		if pos >= len(b.pixels) {
			pos = 0
		}
		if pos == initial {
			panic("game: no free cell for apple")
		}
	}
	return Point{int8(pos % ArenaSize), int8(pos / ArenaSize)}
}
