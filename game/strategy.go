package game

// Strategy picks a move from one player's view of the board.
type Strategy func(v PlayerView) Direction

// RunGame plays two strategies against each other to termination.
// render, if non-nil, is called after every step.
func RunGame(a, b Strategy, render func(*Board)) Status {
	board := NewBoard()
	status := board.Move(a(board.P1View()), b(board.P2View()))
	for status == Running {
		if render != nil {
			render(board)
		}
		status = board.Move(a(board.P1View()), b(board.P2View()))
	}
	if render != nil {
		render(board)
	}
	return status
}

// Greedy moves towards the apple, avoiding occupied cells.
func Greedy(v PlayerView) Direction {
	type score struct {
		dir        Direction
		appleDist  int
		unoccupied bool
	}
	best := score{dir: Up, appleDist: ArenaSize * ArenaSize}
	first := true
	for i := 0; i < NumDirections; i++ {
		d := Direction(i)
		head := v.Player.Peek(d)
		s := score{
			dir:        d,
			appleDist:  head.MDist(v.Board.ApplePosition()),
			unoccupied: v.Board.IsUnoccupied(head),
		}
		better := false
		switch {
		case first:
			better = true
		case s.unoccupied != best.unoccupied:
			better = s.unoccupied
		default:
			better = s.appleDist < best.appleDist
		}
		if better {
			best = s
			first = false
		}
	}
	return best.dir
}
