package mcts

import "github.com/pkg/errors"

// Error taxonomy of the search engine. Programming bugs (IllegalMove,
// NotTerminal) fail the whole search; evaluator trouble is downgraded to
// per-simulation drops and only surfaced when no decision could be made.
var (
	// ErrIllegalMove means a move was executed that the prior legality
	// check would have rejected. Caller bug, fatal to the search.
	ErrIllegalMove = errors.New("illegal move")

	// ErrNotTerminal means a terminal value was read off a live position.
	ErrNotTerminal = errors.New("not a terminal state")

	// ErrEvaluatorUnavailable means every simulation of a Search lost its
	// leaf evaluation.
	ErrEvaluatorUnavailable = errors.New("evaluator unavailable")

	// ErrEvaluatorClosed means the evaluator shut down; the search ends
	// cleanly.
	ErrEvaluatorClosed = errors.New("evaluator closed")
)
