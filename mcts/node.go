package mcts

import (
	"fmt"

	"github.com/snakezero/game"
)

// Node is one tree vertex. It exclusively owns its children; the parent
// link is a borrow. The adapter, action, terminal flag and legal-action
// set are frozen at construction; only the search statistics mutate.
type Node struct {
	adapter  Adapter
	parent   *Node
	action   game.Direction
	terminal bool
	valid    [game.NumDirections]bool
	numValid int

	visits   int
	reward   float32 // cumulative backed-up value, player 1's frame
	expanded int
	prior    float32 // P(s, a) for the incoming action
	priors   [game.NumDirections]float32
	children [game.NumDirections]*Node
}

func newNode(a Adapter, action game.Direction, parent *Node) *Node {
	n := &Node{
		adapter:  a,
		parent:   parent,
		action:   action,
		terminal: a.IsTerminal(),
	}
	if n.terminal {
		return n
	}
	n.valid = a.ValidActions()
	for _, ok := range n.valid {
		if ok {
			n.numValid++
		}
	}
	if n.numValid == 0 {
		panic("mcts: non-terminal node with no valid action")
	}
	return n
}

// Format prints the node's statistics.
func (n *Node) Format(s fmt.State, c rune) {
	fmt.Fprintf(s, "{Move: %v, Visits: %d, Reward: %v, P(s,a): %v, Expanded: %d/%d}",
		n.action, n.visits, n.reward, n.prior, n.expanded, n.numValid)
}

// Action returns the incoming action from the parent.
func (n *Node) Action() game.Direction { return n.action }

// Visits returns the number of simulations through this node.
func (n *Node) Visits() int { return n.visits }

// Reward returns the cumulative backed-up value.
func (n *Node) Reward() float32 { return n.reward }

// IsTerminal reports whether the node's position ended the game.
func (n *Node) IsTerminal() bool { return n.terminal }

// IsFullyExpanded reports whether every legal action has a child.
func (n *Node) IsFullyExpanded() bool { return n.expanded == n.numValid }

// Child returns the child in slot d, or nil.
func (n *Node) Child(d game.Direction) *Node { return n.children[d] }

// Expand allocates the child for the lowest-indexed legal action with an
// empty slot and returns it. The index order is part of the contract.
func (n *Node) Expand() *Node {
	for i := 0; i < game.NumDirections; i++ {
		if !n.valid[i] || n.children[i] != nil {
			continue
		}
		d := game.Direction(i)
		a := n.adapter.Clone()
		if err := a.Execute(d); err != nil {
			panic(err) // legality was established at construction
		}
		child := newNode(a, d, n)
		child.prior = n.priors[i]
		n.children[i] = child
		n.expanded++
		return child
	}
	panic(fmt.Sprintf("mcts: expand on fully expanded node %v", n))
}

// setPriors installs a policy over the node's legal actions, renormalized
// over legality. A nil or degenerate policy falls back to uniform.
// Children already expanded pick up their new prior as well.
func (n *Node) setPriors(policy []float32) {
	var legalSum float32
	if len(policy) == game.NumDirections {
		for i, ok := range n.valid {
			if ok {
				legalSum += policy[i]
			}
		}
	}
	for i, ok := range n.valid {
		if !ok {
			n.priors[i] = 0
			continue
		}
		if legalSum > 0 {
			n.priors[i] = policy[i] / legalSum
		} else {
			n.priors[i] = 1 / float32(n.numValid)
		}
		if c := n.children[i]; c != nil {
			c.prior = n.priors[i]
		}
	}
}

// backpropagate adds one visit and the reward to every node up to the root.
func backpropagate(n *Node, reward float32) {
	for ; n != nil; n = n.parent {
		n.visits++
		n.reward += reward
	}
}
