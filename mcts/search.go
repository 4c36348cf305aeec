package mcts

import (
	"bytes"
	"log"
	"time"

	"github.com/chewxy/math32"
	"github.com/pkg/errors"
	distrand "golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distmv"

	"github.com/snakezero/game"
)

/*
Here lies the search code, while adapter.go and node.go handle the data
structure stuff. One engine drives one decision at a time: Search builds a
fresh root from the caller's position, runs the configured number of
simulations, and returns the most-visited root action.
*/

// Evaluator produces a leaf evaluation: a prior policy over the actions
// and a value in [-1, +1] from player 1's perspective. A nil policy means
// the evaluator has no opinion (uniform priors).
type Evaluator interface {
	Evaluate(a *Adapter) (policy []float32, value float32, err error)
}

// Config is the structure to configure a search engine.
type Config struct {
	// C is the exploration constant for plain UCB.
	C float32

	// PUCT parameters, used when AlphaZero is set.
	PuctInit float32
	PuctBase float32

	// Root exploration noise, AlphaZero mode only.
	DirichletAlpha float64
	NoiseFraction  float32

	NumSimulations int

	// AlphaZero switches scoring from plain UCB to prior-weighted PUCT
	// and mixes Dirichlet noise into the root priors.
	AlphaZero bool

	// Debug records a search trace readable through Log.
	Debug bool
}

// DefaultConfig returns the standard constants: C=2 for plain UCB,
// init 1.25 / base 19652 and Dirichlet(0.3, 0.25) for AlphaZero.
func DefaultConfig() Config {
	return Config{
		C:              2.0,
		PuctInit:       1.25,
		PuctBase:       19652,
		DirichletAlpha: 0.3,
		NoiseFraction:  0.25,
		NumSimulations: 1000,
	}
}

// IsValid reports whether the configuration is usable.
func (c Config) IsValid() bool {
	if c.NumSimulations <= 0 {
		return false
	}
	if c.AlphaZero {
		return c.PuctInit > 0 && c.PuctBase > 0 &&
			c.DirichletAlpha > 0 && c.NoiseFraction >= 0 && c.NoiseFraction <= 1
	}
	return c.C > 0
}

// MCTS is one search engine. It owns its tree exclusively; engines are
// not safe for concurrent use, spawn one per search fiber.
type MCTS struct {
	Config
	eval Evaluator
	rand *distrand.Rand

	root   *Node
	policy []float32

	buf    bytes.Buffer
	logger *log.Logger
}

// New makes an engine from a config and a leaf evaluator.
func New(conf Config, eval Evaluator) *MCTS {
	if !conf.IsValid() {
		panic("mcts: config is not valid")
	}
	t := &MCTS{
		Config: conf,
		eval:   eval,
		rand:   distrand.New(distrand.NewSource(uint64(time.Now().UnixNano()))),
	}
	if conf.Debug {
		t.logger = log.New(&t.buf, "", log.Ltime)
	}
	return t
}

// Search runs the configured number of simulations from the given
// position and returns the action whose root child collected the most
// visits, ties broken by lowest action index.
func (t *MCTS) Search(a Adapter) (game.Direction, error) {
	if a.IsTerminal() {
		return 0, errors.Wrap(ErrIllegalMove, "search from a terminal position")
	}
	t.root = newNode(a.Clone(), game.Up, nil)
	t.policy = nil

	if t.AlphaZero {
		if err := t.prepareRoot(); err != nil {
			return 0, err
		}
	}

	var completed int
	for i := 0; i < t.NumSimulations; i++ {
		err := t.simulate()
		switch {
		case err == nil:
			completed++
		case errors.Is(err, ErrEvaluatorClosed):
			return 0, err
		default:
			t.log("simulation %d dropped: %v", i, err)
		}
	}
	if completed == 0 {
		return 0, errors.Wrapf(ErrEvaluatorUnavailable, "all %d simulations dropped", t.NumSimulations)
	}

	best := t.bestAction()
	t.policy = t.visitDistribution()
	t.log("search done: %d/%d simulations, best %v", completed, t.NumSimulations, best)
	return best, nil
}

// Policies returns the root visit distribution of the last Search,
// indexed by action.
func (t *MCTS) Policies() ([]float32, error) {
	if t.policy == nil {
		return nil, errors.New("empty policies")
	}
	return t.policy, nil
}

// Log returns the search trace. Empty unless Debug is set.
func (t *MCTS) Log() string { return t.buf.String() }

// prepareRoot evaluates the root once for its priors and mixes in
// Dirichlet exploration noise. Applied once per Search, never inside
// simulations. An unavailable evaluator leaves the priors uniform.
func (t *MCTS) prepareRoot() error {
	policy, _, err := t.eval.Evaluate(&t.root.adapter)
	if err != nil {
		if errors.Is(err, ErrEvaluatorClosed) {
			return err
		}
		t.log("root evaluation dropped: %v", err)
		policy = nil
	}
	t.root.setPriors(policy)
	t.addExplorationNoise(t.root)
	return nil
}

// addExplorationNoise mixes Dirichlet(alpha) noise over the node's legal
// priors: prior' = prior*(1-eps) + noise*eps.
func (t *MCTS) addExplorationNoise(n *Node) {
	alpha := make([]float64, n.numValid)
	for i := range alpha {
		alpha[i] = t.DirichletAlpha
	}
	noise := distmv.NewDirichlet(alpha, t.rand).Rand(nil)

	eps := t.NoiseFraction
	j := 0
	for i, ok := range n.valid {
		if !ok {
			continue
		}
		n.priors[i] = n.priors[i]*(1-eps) + float32(noise[j])*eps
		if c := n.children[i]; c != nil {
			c.prior = n.priors[i]
		}
		j++
	}
}

// simulate is one round: SELECT, EXPAND, EVALUATE, BACKPROPAGATE.
// An evaluator error drops the round without touching any statistics.
func (t *MCTS) simulate() error {
	leaf := t.selectNode(t.root)
	value, err := t.evaluateLeaf(leaf)
	if err != nil {
		return err
	}
	backpropagate(leaf, value)
	return nil
}

// selectNode descends through fully expanded nodes by score and returns
// the first freshly expanded child, or a terminal node.
func (t *MCTS) selectNode(n *Node) *Node {
	for !n.terminal {
		if !n.IsFullyExpanded() {
			return n.Expand()
		}
		n = t.bestChild(n)
	}
	return n
}

// evaluateLeaf obtains the leaf's value: terminal nodes read the game
// outcome without an evaluator call, everything else asks the evaluator
// and installs the returned policy as the leaf's child priors.
func (t *MCTS) evaluateLeaf(n *Node) (float32, error) {
	if n.terminal {
		return n.adapter.mustValue(), nil
	}
	policy, value, err := t.eval.Evaluate(&n.adapter)
	if err != nil {
		return 0, err
	}
	n.setPriors(policy)
	return value, nil
}

// bestChild returns the highest-scoring child, ties broken by iteration
// order over the slots (lowest action index wins).
func (t *MCTS) bestChild(n *Node) *Node {
	var best *Node
	bestScore := math32.Inf(-1)
	for i := 0; i < game.NumDirections; i++ {
		child := n.children[i]
		if child == nil {
			continue
		}
		var score float32
		if t.AlphaZero {
			score = t.puct(n, child)
		} else {
			score = t.ucb(n, child)
		}
		if score > bestScore {
			bestScore = score
			best = child
		}
	}
	if best == nil {
		panic("mcts: no child to select")
	}
	return best
}

// ucb scores a child by its mean reward, sign-flipped to the perspective
// of the ply that produced it, plus the classic exploration bonus.
func (t *MCTS) ucb(parent, child *Node) float32 {
	if child.visits == 0 {
		return math32.Inf(1)
	}
	mean := child.reward / float32(child.visits) * float32(child.adapter.Player())
	return mean + t.C*math32.Sqrt(2*math32.Log(float32(parent.visits))/float32(child.visits))
}

// puct scores a child the AlphaZero way: a prior-weighted exploration
// term that decays with visits, plus the mean reward in the ply's frame.
func (t *MCTS) puct(parent, child *Node) float32 {
	pbC := math32.Log((float32(parent.visits)+t.PuctBase+1)/t.PuctBase) + t.PuctInit
	pbC *= math32.Sqrt(float32(parent.visits)) / (float32(child.visits) + 1)

	var mean float32
	if child.visits > 0 {
		mean = child.reward / float32(child.visits) * float32(child.adapter.Player())
	}
	return pbC*child.prior + mean
}

// bestAction is the deterministic argmax of root child visits.
func (t *MCTS) bestAction() game.Direction {
	best := game.Up
	bestVisits := -1
	for i := 0; i < game.NumDirections; i++ {
		if child := t.root.children[i]; child != nil && child.visits > bestVisits {
			bestVisits = child.visits
			best = game.Direction(i)
		}
	}
	return best
}

func (t *MCTS) visitDistribution() []float32 {
	dist := make([]float32, game.NumDirections)
	var total float32
	for i, child := range t.root.children {
		if child != nil {
			dist[i] = float32(child.visits)
			total += dist[i]
		}
	}
	if total > 0 {
		for i := range dist {
			dist[i] /= total
		}
	}
	return dist
}

func (t *MCTS) log(format string, args ...interface{}) {
	if t.logger != nil {
		t.logger.Printf(format, args...)
	}
}
