package snakezero

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"github.com/pkg/errors"
	"golang.org/x/sync/errgroup"
	"gorgonia.org/tensor"
	"k8s.io/klog/v2"

	"github.com/snakezero/batching"
	"github.com/snakezero/game"
	"github.com/snakezero/mcts"
)

// Config for the self-play farm.
type Config struct {
	MCTS mcts.Config

	// Workers is the number of independent worker loops, each with its
	// own pair of batching coordinators.
	Workers int

	// FibersPerWorker is the number of concurrent games per worker.
	FibersPerWorker int

	// GamesPerFiber bounds how many games each fiber plays. 0 plays
	// until the context is done.
	GamesPerFiber int

	// MaxPlies truncates runaway games. 0 plays to termination.
	MaxPlies int
}

// DefaultConfig returns a small-farm configuration.
func DefaultConfig() Config {
	conf := mcts.DefaultConfig()
	conf.AlphaZero = true
	return Config{
		MCTS:            conf,
		Workers:         8,
		FibersPerWorker: 64,
		GamesPerFiber:   1,
	}
}

// IsValid reports whether the configuration is usable.
func (c Config) IsValid() bool {
	return c.MCTS.IsValid() && c.Workers > 0 && c.FibersPerWorker > 0 &&
		c.GamesPerFiber >= 0 && c.MaxPlies >= 0
}

// Driver runs the farm: Workers loops, each multiplexing many paired
// searches over two batching coordinators that share one network.
type Driver struct {
	conf Config
	net  BatchPredictor
	sink Sink
}

// NewDriver makes a driver over a network and a trajectory sink.
func NewDriver(conf Config, net BatchPredictor, sink Sink) *Driver {
	if !conf.IsValid() {
		panic("driver: config is not valid")
	}
	return &Driver{conf: conf, net: net, sink: sink}
}

// Run plays games until every fiber finished its budget or the context
// ends. A failed game is logged and abandoned; other games continue.
func (d *Driver) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)
	for w := 0; w < d.conf.Workers; w++ {
		w := w
		g.Go(func() error { return d.worker(ctx, w) })
	}
	return g.Wait()
}

func (d *Driver) worker(ctx context.Context, id int) error {
	// Two coordinators per worker so one side's batch can run while the
	// other side's requests accumulate.
	batcherA := batching.New(d.predict)
	batcherB := batching.New(d.predict)

	type pair struct{ a, b *Agent }
	pairs := make([]pair, d.conf.FibersPerWorker)
	for i := range pairs {
		clientA, err := batcherA.NewClient()
		if err != nil {
			return errors.WithMessagef(err, "worker %d", id)
		}
		clientB, err := batcherB.NewClient()
		if err != nil {
			return errors.WithMessagef(err, "worker %d", id)
		}
		pairs[i] = pair{a: NewAgent(d.conf.MCTS, clientA), b: NewAgent(d.conf.MCTS, clientB)}
	}

	var (
		mu     sync.Mutex
		merr   *multierror.Error
		gameWG sync.WaitGroup
	)
	for i, p := range pairs {
		i, p := i, p
		gameWG.Add(1)
		go func() {
			defer gameWG.Done()
			defer p.a.Close()
			defer p.b.Close()
			if err := d.fiber(ctx, p.a, p.b); err != nil {
				mu.Lock()
				merr = multierror.Append(merr, errors.WithMessagef(err, "worker %d fiber %d", id, i))
				mu.Unlock()
			}
		}()
	}

	var coordWG sync.WaitGroup
	coordWG.Add(2)
	go func() { defer coordWG.Done(); batcherA.Run() }()
	go func() { defer coordWG.Done(); batcherB.Run() }()

	gameWG.Wait()
	coordWG.Wait()
	return merr.ErrorOrNil()
}

// fiber plays this pair's budget of games. Per-game failures are dropped
// after logging; only a closed evaluator ends the fiber early.
func (d *Driver) fiber(ctx context.Context, a, b *Agent) error {
	for n := 0; d.conf.GamesPerFiber == 0 || n < d.conf.GamesPerFiber; n++ {
		if ctx.Err() != nil {
			return nil
		}
		traj, err := SelfPlay(a, b, game.NewBoard(), d.conf.MaxPlies)
		if err != nil {
			gamesAbandoned.Inc()
			if errors.Is(err, mcts.ErrEvaluatorClosed) {
				return nil
			}
			klog.Errorf("game abandoned: %v", err)
			continue
		}
		gamesCompleted.Inc()
		gamePlies.Observe(float64(len(traj.Boards)))
		klog.V(2).Infof("game %s done in n=%d plies", traj.ID, len(traj.Boards))

		if err := d.sink.Store(traj); err != nil {
			storeErrors.Inc()
			klog.Errorf("store trajectory %s: %v", traj.ID, err)
			continue
		}
		trajectoriesStored.Inc()
	}
	return nil
}

// predict stacks single-position requests into one batch and runs the
// shared network once.
func (d *Driver) predict(states []*tensor.Dense) ([]Prediction, error) {
	batch, err := game.Stack(states)
	if err != nil {
		return nil, err
	}
	policies, values, err := d.net.BatchPredict(batch)
	if err != nil {
		return nil, err
	}
	if len(policies) != len(states) || len(values) != len(states) {
		return nil, errors.Errorf("network returned %d policies, %d values for %d states",
			len(policies), len(values), len(states))
	}
	out := make([]Prediction, len(states))
	for i := range out {
		out[i] = Prediction{Policy: policies[i], Value: values[i]}
	}
	return out, nil
}
