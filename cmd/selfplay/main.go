// Command selfplay runs the self-play farm: many concurrent searches per
// worker, batched network evaluation, trajectories shipped to a replay
// buffer service.
package main

import (
	"context"
	"flag"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"k8s.io/klog/v2"

	snakezero "github.com/snakezero"
	dual "github.com/snakezero/dualnet"
	"github.com/snakezero/game"
)

var (
	replayBuffer = flag.String("replay_buffer", "localhost:8000", "host:port of the replay buffer service")
	workers      = flag.Int("workers", 8, "number of worker loops")
	fibers       = flag.Int("fibers", 64, "concurrent games per worker")
	games        = flag.Int("games", 1, "games per fiber; 0 plays until interrupted")
	simulations  = flag.Int("simulations", 50, "simulations per decision")
	modelPath    = flag.String("model", "", "network checkpoint; empty uses the uniform network")
	metricsAddr  = flag.String("metrics_addr", ":9090", "address of the Prometheus endpoint")
)

func main() {
	klog.InitFlags(nil)
	flag.Parse()
	defer klog.Flush()

	conf := snakezero.DefaultConfig()
	conf.Workers = *workers
	conf.FibersPerWorker = *fibers
	conf.GamesPerFiber = *games
	conf.MCTS.NumSimulations = *simulations

	var net snakezero.BatchPredictor = snakezero.UniformPredictor{}
	if *modelPath != "" {
		d, err := dual.Load(*modelPath)
		if err != nil {
			klog.Fatalf("load model %s: %v", *modelPath, err)
		}
		if d.Conf.Height != game.ArenaSize || d.Conf.Width != game.ArenaSize ||
			d.Conf.Features != game.NumPlanes || d.Conf.ActionSpace != game.NumDirections {
			klog.Fatalf("model %s was built for %dx%dx%d boards", *modelPath, d.Conf.Height, d.Conf.Width, d.Conf.Features)
		}
		net = d
	}

	go func() {
		http.Handle("/metrics", promhttp.Handler())
		if err := http.ListenAndServe(*metricsAddr, nil); err != nil {
			klog.Errorf("metrics endpoint: %v", err)
		}
	}()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	driver := snakezero.NewDriver(conf, net, snakezero.NewReplaySink(*replayBuffer))
	klog.Infof("self-play: %d workers x %d fibers, %d simulations per decision", *workers, *fibers, *simulations)
	if err := driver.Run(ctx); err != nil {
		klog.Fatalf("self-play: %v", err)
	}
}
