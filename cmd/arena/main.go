// Command arena watches two strategies play one game on a rendered board.
package main

import (
	"flag"
	"fmt"
	"time"

	"github.com/muesli/termenv"
	"k8s.io/klog/v2"

	"github.com/snakezero/game"
	"github.com/snakezero/mcts"
)

var (
	p1Name      = flag.String("p1", "mcts", "player 1 strategy: greedy or mcts")
	p2Name      = flag.String("p2", "greedy", "player 2 strategy: greedy or mcts")
	delay       = flag.Duration("delay", 200*time.Millisecond, "pause between rendered steps")
	simulations = flag.Int("simulations", 1000, "simulations per decision for mcts players")
)

// searchStrategy thinks from the viewing player's own perspective: the
// view is rebuilt into a board with that player as player 1.
func searchStrategy(sims int) game.Strategy {
	return func(v game.PlayerView) game.Direction {
		conf := mcts.DefaultConfig()
		conf.NumSimulations = sims
		engine := mcts.New(conf, mcts.NewRolloutEvaluator())
		d, err := engine.Search(mcts.NewAdapter(game.BoardFromView(v)))
		if err != nil {
			klog.Fatalf("search: %v", err)
		}
		return d
	}
}

func strategy(name string, sims int) game.Strategy {
	switch name {
	case "greedy":
		return game.Greedy
	case "mcts":
		return searchStrategy(sims)
	}
	klog.Fatalf("unknown strategy %q", name)
	return nil
}

func main() {
	klog.InitFlags(nil)
	flag.Parse()

	render := func(b *game.Board) {
		termenv.ClearScreen()
		fmt.Print(b.Render())
		time.Sleep(*delay)
	}
	status := game.RunGame(strategy(*p1Name, *simulations), strategy(*p2Name, *simulations), render)
	fmt.Println(status)
}
