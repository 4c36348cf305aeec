package snakezero

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorgonia.org/tensor"

	"github.com/snakezero/game"
	"github.com/snakezero/mcts"
)

type memorySink struct {
	mu    sync.Mutex
	trajs []*Trajectory
}

func (s *memorySink) Store(t *Trajectory) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.trajs = append(s.trajs, t)
	return nil
}

func (s *memorySink) all() []*Trajectory {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*Trajectory(nil), s.trajs...)
}

func testConfig() Config {
	conf := DefaultConfig()
	conf.Workers = 1
	conf.FibersPerWorker = 2
	conf.GamesPerFiber = 1
	conf.MaxPlies = 40
	conf.MCTS.NumSimulations = 8
	return conf
}

func TestDriverEndToEnd(t *testing.T) {
	sink := &memorySink{}
	driver := NewDriver(testConfig(), UniformPredictor{}, sink)
	require.NoError(t, driver.Run(context.Background()))

	trajs := sink.all()
	require.Len(t, trajs, 2)
	for _, traj := range trajs {
		n := len(traj.Boards)
		require.Greater(t, n, 0)
		require.Len(t, traj.Policies, n)
		require.Len(t, traj.Values, n)
		for _, p := range traj.Policies {
			var sum float32
			for _, v := range p {
				sum += v
			}
			assert.InDelta(t, 1.0, sum, 1e-4)
		}
		outcome := traj.Values[0]
		assert.Contains(t, []float32{-1, 0, 1}, outcome)
		for _, v := range traj.Values {
			assert.Equal(t, outcome, v)
		}
	}
}

func TestSelfPlayAlternatesAndRecords(t *testing.T) {
	conf := mcts.DefaultConfig()
	conf.NumSimulations = 16

	a := &Agent{}
	a.Engine = mcts.New(conf, mcts.NewRolloutEvaluator())
	b := &Agent{}
	b.Engine = mcts.New(conf, mcts.NewRolloutEvaluator())

	traj, err := SelfPlay(a, b, game.NewBoard(), 20)
	require.NoError(t, err)
	require.Greater(t, len(traj.Boards), 0)
	require.LessOrEqual(t, len(traj.Boards), 20)
	require.Equal(t, len(traj.Boards), len(traj.Policies))
	require.Equal(t, len(traj.Boards), len(traj.Values))
	assert.NotEqual(t, "", traj.ID.String())
}

func TestStoreRequestConversion(t *testing.T) {
	b1 := game.NewBoard()
	b2 := b1.Clone().(*game.Board)
	b2.Move(game.Right, game.Left)
	traj := &Trajectory{
		ID:       uuid.New(),
		Boards:   []*tensor.Dense{b1.Encode(), b2.Encode()},
		Policies: [][]float32{{1, 0, 0, 0}, {0.5, 0.5, 0, 0}},
		Values:   []float32{1, 1},
	}

	req, err := storeRequest(traj)
	require.NoError(t, err)
	require.NoError(t, req.Validate())
	assert.Equal(t, traj.ID.String(), req.ID)
	assert.Equal(t, []int{2, game.ArenaSize, game.ArenaSize, game.NumPlanes}, req.Boards.Shape)
	assert.Equal(t, []int{2, 1}, req.ValueLabels.Shape)
	assert.Equal(t, []int{2, game.NumDirections}, req.PolicyLabels.Shape)
	assert.Equal(t, []float32{1, 0, 0, 0, 0.5, 0.5, 0, 0}, req.PolicyLabels.Data)
	assert.Equal(t, []float32{1, 1}, req.ValueLabels.Data)
}

func TestStoreRequestRejectsMismatch(t *testing.T) {
	traj := &Trajectory{
		ID:     uuid.New(),
		Boards: []*tensor.Dense{game.NewBoard().Encode()},
		Values: []float32{0},
	}
	_, err := storeRequest(traj)
	require.Error(t, err)
}

func TestUniformPredictor(t *testing.T) {
	batch := game.EncodeBatch([]*game.Board{game.NewBoard(), game.NewBoard(), game.NewBoard()})
	policies, values, err := UniformPredictor{}.BatchPredict(batch)
	require.NoError(t, err)
	require.Len(t, policies, 3)
	require.Len(t, values, 3)
	assert.Equal(t, []float32{0.25, 0.25, 0.25, 0.25}, policies[0])
	assert.Equal(t, float32(0), values[0])
}
