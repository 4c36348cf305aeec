package dual

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/snakezero/game"
)

func testConf() Config {
	conf := DefaultConf(game.ArenaSize, game.ArenaSize, game.NumDirections)
	conf.Hidden = 32
	return conf
}

func TestInitShapes(t *testing.T) {
	d := New(testConf())
	require.NoError(t, d.Init())
	assert.Equal(t, []int{16 * 16 * 3, 32}, []int(d.W0.Shape()))
	assert.Equal(t, []int{32, 4}, []int(d.WP.Shape()))
	assert.Equal(t, []int{32, 1}, []int(d.WV.Shape()))
}

func TestBatchPredict(t *testing.T) {
	d := New(testConf())
	require.NoError(t, d.Init())

	boards := []*game.Board{game.NewBoard(), game.NewBoard()}
	policies, values, err := d.BatchPredict(game.EncodeBatch(boards))
	require.NoError(t, err)
	require.Len(t, policies, 2)
	require.Len(t, values, 2)

	for i := range policies {
		require.Len(t, policies[i], game.NumDirections)
		var sum float32
		for _, p := range policies[i] {
			assert.GreaterOrEqual(t, p, float32(0))
			sum += p
		}
		assert.InDelta(t, 1.0, sum, 1e-3)
		assert.GreaterOrEqual(t, values[i], float32(-1))
		assert.LessOrEqual(t, values[i], float32(1))
	}

	// a second call with a different batch size compiles a fresh tape
	policies, values, err = d.BatchPredict(game.EncodeBatch(boards[:1]))
	require.NoError(t, err)
	require.Len(t, policies, 1)
	require.Len(t, values, 1)
}

func TestBatchPredictRejectsBadShape(t *testing.T) {
	d := New(testConf())
	require.NoError(t, d.Init())
	_, _, err := d.BatchPredict(game.NewBoard().Encode())
	require.Error(t, err)
}

func TestSaveLoadRoundTrip(t *testing.T) {
	d := New(testConf())
	require.NoError(t, d.Init())

	path := filepath.Join(t.TempDir(), "checkpoint.model")
	require.NoError(t, d.Save(path))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, d.Conf, loaded.Conf)
	assert.Equal(t, d.W0.Data(), loaded.W0.Data())
	assert.Equal(t, d.WP.Shape(), loaded.WP.Shape())
}
