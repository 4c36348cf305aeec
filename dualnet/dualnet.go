// Package dual holds the dual-headed network: a policy head over the
// action space and a scalar value head sharing one hidden layer.
package dual

import (
	"encoding/gob"
	"math"
	"math/rand"
	"os"
	"sync"

	"github.com/pkg/errors"
	"gorgonia.org/gorgonia"
	"gorgonia.org/tensor"
)

// Dual is the network. BatchPredict compiles one tape per distinct batch
// size and reuses it; all weights are shared across the compiled graphs.
// BatchPredict is safe for concurrent callers.
type Dual struct {
	Conf Config

	// weights, exported for gob
	W0 *tensor.Dense // input -> hidden
	WP *tensor.Dense // hidden -> policy logits
	WV *tensor.Dense // hidden -> value

	mu    sync.Mutex
	execs map[int]*exec
}

type exec struct {
	input  *gorgonia.Node
	policy gorgonia.Value
	value  gorgonia.Value
	vm     gorgonia.VM
}

// New makes an uninitialized network.
func New(conf Config) *Dual {
	if !conf.IsValid() {
		panic("dual: config is not valid")
	}
	return &Dual{Conf: conf, execs: make(map[int]*exec)}
}

// Init allocates and randomizes the weights.
func (d *Dual) Init() error {
	conf := d.Conf
	d.W0 = glorot(conf.inputSize(), conf.Hidden)
	d.WP = glorot(conf.Hidden, conf.ActionSpace)
	d.WV = glorot(conf.Hidden, 1)
	return nil
}

// BatchPredict runs the network over a (n, height, width, features)
// batch and returns one policy and one value per row, positionally
// aligned with the input.
func (d *Dual) BatchPredict(batch *tensor.Dense) ([][]float32, []float32, error) {
	shp := batch.Shape()
	if len(shp) != 4 || shp[1] != d.Conf.Height || shp[2] != d.Conf.Width || shp[3] != d.Conf.Features {
		return nil, nil, errors.Errorf("dual: bad batch shape %v", shp)
	}
	n := shp[0]

	d.mu.Lock()
	defer d.mu.Unlock()

	ex, err := d.exec(n)
	if err != nil {
		return nil, nil, err
	}
	if err := gorgonia.Let(ex.input, batch); err != nil {
		return nil, nil, errors.Wrap(err, "bind input")
	}
	if err := ex.vm.RunAll(); err != nil {
		ex.vm.Reset()
		return nil, nil, errors.Wrap(err, "run forward pass")
	}
	policyData := ex.policy.Data().([]float32)
	valueData := ex.value.Data().([]float32)
	ex.vm.Reset()

	policies := make([][]float32, n)
	values := make([]float32, n)
	as := d.Conf.ActionSpace
	for i := 0; i < n; i++ {
		policies[i] = append([]float32(nil), policyData[i*as:(i+1)*as]...)
		values[i] = valueData[i]
	}
	return policies, values, nil
}

// exec returns the compiled forward pass for a batch size, building it
// on first use.
func (d *Dual) exec(n int) (*exec, error) {
	if ex, ok := d.execs[n]; ok {
		return ex, nil
	}
	if d.W0 == nil {
		return nil, errors.New("dual: network not initialized")
	}
	conf := d.Conf

	g := gorgonia.NewGraph()
	input := gorgonia.NewTensor(g, tensor.Float32, 4,
		gorgonia.WithShape(n, conf.Height, conf.Width, conf.Features),
		gorgonia.WithName("board"))
	flat, err := gorgonia.Reshape(input, tensor.Shape{n, conf.inputSize()})
	if err != nil {
		return nil, errors.Wrap(err, "reshape input")
	}

	w0 := gorgonia.NodeFromAny(g, d.W0, gorgonia.WithName("w0"))
	wp := gorgonia.NodeFromAny(g, d.WP, gorgonia.WithName("wp"))
	wv := gorgonia.NodeFromAny(g, d.WV, gorgonia.WithName("wv"))

	hidden, err := gorgonia.Mul(flat, w0)
	if err != nil {
		return nil, errors.Wrap(err, "hidden layer")
	}
	if hidden, err = gorgonia.Rectify(hidden); err != nil {
		return nil, errors.Wrap(err, "hidden activation")
	}

	logits, err := gorgonia.Mul(hidden, wp)
	if err != nil {
		return nil, errors.Wrap(err, "policy head")
	}
	policy, err := gorgonia.SoftMax(logits, 1)
	if err != nil {
		return nil, errors.Wrap(err, "policy softmax")
	}

	rawValue, err := gorgonia.Mul(hidden, wv)
	if err != nil {
		return nil, errors.Wrap(err, "value head")
	}
	value, err := gorgonia.Tanh(rawValue)
	if err != nil {
		return nil, errors.Wrap(err, "value activation")
	}

	ex := &exec{input: input}
	gorgonia.Read(policy, &ex.policy)
	gorgonia.Read(value, &ex.value)
	ex.vm = gorgonia.NewTapeMachine(g)
	d.execs[n] = ex
	return ex, nil
}

type checkpoint struct {
	Conf       Config
	W0, WP, WV *tensor.Dense
}

// Save writes the weights to filename.
func (d *Dual) Save(filename string) error {
	f, err := os.OpenFile(filename, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0644)
	if err != nil {
		return errors.WithStack(err)
	}
	defer f.Close()
	enc := gob.NewEncoder(f)
	return errors.WithStack(enc.Encode(checkpoint{Conf: d.Conf, W0: d.W0, WP: d.WP, WV: d.WV}))
}

// Load reads a network from a checkpoint file.
func Load(filename string) (*Dual, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, errors.WithStack(err)
	}
	defer f.Close()

	var cp checkpoint
	dec := gob.NewDecoder(f)
	if err := dec.Decode(&cp); err != nil {
		return nil, errors.WithStack(err)
	}
	d := New(cp.Conf)
	d.W0, d.WP, d.WV = cp.W0, cp.WP, cp.WV
	return d, nil
}

// glorot allocates a (rows, cols) weight matrix with Glorot-uniform
// initialization.
func glorot(rows, cols int) *tensor.Dense {
	limit := float32(math.Sqrt(6.0 / float64(rows+cols)))
	backing := make([]float32, rows*cols)
	for i := range backing {
		backing[i] = (rand.Float32()*2 - 1) * limit
	}
	return tensor.New(tensor.WithShape(rows, cols), tensor.WithBacking(backing))
}
