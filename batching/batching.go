// Package batching gathers single-item requests from many concurrent
// producers into batches for one shared consumer function. Each producer
// owns a rendezvous channel; a single coordinator drains all channels
// round-robin, taking at most one item per channel per pass, so no
// producer can starve the others.
package batching

import (
	"runtime"
	"sync"

	"github.com/pkg/errors"
)

// Coordinator errors.
var (
	// ErrClosed means the client's channel closed before a reply arrived.
	ErrClosed = errors.New("batching: closed")

	// ErrUsage means NewClient was called after the coordinator started.
	ErrUsage = errors.New("batching: new client after Run")
)

// work is one request paired with its single-use reply slot. The client
// owns the read end, the coordinator the write end.
type work[I, O any] struct {
	input I
	reply chan result[O]
}

type result[O any] struct {
	out O
	err error
}

// Client is one producer's handle. Do blocks the calling goroutine until
// the coordinator delivers its reply; Close retires the handle.
type Client[I, O any] struct {
	ch        chan work[I, O]
	done      chan struct{}
	closeOnce sync.Once
}

// Do submits one input and blocks until its result is delivered. After
// Close, or when the handle closes while the submission is still queued,
// it fails with ErrClosed.
func (c *Client[I, O]) Do(input I) (O, error) {
	w := work[I, O]{input: input, reply: make(chan result[O], 1)}
	select {
	case c.ch <- w:
	case <-c.done:
		var zero O
		return zero, errors.WithStack(ErrClosed)
	}
	// The coordinator fulfills every accepted item exactly once.
	r := <-w.reply
	return r.out, r.err
}

// Close retires the handle. The coordinator drops it on its next sweep.
// Safe to call more than once.
func (c *Client[I, O]) Close() {
	c.closeOnce.Do(func() { close(c.done) })
}

// Batcher drains clients and feeds the batch function. The zero pass
// sequence is: sweep all channels once, run the batch, deliver replies;
// an empty sweep yields the scheduler so blocked producers can enqueue.
type Batcher[I, O any] struct {
	fn      func([]I) ([]O, error)
	clients []*Client[I, O]

	mu      sync.Mutex
	started bool
}

// New makes a Batcher around the consumer function. fn must return one
// output per input, positionally aligned.
func New[I, O any](fn func([]I) ([]O, error)) *Batcher[I, O] {
	return &Batcher[I, O]{fn: fn}
}

// NewClient registers a producer. Only legal before Run.
func (b *Batcher[I, O]) NewClient() (*Client[I, O], error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return nil, errors.WithStack(ErrUsage)
	}
	c := &Client[I, O]{
		ch:   make(chan work[I, O]),
		done: make(chan struct{}),
	}
	b.clients = append(b.clients, c)
	return c, nil
}

// Run drains until every client has closed. It blocks the calling
// goroutine; run it alongside the producers.
func (b *Batcher[I, O]) Run() {
	b.mu.Lock()
	b.started = true
	b.mu.Unlock()

	for {
		batch := b.sweep()
		if len(batch) == 0 {
			if len(b.clients) == 0 {
				return
			}
			// Suspended producers become runnable exactly when they are
			// inserting an item; one yield between empty sweeps suffices.
			runtime.Gosched()
			continue
		}
		b.dispatch(batch)
	}
}

// sweep walks the client list once, non-blockingly taking at most one
// item per channel, and drops clients that have closed.
func (b *Batcher[I, O]) sweep() []work[I, O] {
	var batch []work[I, O]
	kept := 0
	for _, c := range b.clients {
		select {
		case w := <-c.ch:
			batch = append(batch, w)
			b.clients[kept] = c
			kept++
		default:
			select {
			case <-c.done:
				// dropped
			default:
				b.clients[kept] = c
				kept++
			}
		}
	}
	for i := kept; i < len(b.clients); i++ {
		b.clients[i] = nil
	}
	b.clients = b.clients[:kept]
	return batch
}

// dispatch runs the batch function once and fulfills every reply slot.
// Within a batch, result i answers request i. A consumer error goes to
// every waiter; the coordinator itself carries on.
func (b *Batcher[I, O]) dispatch(batch []work[I, O]) {
	inputs := make([]I, len(batch))
	for i, w := range batch {
		inputs[i] = w.input
	}
	batchesTotal.Inc()
	itemsTotal.Add(float64(len(batch)))
	batchSize.Observe(float64(len(batch)))

	outs, err := b.fn(inputs)
	if err == nil && len(outs) != len(batch) {
		err = errors.Errorf("batching: %d results for %d requests", len(outs), len(batch))
	}
	if err != nil {
		consumerErrors.Inc()
		for _, w := range batch {
			w.reply <- result[O]{err: err}
		}
		return
	}
	for i, w := range batch {
		w.reply <- result[O]{out: outs[i]}
	}
}
