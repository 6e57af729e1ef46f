package onnxdetect

import (
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"image"
	"sync"
)

// ErrPoolClosed is returned when a detector is requested from a closed Pool
var ErrPoolClosed = errors.New("pool closed")

// Pool is a simple detector pool holding multiple instances of the same
// Model, so images can be predicted concurrently.  Each ObjectDetector in the
// pool owns its own Runtime.
type Pool struct {
	// pool of detectors
	detectors chan *ObjectDetector
	// size of pool
	size int
	// mu guards closed and err, Return and Close hold it so no detector is
	// sent on the closed channel
	mu     sync.Mutex
	closed bool
	err    error
}

// RuntimeFactory returns a new Runtime for the pool
type RuntimeFactory func() (*Runtime, error)

// NewPool creates a new detector pool of the given size
func NewPool(size int, factory RuntimeFactory, labels []string, opts ...DetectorOption) (*Pool, error) {

	if size <= 0 {
		size = 1
	}

	p := &Pool{
		detectors: make(chan *ObjectDetector, size),
		size:      size,
	}

	for i := 0; i < size; i++ {
		rt, err := factory()

		if err != nil {
			// close any instances that may have been created before receiving
			// the error
			return nil, multierr.Append(err, p.Close())
		}

		// attach to pool
		p.Return(NewObjectDetector(rt, labels, opts...))
	}

	return p, nil
}

// NewPoolFromModel creates a pool of Runtimes all loading modelFile
func NewPoolFromModel(size int, modelFile string, labels []string,
	rtOpts []Option, opts ...DetectorOption) (*Pool, error) {

	return NewPool(size, func() (*Runtime, error) {
		return NewRuntime(modelFile, rtOpts...)
	}, labels, opts...)
}

// Size returns the number of detectors in the pool
func (p *Pool) Size() int {
	return p.size
}

// Get a detector from the pool, blocking until one is free.  ErrPoolClosed
// is returned once the pool has been closed.
func (p *Pool) Get() (*ObjectDetector, error) {

	d, ok := <-p.detectors

	if !ok {
		return nil, ErrPoolClosed
	}

	return d, nil
}

// Return a detector to the pool.  A detector returned after the pool has
// been closed has its Runtime closed instead.
func (p *Pool) Return(d *ObjectDetector) {

	if d == nil {
		return
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		p.err = multierr.Append(p.err, d.rt.Close())
		return
	}

	select {
	case p.detectors <- d:
	default:
		// pool is full, the detector does not belong to it
		p.err = multierr.Append(p.err, d.rt.Close())
	}
}

// PredictImage runs PredictImage on the next free detector
func (p *Pool) PredictImage(img image.Image) (*Output, error) {

	d, err := p.Get()

	if err != nil {
		return nil, err
	}

	defer p.Return(d)

	return d.PredictImage(img)
}

// Close the pool and the Runtimes of all idle detectors in it.  Detectors
// still in use are closed when they are returned.
func (p *Pool) Close() error {

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return p.err
	}

	p.closed = true

	// close channel
	close(p.detectors)

	// close all runtimes
	for next := range p.detectors {
		p.err = multierr.Append(p.err, next.rt.Close())
	}

	return p.err
}
