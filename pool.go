package darknet

import (
	"sync"
)

// Pool is a simple pool of independently loaded copies of the same Network.
// darknet is not thread safe, so concurrent inference requires each goroutine
// to Get its own Network and Return it when done.
type Pool struct {
	// pool of networks
	networks chan *Network
	// size of pool
	size  int
	close sync.Once
}

// NewPool creates a new network pool, loading size copies of the network
func (l *Library) NewPool(size int, configPath, weightsPath string) (*Pool, error) {

	if size < 1 {
		return nil, invalidArgf("NewPool", "pool size must be positive, got %d", size)
	}

	p := &Pool{
		networks: make(chan *Network, size),
		size:     size,
	}

	for i := 0; i < size; i++ {
		net, err := l.LoadNetwork(configPath, weightsPath, false)

		if err != nil {
			// close any instances that may have been created before receiving
			// the error
			p.Close()
			return nil, err
		}

		// attach to pool
		p.Return(net)
	}

	return p, nil
}

// Size returns the number of networks in the pool
func (p *Pool) Size() int {
	return p.size
}

// Get a network from the pool, blocks until one is available.  Returns nil
// once the pool is closed.
func (p *Pool) Get() *Network {
	return <-p.networks
}

// Return a network to the pool
func (p *Pool) Return(net *Network) {

	if net == nil || net.Closed() {
		return
	}

	defer func() {
		// sending on the closed channel, pool is closed so release instead
		if recover() != nil {
			_ = net.Close()
		}
	}()

	select {
	case p.networks <- net:
	default:
		// pool is full
		_ = net.Close()
	}
}

// Close the pool and all networks in it
func (p *Pool) Close() {
	p.close.Do(func() {
		// close channel
		close(p.networks)

		// close all networks
		for next := range p.networks {
			_ = next.Close()
		}
	})
}
