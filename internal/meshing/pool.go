package meshing

import (
	"context"
	"sync"

	"voxelcore/internal/world"
)

// Result is the outcome of one load-and-mesh task.
type Result struct {
	Coord world.ChunkCoord
	Chunk *world.Chunk
	Mesh  *Mesh
	Err   error
}

// Pool runs chunk load/mesh tasks on background workers. Each task handles
// exactly one coordinate: it loads (or finds) the chunk in the store, builds
// its mesh, and delivers a Result. The consumer drains Results on its tick
// and decides whether a result is still wanted.
type Pool struct {
	store   *world.Store
	jobs    chan world.ChunkCoord
	results chan Result

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewPool starts workers goroutines over the given store.
func NewPool(workers, queueSize int, store *world.Store) *Pool {
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		store:   store,
		jobs:    make(chan world.ChunkCoord, queueSize),
		results: make(chan Result, queueSize),
		ctx:     ctx,
		cancel:  cancel,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

// Submit queues a coordinate for load+mesh. Returns false when the queue is
// full; the caller retries on a later tick.
func (p *Pool) Submit(coord world.ChunkCoord) bool {
	select {
	case p.jobs <- coord:
		return true
	default:
		return false
	}
}

// Results delivers completed tasks. The channel is buffered; consumers must
// drain it regularly.
func (p *Pool) Results() <-chan Result {
	return p.results
}

// QueueLen returns the number of queued, unstarted tasks.
func (p *Pool) QueueLen() int {
	return len(p.jobs)
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case coord := <-p.jobs:
			p.deliver(p.process(coord))
		case <-p.ctx.Done():
			return
		}
	}
}

func (p *Pool) process(coord world.ChunkCoord) Result {
	ch, err := p.store.LoadOrCreate(coord)
	if err != nil {
		return Result{Coord: coord, Err: err}
	}
	// Clear the dirty flag before reading blocks: an edit racing with this
	// build re-dirties the chunk and triggers another rebuild.
	ch.MarkClean()
	mesh := Build(ch, p.neighbor)
	return Result{Coord: coord, Chunk: ch, Mesh: mesh}
}

func (p *Pool) neighbor(coord world.ChunkCoord) *world.Chunk {
	ch, ok := p.store.Get(coord)
	if !ok {
		return nil
	}
	return ch
}

func (p *Pool) deliver(r Result) {
	select {
	case p.results <- r:
	case <-p.ctx.Done():
	}
}

// Shutdown stops the workers and waits for them to exit.
func (p *Pool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}
