package device

import "sync"

// inlineThreshold is the minimum item count worth spreading over workers.
// Below this, running on the submitting goroutine is faster.
const inlineThreshold = 64

// workChunk is a contiguous range of workgroups for one worker.
type workChunk struct {
	body          Invocation
	first, last   uint32 // workgroup range [first, last)
	workgroupSize uint32
	done          *sync.WaitGroup
}

// workerPool runs chunks on persistent goroutines.
type workerPool struct {
	numWorkers int

	mu       sync.Mutex
	workChan chan workChunk // sends work to workers
	stopChan chan struct{}  // signals workers to exit
	wg       sync.WaitGroup // tracks active workers
	running  bool
}

func newWorkerPool(numWorkers int) *workerPool {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &workerPool{numWorkers: numWorkers}
}

// start launches the workers if they are not running.
func (p *workerPool) start() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.running {
		return
	}

	p.workChan = make(chan workChunk, p.numWorkers)
	p.stopChan = make(chan struct{})
	p.running = true

	for i := 0; i < p.numWorkers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
}

// stop signals all workers to exit and waits for them.
func (p *workerPool) stop() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if !p.running {
		return
	}

	close(p.stopChan)
	p.wg.Wait()
	close(p.workChan)
	p.running = false
}

func (p *workerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.stopChan:
			return
		case chunk, ok := <-p.workChan:
			if !ok {
				return
			}
			chunk.run()
		}
	}
}

func (c workChunk) run() {
	defer c.done.Done()
	for g := c.first; g < c.last; g++ {
		base := g * c.workgroupSize
		for l := uint32(0); l < c.workgroupSize; l++ {
			c.body(base + l)
		}
	}
}

// dispatch splits groups workgroups into chunks and hands them to the
// workers. done is incremented per chunk; the caller waits on it.
func (p *workerPool) dispatch(body Invocation, groups, workgroupSize uint32, done *sync.WaitGroup) {
	total := int(groups) * int(workgroupSize)
	if total < inlineThreshold || p.numWorkers == 1 {
		done.Add(1)
		workChunk{body: body, first: 0, last: groups, workgroupSize: workgroupSize, done: done}.run()
		return
	}

	p.start()

	numChunks := uint32(p.numWorkers)
	if groups < numChunks {
		numChunks = groups
	}
	chunkSize := (groups + numChunks - 1) / numChunks

	for first := uint32(0); first < groups; first += chunkSize {
		last := first + chunkSize
		if last > groups {
			last = groups
		}
		done.Add(1)
		p.workChan <- workChunk{body: body, first: first, last: last, workgroupSize: workgroupSize, done: done}
	}
}
