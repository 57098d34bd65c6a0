package api

import (
	"errors"
	"sync"
)

var (
	ErrPoolFull   = errors.New("worker pool queue is full")
	ErrPoolClosed = errors.New("worker pool stopped")
)

type TwitchPool struct {
	wg       sync.WaitGroup
	tasks    chan func()
	mu       sync.RWMutex
	closed   bool
}

func newPool(workers, queue int) *TwitchPool {
	if workers < 1 {
		workers = 1
	}

	p := &TwitchPool{tasks: make(chan func(), queue)}
	for range workers {
		p.wg.Add(1)
		go p.worker()
	}
	return p
}

func (p *TwitchPool) Submit(task func()) error {
	p.mu.RLock()
	defer p.mu.RUnlock()

	if p.closed {
		return ErrPoolClosed
	}

	select {
	case p.tasks <- task:
		return nil
	default:
		return ErrPoolFull
	}
}

func (p *TwitchPool) Stop() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.tasks)
	p.mu.Unlock()

	p.wg.Wait()
}

func (p *TwitchPool) worker() {
	defer p.wg.Done()

	for task := range p.tasks {
		task()
	}
}
