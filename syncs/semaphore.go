package syncs

import "sync"

// Semaphore bounds the number of goroutines holding a slot.
type Semaphore chan struct{}

func NewSemaphore(n int) Semaphore {
	if n < 1 {
		n = 1
	}
	return make(Semaphore, n)
}

func (s Semaphore) Acquire() {
	s <- struct{}{}
}

func (s Semaphore) Release() {
	<-s
}

// Go waits for a free slot, then runs fn in a new goroutine tracked by wg.
func (s Semaphore) Go(wg *sync.WaitGroup, fn func()) {
	s.Acquire()
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer s.Release()
		fn()
	}()
}
