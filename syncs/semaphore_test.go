package syncs

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestSemaphore(t *testing.T) {
	sem := NewSemaphore(2)
	var running, peak atomic.Int64
	var wg sync.WaitGroup
	for range 16 {
		sem.Go(&wg, func() {
			n := running.Add(1)
			for {
				p := peak.Load()
				if n <= p || peak.CompareAndSwap(p, n) {
					break
				}
			}
			running.Add(-1)
		})
	}
	wg.Wait()
	if p := peak.Load(); p < 1 || p > 2 {
		t.Fatalf("got %v", p)
	}
	if len(sem) != 0 {
		t.Fatalf("got %v", len(sem))
	}
}

func TestSemaphoreMinimum(t *testing.T) {
	if n := cap(NewSemaphore(0)); n != 1 {
		t.Fatalf("got %v", n)
	}
}
