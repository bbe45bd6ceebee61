package relicvm

import (
	"time"
)

type GCStats struct {
	Cycle    int
	Live     int
	Freed    int
	Capacity int
	Duration time.Duration
	MaxRSS   int64
}

// Collect forces a collection cycle.
func (r *Runtime) Collect() GCStats {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.collect()
}

func (r *Runtime) limit() int {
	n := int(float64(r.heap.Capacity) * r.config.GCThreshold)
	if n < 1 {
		n = 1
	}
	return n
}

// safepoint collects if the heap is at its limit.
// Callers pass every handle they hold that is not reachable from the roots.
func (r *Runtime) safepoint(extra ...Handle) {
	if r.heap.Live < r.limit() {
		return
	}
	r.collect(extra...)
}

func (r *Runtime) collect(extra ...Handle) GCStats {
	start := time.Now()

	r.mark(extra)
	freed := r.sweep()

	for r.heap.Live >= r.limit() {
		grown := int(float64(r.heap.Capacity) * r.config.GrowthFactor)
		if grown <= r.heap.Capacity {
			grown = r.heap.Capacity + 1
		}
		r.heap.Capacity = grown
	}

	r.cycles++
	stats := GCStats{
		Cycle:    r.cycles,
		Live:     r.heap.Live,
		Freed:    freed,
		Capacity: r.heap.Capacity,
		Duration: time.Since(start),
		MaxRSS:   maxRSS(),
	}
	r.last = stats
	r.logger.Debug("gc",
		"cycle", stats.Cycle,
		"live", stats.Live,
		"freed", stats.Freed,
		"capacity", stats.Capacity,
		"duration", stats.Duration,
		"maxrss", stats.MaxRSS,
	)
	return stats
}

func (r *Runtime) mark(extra []Handle) {
	var work []Handle
	visit := func(h Handle) {
		if r.heap.mark(h) {
			work = append(work, h)
		}
	}

	visit(r.top)
	for _, h := range r.roots {
		visit(h)
	}
	for c := range r.contexts {
		for _, h := range c.stack {
			visit(h)
		}
		visit(c.env)
	}
	for _, h := range extra {
		visit(h)
	}

	for len(work) > 0 {
		h := work[len(work)-1]
		work = work[:len(work)-1]
		cell, ok := r.heap.get(h)
		if !ok {
			continue
		}
		switch cell.Kind {
		case KindPair:
			visit(cell.Car)
			visit(cell.Cdr)
		case KindClosure:
			visit(cell.Captured)
		case KindEnvironment:
			for _, v := range cell.Env.Vars {
				visit(v)
			}
			visit(cell.Env.Parent)
		}
	}
}

func (r *Runtime) sweep() (freed int) {
	for i := range r.heap.Slots {
		s := &r.heap.Slots[i]
		if s.Cell.Kind == KindFree {
			continue
		}
		if s.Marked {
			s.Marked = false
			continue
		}
		r.heap.free(uint32(i))
		freed++
	}
	return
}
