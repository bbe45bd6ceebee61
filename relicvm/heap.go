package relicvm

type slot struct {
	Gen    uint32
	Marked bool
	Cell   Cell
}

type heap struct {
	Slots    []slot
	Free     []uint32
	Live     int
	Capacity int
}

// alloc stores cell in a free slot, reusing the most recently freed one.
func (h *heap) alloc(cell Cell) Handle {
	var index uint32
	if n := len(h.Free); n > 0 {
		index = h.Free[n-1]
		h.Free = h.Free[:n-1]
	} else {
		index = uint32(len(h.Slots))
		h.Slots = append(h.Slots, slot{
			Gen: 1,
		})
	}
	s := &h.Slots[index]
	s.Cell = cell
	s.Marked = false
	h.Live++
	return makeHandle(index, s.Gen)
}

// get returns the cell of a live handle. The pointer is valid until the next alloc.
func (h *heap) get(handle Handle) (*Cell, bool) {
	index := handle.Index()
	if int(index) >= len(h.Slots) {
		return nil, false
	}
	s := &h.Slots[index]
	if s.Gen != handle.Generation() || s.Cell.Kind == KindFree {
		return nil, false
	}
	return &s.Cell, true
}

func (h *heap) valid(handle Handle) bool {
	_, ok := h.get(handle)
	return ok
}

func (h *heap) free(index uint32) {
	s := &h.Slots[index]
	s.Cell = Cell{}
	s.Marked = false
	s.Gen++
	if s.Gen == 0 {
		s.Gen = 1
	}
	h.Free = append(h.Free, index)
	h.Live--
}

// mark sets the mark bit of a live handle, reporting whether it was unmarked.
func (h *heap) mark(handle Handle) bool {
	if _, ok := h.get(handle); !ok {
		return false
	}
	s := &h.Slots[handle.Index()]
	if s.Marked {
		return false
	}
	s.Marked = true
	return true
}
