package relicvm

import "fmt"

// Handle addresses a heap cell.
// The low 32 bits are the slot index, the high 32 bits the slot generation.
type Handle uint64

const NoHandle Handle = 0

func makeHandle(index uint32, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(index))
}

func (h Handle) Index() uint32 {
	return uint32(h)
}

func (h Handle) Generation() uint32 {
	return uint32(h >> 32)
}

func (h Handle) String() string {
	if h == NoHandle {
		return "#none"
	}
	return fmt.Sprintf("#%d.%d", h.Index(), h.Generation())
}
