package engine

// history keeps the most recent utilization samples
type history struct {
	size   int
	points []float64
}

func newHistory(size int) *history {
	return &history{size: size, points: make([]float64, 0, size)}
}

func (h *history) add(point float64) {
	if len(h.points) == h.size {
		copy(h.points, h.points[1:])
		h.points = h.points[:h.size-1]
	}
	h.points = append(h.points, point)
}

func (h *history) values() []float64 {
	return append([]float64(nil), h.points...)
}
