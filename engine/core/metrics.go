package core

import (
	"time"

	"github.com/spaghettifunk/cascades/engine/containers"
)

const AVG_COUNT = 30

// Metrics keeps a rolling average of per-frame computation time over the
// last AVG_COUNT frames.
type Metrics struct {
	samples *containers.RingQueue[float64]
	msAvg   float64
	frames  int64
}

func NewMetrics() *Metrics {
	return &Metrics{
		samples: containers.NewRingQueue[float64](AVG_COUNT),
	}
}

func (m *Metrics) Update(frameTime time.Duration) {
	m.samples.Push(float64(frameTime) / float64(time.Millisecond))

	sum := 0.0
	m.samples.Each(func(ms float64) {
		sum += ms
	})
	m.msAvg = sum / float64(m.samples.Len())

	m.frames++
}

// FrameTime returns the averaged frame time in milliseconds.
func (m *Metrics) FrameTime() float64 {
	return m.msAvg
}

func (m *Metrics) Frames() int64 {
	return m.frames
}
