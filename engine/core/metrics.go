package core

import (
	"sync"
	"time"
)

const AVG_COUNT uint8 = 30

// LoadMetrics counts asset acquisitions and keeps a rolling average of the
// last AVG_COUNT load times.
type LoadMetrics struct {
	mutex sync.Mutex

	acquired       uint64
	failed         uint64
	released       uint64
	staleReleases  uint64
	loadAVGCounter uint8
	loadMStimes    [AVG_COUNT]float64
	samples        uint8
}

type MetricsSnapshot struct {
	Acquired      uint64
	Failed        uint64
	Released      uint64
	StaleReleases uint64
	Live          uint64
	AverageLoadMS float64
}

func NewLoadMetrics() *LoadMetrics {
	return &LoadMetrics{}
}

func (m *LoadMetrics) RecordLoad(elapsed time.Duration, err error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	if err != nil {
		m.failed++
		return
	}
	m.acquired++
	m.loadMStimes[m.loadAVGCounter] = float64(elapsed.Microseconds()) / 1000.0
	m.loadAVGCounter++
	m.loadAVGCounter %= AVG_COUNT
	if m.samples < AVG_COUNT {
		m.samples++
	}
}

func (m *LoadMetrics) RecordRelease() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.released++
}

func (m *LoadMetrics) RecordStaleRelease() {
	m.mutex.Lock()
	defer m.mutex.Unlock()
	m.staleReleases++
}

func (m *LoadMetrics) Snapshot() MetricsSnapshot {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	s := MetricsSnapshot{
		Acquired:      m.acquired,
		Failed:        m.failed,
		Released:      m.released,
		StaleReleases: m.staleReleases,
	}
	if m.acquired > m.released {
		s.Live = m.acquired - m.released
	}
	if m.samples > 0 {
		for i := uint8(0); i < m.samples; i++ {
			s.AverageLoadMS += m.loadMStimes[i]
		}
		s.AverageLoadMS /= float64(m.samples)
	}
	return s
}
