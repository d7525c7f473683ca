package render

import (
	"sync"
	"time"
)

// frameWindow is the number of recent frames FrameMetrics averages over.
const frameWindow = 120

// FrameMetrics tracks recent frame durations.
type FrameMetrics struct {
	mu     sync.Mutex
	frames [frameWindow]time.Duration
	next   int
	count  int
	total  int64
	last   time.Duration
}

// NewFrameMetrics returns an empty FrameMetrics.
func NewFrameMetrics() *FrameMetrics {
	return &FrameMetrics{}
}

// RecordFrame records the duration of one frame.
func (fm *FrameMetrics) RecordFrame(d time.Duration) {
	fm.mu.Lock()
	defer fm.mu.Unlock()

	if fm.count == frameWindow {
		fm.total -= int64(fm.frames[fm.next])
	} else {
		fm.count++
	}
	fm.frames[fm.next] = d
	fm.total += int64(d)
	fm.next = (fm.next + 1) % frameWindow
	fm.last = d
}

// LastFrameTime returns the duration of the most recent frame.
func (fm *FrameMetrics) LastFrameTime() time.Duration {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return fm.last
}

// AverageFrameTime returns the mean over the recent window.
func (fm *FrameMetrics) AverageFrameTime() time.Duration {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	if fm.count == 0 {
		return 0
	}
	return time.Duration(fm.total / int64(fm.count))
}

// Frames returns the number of frames in the window.
func (fm *FrameMetrics) Frames() int {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	return fm.count
}

// Reset clears all recorded frames.
func (fm *FrameMetrics) Reset() {
	fm.mu.Lock()
	defer fm.mu.Unlock()
	fm.frames = [frameWindow]time.Duration{}
	fm.next, fm.count, fm.total, fm.last = 0, 0, 0, 0
}
