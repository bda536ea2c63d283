package api

import (
	"math/rand"
	"sync"
	"sync/atomic"
	"time"
)

var lastTimestamp int64

// nextTimestamp returns the current time in unix milliseconds, strictly
// increasing across calls so event times and updatedAt refreshes never tie.
func nextTimestamp() int64 {
	for {
		now := time.Now().UnixMilli()
		last := atomic.LoadInt64(&lastTimestamp)
		if now <= last {
			now = last + 1
		}
		if atomic.CompareAndSwapInt64(&lastTimestamp, last, now) {
			return now
		}
	}
}

func durationToMillis(d time.Duration) float64 {
	return float64(d.Nanoseconds()) / 1e6
}

// newPlacementRand builds the rng shared by all item creation handlers.
// Echo serves requests concurrently, so the source is mutex guarded.
func newPlacementRand() *rand.Rand {
	src := rand.NewSource(time.Now().UnixNano()).(rand.Source64)
	return rand.New(&lockedSource{src: src})
}

type lockedSource struct {
	mu  sync.Mutex
	src rand.Source64
}

func (s *lockedSource) Int63() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Int63()
}

func (s *lockedSource) Uint64() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.src.Uint64()
}

func (s *lockedSource) Seed(seed int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.src.Seed(seed)
}
