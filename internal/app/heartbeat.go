package app

import (
	"context"
	"time"
)

// Heartbeat is the periodic trigger behind the countdown. Each Start opens
// a new generation; fire receives the generation it was started with so
// the receiver can drop ticks from a stopped one.
//
// Heartbeat is not safe for concurrent use. InterviewService calls it with
// its mutex held.
type Heartbeat struct {
	interval time.Duration
	fire     func(gen uint64)
	gen      uint64
	cancel   context.CancelFunc
}

func NewHeartbeat(interval time.Duration, fire func(gen uint64)) *Heartbeat {
	return &Heartbeat{interval: interval, fire: fire}
}

// Start supersedes any running generation. A non-positive interval
// disables the heartbeat.
func (h *Heartbeat) Start() {
	h.Stop()
	if h.interval <= 0 {
		return
	}
	ctx, cancel := context.WithCancel(context.Background())
	h.cancel = cancel
	gen := h.gen
	go func() {
		ticker := time.NewTicker(h.interval)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				h.fire(gen)
			}
		}
	}()
}

// Stop cancels the running generation without waiting for it to exit.
func (h *Heartbeat) Stop() {
	if h.cancel != nil {
		h.cancel()
		h.cancel = nil
	}
	h.gen++
}

// Running reports whether a generation is live.
func (h *Heartbeat) Running() bool {
	return h.cancel != nil
}

// Current reports whether gen is the live generation.
func (h *Heartbeat) Current(gen uint64) bool {
	return h.cancel != nil && gen == h.gen
}
