package eink

import (
	"log/slog"
	"sync"
)

// Buffer coalesces pixel writes into rate limited surface commits.
//
// Writes only touch the requested color plane and never fail. Flush commits
// the requested colors to the surface, except for pixels that were committed
// within the last [MinPulse]; those are queued and retried by a later Flush or
// Ping.
//
// A pixel that is still too fresh when its retry runs is not queued again. It
// will be committed by the next Flush that covers it.
type Buffer struct {
	mu       sync.Mutex
	surface  Surface
	store    *store
	queue    *queue
	clock    Clock
	waveform Waveform
	log      *slog.Logger
	stats    Stats
}

// Stats are counters of the work a Buffer has done.
type Stats struct {
	Commits       uint64 // Pixels written to the surface
	Deferred      uint64 // Pixels deferred because they were committed too recently
	Refreshes     uint64 // Refresh requests issued to the surface
	RefreshErrors uint64 // Refresh requests that failed
	Overflows     uint64 // Pending regions dropped because the queue was full
	Abandoned     uint64 // Retries that still left pixels uncommitted
	Pending       int    // Regions waiting for a retry
}

// New creates a Buffer for the surface. A nil config uses [DefaultConfig].
func New(surface Surface, config *Config) (*Buffer, error) {
	if config == nil {
		config = new(Config)
		*config = DefaultConfig
	}

	width, height := surface.Size()
	if width <= 0 || height <= 0 {
		return nil, ErrSize
	}

	capacity := config.QueueCapacity
	if capacity <= 0 {
		capacity = DefaultConfig.QueueCapacity
	}
	clock := config.Clock
	if clock == nil {
		clock = MonotonicClock()
	}
	log := config.Logger
	if log == nil {
		log = slog.Default()
	}

	return &Buffer{
		surface:  surface,
		store:    newStore(width, height, config.DefaultColor),
		queue:    newQueue(capacity),
		clock:    clock,
		waveform: config.Waveform,
		log:      log,
	}, nil
}

// Size of the display in pixels.
func (b *Buffer) Size() (width, height int) {
	return b.store.width, b.store.height
}

// Bounds is the display as a rectangle at the origin.
func (b *Buffer) Bounds() Rectangle {
	return b.store.bounds()
}

// SetPixel requests color c at (x, y). Coordinates outside the display are
// ignored.
func (b *Buffer) SetPixel(x, y int, c uint8) {
	b.mu.Lock()
	b.store.setRequested(x, y, c)
	b.mu.Unlock()
}

// SetRect requests color c for every pixel of r within the display.
func (b *Buffer) SetRect(r Rectangle, c uint8) {
	b.mu.Lock()
	b.store.fillRequested(r, c)
	b.mu.Unlock()
}

// Requested returns the color most recently requested at (x, y).
func (b *Buffer) Requested(x, y int) (uint8, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.store.index(x, y)
	if !ok {
		return 0, false
	}
	return b.store.requested[i], true
}

// Committed returns the color last written to the surface at (x, y).
func (b *Buffer) Committed(x, y int) (uint8, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	i, ok := b.store.index(x, y)
	if !ok {
		return 0, false
	}
	return b.store.committed[i], true
}

// Flush commits the pending changes within r and refreshes r on the panel.
// Pixels that can't be committed yet are queued for a retry, after which any
// due retries are processed.
func (b *Buffer) Flush(r Rectangle) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if deferral, retryAfter, ok := b.tryCommit(r); ok {
		if !b.queue.push(pending{rect: deferral, retryAfter: retryAfter}) {
			b.stats.Overflows++
			b.log.Warn("eink: pending queue full, dropped oldest region",
				"capacity", len(b.queue.entries),
				"dropped", b.queue.dropped)
		}
		b.log.Debug("eink: deferred region", "rect", deferral, "retry", retryAfter)
	}
	b.ping()
}

// Ping retries the queued regions whose retry time has passed.
func (b *Buffer) Ping() {
	b.mu.Lock()
	b.ping()
	b.mu.Unlock()
}

func (b *Buffer) ping() {
	now := TickAt(b.clock.Now())
	for {
		front, ok := b.queue.front()
		if !ok || !front.retryAfter.Before(now) {
			return
		}
		if _, _, deferred := b.tryCommit(front.rect); deferred {
			b.stats.Abandoned++
		}
		b.queue.pop()
	}
}

// Pending returns the number of regions waiting for a retry.
func (b *Buffer) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.queue.len()
}

// Stats returns a snapshot of the counters.
func (b *Buffer) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	s := b.stats
	s.Pending = b.queue.len()
	return s
}

// tryCommit writes every changed pixel of r that is old enough to the surface
// and refreshes all of r. The pixels that were too fresh are returned as one
// bounding rectangle together with the tick after which they can be retried.
func (b *Buffer) tryCommit(r Rectangle) (deferral Rectangle, retryAfter Tick, ok bool) {
	var (
		now      = TickAt(b.clock.Now())
		pulseAgo = now.Add(-MinPulse)
		s        = b.store
		area     = r.Clip(s.width, s.height)
	)
	retryAfter = now.Add(MinPulse) + RetryEpsilon

	for y := area.Top; y < area.Bottom(); y++ {
		for x := area.Left; x < area.Right(); x++ {
			i := y*s.width + x
			committed, requested, at, stamped := s.read(i)
			if committed == requested {
				continue
			}
			if stamped && pulseAgo.Before(at) && at.Before(now) {
				deferral = deferral.Merge(Pt(x, y))
				b.stats.Deferred++
				continue
			}
			b.surface.WritePixel(x, y, uint16(requested))
			s.commit(i, requested, now)
			b.stats.Commits++
		}
	}

	b.stats.Refreshes++
	if err := b.surface.Refresh(r, b.waveform); err != nil {
		b.stats.RefreshErrors++
		b.log.Error("eink: refresh failed", "rect", r, "waveform", b.waveform, "error", err)
	}

	return deferral, retryAfter, !deferral.Empty()
}
