package bot

import (
	"sync"
	"time"
)

// SenderLimiter enforces a sliding-window request limit per chat sender.
// The sender map has its own lock; each sender's timestamps are guarded by
// a per-sender mutex so unrelated senders never serialize.
type SenderLimiter struct {
	window time.Duration
	limit  int
	now    func() time.Time

	mu      sync.RWMutex
	senders map[string]*senderWindow
}

type senderWindow struct {
	mu     sync.Mutex
	stamps []time.Time
}

// NewSenderLimiter creates a limiter allowing limit requests per window.
func NewSenderLimiter(window time.Duration, limit int) *SenderLimiter {
	return &SenderLimiter{
		window:  window,
		limit:   limit,
		now:     time.Now,
		senders: make(map[string]*senderWindow),
	}
}

// Allow records a request for chatID if it fits the window and reports
// whether it was admitted. When rejected, nothing is recorded and the
// returned duration says how long until the next request would pass.
func (l *SenderLimiter) Allow(chatID string) (bool, time.Duration) {
	l.mu.RLock()
	w := l.senders[chatID]
	l.mu.RUnlock()

	if w == nil {
		l.mu.Lock()
		w = l.senders[chatID]
		if w == nil {
			w = &senderWindow{}
			l.senders[chatID] = w
		}
		l.mu.Unlock()
	}

	w.mu.Lock()
	defer w.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)

	kept := w.stamps[:0]
	for _, ts := range w.stamps {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	w.stamps = kept

	if len(w.stamps) >= l.limit {
		retry := w.stamps[0].Add(l.window).Sub(now)
		if retry < time.Second {
			retry = time.Second
		}
		return false, retry
	}

	w.stamps = append(w.stamps, now)
	return true, 0
}
