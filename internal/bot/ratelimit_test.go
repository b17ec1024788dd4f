package bot

import (
	"sync"
	"testing"
	"time"
)

func TestSenderLimiterRejectsOverLimit(t *testing.T) {
	now := time.Now()
	l := NewSenderLimiter(10*time.Second, 3)
	l.now = func() time.Time { return now }

	for i := 0; i < 3; i++ {
		if ok, _ := l.Allow("chat-1"); !ok {
			t.Fatalf("Expected request %d to be allowed", i+1)
		}
	}

	ok, retry := l.Allow("chat-1")
	if ok {
		t.Fatal("Expected 4th request in window to be rejected")
	}
	if retry <= 0 || retry > 10*time.Second {
		t.Errorf("Expected retry within the window, got %v", retry)
	}
}

func TestSenderLimiterRejectionNotRecorded(t *testing.T) {
	now := time.Now()
	l := NewSenderLimiter(10*time.Second, 1)
	l.now = func() time.Time { return now }

	l.Allow("chat-1")
	l.Allow("chat-1") // rejected, must not extend the window

	now = now.Add(11 * time.Second)
	if ok, _ := l.Allow("chat-1"); !ok {
		t.Error("Expected request after window expiry to be allowed")
	}
}

func TestSenderLimiterWindowSlides(t *testing.T) {
	now := time.Now()
	l := NewSenderLimiter(5*time.Second, 1)
	l.now = func() time.Time { return now }

	if ok, _ := l.Allow("chat-1"); !ok {
		t.Fatal("Expected first request to be allowed")
	}
	if ok, _ := l.Allow("chat-1"); ok {
		t.Fatal("Expected second request inside window to be rejected")
	}

	now = now.Add(6 * time.Second)
	if ok, _ := l.Allow("chat-1"); !ok {
		t.Error("Expected request after window to be allowed")
	}
}

func TestSenderLimiterIndependentSenders(t *testing.T) {
	l := NewSenderLimiter(10*time.Second, 1)

	if ok, _ := l.Allow("chat-1"); !ok {
		t.Fatal("Expected chat-1 to be allowed")
	}
	if ok, _ := l.Allow("chat-2"); !ok {
		t.Error("Expected chat-2 to be unaffected by chat-1's usage")
	}
}

func TestSenderLimiterConcurrentSameSender(t *testing.T) {
	l := NewSenderLimiter(10*time.Second, 5)

	var wg sync.WaitGroup
	var mu sync.Mutex
	allowed := 0

	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if ok, _ := l.Allow("chat-1"); ok {
				mu.Lock()
				allowed++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	if allowed != 5 {
		t.Errorf("Expected exactly 5 admitted requests, got %d", allowed)
	}
}
