package notify

import (
	"context"
	"sync"
	"testing"
	"time"
)

func TestPublishReachesSubscriber(t *testing.T) {
	bus := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	ch := bus.Subscribe(ctx)
	sent := bus.Error("Server error. Please try again later.")

	select {
	case got := <-ch:
		if got.ID != sent.ID {
			t.Fatalf("subscriber received notice %q, published %q", got.ID, sent.ID)
		}
		if got.Level != LevelError {
			t.Fatalf("unexpected level: %s", got.Level)
		}
	case <-time.After(time.Second):
		t.Fatal("notice never delivered")
	}
}

func TestSlowSubscriberDoesNotBlock(t *testing.T) {
	bus := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Never drained: the buffer fills and further publishes must not block.
	bus.Subscribe(ctx)

	done := make(chan struct{})
	go func() {
		for i := 0; i < 100; i++ {
			bus.Info("tick")
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("publish blocked on a slow subscriber")
	}
}

func TestRecentKeepsBoundedHistory(t *testing.T) {
	bus := New()
	for i := 0; i < recentLimit+10; i++ {
		bus.Info("n")
	}
	if got := len(bus.Recent()); got != recentLimit {
		t.Fatalf("recent length = %d, want %d", got, recentLimit)
	}
}

func TestPublishSurvivesConcurrentUnsubscribe(t *testing.T) {
	bus := New()

	// Subscribers cancelling while publishes are in flight: a send must never
	// land on an already-closed channel.
	var wg sync.WaitGroup
	for i := 0; i < 64; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 200; j++ {
				ctx, cancel := context.WithCancel(context.Background())
				bus.Subscribe(ctx)
				cancel()
			}
		}()
	}
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 500; j++ {
				bus.Info("tick")
			}
		}()
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(10 * time.Second):
		t.Fatal("publish/unsubscribe churn deadlocked")
	}
}

func TestSubscribeClosesOnContextCancel(t *testing.T) {
	bus := New()
	ctx, cancel := context.WithCancel(context.Background())
	ch := bus.Subscribe(ctx)
	cancel()

	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-ch:
			if !ok {
				return
			}
		case <-deadline:
			t.Fatal("channel not closed after context cancellation")
		}
	}
}
