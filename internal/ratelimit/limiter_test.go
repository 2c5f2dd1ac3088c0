package ratelimit

import (
	"context"
	"testing"
	"time"
)

func TestWait_UnconfiguredSourceProceeds(t *testing.T) {
	l := New()
	if err := l.Wait(context.Background(), SourceListing); err != nil {
		t.Errorf("Wait() on unconfigured source returned error: %v", err)
	}
}

func TestAllow_PacedSource(t *testing.T) {
	l := New()
	l.SetInterval(SourceMarketsAPI, time.Hour)

	if !l.Allow(SourceMarketsAPI) {
		t.Error("first Allow() = false, want true")
	}
	if l.Allow(SourceMarketsAPI) {
		t.Error("second Allow() within interval = true, want false")
	}
}

func TestSetInterval_NonPositiveRemovesPacing(t *testing.T) {
	l := New()
	l.SetInterval(SourceMarketsAPI, time.Hour)
	l.SetInterval(SourceMarketsAPI, 0)

	for i := 0; i < 3; i++ {
		if !l.Allow(SourceMarketsAPI) {
			t.Fatalf("Allow() call %d = false, want true after pacing removed", i+1)
		}
	}
}

func TestWait_CancelledContext(t *testing.T) {
	l := New()
	l.SetInterval(SourceMarketsAPI, time.Hour)
	l.Allow(SourceMarketsAPI) // drain the initial token

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := l.Wait(ctx, SourceMarketsAPI); err == nil {
		t.Error("Wait() with cancelled context returned nil error")
	}
}
