package api

import (
	"context"
	"testing"
	"time"

	"github.com/tecdo/creator-engine/engine"
	"github.com/tecdo/creator-engine/engine/store"
)

// slowStore delays record reads so a settlement check can be made to
// overlap a concurrent Stop.
type slowStore struct {
	engine.Store
	delay time.Duration
}

func (s *slowStore) RecordsInRange(ctx context.Context, from, to engine.Day) ([]engine.AdRecord, error) {
	time.Sleep(s.delay)
	return s.Store.RecordsInRange(ctx, from, to)
}

func TestSettlementScheduler_StopDuringInFlightCheck(t *testing.T) {
	scheduler := NewSettlementScheduler(&slowStore{Store: store.NewMemory(), delay: 300 * time.Millisecond})
	scheduler.CheckInterval = time.Hour
	scheduler.Start()

	// Land inside the immediate check Start kicks off.
	time.Sleep(50 * time.Millisecond)

	done := make(chan struct{})
	go func() {
		scheduler.Stop()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(3 * time.Second):
		t.Fatal("Stop did not return while a check was in flight")
	}
}

func TestSettlementScheduler_StopIsIdempotent(t *testing.T) {
	scheduler := NewSettlementScheduler(store.NewMemory())
	scheduler.CheckInterval = time.Hour
	scheduler.Start()

	scheduler.Stop()
	scheduler.Stop() // second call must be a no-op, not a close panic
}

func TestSettlementScheduler_DisabledDoesNotStart(t *testing.T) {
	scheduler := NewSettlementScheduler(store.NewMemory())
	scheduler.Enabled = false
	scheduler.Start()
	scheduler.Stop()
}
