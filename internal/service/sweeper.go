package service

import (
	"context"
	"log"
	"sync"
	"time"
)

// Sweeper periodically cancels expired marketplace listings so held items
// return to their sellers without anyone clicking cancel.
type Sweeper struct {
	marketplace *MarketplaceService
	interval    time.Duration

	stopCh   chan struct{}
	stopOnce sync.Once
	wg       sync.WaitGroup
}

// NewSweeper creates a sweeper that runs every interval.
func NewSweeper(marketplace *MarketplaceService, interval time.Duration) *Sweeper {
	return &Sweeper{
		marketplace: marketplace,
		interval:    interval,
		stopCh:      make(chan struct{}),
	}
}

// Start launches the background loop. It returns immediately.
func (s *Sweeper) Start() {
	s.wg.Add(1)
	go s.run()
	log.Printf("[Sweeper] started, interval %s", s.interval)
}

func (s *Sweeper) run() {
	defer s.wg.Done()

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			s.RunNow()
		case <-s.stopCh:
			return
		}
	}
}

// RunNow performs a single sweep pass.
func (s *Sweeper) RunNow() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	swept, err := s.marketplace.SweepExpired(ctx, 0)
	if err != nil {
		log.Printf("[Sweeper] sweep failed: %v", err)
		return
	}
	if swept > 0 {
		log.Printf("[Sweeper] cancelled %d expired listings", swept)
	}
}

// Stop halts the loop and waits for an in-flight pass to finish.
func (s *Sweeper) Stop() {
	s.stopOnce.Do(func() {
		close(s.stopCh)
	})
	s.wg.Wait()
	log.Printf("[Sweeper] stopped")
}
