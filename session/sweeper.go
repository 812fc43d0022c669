package session

import (
	"context"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// Sweeper periodically deletes expired sessions.
type Sweeper struct {
	Store    Store
	Interval time.Duration
	Enabled  bool
	Now      func() time.Time

	ticker *time.Ticker
	stop   chan struct{}
	wg     sync.WaitGroup
	mu     sync.Mutex
}

// NewSweeper creates a sweeper that runs every interval.
func NewSweeper(store Store, interval time.Duration) *Sweeper {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Sweeper{
		Store:    store,
		Interval: interval,
		Enabled:  true,
		Now:      time.Now,
	}
}

// Start begins sweeping in a background goroutine.
func (sw *Sweeper) Start() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if !sw.Enabled {
		logrus.Info("session sweeper disabled")
		return
	}
	if sw.ticker != nil {
		return
	}

	sw.ticker = time.NewTicker(sw.Interval)
	sw.stop = make(chan struct{})
	sw.wg.Add(1)
	go sw.run(sw.ticker, sw.stop)

	logrus.WithField("interval", sw.Interval).Info("session sweeper started")
}

// Stop halts the sweeper and waits for an in-flight sweep to finish.
func (sw *Sweeper) Stop() {
	sw.mu.Lock()
	defer sw.mu.Unlock()

	if sw.ticker == nil {
		return
	}
	sw.ticker.Stop()
	close(sw.stop)
	sw.wg.Wait()
	sw.ticker = nil
	logrus.Info("session sweeper stopped")
}

func (sw *Sweeper) run(ticker *time.Ticker, stop <-chan struct{}) {
	defer sw.wg.Done()

	for {
		select {
		case <-ticker.C:
			sw.RunNow()
		case <-stop:
			return
		}
	}
}

// RunNow sweeps immediately and returns how many sessions were removed.
func (sw *Sweeper) RunNow() int {
	n, err := sw.Store.DeleteExpired(context.Background(), sw.Now())
	if err != nil {
		logrus.WithError(err).Error("session sweep failed")
		return 0
	}
	if n > 0 {
		logrus.WithField("removed", n).Info("expired sessions removed")
	}
	return n
}
