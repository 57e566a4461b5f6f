package quick

import (
	"time"
)

// --------------------------------------------------------------------------
// Effective Expiry
// --------------------------------------------------------------------------

// effectiveExpiry computes the absolute expiry timestamp for a write.
// An explicit ttl always overrides the engine default; with neither set the
// entry never expires (returns 0).
func effectiveExpiry(ttl, defaultTTL time.Duration, now time.Time) int64 {
	switch {
	case ttl > 0:
		return now.Add(ttl).UnixNano()
	case defaultTTL > 0:
		return now.Add(defaultTTL).UnixNano()
	default:
		return 0
	}
}

// --------------------------------------------------------------------------
// Background Sweeper
// --------------------------------------------------------------------------

// sweepSignal is a message sent to the background sweeper.
type sweepSignal int

const (
	// sweepCheck asks the sweeper to run one expiration pass now.
	sweepCheck sweepSignal = iota
	// sweepShutdown asks the sweeper to exit. The sender must wait on
	// sweepDone afterwards so the goroutine is gone before Close returns.
	sweepShutdown
)

// startSweeper launches the background expiration sweeper. The sweeper owns
// no resources of its own, only a handle to the shared engine state.
func (db *database) startSweeper(interval time.Duration) {
	db.sweepCh = make(chan sweepSignal)
	db.sweepDone = make(chan struct{})
	go db.sweeperLoop(interval)
}

// stopSweeper signals the sweeper to exit and waits until it has.
func (db *database) stopSweeper() {
	db.sweepCh <- sweepShutdown
	<-db.sweepDone
}

// sweeperLoop runs until it receives a shutdown signal. Expiration passes
// are triggered by the ticker and by explicit check signals.
//
// Thread-safety: the loop takes the same state lock as foreground
// operations for every pass; it never touches entries or expirations
// without it.
func (db *database) sweeperLoop(interval time.Duration) {
	defer close(db.sweepDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case sig := <-db.sweepCh:
			switch sig {
			case sweepCheck:
				db.sweep()
			case sweepShutdown:
				return
			}
		case <-ticker.C:
			db.sweep()
		}
	}
}

// sweep evicts every entry whose expiry timestamp has passed. Errors are
// logged, not propagated: no caller is waiting on this goroutine.
func (db *database) sweep() {
	now := time.Now().UnixNano()

	db.mu.Lock()
	defer db.mu.Unlock()

	if db.closed {
		return
	}

	keys := db.state.expiredKeys(now)
	for _, key := range keys {
		// double-check against the entry itself: the index member and the
		// entry are updated together under the lock, so a mismatch would be
		// an invariant violation worth surfacing
		e, ok := db.state.get(key)
		if !ok || !e.expired(now) {
			db.log.Errorf("[SWEEP] index member for key %q does not match a expired entry", key)
			continue
		}
		db.state.remove(key)
		db.statExpired.Inc()
	}

	if len(keys) > 0 {
		db.log.Debugf("[SWEEP] evicted %d expired entries", len(keys))
	}
}
