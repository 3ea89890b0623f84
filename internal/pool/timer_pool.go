// Package pool provides a shared timer pool. The telemetry settle loop arms a
// timer every poll interval, up to a hundred times per second for the length
// of a movement; pooling keeps that from allocating a timer per tick.
package pool

import (
	"sync"
	"time"
)

var timerPool sync.Pool

// GetTimer returns a timer armed for d, reusing a pooled timer when one is
// available. Return it with PutTimer once it fired or is no longer needed.
func GetTimer(d time.Duration) *time.Timer {
	if v := timerPool.Get(); v != nil {
		t, _ := v.(*time.Timer) // the pool only ever holds *time.Timer
		if t.Reset(d) {
			// timer was still armed, drain a pending fire
			select {
			case <-t.C:
			default:
			}
		}
		return t
	}

	return time.NewTimer(d)
}

// PutTimer stops t and returns it to the pool.
//
// t must not be touched after this call.
func PutTimer(t *time.Timer) {
	if !t.Stop() {
		// drain t.C if the caller has not consumed the fire
		select {
		case <-t.C:
		default:
		}
	}
	timerPool.Put(t)
}
