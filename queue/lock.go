package queue

import (
	"time"

	"gitlab.wm.local/mail/mailgate/errors"
)

// ErrLockTimeout is returned when a write guard cannot be acquired within
// the caller's deadline.
var ErrLockTimeout = errors.New("queue: lock timeout")

// timedLock is a mutex with bounded-wait acquisition. A timeout of zero or
// less degrades to a non-blocking try.
type timedLock struct {
	ch chan struct{}
}

func newTimedLock() timedLock {
	return timedLock{ch: make(chan struct{}, 1)}
}

func (l timedLock) tryLock(timeout time.Duration) bool {
	select {
	case l.ch <- struct{}{}:
		return true
	default:
	}
	if timeout <= 0 {
		return false
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case l.ch <- struct{}{}:
		return true
	case <-t.C:
		return false
	}
}

func (l timedLock) unlock() {
	<-l.ch
}
