// Package queue holds the two shared mutable collections of the gateway:
// the FIFO queue of pending emails and the ledger of dispatch failures.
// Both are guarded by bounded-wait locks so a stalled holder degrades a
// caller to a retry-later outcome instead of blocking it forever.
package queue

import (
	"time"
)

// Email is the decoded payload of an accepted frame.
type Email struct {
	Subject string
	Body    string
}

// QueuedEmail is an email with its arrival time. It stays queued until it
// is dispatched, expires, or a reload clears the queue.
type QueuedEmail struct {
	Email      Email
	ReceivedAt time.Time
}

// MailQueue is the shared pending-email collection. All access goes through
// a Guard obtained from Acquire.
type MailQueue struct {
	lk    timedLock
	items []QueuedEmail
}

func NewMailQueue() *MailQueue {
	return &MailQueue{lk: newTimedLock()}
}

// Acquire takes the write lock, waiting at most timeout. On timeout it
// returns ErrLockTimeout. The caller must Release the guard on every path.
func (q *MailQueue) Acquire(timeout time.Duration) (*Guard, error) {
	if !q.lk.tryLock(timeout) {
		return nil, ErrLockTimeout
	}
	return &Guard{q: q}, nil
}

// Enqueue appends an email stamped with the current time. It fails only
// when the lock cannot be taken within timeout.
func (q *MailQueue) Enqueue(e Email, timeout time.Duration) error {
	g, err := q.Acquire(timeout)
	if err != nil {
		return err
	}
	defer g.Release()
	q.items = append(q.items, QueuedEmail{Email: e, ReceivedAt: time.Now()})
	return nil
}

// Guard is an exclusive handle on the queue contents.
type Guard struct {
	q        *MailQueue
	released bool
}

// Items returns the queued entries in FIFO order. The slice is owned by the
// queue; callers replace it via Replace rather than mutating in place.
func (g *Guard) Items() []QueuedEmail {
	return g.q.items
}

func (g *Guard) Len() int {
	return len(g.q.items)
}

// Replace swaps in a new backing slice, used by the drain loop's
// retain pass.
func (g *Guard) Replace(items []QueuedEmail) {
	g.q.items = items
}

func (g *Guard) Clear() {
	g.q.items = nil
}

// Release drops the lock. Safe to call more than once.
func (g *Guard) Release() {
	if g.released {
		return
	}
	g.released = true
	g.q.lk.unlock()
}
