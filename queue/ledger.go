package queue

import (
	"encoding/hex"
	"time"

	"golang.org/x/crypto/sha3"
)

// hashLen is the number of hex characters kept from the reason hash.
const hashLen = 10

// ErrorRecord is one dispatch failure kept for operator visibility.
type ErrorRecord struct {
	Hash       string
	Reason     string
	OccurredAt time.Time
}

// NewErrorRecord builds a record from the failure text, hashing it with
// SHA3-256 and keeping a short prefix.
func NewErrorRecord(reason string, at time.Time) ErrorRecord {
	sum := sha3.Sum256([]byte(reason))
	return ErrorRecord{
		Hash:       hex.EncodeToString(sum[:])[:hashLen],
		Reason:     reason,
		OccurredAt: at,
	}
}

// ErrorLedger accumulates ErrorRecords. Nothing consumes them in normal
// operation; when limit > 0 the oldest records are evicted once the ledger
// grows past it.
type ErrorLedger struct {
	lk      timedLock
	limit   int
	records []ErrorRecord
}

func NewErrorLedger(limit int) *ErrorLedger {
	return &ErrorLedger{lk: newTimedLock(), limit: limit}
}

// Acquire takes the write lock, waiting at most timeout.
func (l *ErrorLedger) Acquire(timeout time.Duration) (*LedgerGuard, error) {
	if !l.lk.tryLock(timeout) {
		return nil, ErrLockTimeout
	}
	return &LedgerGuard{l: l}, nil
}

// LedgerGuard is an exclusive handle on the ledger contents.
type LedgerGuard struct {
	l        *ErrorLedger
	released bool
}

func (g *LedgerGuard) Append(r ErrorRecord) {
	g.l.records = append(g.l.records, r)
	if g.l.limit > 0 && len(g.l.records) > g.l.limit {
		over := len(g.l.records) - g.l.limit
		g.l.records = append(g.l.records[:0:0], g.l.records[over:]...)
	}
}

func (g *LedgerGuard) Len() int {
	return len(g.l.records)
}

// Records returns the retained failures, oldest first.
func (g *LedgerGuard) Records() []ErrorRecord {
	return g.l.records
}

func (g *LedgerGuard) Clear() {
	g.l.records = nil
}

func (g *LedgerGuard) Release() {
	if g.released {
		return
	}
	g.released = true
	g.l.lk.unlock()
}
