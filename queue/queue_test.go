package queue

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnqueueKeepsArrivalOrder(t *testing.T) {
	q := NewMailQueue()
	for _, s := range []string{"a", "b", "c"} {
		require.NoError(t, q.Enqueue(Email{Subject: s}, time.Second))
	}

	g, err := q.Acquire(time.Second)
	require.NoError(t, err)
	defer g.Release()

	require.Equal(t, 3, g.Len())
	assert.Equal(t, "a", g.Items()[0].Email.Subject)
	assert.Equal(t, "b", g.Items()[1].Email.Subject)
	assert.Equal(t, "c", g.Items()[2].Email.Subject)
	assert.WithinDuration(t, time.Now(), g.Items()[0].ReceivedAt, time.Second)
}

func TestAcquireTimesOutWhileHeld(t *testing.T) {
	q := NewMailQueue()
	g, err := q.Acquire(time.Second)
	require.NoError(t, err)

	_, err = q.Acquire(20 * time.Millisecond)
	assert.ErrorIs(t, err, ErrLockTimeout)

	err = q.Enqueue(Email{Subject: "x"}, 20*time.Millisecond)
	assert.ErrorIs(t, err, ErrLockTimeout)

	g.Release()
	require.NoError(t, q.Enqueue(Email{Subject: "x"}, time.Second))
}

func TestAcquireZeroTimeoutIsTry(t *testing.T) {
	q := NewMailQueue()
	g, err := q.Acquire(0)
	require.NoError(t, err)
	_, err = q.Acquire(0)
	assert.ErrorIs(t, err, ErrLockTimeout)
	g.Release()
}

func TestGuardReleaseIdempotent(t *testing.T) {
	q := NewMailQueue()
	g, err := q.Acquire(time.Second)
	require.NoError(t, err)
	g.Release()
	g.Release()

	g2, err := q.Acquire(time.Second)
	require.NoError(t, err)
	g2.Release()
}

func TestGuardReplaceAndClear(t *testing.T) {
	q := NewMailQueue()
	require.NoError(t, q.Enqueue(Email{Subject: "a"}, time.Second))
	require.NoError(t, q.Enqueue(Email{Subject: "b"}, time.Second))

	g, err := q.Acquire(time.Second)
	require.NoError(t, err)
	g.Replace(g.Items()[1:])
	assert.Equal(t, 1, g.Len())
	assert.Equal(t, "b", g.Items()[0].Email.Subject)
	g.Clear()
	assert.Equal(t, 0, g.Len())
	g.Release()
}

func TestNewErrorRecordHash(t *testing.T) {
	r := NewErrorRecord("smtp: connection refused", time.Now())
	assert.Len(t, r.Hash, hashLen)
	assert.Equal(t, "smtp: connection refused", r.Reason)

	same := NewErrorRecord("smtp: connection refused", time.Now())
	assert.Equal(t, r.Hash, same.Hash)

	other := NewErrorRecord("smtp: timeout", time.Now())
	assert.NotEqual(t, r.Hash, other.Hash)
}

func TestLedgerUnbounded(t *testing.T) {
	l := NewErrorLedger(0)
	g, err := l.Acquire(time.Second)
	require.NoError(t, err)
	defer g.Release()
	for i := 0; i < 100; i++ {
		g.Append(NewErrorRecord("boom", time.Now()))
	}
	assert.Equal(t, 100, g.Len())
}

func TestLedgerEvictsOldestPastLimit(t *testing.T) {
	l := NewErrorLedger(3)
	g, err := l.Acquire(time.Second)
	require.NoError(t, err)
	defer g.Release()

	for _, reason := range []string{"one", "two", "three", "four", "five"} {
		g.Append(NewErrorRecord(reason, time.Now()))
	}
	require.Equal(t, 3, g.Len())
	assert.Equal(t, "three", g.Records()[0].Reason)
	assert.Equal(t, "five", g.Records()[2].Reason)
}

func TestLedgerLockTimeout(t *testing.T) {
	l := NewErrorLedger(0)
	g, err := l.Acquire(time.Second)
	require.NoError(t, err)
	_, err = l.Acquire(10 * time.Millisecond)
	assert.ErrorIs(t, err, ErrLockTimeout)
	g.Release()
}
