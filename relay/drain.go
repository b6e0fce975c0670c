package relay

import (
	"time"

	"gitlab.wm.local/mail/mailgate/audit"
	"gitlab.wm.local/mail/mailgate/config"
	"gitlab.wm.local/mail/mailgate/log"
	"gitlab.wm.local/mail/mailgate/metrics"
	"gitlab.wm.local/mail/mailgate/queue"
	"gitlab.wm.local/mail/mailgate/transport/smtp"
)

// Drainer walks the queue once per tick: expired entries are discarded,
// the rest are dispatched through the SMTP transport up to the per-tick
// rate limit. Failed entries stay queued and are retried next tick until
// their TTL runs out.
type Drainer struct {
	Queue   *queue.MailQueue
	Ledger  *queue.ErrorLedger
	Sender  smtp.Sender
	Audit   *audit.Publisher
	Metrics *metrics.Metrics
}

// Tick processes at most app.RateLimit entries in FIFO order. Expiry checks,
// successful dispatches and failed dispatches all consume rate-limit budget,
// which bounds both tick duration and outbound call volume.
//
// Lock order is always ledger before queue. A ledger lock failure aborts the
// tick; a queue lock failure aborts the tick and leaves a synthetic record
// in the ledger.
func (d *Drainer) Tick(app config.AppSettings) {
	log.Tracef("Locking error ledger")
	lg, err := d.Ledger.Acquire(app.LockTimeout())
	if err != nil {
		log.Errorf("Failed to acquire write lock on the error ledger")
		return
	}
	defer lg.Release()

	log.Tracef("Locking email queue")
	qg, err := d.Queue.Acquire(app.LockTimeout())
	if err != nil {
		log.Errorf("Failed to acquire write lock on email queue")
		lg.Append(queue.NewErrorRecord("failed to lock email queue", time.Now()))
		return
	}
	defer qg.Release()

	log.Tracef("Starting timeout processing")
	now := time.Now()
	items := qg.Items()
	kept := make([]queue.QueuedEmail, 0, len(items))
	processed := 0
	scanned := 0

	for ; scanned < len(items) && processed < app.RateLimit; scanned++ {
		entry := items[scanned]
		if now.Sub(entry.ReceivedAt) > app.QueueTTL() {
			log.Infof("Expired email discarding: %q", entry.Email.Subject)
			d.Metrics.EmailsExpired.Inc()
			d.publish(audit.Event{
				Kind:       audit.KindExpired,
				Subject:    entry.Email.Subject,
				ReceivedAt: entry.ReceivedAt,
				OccurredAt: now,
			})
			processed++
			continue
		}
		if err := d.Sender.SendMessage(entry.Email.Subject, entry.Email.Body); err != nil {
			log.Errorf("An error occurred while sending email: %s", err)
			lg.Append(queue.NewErrorRecord(err.Error(), now))
			d.Metrics.EmailsFailed.Inc()
			d.publish(audit.Event{
				Kind:       audit.KindFailed,
				Subject:    entry.Email.Subject,
				Reason:     err.Error(),
				ReceivedAt: entry.ReceivedAt,
				OccurredAt: now,
			})
			kept = append(kept, entry)
		} else {
			log.Infof("Sending Email: %d of %d", processed+1, app.RateLimit)
			d.Metrics.EmailsSent.Inc()
		}
		processed++
	}
	kept = append(kept, items[scanned:]...)
	qg.Replace(kept)

	d.Metrics.QueueDepth.Set(float64(len(kept)))
	d.Metrics.LedgerSize.Set(float64(lg.Len()))

	if lg.Len() == 0 {
		log.Debugf("No errors reported")
	} else {
		log.Warnf("Current errors: %d", lg.Len())
	}
	log.Tracef("Resting")
}

func (d *Drainer) publish(ev audit.Event) {
	if err := d.Audit.Publish(ev); err != nil {
		log.Errorf("failed to publish audit event: %s", err)
	}
}
