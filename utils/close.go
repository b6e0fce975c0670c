// Package utils carries small helpers shared across the gateway.
package utils

import (
	"gitlab.wm.local/mail/mailgate/log"
)

type Closer interface {
	Close() error
}

// DeferCloseLog closes c and logs a failed close instead of returning it.
// Meant for defer sites where the close error cannot change the outcome.
func DeferCloseLog(c Closer) {
	if err := c.Close(); err != nil {
		log.Errorf("close error: %s", err)
	}
}
