// Package smtp is the outbound mail transport. The gateway treats any
// non-nil error from SendMessage as a retryable failure.
package smtp

import (
	"fmt"
	"net/smtp"

	"gitlab.wm.local/mail/mailgate/config"
)

type Sender interface {
	SendMessage(subject, body string) error
}

type SenderImpl struct {
	Cfg config.SMTPConfig
}

func NewSender(cfg config.SMTPConfig) *SenderImpl {
	return &SenderImpl{Cfg: cfg}
}

func (s *SenderImpl) SendMessage(subject, body string) error {
	data := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\n\r\n%s",
		s.Cfg.From, s.Cfg.To, subject, body)
	if err := s.sendMail(fmt.Sprintf("%s:%d", s.Cfg.Server, s.Cfg.Port), data); err != nil {
		return err
	}
	return nil
}

func (s *SenderImpl) sendMail(host, data string) error {
	c, err := smtp.Dial(host)
	if err != nil {
		return fmt.Errorf("connection dial error: %w", err)
	}
	defer c.Close()

	if s.Cfg.Username != "" {
		if ok, _ := c.Extension("AUTH"); ok {
			auth := smtp.PlainAuth("", s.Cfg.Username, s.Cfg.Password, s.Cfg.Server)
			if err := c.Auth(auth); err != nil {
				return fmt.Errorf("auth error: %w", err)
			}
		}
	}

	// Set the sender and recipient first
	if err := c.Mail(s.Cfg.From); err != nil {
		return fmt.Errorf("send command from error: %w", err)
	}
	if err := c.Rcpt(s.Cfg.To); err != nil {
		return fmt.Errorf("send command rcpt error: %w", err)
	}

	// Send the email body.
	wc, err := c.Data()
	if err != nil {
		return fmt.Errorf("create writer error: %w", err)
	}
	_, err = fmt.Fprintf(wc, "%s", data)
	if err != nil {
		return fmt.Errorf("send message data error: %w", err)
	}
	err = wc.Close()
	if err != nil {
		return fmt.Errorf("close writer error: %w", err)
	}

	// Send the QUIT command and close the connection.
	err = c.Quit()
	if err != nil {
		return fmt.Errorf("send command quit error: %w", err)
	}
	return nil
}
