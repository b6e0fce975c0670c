package relay

import (
	"net"

	"gitlab.wm.local/mail/mailgate/log"
	"gitlab.wm.local/mail/mailgate/protocol"
	"gitlab.wm.local/mail/mailgate/queue"
	"gitlab.wm.local/mail/mailgate/utils"
)

// handle serves one connection: read a frame, negotiate, enqueue, reply.
// While the execution flag is down the connection is closed unread so a
// reload never races a queue being cleared.
func (s *Service) handle(conn net.Conn) {
	defer utils.DeferCloseLog(conn)

	if !s.running.Load() {
		log.Debugf("ingestion paused, dropping connection from %s", conn.RemoteAddr())
		return
	}

	raw, err := protocol.ReadFrame(conn)
	if err != nil {
		log.Errorf("Error reading message: %s", err)
		s.respond(conn, protocol.StatusError, protocol.FlagNone)
		s.metrics.FramesRejected.Inc()
		s.countEvent()
		return
	}

	hdr, payload, err := protocol.Decode(raw)
	if err != nil {
		log.Errorf("Error reading message: %s", err)
		s.respond(conn, protocol.StatusError, protocol.FlagNone)
		s.metrics.FramesRejected.Inc()
		s.countEvent()
		return
	}
	log.Debugf("Message received: flags=%08b payload=%d bytes", hdr.Flags, len(payload))

	if hdr.Flags&protocol.FlagOptimized == 0 {
		// ask the sender to resend with the upgraded flag set
		log.Errorf("Received message in an illegal format, asking sender to try again")
		s.respond(conn, protocol.StatusSidegrade, protocol.FlagOptimized)
		s.metrics.FramesSidegraded.Inc()
		s.countEvent()
		return
	}

	email, err := protocol.DecodeEmail(payload)
	if err != nil {
		log.Errorf("Error while deserializing email: %s", err)
		s.respond(conn, protocol.StatusError, protocol.FlagNone)
		s.metrics.FramesRejected.Inc()
		s.countEvent()
		return
	}

	err = s.queue.Enqueue(queue.Email{Subject: email.Subject, Body: email.Body}, s.settings().LockTimeout())
	if err != nil {
		log.Errorf("failed to enqueue email: %s", err)
		s.respond(conn, protocol.StatusError, protocol.FlagNone)
		s.metrics.FramesRejected.Inc()
		s.countEvent()
		return
	}

	s.respond(conn, protocol.StatusOK, protocol.FlagNone)
	s.metrics.FramesAccepted.Inc()
	s.countEvent()
}

func (s *Service) respond(conn net.Conn, status protocol.Status, reserved protocol.Flags) {
	m := protocol.Message{Header: protocol.Header{
		Flags:    protocol.FlagNone,
		Status:   status,
		Reserved: reserved,
	}}
	if err := protocol.WriteFrame(conn, m); err != nil {
		log.Errorf("failed to write response to %s: %s", conn.RemoteAddr(), err)
	}
}
