// Package protocol implements the binary frame format spoken by mailgate
// clients: a three byte header (flags, status, reserved) followed by an
// opaque payload, terminated by the EOL sequence.
package protocol

import (
	"gitlab.wm.local/mail/mailgate/errors"
)

// Flags is the bitset carried in the first header byte of every frame.
type Flags uint8

const (
	FlagNone       Flags = 0
	FlagCompressed Flags = 1 << 0
	FlagEncrypted  Flags = 1 << 1
	FlagEncoded    Flags = 1 << 2
	FlagSigned     Flags = 1 << 3
	// FlagOptimized marks the payload as using the current email encoding.
	// Frames without it are never treated as payload-bearing messages.
	FlagOptimized Flags = 1 << 4
)

// Status is the outcome code on server to client frames.
type Status uint8

const (
	StatusNone  Status = 0
	StatusOK    Status = 1
	StatusError Status = 2
	// StatusSidegrade asks the client to resend with the flag set that the
	// server placed in the Reserved header byte.
	StatusSidegrade Status = 3
)

// Header prefixes every frame. Reserved carries the flags-upgrade hint on
// sidegrade responses and is zero otherwise.
type Header struct {
	Flags    Flags
	Status   Status
	Reserved Flags
}

// Message is a decoded frame.
type Message struct {
	Header  Header
	Payload []byte
}

// EOL terminates every frame on the wire. The leading NUL byte cannot occur
// in the JSON payload encoding, so the delimiter never collides with payload
// bytes.
var EOL = []byte{0x00, 0x0D, 0x0A}

const headerLen = 3

var (
	ErrMalformedFrame   = errors.New("protocol: malformed frame")
	ErrConnectionClosed = errors.New("protocol: connection closed before EOL")
)
