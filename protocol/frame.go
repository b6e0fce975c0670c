package protocol

import (
	"bytes"
	"io"

	"gitlab.wm.local/mail/mailgate/errors"
)

// readChunk is the read buffer size for ReadFrame.
const readChunk = 512

// ReadFrame reads from r until a full EOL terminated frame has arrived and
// returns the raw frame bytes with the delimiter stripped. The scan looks for
// the last occurrence of EOL, so payloads containing partial delimiter-like
// substrings earlier in the stream are tolerated.
func ReadFrame(r io.Reader) ([]byte, error) {
	var buf []byte
	chunk := make([]byte, readChunk)
	for {
		n, err := r.Read(chunk)
		if n > 0 {
			buf = append(buf, chunk[:n]...)
			if pos := bytes.LastIndex(buf, EOL); pos >= 0 {
				return buf[:pos], nil
			}
		}
		if err != nil {
			if err == io.EOF {
				return nil, ErrConnectionClosed
			}
			return nil, errors.Er(err, "protocol: read frame")
		}
	}
}

// Decode splits raw frame bytes (EOL already stripped) into the header and
// the payload.
func Decode(raw []byte) (Header, []byte, error) {
	if len(raw) < headerLen {
		return Header{}, nil, ErrMalformedFrame
	}
	h := Header{
		Flags:    Flags(raw[0]),
		Status:   Status(raw[1]),
		Reserved: Flags(raw[2]),
	}
	return h, raw[headerLen:], nil
}

// Encode serializes a header and payload into wire bytes, EOL included. It
// never fails for a valid header.
func Encode(h Header, payload []byte) []byte {
	out := make([]byte, 0, headerLen+len(payload)+len(EOL))
	out = append(out, byte(h.Flags), byte(h.Status), byte(h.Reserved))
	out = append(out, payload...)
	return append(out, EOL...)
}

// WriteFrame encodes the message and writes it to w in a single call.
func WriteFrame(w io.Writer, m Message) error {
	if _, err := w.Write(Encode(m.Header, m.Payload)); err != nil {
		return errors.Er(err, "protocol: write frame")
	}
	return nil
}
