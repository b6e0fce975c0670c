package protocol

import (
	"encoding/json"

	"gitlab.wm.local/mail/mailgate/errors"
)

// EmailPayload is the text encoding carried by OPTIMIZED frames.
type EmailPayload struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// DecodeEmail parses a frame payload into an EmailPayload.
func DecodeEmail(payload []byte) (EmailPayload, error) {
	var e EmailPayload
	if err := json.Unmarshal(payload, &e); err != nil {
		return EmailPayload{}, errors.Er(err, "protocol: decode email payload")
	}
	return e, nil
}

// EncodeEmail renders an EmailPayload as frame payload bytes.
func EncodeEmail(e EmailPayload) ([]byte, error) {
	b, err := json.Marshal(e)
	if err != nil {
		return nil, errors.Er(err, "protocol: encode email payload")
	}
	return b, nil
}
