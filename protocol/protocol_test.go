package protocol

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	cases := []struct {
		name    string
		header  Header
		payload []byte
	}{
		{"empty ok", Header{Flags: FlagNone, Status: StatusOK}, nil},
		{"optimized request", Header{Flags: FlagOptimized}, []byte(`{"subject":"s","body":"b"}`)},
		{"sidegrade", Header{Status: StatusSidegrade, Reserved: FlagOptimized}, nil},
		{"all flags", Header{Flags: FlagCompressed | FlagEncrypted | FlagEncoded | FlagSigned | FlagOptimized, Status: StatusError, Reserved: FlagSigned}, []byte("x")},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			raw := Encode(tc.header, tc.payload)
			assert.True(t, bytes.HasSuffix(raw, EOL))

			h, p, err := Decode(raw[:len(raw)-len(EOL)])
			require.NoError(t, err)
			assert.Equal(t, tc.header, h)
			assert.Equal(t, tc.payload, append([]byte(nil), p...))
		})
	}
}

func TestDecodeMalformed(t *testing.T) {
	_, _, err := Decode([]byte{})
	assert.ErrorIs(t, err, ErrMalformedFrame)
	_, _, err = Decode([]byte{0x01, 0x02})
	assert.ErrorIs(t, err, ErrMalformedFrame)
}

func TestReadFrame(t *testing.T) {
	t.Run("whole frame", func(t *testing.T) {
		raw := Encode(Header{Flags: FlagOptimized}, []byte("payload"))
		got, err := ReadFrame(bytes.NewReader(raw))
		require.NoError(t, err)
		assert.Equal(t, raw[:len(raw)-len(EOL)], got)
	})

	t.Run("closed before delimiter", func(t *testing.T) {
		_, err := ReadFrame(bytes.NewReader([]byte("no delimiter here")))
		assert.ErrorIs(t, err, ErrConnectionClosed)
	})

	t.Run("empty stream", func(t *testing.T) {
		_, err := ReadFrame(bytes.NewReader(nil))
		assert.ErrorIs(t, err, ErrConnectionClosed)
	})

	t.Run("partial delimiter inside payload", func(t *testing.T) {
		payload := append([]byte("abc"), EOL[:len(EOL)-1]...)
		payload = append(payload, []byte("def")...)
		raw := Encode(Header{Flags: FlagOptimized}, payload)
		got, err := ReadFrame(bytes.NewReader(raw))
		require.NoError(t, err)
		_, p, err := Decode(got)
		require.NoError(t, err)
		assert.Equal(t, payload, p)
	})

	t.Run("delimiter split across reads", func(t *testing.T) {
		raw := Encode(Header{Flags: FlagOptimized}, []byte("hello"))
		r := io.MultiReader(
			bytes.NewReader(raw[:len(raw)-1]),
			bytes.NewReader(raw[len(raw)-1:]),
		)
		got, err := ReadFrame(r)
		require.NoError(t, err)
		assert.Equal(t, raw[:len(raw)-len(EOL)], got)
	})
}

func TestEmailPayloadCodec(t *testing.T) {
	in := EmailPayload{Subject: "weekly report", Body: "all green"}
	raw, err := EncodeEmail(in)
	require.NoError(t, err)

	out, err := DecodeEmail(raw)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	_, err = DecodeEmail([]byte("not json"))
	assert.Error(t, err)
}
