// Package wire serializes paxos.Message to and from the byte form carried
// over the council's TCP connections.
//
// Each Message marshals to a CBOR map (github.com/fxamacker/cbor/v2) and is
// framed with a 4-byte big-endian length prefix, since CBOR items are
// self-describing but a raw TCP stream gives no message boundary of its own.
// One frame is written and read per connection (spec: one message per
// connection, connection closed after write).
package wire

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/fxamacker/cbor/v2"

	"github.com/paxos-council/council/internal/paxos"
)

// maxFrameLen guards against a corrupt or hostile length prefix causing an
// unbounded read allocation.
const maxFrameLen = 1 << 20

type wireMessage struct {
	Type           uint8   `cbor:"1,keyasint"`
	ProposalNumber int     `cbor:"2,keyasint"`
	Value          *string `cbor:"3,keyasint,omitempty"`
	From           int     `cbor:"4,keyasint"`
}

// Encode serializes msg to its on-wire length-prefixed frame.
func Encode(msg paxos.Message) ([]byte, error) {
	w := wireMessage{
		Type:           uint8(msg.Type),
		ProposalNumber: msg.ProposalNumber,
		Value:          msg.Value,
		From:           msg.From,
	}
	body, err := cbor.Marshal(w)
	if err != nil {
		return nil, fmt.Errorf("wire: encode: %w", err)
	}
	frame := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(frame[:4], uint32(len(body)))
	copy(frame[4:], body)
	return frame, nil
}

// WriteMessage encodes and writes one framed message to w.
func WriteMessage(w io.Writer, msg paxos.Message) error {
	frame, err := Encode(msg)
	if err != nil {
		return err
	}
	_, err = w.Write(frame)
	return err
}

// ReadMessage reads exactly one framed message from r. Any failure (short
// read, oversized length prefix, malformed CBOR) aborts the read without
// touching any caller state.
func ReadMessage(r io.Reader) (paxos.Message, error) {
	var lenBuf [4]byte
	if _, err := io.ReadFull(r, lenBuf[:]); err != nil {
		return paxos.Message{}, fmt.Errorf("wire: read length prefix: %w", err)
	}
	n := binary.BigEndian.Uint32(lenBuf[:])
	if n > maxFrameLen {
		return paxos.Message{}, fmt.Errorf("wire: frame of %d bytes exceeds limit", n)
	}
	body := make([]byte, n)
	if _, err := io.ReadFull(r, body); err != nil {
		return paxos.Message{}, fmt.Errorf("wire: read body: %w", err)
	}
	var w wireMessage
	if err := cbor.Unmarshal(body, &w); err != nil {
		return paxos.Message{}, fmt.Errorf("wire: decode: %w", err)
	}
	return paxos.Message{
		Type:           paxos.MessageType(w.Type),
		ProposalNumber: w.ProposalNumber,
		Value:          w.Value,
		From:           w.From,
	}, nil
}
