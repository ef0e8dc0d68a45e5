package wire

import (
	"bytes"
	"strings"
	"testing"

	"github.com/paxos-council/council/internal/paxos"
)

func withValue(v string) *string { return &v }

func TestRoundTrip_WithValue(t *testing.T) {
	msg := paxos.Message{Type: paxos.AcceptRequest, ProposalNumber: 7, Value: withValue("Member 3"), From: 2}

	var buf bytes.Buffer
	if err := WriteMessage(&buf, msg); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := ReadMessage(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Type != msg.Type || got.ProposalNumber != msg.ProposalNumber || got.From != msg.From {
		t.Fatalf("round trip mismatch: got %+v, want %+v", got, msg)
	}
	if got.Value == nil || *got.Value != *msg.Value {
		t.Fatalf("value mismatch: got %v", got.Value)
	}
}

func TestRoundTrip_NoValue(t *testing.T) {
	msg := paxos.Message{Type: paxos.Prepare, ProposalNumber: 1, From: 4}

	var buf bytes.Buffer
	if err := WriteMessage(&buf, msg); err != nil {
		t.Fatalf("write: %v", err)
	}
	got, err := ReadMessage(&buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if got.Value != nil {
		t.Fatalf("expected no value, got %v", *got.Value)
	}
}

func TestReadMessage_OversizedLengthPrefixRejected(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x7f, 0xff, 0xff, 0xff}) // far beyond maxFrameLen

	if _, err := ReadMessage(&buf); err == nil {
		t.Fatal("expected an error for an oversized frame length")
	}
}

func TestReadMessage_ShortStreamRejected(t *testing.T) {
	r := strings.NewReader("\x00\x00")
	if _, err := ReadMessage(r); err == nil {
		t.Fatal("expected an error reading a truncated length prefix")
	}
}

func TestReadMessage_MalformedBodyRejected(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x00, 0x00, 0x00, 0x03})
	buf.Write([]byte{0xff, 0xff, 0xff}) // not valid CBOR

	if _, err := ReadMessage(&buf); err == nil {
		t.Fatal("expected an error decoding a malformed body")
	}
}

func TestEncode_FramePrefixMatchesBodyLength(t *testing.T) {
	msg := paxos.Message{Type: paxos.Promise, ProposalNumber: 2, From: 1}
	frame, err := Encode(msg)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	if len(frame) < 4 {
		t.Fatalf("frame too short: %d bytes", len(frame))
	}
	bodyLen := int(frame[0])<<24 | int(frame[1])<<16 | int(frame[2])<<8 | int(frame[3])
	if bodyLen != len(frame)-4 {
		t.Fatalf("length prefix %d does not match body length %d", bodyLen, len(frame)-4)
	}
}
