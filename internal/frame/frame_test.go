package frame

import (
	"bytes"
	"testing"
)

func TestFletcher16Vector(t *testing.T) {
	sum1, sum2 := Fletcher16([]byte{0x05, 0x01, 0x7E, 0x02, 0x7D, 0x03})
	if sum1 != 0x07 || sum2 != 0x21 {
		t.Fatalf("got (0x%02X, 0x%02X), want (0x07, 0x21)", sum1, sum2)
	}
}

func TestByteStuffing(t *testing.T) {
	got := StuffBinary([]byte{0x7E, 0x7D})
	want := []byte{0x7D, 0x5E, 0x7D, 0x5D}
	if !bytes.Equal(got, want) {
		t.Fatalf("got % X, want % X", got, want)
	}
}

func TestRoundTripASCII(t *testing.T) {
	for _, tc := range roundTripCases() {
		raw, err := Encode(tc.msgType, tc.ack, tc.data)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		wire := EncodeASCII(raw)
		bodies, consumed := SplitASCIIFrames(wire)
		if len(bodies) != 1 || consumed != len(wire) {
			t.Fatalf("expected exactly one ascii frame, got %d (consumed %d/%d)", len(bodies), consumed, len(wire))
		}
		decodedRaw, err := DecodeASCIIBody(bodies[0])
		if err != nil {
			t.Fatalf("decode ascii body: %v", err)
		}
		f, err := Decode(decodedRaw)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		assertFrameEqual(t, f, tc)
	}
}

func TestRoundTripBinary(t *testing.T) {
	for _, tc := range roundTripCases() {
		raw, err := Encode(tc.msgType, tc.ack, tc.data)
		if err != nil {
			t.Fatalf("encode: %v", err)
		}
		wire := EncodeBinary(raw)
		body, consumed, err := ScanBinaryFrame(wire)
		if err != nil {
			t.Fatalf("scan: %v", err)
		}
		if consumed != len(wire) {
			t.Fatalf("consumed %d, want %d", consumed, len(wire))
		}
		f, err := Decode(body)
		if err != nil {
			t.Fatalf("decode: %v", err)
		}
		assertFrameEqual(t, f, tc)
	}
}

func TestScanBinaryFrameNeedsMoreData(t *testing.T) {
	raw, _ := Encode(0x28, false, nil)
	wire := EncodeBinary(raw)
	_, _, err := ScanBinaryFrame(wire[:len(wire)-1])
	if err != ErrNeedMoreData {
		t.Fatalf("got %v, want ErrNeedMoreData", err)
	}
}

func TestScanBinaryFrameUnescapedFlag(t *testing.T) {
	buf := []byte{0x7E, 0x05, 0x7E}
	_, consumed, err := ScanBinaryFrame(buf)
	if err != ErrUnescapedFlag {
		t.Fatalf("got %v, want ErrUnescapedFlag", err)
	}
	if consumed != 2 {
		t.Fatalf("consumed %d, want 2", consumed)
	}
}

func TestDecodeChecksumMismatch(t *testing.T) {
	raw, _ := Encode(0x28, true, []byte{0x01, 0x02})
	raw[len(raw)-1] ^= 0xFF
	if _, err := Decode(raw); err != ErrChecksumMismatch {
		t.Fatalf("got %v, want ErrChecksumMismatch", err)
	}
}

type roundTripCase struct {
	msgType byte
	ack     bool
	data    []byte
}

func roundTripCases() []roundTripCase {
	cases := []roundTripCase{
		{msgType: 0x28, ack: false, data: nil},
		{msgType: 0x24, ack: true, data: []byte{0x01}},
		{msgType: 0x06, ack: false, data: []byte{0x00, 0x68, 0x00, 0xE0, 0x40, 0x62, 0x04, 0x82, 0x02, 0x07}},
		{msgType: 0x03, ack: true, data: []byte{0x00, 'F', 'r', 'o', 'n', 't', ' ', 'D', 'o', 'o', 'r'}},
	}
	for n := 0; n <= MaxDataLen; n += 17 {
		data := make([]byte, n)
		for i := range data {
			data[i] = byte((i*31 + n) % 256)
		}
		cases = append(cases, roundTripCase{msgType: byte(n % 0x7F), ack: n%2 == 0, data: data})
	}
	return cases
}

func assertFrameEqual(t *testing.T, f Frame, tc roundTripCase) {
	t.Helper()
	if f.MsgType != tc.msgType {
		t.Fatalf("msgtype = 0x%02X, want 0x%02X", f.MsgType, tc.msgType)
	}
	if f.AckRequired != tc.ack {
		t.Fatalf("ack = %v, want %v", f.AckRequired, tc.ack)
	}
	if !bytes.Equal(f.Data, tc.data) && !(len(f.Data) == 0 && len(tc.data) == 0) {
		t.Fatalf("data = % X, want % X", f.Data, tc.data)
	}
}
