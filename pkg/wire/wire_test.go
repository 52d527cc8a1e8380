package wire

import (
	"bytes"
	"testing"
)

type pingRequest struct {
	ShardID uint32
	Query   string
}

func TestWriteReadFrameRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	want := pingRequest{ShardID: 3, Query: "golang webgraph"}

	if err := WriteFrame(&buf, want); err != nil {
		t.Fatalf("WriteFrame: %v", err)
	}

	var got pingRequest
	if err := ReadFrame(&buf, &got); err != nil {
		t.Fatalf("ReadFrame: %v", err)
	}
	if got != want {
		t.Fatalf("round trip mismatch: got %+v want %+v", got, want)
	}
}

func TestReadFrameRejectsOversizedLength(t *testing.T) {
	var buf bytes.Buffer
	buf.Write([]byte{0x7F, 0xFF, 0xFF, 0xFF}) // ~2GB claimed length
	var got pingRequest
	if err := ReadFrame(&buf, &got); err == nil {
		t.Fatalf("expected an error for an oversized frame length")
	}
}
