// Package wire implements the length-prefixed request/response framing used
// by the distributed query fan-out: one request/response pair typed per
// service, a 4-byte big-endian length prefix followed by the encoded
// payload. Payloads are encoded with encoding/gob rather than a
// third-party binary codec (see DESIGN.md).
package wire

import (
	"encoding/binary"
	"encoding/gob"
	"fmt"
	"io"
)

const maxFrameSize = 64 << 20 // 64MiB, generous upper bound for a shard response

// WriteFrame encodes v with gob and writes it as a length-prefixed frame.
func WriteFrame(w io.Writer, v any) error {
	var buf frameBuffer
	if err := gob.NewEncoder(&buf).Encode(v); err != nil {
		return fmt.Errorf("wire: encode: %w", err)
	}
	var lenPrefix [4]byte
	binary.BigEndian.PutUint32(lenPrefix[:], uint32(buf.Len()))
	if _, err := w.Write(lenPrefix[:]); err != nil {
		return fmt.Errorf("wire: write length prefix: %w", err)
	}
	if _, err := w.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("wire: write payload: %w", err)
	}
	return nil
}

// ReadFrame reads one length-prefixed frame and gob-decodes it into v, which
// must be a pointer to the expected response/request type.
func ReadFrame(r io.Reader, v any) error {
	var lenPrefix [4]byte
	if _, err := io.ReadFull(r, lenPrefix[:]); err != nil {
		return fmt.Errorf("wire: read length prefix: %w", err)
	}
	n := binary.BigEndian.Uint32(lenPrefix[:])
	if n > maxFrameSize {
		return fmt.Errorf("wire: frame too large: %d bytes", n)
	}
	payload := make([]byte, n)
	if _, err := io.ReadFull(r, payload); err != nil {
		return fmt.Errorf("wire: read payload: %w", err)
	}
	return gobDecode(payload, v)
}

func gobDecode(payload []byte, v any) error {
	dec := gob.NewDecoder(&byteReader{b: payload})
	return dec.Decode(v)
}

// frameBuffer is a minimal growable byte buffer, avoiding a bytes.Buffer
// import purely for symmetry with byteReader below.
type frameBuffer struct {
	b []byte
}

func (f *frameBuffer) Write(p []byte) (int, error) {
	f.b = append(f.b, p...)
	return len(p), nil
}
func (f *frameBuffer) Bytes() []byte { return f.b }
func (f *frameBuffer) Len() int      { return len(f.b) }

type byteReader struct {
	b   []byte
	pos int
}

func (r *byteReader) Read(p []byte) (int, error) {
	if r.pos >= len(r.b) {
		return 0, io.EOF
	}
	n := copy(p, r.b[r.pos:])
	r.pos += n
	return n, nil
}
