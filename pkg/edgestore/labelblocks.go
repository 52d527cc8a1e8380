package edgestore

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// labelBlockFile stores anchor-text labels in zstd-compressed blocks of up
// to labelsPerBlock labels each. Each block is framed as an
// 8-byte little-endian compressed length followed by the compressed
// payload; an in-memory offsets slice gives O(1) seek to block n without
// scanning every frame ahead of it.
type labelBlockFile struct {
	f       *os.File
	offsets []int64 // offsets[i] is the byte offset of block i; len(offsets) is the block count
	enc     *zstd.Encoder
	dec     *zstd.Decoder
}

func openLabelBlockFile(path string) (*labelBlockFile, error) {
	f, err := os.OpenFile(path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return nil, fmt.Errorf("edgestore: open label block file %s: %w", path, err)
	}
	enc, err := zstd.NewWriter(nil)
	if err != nil {
		return nil, fmt.Errorf("edgestore: new zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		return nil, fmt.Errorf("edgestore: new zstd decoder: %w", err)
	}
	lbf := &labelBlockFile{f: f, enc: enc, dec: dec}
	if err := lbf.rebuildOffsets(); err != nil {
		return nil, err
	}
	return lbf, nil
}

// rebuildOffsets walks the frame headers to recover block offsets after
// opening an existing file. Cheap: it reads only the 8-byte length prefixes,
// never the compressed payloads.
func (l *labelBlockFile) rebuildOffsets() error {
	var offset int64
	var hdr [8]byte
	for {
		if _, err := l.f.ReadAt(hdr[:], offset); err != nil {
			if err == io.EOF || err == io.ErrUnexpectedEOF {
				break
			}
			return fmt.Errorf("edgestore: scan label blocks: %w", err)
		}
		length := int64(binary.LittleEndian.Uint64(hdr[:]))
		l.offsets = append(l.offsets, offset)
		offset += 8 + length
	}
	return nil
}

func (l *labelBlockFile) close() error {
	l.dec.Close()
	return l.f.Close()
}

// appendBlock joins labels with '\n' (labels never contain newlines —
// anchor text is normalized to a single line before insertion), compresses
// the joined buffer, and appends a new framed block. It returns the new
// block's index.
func (l *labelBlockFile) appendBlock(labels []string) (blockIdx int, err error) {
	joined := strings.Join(labels, "\n")
	compressed := l.enc.EncodeAll([]byte(joined), nil)

	info, err := l.f.Stat()
	if err != nil {
		return 0, err
	}
	offset := info.Size()

	var hdr [8]byte
	binary.LittleEndian.PutUint64(hdr[:], uint64(len(compressed)))
	if _, err := l.f.WriteAt(hdr[:], offset); err != nil {
		return 0, fmt.Errorf("edgestore: write label block header: %w", err)
	}
	if _, err := l.f.WriteAt(compressed, offset+8); err != nil {
		return 0, fmt.Errorf("edgestore: write label block payload: %w", err)
	}

	blockIdx = len(l.offsets)
	l.offsets = append(l.offsets, offset)
	return blockIdx, nil
}

// readBlock decompresses and splits block i back into its labels.
func (l *labelBlockFile) readBlock(i int) ([]string, error) {
	if i < 0 || i >= len(l.offsets) {
		return nil, fmt.Errorf("edgestore: label block %d out of range (have %d)", i, len(l.offsets))
	}
	offset := l.offsets[i]

	var hdr [8]byte
	if _, err := l.f.ReadAt(hdr[:], offset); err != nil {
		return nil, fmt.Errorf("edgestore: read label block header %d: %w", i, err)
	}
	length := binary.LittleEndian.Uint64(hdr[:])

	compressed := make([]byte, length)
	if _, err := l.f.ReadAt(compressed, offset+8); err != nil {
		return nil, fmt.Errorf("edgestore: read label block payload %d: %w", i, err)
	}
	raw, err := l.dec.DecodeAll(compressed, nil)
	if err != nil {
		return nil, fmt.Errorf("edgestore: decompress label block %d: %w", i, err)
	}
	return strings.Split(string(raw), "\n"), nil
}

// labelAt resolves the label at a flat label index (blockIdx*labelsPerBlock
// + offsetWithinBlock), the addressing scheme used by the node→label Range.
func (l *labelBlockFile) labelAt(flatIdx int) (string, error) {
	blockIdx := flatIdx / labelsPerBlock
	within := flatIdx % labelsPerBlock
	labels, err := l.readBlock(blockIdx)
	if err != nil {
		return "", err
	}
	if within >= len(labels) {
		return "", fmt.Errorf("edgestore: label offset %d out of range in block %d (len %d)", within, blockIdx, len(labels))
	}
	return labels[within], nil
}
