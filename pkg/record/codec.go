package record

import (
	"fmt"
	"io"

	"github.com/golang/snappy"
	"github.com/klauspost/compress/zstd"
)

// Codec selects the stream compression of a recording's frame file
type Codec string

const (
	CodecZstd   Codec = "zstd"
	CodecSnappy Codec = "snappy"
)

// ParseCodec validates a codec name; empty selects zstd
func ParseCodec(name string) (Codec, error) {
	switch Codec(name) {
	case "", CodecZstd:
		return CodecZstd, nil
	case CodecSnappy:
		return CodecSnappy, nil
	default:
		return "", fmt.Errorf("unknown codec %q (want zstd or snappy)", name)
	}
}

// FramesFile returns the frame file name used for the codec
func (c Codec) FramesFile() string {
	switch c {
	case CodecSnappy:
		return "frames.bin.sz"
	default:
		return "frames.bin.zst"
	}
}

// newEncoder wraps w in the codec's streaming compressor
func (c Codec) newEncoder(w io.Writer) (io.WriteCloser, error) {
	switch c {
	case CodecSnappy:
		return snappy.NewBufferedWriter(w), nil
	case CodecZstd:
		enc, err := zstd.NewWriter(w)
		if err != nil {
			return nil, fmt.Errorf("zstd writer: %w", err)
		}
		return enc, nil
	default:
		return nil, fmt.Errorf("unknown codec %q", c)
	}
}

// newDecoder wraps r in the codec's streaming decompressor
func (c Codec) newDecoder(r io.Reader) (io.ReadCloser, error) {
	switch c {
	case CodecSnappy:
		return io.NopCloser(snappy.NewReader(r)), nil
	case CodecZstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("zstd reader: %w", err)
		}
		return dec.IOReadCloser(), nil
	default:
		return nil, fmt.Errorf("unknown codec %q", c)
	}
}
