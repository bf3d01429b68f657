// Package compression detects and decodes compressed point files.
package compression

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"path"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
	"github.com/pierrec/lz4/v4"
)

// Type identifies a compression format.
type Type uint8

const (
	// Auto detects the format from magic bytes, then from the file extension.
	Auto Type = iota
	// None reads the stream as is.
	None
	// Gzip is RFC 1952 gzip.
	Gzip
	// Zstd is Zstandard.
	Zstd
	// LZ4 is the LZ4 frame format.
	LZ4
)

// ErrUnknownType is returned for unrecognised format names.
var ErrUnknownType = errors.New("compression: unknown type")

// HeaderSize is the number of leading bytes Detect inspects.
const HeaderSize = 4

var magic = []struct {
	t     Type
	bytes []byte
}{
	{Gzip, []byte{0x1f, 0x8b}},
	{Zstd, []byte{0x28, 0xb5, 0x2f, 0xfd}},
	{LZ4, []byte{0x04, 0x22, 0x4d, 0x18}},
}

var extensions = map[string]Type{
	".gz":   Gzip,
	".gzip": Gzip,
	".zst":  Zstd,
	".zstd": Zstd,
	".lz4":  LZ4,
}

func (t Type) String() string {
	switch t {
	case Auto:
		return "auto"
	case None:
		return "none"
	case Gzip:
		return "gzip"
	case Zstd:
		return "zstd"
	case LZ4:
		return "lz4"
	default:
		return fmt.Sprintf("Type(%d)", uint8(t))
	}
}

// ParseType parses a format name as used in configuration files.
// The empty string means Auto.
func ParseType(s string) (Type, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "auto":
		return Auto, nil
	case "none":
		return None, nil
	case "gzip", "gz":
		return Gzip, nil
	case "zstd", "zst":
		return Zstd, nil
	case "lz4":
		return LZ4, nil
	}
	return Auto, fmt.Errorf("%w: %q", ErrUnknownType, s)
}

// Detect picks a format from the first bytes of a stream, falling back to
// the extension of name. Plain text never matches a magic number.
func Detect(name string, header []byte) Type {
	for _, m := range magic {
		if bytes.HasPrefix(header, m.bytes) {
			return m.t
		}
	}
	if t, ok := extensions[strings.ToLower(path.Ext(name))]; ok {
		return t
	}
	return None
}

// NewReader wraps r in a decoder for t. Auto and None return r unchanged.
func NewReader(r io.Reader, t Type) (io.ReadCloser, error) {
	switch t {
	case Auto, None:
		return io.NopCloser(r), nil
	case Gzip:
		zr, err := gzip.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("compression: gzip: %w", err)
		}
		return zr, nil
	case Zstd:
		dec, err := zstd.NewReader(r)
		if err != nil {
			return nil, fmt.Errorf("compression: zstd: %w", err)
		}
		return dec.IOReadCloser(), nil
	case LZ4:
		return io.NopCloser(lz4.NewReader(r)), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownType, t)
}

// NewWriter wraps w in an encoder for t.
func NewWriter(w io.Writer, t Type) (io.WriteCloser, error) {
	switch t {
	case Auto, None:
		return nopWriteCloser{w}, nil
	case Gzip:
		return gzip.NewWriter(w), nil
	case Zstd:
		enc, err := zstd.NewWriter(w, zstd.WithEncoderLevel(zstd.SpeedDefault))
		if err != nil {
			return nil, fmt.Errorf("compression: zstd: %w", err)
		}
		return enc, nil
	case LZ4:
		return lz4.NewWriter(w), nil
	}
	return nil, fmt.Errorf("%w: %v", ErrUnknownType, t)
}

type nopWriteCloser struct {
	io.Writer
}

func (nopWriteCloser) Close() error { return nil }
