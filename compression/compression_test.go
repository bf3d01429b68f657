package compression

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const csv = "p1,p2,label\n0,0,a\n10,0,b\n0,10,c\n"

func encode(t *testing.T, typ Type, data string) []byte {
	t.Helper()
	var buf bytes.Buffer
	w, err := NewWriter(&buf, typ)
	require.NoError(t, err)
	_, err = io.WriteString(w, data)
	require.NoError(t, err)
	require.NoError(t, w.Close())
	return buf.Bytes()
}

func TestRoundTrip(t *testing.T) {
	for _, typ := range []Type{None, Gzip, Zstd, LZ4} {
		t.Run(typ.String(), func(t *testing.T) {
			encoded := encode(t, typ, csv)
			assert.Equal(t, typ, Detect("points", encoded[:min(HeaderSize, len(encoded))]))

			r, err := NewReader(bytes.NewReader(encoded), typ)
			require.NoError(t, err)
			defer r.Close()

			got, err := io.ReadAll(r)
			require.NoError(t, err)
			assert.Equal(t, csv, string(got))
		})
	}
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name   string
		header []byte
		want   Type
	}{
		{"points.csv", []byte("p1,p"), None},
		{"points.csv.gz", []byte("p1,p"), Gzip},
		{"points.CSV.ZST", nil, Zstd},
		{"points.lz4", nil, LZ4},
		{"points.csv", []byte{0x1f, 0x8b, 0x08, 0x00}, Gzip},
		{"points.gz", []byte{0x28, 0xb5, 0x2f, 0xfd}, Zstd},
		{"", []byte{0x04, 0x22}, None},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Detect(tt.name, tt.header), "%s %x", tt.name, tt.header)
	}
}

func TestParseType(t *testing.T) {
	for in, want := range map[string]Type{
		"":     Auto,
		"auto": Auto,
		"none": None,
		"GZIP": Gzip,
		"zst":  Zstd,
		"lz4":  LZ4,
	} {
		got, err := ParseType(in)
		require.NoError(t, err, in)
		assert.Equal(t, want, got, in)
	}

	_, err := ParseType("brotli")
	assert.ErrorIs(t, err, ErrUnknownType)
}

func TestNewReader_Corrupt(t *testing.T) {
	_, err := NewReader(bytes.NewReader([]byte("not gzip")), Gzip)
	assert.Error(t, err)
}
