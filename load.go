package kdnn

import (
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"math"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/hupe1980/kdnn/blobstore"
	"github.com/hupe1980/kdnn/compression"
	"github.com/hupe1980/kdnn/resource"
)

const (
	fieldsPerRecord = 3
	headerLines     = 1
)

var (
	utf8BOM = []byte{0xef, 0xbb, 0xbf}

	errFieldCount = errors.New("expected 3 fields: x, y, label")
	errNonFinite  = errors.New("coordinate must be finite")
)

type loadOptions struct {
	expectedRows int
	compression  compression.Type
	controller   *resource.Controller
}

// LoadOption configures Load, LoadBlob and LoadFile.
type LoadOption func(*loadOptions)

// WithExpectedRows pre-sizes storage for n points.
func WithExpectedRows(n int) LoadOption {
	return func(o *loadOptions) {
		o.expectedRows = max(n, 0)
	}
}

// WithCompression forces the input format instead of detecting it.
// It applies to LoadBlob and LoadFile.
func WithCompression(t compression.Type) LoadOption {
	return func(o *loadOptions) {
		o.compression = t
	}
}

// WithLoadController throttles blob reads to the controller's IO limit.
func WithLoadController(rc *resource.Controller) LoadOption {
	return func(o *loadOptions) {
		o.controller = rc
	}
}

// Load parses CSV point records from r.
//
// The first line is a header and is skipped whatever it contains. Every
// following record holds x, y and label. Any malformed record aborts the load with a *FormatError.
// Empty or header-only input yields an empty PointSet.
func Load(r io.Reader, opts ...LoadOption) (*PointSet, error) {
	o := loadOptions{}
	for _, fn := range opts {
		fn(&o)
	}
	return load(r, &o)
}

func load(r io.Reader, o *loadOptions) (*PointSet, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}

	// The header is the first physical line, whatever it holds, so it is
	// dropped before the CSV reader can treat it as a comment or reject its
	// quoting.
	if _, err := br.ReadString('\n'); err != nil {
		if err == io.EOF {
			return newPointSet([]Coord{}, []uint32{}), nil
		}
		return nil, err
	}

	cr := csv.NewReader(br)
	cr.Comment = '#'
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	coords := make([]Coord, 0, o.expectedRows)
	labels := make([]uint32, 0, o.expectedRows)

	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			var pe *csv.ParseError
			if errors.As(err, &pe) {
				return nil, &FormatError{Line: pe.Line + headerLines, Column: pe.Column, cause: pe.Err}
			}
			return nil, err
		}

		if len(rec) == 1 && strings.TrimSpace(rec[0]) == "" {
			continue
		}

		line, _ := cr.FieldPos(0)
		line += headerLines
		switch {
		case len(rec) > fieldsPerRecord:
			return nil, &FormatError{Line: line, Column: fieldsPerRecord + 1, Value: rec[fieldsPerRecord], cause: errFieldCount}
		case len(rec) < fieldsPerRecord:
			return nil, &FormatError{Line: line, Column: len(rec) + 1, cause: errFieldCount}
		}

		x, err := parseCoord(rec[0], line, 1)
		if err != nil {
			return nil, err
		}
		y, err := parseCoord(rec[1], line, 2)
		if err != nil {
			return nil, err
		}

		field := strings.TrimSpace(rec[2])
		label, err := strconv.ParseUint(field, 10, 32)
		if err != nil {
			return nil, &FormatError{Line: line, Column: 3, Value: field, cause: numError(err)}
		}

		coords = append(coords, Coord{X: x, Y: y})
		labels = append(labels, uint32(label))
	}

	return newPointSet(coords, labels), nil
}

func parseCoord(field string, line, column int) (float64, error) {
	field = strings.TrimSpace(field)

	v, err := strconv.ParseFloat(field, 64)
	if err != nil {
		return 0, &FormatError{Line: line, Column: column, Value: field, cause: numError(err)}
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, &FormatError{Line: line, Column: column, Value: field, cause: errNonFinite}
	}
	return v, nil
}

// numError drops the function name and input that *strconv.NumError repeats.
func numError(err error) error {
	var ne *strconv.NumError
	if errors.As(err, &ne) {
		return ne.Err
	}
	return err
}

// LoadBlob reads the named blob from store, decompressing it if needed.
func LoadBlob(ctx context.Context, store blobstore.BlobStore, name string, opts ...LoadOption) (*PointSet, error) {
	o := loadOptions{}
	for _, fn := range opts {
		fn(&o)
	}

	blob, err := store.Open(ctx, name)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", name, err)
	}
	defer blob.Close()

	raw, err := blobstore.NewReader(ctx, blob)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", name, err)
	}
	defer raw.Close()

	br := bufio.NewReader(resource.NewRateLimitedReader(ctx, raw, o.controller))

	typ := o.compression
	if typ == compression.Auto {
		header, err := br.Peek(compression.HeaderSize)
		if err != nil && err != io.EOF {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		typ = compression.Detect(name, header)
	}

	dec, err := compression.NewReader(br, typ)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	defer dec.Close()

	ps, err := load(dec, &o)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}
	return ps, nil
}

// LoadFile reads a local file through a memory mapping.
func LoadFile(ctx context.Context, path string, opts ...LoadOption) (*PointSet, error) {
	return LoadBlob(ctx, blobstore.NewLocalStore(filepath.Dir(path)), filepath.Base(path), opts...)
}
