// Package dataset loads the daily climate record into an immutable in-memory Dataset.
package dataset

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"iter"
	"os"
	"slices"
	"strings"

	"github.com/klauspost/compress/zstd"

	"climate-cli/internal/climate/types"
)

// Dataset is the ordered, read-only sequence of observations in file order.
type Dataset struct {
	obs []types.Observation
}

// New builds a Dataset from observations. The slice is copied.
func New(obs []types.Observation) *Dataset {
	return &Dataset{obs: slices.Clone(obs)}
}

func (d *Dataset) Len() int {
	if d == nil {
		return 0
	}
	return len(d.obs)
}

// All iterates the observations in file order.
func (d *Dataset) All() iter.Seq[types.Observation] {
	return func(yield func(types.Observation) bool) {
		if d == nil {
			return
		}
		for _, o := range d.obs {
			if !yield(o) {
				return
			}
		}
	}
}

// Observations returns a copy of the underlying observations.
func (d *Dataset) Observations() []types.Observation {
	if d == nil {
		return nil
	}
	return slices.Clone(d.obs)
}

// Load opens path and reads it with Read. Paths ending in .zst are
// decompressed on the fly.
func Load(path string) (*Dataset, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	defer func() { _ = f.Close() }()

	var r io.Reader = f
	if strings.HasSuffix(path, ".zst") {
		dec, err := zstd.NewReader(f, zstd.WithDecoderConcurrency(1))
		if err != nil {
			return nil, fmt.Errorf("open zstd dataset %s: %w", path, err)
		}
		defer dec.Close()
		r = dec
	}

	ds, err := Read(r)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return ds, nil
}

// Read discards the first line as a header, without looking at it, and
// parses every following record. The first malformed row aborts the whole read.
func Read(r io.Reader) (*Dataset, error) {
	br := bufio.NewReader(r)
	if _, err := br.ReadString('\n'); err != nil {
		if errors.Is(err, io.EOF) {
			return &Dataset{}, nil
		}
		return nil, fmt.Errorf("read header: %w", err)
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1
	cr.ReuseRecord = true

	var obs []types.Observation
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line, _ := cr.FieldPos(0)
		line++ // header
		o, err := ParseRecord(rec)
		if err != nil {
			var pe *ParseError
			if errors.As(err, &pe) {
				pe.Line = line
			}
			return nil, err
		}
		obs = append(obs, o)
	}
	return &Dataset{obs: obs}, nil
}
