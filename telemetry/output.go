package telemetry

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/gocarina/gocsv"
)

// CSVWriter appends frame records to a CSV stream in batches.
type CSVWriter struct {
	w             io.Writer
	closer        io.Closer
	batch         []FrameRecord
	batchSize     int
	headerWritten bool
}

// NewCSVWriter writes to w, flushing every batchSize records.
func NewCSVWriter(w io.Writer, batchSize int) *CSVWriter {
	if batchSize < 1 {
		batchSize = 1
	}
	return &CSVWriter{
		w:         w,
		batch:     make([]FrameRecord, 0, batchSize),
		batchSize: batchSize,
	}
}

// CreateCSV creates (or truncates) the file at path. An empty path disables
// output and returns nil.
func CreateCSV(path string, batchSize int) (*CSVWriter, error) {
	if path == "" {
		return nil, nil
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating telemetry directory: %w", err)
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating telemetry csv: %w", err)
	}
	cw := NewCSVWriter(f, batchSize)
	cw.closer = f
	return cw, nil
}

// Write queues a record. A nil writer discards it.
func (cw *CSVWriter) Write(r FrameRecord) error {
	if cw == nil {
		return nil
	}
	cw.batch = append(cw.batch, r)
	if len(cw.batch) >= cw.batchSize {
		return cw.Flush()
	}
	return nil
}

func (cw *CSVWriter) Flush() error {
	if cw == nil || len(cw.batch) == 0 {
		return nil
	}
	var err error
	if !cw.headerWritten {
		err = gocsv.Marshal(cw.batch, cw.w)
		cw.headerWritten = true
	} else {
		err = gocsv.MarshalWithoutHeaders(cw.batch, cw.w)
	}
	cw.batch = cw.batch[:0]
	if err != nil {
		return fmt.Errorf("writing telemetry: %w", err)
	}
	return nil
}

// Close flushes pending records and closes the file, if any.
func (cw *CSVWriter) Close() error {
	if cw == nil {
		return nil
	}
	err := cw.Flush()
	if cw.closer != nil {
		if cerr := cw.closer.Close(); err == nil {
			err = cerr
		}
	}
	return err
}

// ReadCSV parses records previously written by CSVWriter.
func ReadCSV(r io.Reader) ([]FrameRecord, error) {
	var out []FrameRecord
	if err := gocsv.Unmarshal(r, &out); err != nil {
		return nil, fmt.Errorf("reading telemetry: %w", err)
	}
	return out, nil
}
