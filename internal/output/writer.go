package output

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"
)

// Writer handles streaming NDJSON output to a file or io.Writer.
// It ensures memory-efficient writing without accumulating data.
type Writer struct {
	mu        sync.Mutex
	output    io.Writer
	encoder   *json.Encoder
	count     int
	flush     func() error
	closeFunc func() error
}

func newEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}

// NewWriter creates a new NDJSON writer that writes to the specified output.
func NewWriter(w io.Writer) *Writer {
	return &Writer{
		output:  w,
		encoder: newEncoder(w),
	}
}

// NewFileWriter creates a new NDJSON writer that writes to a file, or to
// stdout when filename is "-". Writes to a file are buffered and flushed on
// Close, which the caller must call.
func NewFileWriter(filename string) (*Writer, error) {
	if filename == "-" {
		return NewWriter(os.Stdout), nil
	}

	file, err := os.Create(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}

	buffered := bufio.NewWriter(file)
	return &Writer{
		output:  buffered,
		encoder: newEncoder(buffered),
		flush:   buffered.Flush,
		closeFunc: func() error {
			if err := buffered.Flush(); err != nil {
				_ = file.Close()
				return err
			}
			return file.Close()
		},
	}, nil
}

// Write writes a single record as one JSON line.
func (w *Writer) Write(record any) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if err := w.encoder.Encode(record); err != nil {
		return fmt.Errorf("failed to write record: %w", err)
	}

	w.count++
	return nil
}

// WriteString writes s as is. It does not count as a record.
func (w *Writer) WriteString(s string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if _, err := io.WriteString(w.output, s); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

// Flush pushes buffered lines to the file. It is a no-op for writers
// created with NewWriter.
func (w *Writer) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.flush != nil {
		return w.flush()
	}
	return nil
}

// Count returns the number of records written.
func (w *Writer) Count() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.count
}

// Close flushes and closes the underlying file, if any.
func (w *Writer) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closeFunc != nil {
		err := w.closeFunc()
		w.closeFunc, w.flush = nil, nil
		return err
	}
	return nil
}
