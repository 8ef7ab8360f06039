package store

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"github.com/ssargent/marcdb/pkg/codec"
)

// RecordWriter appends serialized records to a file or stream
type RecordWriter struct {
	file   *os.File // nil when writing to a caller-owned stream
	writer *bufio.Writer
	codec  *codec.RecordCodec
	config WriterConfig
	mutex  sync.Mutex
	offset int64 // Current write offset
}

// NewRecordWriter opens (or creates) the file named in config for appending
func NewRecordWriter(config WriterConfig) (*RecordWriter, error) {
	// Ensure directory exists
	if err := os.MkdirAll(filepath.Dir(config.FilePath), 0750); err != nil {
		return nil, err
	}

	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if config.Truncate {
		flags |= os.O_TRUNC
	}
	file, err := os.OpenFile(config.FilePath, flags, 0600)
	if err != nil {
		return nil, err
	}

	// Get current file size for offset tracking
	stat, err := file.Stat()
	if err != nil {
		file.Close()
		return nil, err
	}

	w := newRecordWriter(file, config)
	w.file = file
	w.offset = stat.Size()
	return w, nil
}

// NewRecordWriterTo writes records to out. Close flushes but does not
// close out.
func NewRecordWriterTo(out io.Writer) *RecordWriter {
	return newRecordWriter(out, WriterConfig{})
}

func newRecordWriter(out io.Writer, config WriterConfig) *RecordWriter {
	var bw *bufio.Writer
	if config.BufferSize > 0 {
		bw = bufio.NewWriterSize(out, config.BufferSize)
	} else {
		bw = bufio.NewWriter(out)
	}
	return &RecordWriter{
		writer: bw,
		codec:  codec.NewRecordCodec(),
		config: config,
	}
}

// Write serializes a record and appends it, returning the record offset
func (w *RecordWriter) Write(record *codec.Record) (int64, error) {
	data, err := w.codec.Encode(record)
	if err != nil {
		return 0, err
	}
	return w.WriteRaw(data)
}

// WriteRaw appends an already framed record, returning the record offset.
// The length prefix must match len(data).
func (w *RecordWriter) WriteRaw(data []byte) (int64, error) {
	if len(data) < LengthPrefixSize {
		return 0, fmt.Errorf("%w: %d byte record", ErrMalformedLengthPrefix, len(data))
	}
	if length, ok := parseLengthPrefix(data[:LengthPrefixSize]); !ok || length != len(data) {
		return 0, fmt.Errorf("%w %q for %d byte record", ErrMalformedLengthPrefix, data[:LengthPrefixSize], len(data))
	}

	w.mutex.Lock()
	defer w.mutex.Unlock()

	n, err := w.writer.Write(data)
	if err != nil {
		return 0, err
	}

	// Calculate the offset where this record starts
	recordOffset := w.offset
	w.offset += int64(n)

	return recordOffset, nil
}

// Flush writes buffered records to the underlying stream
func (w *RecordWriter) Flush() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.writer.Flush()
}

// Sync flushes and fsyncs when writing to a file
func (w *RecordWriter) Sync() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.sync()
}

func (w *RecordWriter) sync() error {
	if err := w.writer.Flush(); err != nil {
		return err
	}
	if w.file == nil {
		return nil
	}
	return w.file.Sync()
}

// Close flushes pending data and closes the file if the writer owns one
func (w *RecordWriter) Close() error {
	w.mutex.Lock()
	defer w.mutex.Unlock()

	if err := w.sync(); err != nil {
		if w.file != nil {
			w.file.Close()
		}
		return err
	}

	if w.file == nil {
		return nil
	}
	return w.file.Close()
}

// Size returns the number of bytes written, including any existing content
func (w *RecordWriter) Size() int64 {
	w.mutex.Lock()
	defer w.mutex.Unlock()
	return w.offset
}

// Path returns the file path
func (w *RecordWriter) Path() string {
	return w.config.FilePath
}
