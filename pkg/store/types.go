package store

import (
	"fmt"

	"github.com/ssargent/marcdb/pkg/codec"
)

// LengthPrefixSize is the width of the decimal record length that starts
// every framed record
const LengthPrefixSize = 5

// ReaderConfig holds configuration for the record reader
type ReaderConfig struct {
	FilePath    string // Path to the MARC file
	StartOffset int64  // Offset to start reading from
	BufferSize  int    // Read buffer size (0 = bufio default)
}

// WriterConfig holds configuration for the record writer
type WriterConfig struct {
	FilePath   string // Path to the output file
	BufferSize int    // Write buffer size (0 = bufio default)
	Truncate   bool   // Start from an empty file instead of appending
}

// RecordIterator provides streaming access to records
type RecordIterator interface {
	Next() bool
	Record() *codec.Record
	Err() error
	Close() error
}

// Errors
var (
	ErrMalformedLengthPrefix = &StreamError{"malformed length prefix"}
	ErrTruncatedStream       = &StreamError{"truncated stream"}
	ErrNotSeekable           = &StreamError{"source does not support seeking"}
	ErrReaderClosed          = &StreamError{"reader is closed"}
)

// StreamError represents a framing or stream-state error
type StreamError struct {
	Message string
}

func (e *StreamError) Error() string {
	return e.Message
}

// RecordError reports a record that was framed correctly but could not be
// decoded. Reading may continue with the next record.
type RecordError struct {
	Index  int   // zero-based position of the record in the stream
	Offset int64 // byte offset of the record's length prefix
	Err    error
}

func (e *RecordError) Error() string {
	return fmt.Sprintf("record %d at offset %d: %v", e.Index, e.Offset, e.Err)
}

func (e *RecordError) Unwrap() error {
	return e.Err
}
