package store

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/ssargent/marcdb/pkg/codec"
)

// RecordReader provides sequential access to length-prefixed MARC records.
// It keeps a log of record start offsets so that it can rewind to a
// previously visited record boundary.
type RecordReader struct {
	src     io.Reader
	seeker  io.Seeker // nil when the source cannot seek
	closer  io.Closer // set only when the reader owns the source
	reader  *bufio.Reader
	codec   *codec.RecordCodec
	offset  int64
	index   []int64 // index[i] is the start offset of record i
	current int     // records consumed since the start offset
	err     error   // sticky framing or I/O failure
	closed  bool
	config  ReaderConfig
}

// NewRecordReader opens the file named in config for sequential reading
func NewRecordReader(config ReaderConfig) (*RecordReader, error) {
	file, err := os.Open(config.FilePath)
	if err != nil {
		return nil, err
	}

	// Seek to start offset if specified
	if config.StartOffset > 0 {
		if _, err := file.Seek(config.StartOffset, io.SeekStart); err != nil {
			file.Close()
			return nil, err
		}
	}

	r := newRecordReader(file, file, config.StartOffset, config)
	r.closer = file
	return r, nil
}

// NewRecordReaderFrom reads records from an existing source. The caller
// keeps ownership of src; Close does not close it. Rewind is available only
// when src implements io.Seeker.
func NewRecordReaderFrom(src io.Reader) *RecordReader {
	var seeker io.Seeker
	var start int64
	if s, ok := src.(io.Seeker); ok {
		if pos, err := s.Seek(0, io.SeekCurrent); err == nil {
			seeker = s
			start = pos
		}
	}
	return newRecordReader(src, seeker, start, ReaderConfig{StartOffset: start})
}

// WithRecordReader opens a reader, hands it to fn and always closes it
func WithRecordReader(config ReaderConfig, fn func(*RecordReader) error) (err error) {
	r, err := NewRecordReader(config)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := r.Close(); closeErr != nil && err == nil {
			err = closeErr
		}
	}()
	return fn(r)
}

func newRecordReader(src io.Reader, seeker io.Seeker, start int64, config ReaderConfig) *RecordReader {
	var br *bufio.Reader
	if config.BufferSize > 0 {
		br = bufio.NewReaderSize(src, config.BufferSize)
	} else {
		br = bufio.NewReader(src)
	}
	return &RecordReader{
		src:    src,
		seeker: seeker,
		reader: br,
		codec:  codec.NewRecordCodec(),
		offset: start,
		index:  []int64{start},
		config: config,
	}
}

// Next reads and decodes the next record. It returns io.EOF once the
// source is exhausted at a record boundary. A record that is framed but
// cannot be decoded yields a *RecordError; the following call moves on to
// the next record. Framing and I/O errors end the stream.
func (r *RecordReader) Next() (*codec.Record, error) {
	raw, err := r.NextRaw()
	if err != nil {
		return nil, err
	}

	record, err := r.codec.Decode(raw)
	if err != nil {
		return nil, &RecordError{
			Index:  r.current - 1,
			Offset: r.index[r.current-1],
			Err:    err,
		}
	}

	return record, nil
}

// NextRaw returns the next framed record without decoding it
func (r *RecordReader) NextRaw() ([]byte, error) {
	if r.closed {
		return nil, ErrReaderClosed
	}
	if r.err != nil {
		return nil, r.err
	}

	start := r.offset

	// Read the 5-digit length prefix
	prefix := make([]byte, LengthPrefixSize)
	n, err := io.ReadFull(r.reader, prefix)
	if err != nil {
		if err == io.EOF {
			return nil, io.EOF
		}
		if err == io.ErrUnexpectedEOF {
			return nil, r.fail(fmt.Errorf("%w: %d byte length prefix at offset %d", ErrTruncatedStream, n, start))
		}
		return nil, r.fail(err)
	}

	length, ok := parseLengthPrefix(prefix)
	if !ok || length < LengthPrefixSize {
		return nil, r.fail(fmt.Errorf("%w %q at offset %d", ErrMalformedLengthPrefix, prefix, start))
	}

	data := make([]byte, length)
	copy(data, prefix)
	n, err = io.ReadFull(r.reader, data[LengthPrefixSize:])
	if err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, r.fail(fmt.Errorf("%w: record at offset %d declares %d bytes, %d available",
				ErrTruncatedStream, start, length, LengthPrefixSize+n))
		}
		return nil, r.fail(err)
	}

	r.offset += int64(length)
	r.current++
	if r.current == len(r.index) {
		r.index = append(r.index, r.offset)
	}

	return data, nil
}

// Rewind moves the cursor back n records (to the start offset at most) by
// seeking the source. Records are re-read from the source afterwards.
func (r *RecordReader) Rewind(n int) error {
	if r.closed {
		return ErrReaderClosed
	}
	if r.seeker == nil {
		return ErrNotSeekable
	}
	if n < 0 {
		n = 0
	}

	target := r.current - n
	if target < 0 {
		target = 0
	}

	pos := r.index[target]
	if _, err := r.seeker.Seek(pos, io.SeekStart); err != nil {
		return err
	}

	r.reader.Reset(r.src) // drop buffered bytes
	r.offset = pos
	r.current = target
	r.err = nil
	return nil
}

// Position returns the number of records consumed since the start offset
func (r *RecordReader) Position() int {
	return r.current
}

// Offset returns the current read offset
func (r *RecordReader) Offset() int64 {
	return r.offset
}

// Iterator returns a streaming iterator for records
func (r *RecordReader) Iterator() RecordIterator {
	return &recordIterator{reader: r}
}

// Close releases the underlying file when the reader owns it
func (r *RecordReader) Close() error {
	if r.closed {
		return nil
	}
	r.closed = true
	if r.closer != nil {
		return r.closer.Close()
	}
	return nil
}

func (r *RecordReader) fail(err error) error {
	r.err = err
	return err
}

func parseLengthPrefix(b []byte) (int, bool) {
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0, false
		}
		n = n*10 + int(c-'0')
	}
	return n, true
}

// recordIterator implements RecordIterator for streaming access.
// Iteration stops at the first error, including record-level ones.
type recordIterator struct {
	reader *RecordReader
	record *codec.Record
	err    error
}

func (it *recordIterator) Next() bool {
	if it.err != nil {
		return false
	}
	it.record, it.err = it.reader.Next()
	if errors.Is(it.err, io.EOF) {
		it.err = nil
		it.record = nil
		return false
	}
	return it.err == nil
}

func (it *recordIterator) Record() *codec.Record {
	return it.record
}

func (it *recordIterator) Err() error {
	return it.err
}

func (it *recordIterator) Close() error {
	// Don't close the underlying reader as it's owned by the caller
	return nil
}
