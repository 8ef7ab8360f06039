package store

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ssargent/marcdb/pkg/codec"
)

func testRecord(t *testing.T, id, title string) *codec.Record {
	t.Helper()
	rec := codec.NewRecord()
	require.NoError(t, rec.AddControlField("001", id))
	require.NoError(t, rec.AddDataField("245", codec.NewDataField('1', '0').AddSubfield('a', title)))
	return rec
}

func encodeRecords(t *testing.T, records ...*codec.Record) []byte {
	t.Helper()
	c := codec.NewRecordCodec()
	var buf bytes.Buffer
	for _, rec := range records {
		data, err := c.Encode(rec)
		require.NoError(t, err)
		buf.Write(data)
	}
	return buf.Bytes()
}

func writeFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "records.mrc")
	require.NoError(t, os.WriteFile(path, data, 0600))
	return path
}

func generatedRecords(t *testing.T, n int) []*codec.Record {
	t.Helper()
	faker := gofakeit.New(7)
	records := make([]*codec.Record, 0, n)
	for i := 0; i < n; i++ {
		records = append(records, testRecord(t, fmt.Sprintf("rec%03d", i), faker.Sentence(4)))
	}
	return records
}

func TestNewRecordReader_NonExistentFile(t *testing.T) {
	reader, err := NewRecordReader(ReaderConfig{FilePath: "/non/existent/file.mrc"})
	assert.Error(t, err)
	assert.Nil(t, reader)
}

func TestRecordReader_ReadsInFileOrder(t *testing.T) {
	records := generatedRecords(t, 5)
	path := writeFile(t, encodeRecords(t, records...))

	reader, err := NewRecordReader(ReaderConfig{FilePath: path})
	require.NoError(t, err)
	defer reader.Close()

	for i, want := range records {
		got, err := reader.Next()
		require.NoError(t, err)
		assert.True(t, want.Equal(got), "record %d", i)
		assert.Equal(t, i+1, reader.Position())
	}

	rec, err := reader.Next()
	assert.Nil(t, rec)
	assert.Equal(t, io.EOF, err)

	// end of stream is repeatable, not sticky failure
	_, err = reader.Next()
	assert.Equal(t, io.EOF, err)
}

func TestRecordReader_EmptySource(t *testing.T) {
	reader, err := NewRecordReader(ReaderConfig{FilePath: writeFile(t, nil)})
	require.NoError(t, err)
	defer reader.Close()

	rec, err := reader.Next()
	assert.Nil(t, rec)
	assert.Equal(t, io.EOF, err)
}

func TestRecordReader_Rewind(t *testing.T) {
	records := generatedRecords(t, 6)
	path := writeFile(t, encodeRecords(t, records...))

	reader, err := NewRecordReader(ReaderConfig{FilePath: path, BufferSize: 64})
	require.NoError(t, err)
	defer reader.Close()

	const n = 5
	read := make([]*codec.Record, 0, n)
	for i := 0; i < n; i++ {
		rec, err := reader.Next()
		require.NoError(t, err)
		read = append(read, rec)
	}

	for k := 0; k <= n; k++ {
		t.Run(fmt.Sprintf("rewind %d", k), func(t *testing.T) {
			require.NoError(t, reader.Rewind(k))
			assert.Equal(t, n-k, reader.Position())

			for i := n - k; i < n; i++ {
				rec, err := reader.Next()
				require.NoError(t, err)
				assert.True(t, read[i].Equal(rec), "record %d differs after rewind", i)
			}
			assert.Equal(t, n, reader.Position())
		})
	}

	// rewinding past the start clamps to the first record
	require.NoError(t, reader.Rewind(100))
	assert.Equal(t, 0, reader.Position())
	assert.Equal(t, int64(0), reader.Offset())

	first, err := reader.Next()
	require.NoError(t, err)
	assert.True(t, records[0].Equal(first))
}

func TestRecordReader_OffsetsFollowRecordBoundaries(t *testing.T) {
	records := generatedRecords(t, 3)
	data := encodeRecords(t, records...)
	path := writeFile(t, data)

	reader, err := NewRecordReader(ReaderConfig{FilePath: path})
	require.NoError(t, err)
	defer reader.Close()

	var raws [][]byte
	for {
		raw, err := reader.NextRaw()
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		raws = append(raws, raw)
	}

	require.Len(t, raws, 3)
	assert.Equal(t, data, bytes.Join(raws, nil))
	assert.Equal(t, int64(len(data)), reader.Offset())
}

func TestRecordReader_StartOffset(t *testing.T) {
	records := generatedRecords(t, 3)
	first := encodeRecords(t, records[0])
	path := writeFile(t, encodeRecords(t, records...))

	reader, err := NewRecordReader(ReaderConfig{FilePath: path, StartOffset: int64(len(first))})
	require.NoError(t, err)
	defer reader.Close()
	assert.Equal(t, int64(len(first)), reader.Offset())

	rec, err := reader.Next()
	require.NoError(t, err)
	assert.True(t, records[1].Equal(rec))

	// rewind never goes before the start offset
	require.NoError(t, reader.Rewind(10))
	assert.Equal(t, int64(len(first)), reader.Offset())
}

func TestRecordReader_MalformedLengthPrefix(t *testing.T) {
	reader := NewRecordReaderFrom(bytes.NewReader([]byte("   1a" + "nam a2200000   4500")))

	rec, err := reader.Next()
	assert.Nil(t, rec)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedLengthPrefix))

	// framing errors end the stream
	_, err = reader.Next()
	assert.True(t, errors.Is(err, ErrMalformedLengthPrefix))
}

func TestRecordReader_TruncatedStream(t *testing.T) {
	data := encodeRecords(t, testRecord(t, "id1", "A title"))

	testCases := []struct {
		name string
		data []byte
	}{
		{"body cut short", data[:len(data)-3]},
		{"partial prefix", data[:3]},
		{"prefix only", data[:5]},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			reader := NewRecordReaderFrom(bytes.NewReader(tc.data))
			_, err := reader.Next()
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrTruncatedStream), "got %v", err)
		})
	}
}

func TestRecordReader_SkipsUndecodableRecord(t *testing.T) {
	good := encodeRecords(t, testRecord(t, "good1", "First"))
	bad := []byte("00030nam a2200000   4500xxxxx\x1d") // directory has no terminator
	last := encodeRecords(t, testRecord(t, "good2", "Second"))

	var stream bytes.Buffer
	stream.Write(good)
	stream.Write(bad)
	stream.Write(last)

	reader := NewRecordReaderFrom(bytes.NewReader(stream.Bytes()))

	rec, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "good1", rec.ControlNumber())

	_, err = reader.Next()
	require.Error(t, err)
	var recErr *RecordError
	require.True(t, errors.As(err, &recErr))
	assert.Equal(t, 1, recErr.Index)
	assert.Equal(t, int64(len(good)), recErr.Offset)
	assert.True(t, errors.Is(err, codec.ErrMalformedDirectory))

	rec, err = reader.Next()
	require.NoError(t, err)
	assert.Equal(t, "good2", rec.ControlNumber())
}

type plainReader struct {
	r io.Reader
}

func (p plainReader) Read(b []byte) (int, error) {
	return p.r.Read(b)
}

func TestRecordReader_RewindRequiresSeeker(t *testing.T) {
	data := encodeRecords(t, testRecord(t, "id1", "A title"))
	reader := NewRecordReaderFrom(plainReader{bytes.NewReader(data)})

	_, err := reader.Next()
	require.NoError(t, err)
	assert.Equal(t, ErrNotSeekable, reader.Rewind(1))
}

func TestRecordReader_Iterator(t *testing.T) {
	records := generatedRecords(t, 4)
	reader := NewRecordReaderFrom(bytes.NewReader(encodeRecords(t, records...)))

	it := reader.Iterator()
	defer it.Close()

	var got []*codec.Record
	for it.Next() {
		got = append(got, it.Record())
	}
	require.NoError(t, it.Err())
	require.Len(t, got, len(records))
	for i := range records {
		assert.True(t, records[i].Equal(got[i]))
	}
}

func TestRecordReader_IteratorStopsOnError(t *testing.T) {
	reader := NewRecordReaderFrom(bytes.NewReader([]byte("abcde")))

	it := reader.Iterator()
	assert.False(t, it.Next())
	assert.True(t, errors.Is(it.Err(), ErrMalformedLengthPrefix))
	assert.False(t, it.Next())
}

func TestWithRecordReader_ClosesReader(t *testing.T) {
	path := writeFile(t, encodeRecords(t, testRecord(t, "id1", "A title")))

	var captured *RecordReader
	err := WithRecordReader(ReaderConfig{FilePath: path}, func(r *RecordReader) error {
		captured = r
		return errors.New("stop early")
	})
	assert.EqualError(t, err, "stop early")

	_, err = captured.Next()
	assert.Equal(t, ErrReaderClosed, err)
	assert.Equal(t, ErrReaderClosed, captured.Rewind(1))
	assert.NoError(t, captured.Close())
}
