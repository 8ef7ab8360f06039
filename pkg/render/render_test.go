package render

import (
	"bytes"
	"encoding/json"
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/marcdb/pkg/codec"
)

func sampleRecord(t *testing.T) *codec.Record {
	t.Helper()
	rec := codec.NewRecord()
	require.NoError(t, rec.AddControlField("001", "ocm12345"))
	require.NoError(t, rec.AddDataField("650", codec.NewDataField(' ', '0').AddSubfield('a', "Cats")))
	require.NoError(t, rec.AddDataField("245", codec.NewDataField('1', '0').
		AddSubfield('c', "by Someone").
		AddSubfield('a', "Title of the Book")))
	require.NoError(t, rec.AddDataField("650", codec.NewDataField(' ', '0').AddSubfield('a', "Dogs")))
	return rec
}

func TestToDocument(t *testing.T) {
	doc := ToDocument(sampleRecord(t))

	assert.Len(t, doc.Leader, codec.LeaderSize)
	assert.True(t, strings.HasSuffix(doc.Leader, "4500"))
	assert.Equal(t, []Field{
		{Tag: "001", Value: "ocm12345"},
		{Tag: "245", Indicator1: "1", Indicator2: "0", Subfields: []Subfield{
			{Code: "a", Value: "Title of the Book"},
			{Code: "c", Value: "by Someone"},
		}},
		{Tag: "650", Indicator1: " ", Indicator2: "0", Subfields: []Subfield{{Code: "a", Value: "Cats"}}},
		{Tag: "650", Indicator1: " ", Indicator2: "0", Subfields: []Subfield{{Code: "a", Value: "Dogs"}}},
	}, doc.Fields)
}

func TestToDocument_LeaderMatchesEncodedRecord(t *testing.T) {
	rec := sampleRecord(t)
	data, err := codec.NewRecordCodec().Encode(rec)
	require.NoError(t, err)

	assert.Equal(t, string(data[:codec.LeaderSize]), ToDocument(rec).Leader)
}

func TestToDocument_Nil(t *testing.T) {
	doc := ToDocument(nil)
	assert.Empty(t, doc.Leader)
	assert.Empty(t, doc.Fields)
}

func TestWriteText(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, sampleRecord(t)))

	want := "001\n" +
		"\tocm12345\n" +
		"245\n" +
		"\ta : Title of the Book\n" +
		"\tc : by Someone\n" +
		"650\n" +
		"\ta : Cats\n" +
		"650\n" +
		"\ta : Dogs\n"
	assert.Equal(t, want, buf.String())
}

func TestNewEncoder_UnknownFormat(t *testing.T) {
	_, err := NewEncoder("xml", io.Discard)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported format")
}

func TestEncoders(t *testing.T) {
	rec := sampleRecord(t)
	want := ToDocument(rec)

	t.Run("json lines", func(t *testing.T) {
		var buf bytes.Buffer
		enc, err := NewEncoder(FormatJSON, &buf)
		require.NoError(t, err)
		require.NoError(t, enc.Encode(rec))
		require.NoError(t, enc.Encode(rec))
		require.NoError(t, enc.Close())

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		require.Len(t, lines, 2)

		var got Document
		require.NoError(t, json.Unmarshal([]byte(lines[1]), &got))
		assert.Equal(t, *want, got)
	})

	t.Run("yaml stream", func(t *testing.T) {
		var buf bytes.Buffer
		enc, err := NewEncoder("YAML", &buf)
		require.NoError(t, err)
		require.NoError(t, enc.Encode(rec))
		require.NoError(t, enc.Encode(rec))
		require.NoError(t, enc.Close())

		dec := yaml.NewDecoder(&buf)
		count := 0
		for {
			var got Document
			err := dec.Decode(&got)
			if err == io.EOF {
				break
			}
			require.NoError(t, err)
			assert.Equal(t, *want, got)
			count++
		}
		assert.Equal(t, 2, count)
	})

	t.Run("msgpack", func(t *testing.T) {
		var buf bytes.Buffer
		enc, err := NewEncoder(FormatMsgpack, &buf)
		require.NoError(t, err)
		require.NoError(t, enc.Encode(rec))
		require.NoError(t, enc.Close())

		var got Document
		require.NoError(t, msgpack.Unmarshal(buf.Bytes(), &got))
		assert.Equal(t, *want, got)
	})

	t.Run("text separates records", func(t *testing.T) {
		var buf bytes.Buffer
		enc, err := NewEncoder(FormatText, &buf)
		require.NoError(t, err)
		require.NoError(t, enc.Encode(rec))
		require.NoError(t, enc.Encode(rec))
		assert.Equal(t, 1, strings.Count(buf.String(), "\n\n"))
	})
}
