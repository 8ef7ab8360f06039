package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeDirectory(t *testing.T) {
	raw := []byte("001000900000245002300009650001500032650001200047\x1etrailing data")

	entries, err := DecodeDirectory(raw, FieldTerminator)
	require.NoError(t, err)

	assert.Equal(t, []DirectoryEntry{
		{Tag: "001", Length: 9, Offset: 0},
		{Tag: "245", Length: 23, Offset: 9},
		{Tag: "650", Length: 15, Offset: 32},
		{Tag: "650", Length: 12, Offset: 47},
	}, entries)
}

func TestDecodeDirectory_Empty(t *testing.T) {
	entries, err := DecodeDirectory([]byte{FieldTerminator}, FieldTerminator)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestDecodeDirectory_Errors(t *testing.T) {
	testCases := []struct {
		name   string
		raw    []byte
		offset int
	}{
		{
			name:   "missing terminator",
			raw:    []byte("001000900000245002300009"),
			offset: 24,
		},
		{
			name:   "partial entry",
			raw:    []byte("00100090000024500\x1e"),
			offset: 17,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeDirectory(tc.raw, FieldTerminator)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrMalformedDirectory))

			var pe *ParseError
			require.True(t, errors.As(err, &pe))
			assert.Equal(t, tc.offset, pe.Offset)
		})
	}
}

func TestEncodeDirectory_SortsByTagKeepingGroupOrder(t *testing.T) {
	entries := []DirectoryEntry{
		{Tag: "650", Length: 15, Offset: 32},
		{Tag: "001", Length: 9, Offset: 0},
		{Tag: "650", Length: 12, Offset: 47},
		{Tag: "245", Length: 23, Offset: 9},
	}

	encoded, err := EncodeDirectory(entries, FieldTerminator)
	require.NoError(t, err)
	assert.Equal(t, "001000900000245002300009650001500032650001200047\x1e", string(encoded))

	decoded, err := DecodeDirectory(encoded, FieldTerminator)
	require.NoError(t, err)
	assert.Equal(t, []DirectoryEntry{entries[1], entries[3], entries[0], entries[2]}, decoded)

	// input left untouched
	assert.Equal(t, "650", entries[0].Tag)
}

func TestEncodeDirectory_Limits(t *testing.T) {
	testCases := []struct {
		name  string
		entry DirectoryEntry
		want  error
	}{
		{"field length", DirectoryEntry{Tag: "245", Length: 10000}, ErrFieldTooLong},
		{"offset", DirectoryEntry{Tag: "245", Length: 1, Offset: 100000}, ErrRecordTooLong},
		{"short tag", DirectoryEntry{Tag: "24", Length: 1}, ErrInvalidValue},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := EncodeDirectory([]DirectoryEntry{tc.entry}, FieldTerminator)
			assert.True(t, errors.Is(err, tc.want), "got %v", err)
		})
	}
}
