package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeField_Control(t *testing.T) {
	v, err := DecodeField("001", []byte("ocm12345\x1e"))
	require.NoError(t, err)
	assert.Equal(t, ControlValue("ocm12345"), v)
}

func TestDecodeField_ControlKeepsDelimiterLookalikes(t *testing.T) {
	// no indicator or subfield parsing for control tags
	v, err := DecodeField("008", []byte("10\x1fa\x1e"))
	require.NoError(t, err)
	assert.Equal(t, ControlValue("10\x1fa"), v)

	encoded, err := EncodeField(v)
	require.NoError(t, err)
	assert.Equal(t, "10\x1fa\x1e", string(encoded))
}

func TestDecodeField_RejectsEmbeddedTerminators(t *testing.T) {
	testCases := []struct {
		name string
		tag  string
		raw  string
	}{
		{"control with record terminator", "008", "ab\x1dc\x1e"},
		{"control with field terminator", "001", "ab\x1ec\x1e"},
		{"subfield with record terminator", "245", "10\x1faT\x1d\x1e"},
		{"subfield with field terminator", "245", "10\x1faT\x1e\x1fbU\x1e"},
		{"terminator as code", "245", "10\x1f\x1dx\x1e"},
		{"delimiter as indicator", "245", "\x1f0\x1faT\x1e"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeField(tc.tag, []byte(tc.raw))
			assert.True(t, errors.Is(err, ErrMalformedField), "got %v", err)
		})
	}
}

func TestDecodeDataField(t *testing.T) {
	f, err := DecodeDataField([]byte("10\x1faTitle of the Book\x1e"))
	require.NoError(t, err)

	assert.Equal(t, byte('1'), f.Indicator1)
	assert.Equal(t, byte('0'), f.Indicator2)
	assert.Equal(t, []byte{'a'}, f.Codes())

	a, ok := f.Subfield('a')
	require.True(t, ok)
	single, ok := a.Single()
	require.True(t, ok)
	assert.Equal(t, "Title of the Book", single)
}

func TestDecodeDataField_ValuesAreVerbatim(t *testing.T) {
	f, err := DecodeDataField([]byte("10\x1fa Title of the Book /\x1e"))
	require.NoError(t, err)

	a, _ := f.Subfield('a')
	assert.Equal(t, " Title of the Book /", a.First())
}

func TestDecodeDataField_RepeatedSubfields(t *testing.T) {
	f, err := DecodeDataField([]byte(" 0\x1faHistory\x1fxSources\x1fzFrance\x1fxPeriodicals\x1e"))
	require.NoError(t, err)

	x, ok := f.Subfield('x')
	require.True(t, ok)
	assert.True(t, x.IsRepeated())
	assert.Equal(t, []string{"Sources", "Periodicals"}, x.All())

	_, single := x.Single()
	assert.False(t, single)

	z, ok := f.Subfield('z')
	require.True(t, ok)
	assert.False(t, z.IsRepeated())
	assert.Equal(t, []string{"France"}, z.All())

	_, ok = f.Subfield('q')
	assert.False(t, ok)
}

func TestDecodeDataField_EdgeCases(t *testing.T) {
	t.Run("no subfields", func(t *testing.T) {
		f, err := DecodeDataField([]byte("10\x1e"))
		require.NoError(t, err)
		assert.Empty(t, f.Codes())
	})

	t.Run("empty chunks skipped", func(t *testing.T) {
		f, err := DecodeDataField([]byte("10\x1fafoo\x1f\x1fbbar\x1f\x1e"))
		require.NoError(t, err)
		assert.Equal(t, []byte{'a', 'b'}, f.Codes())
	})

	t.Run("code without value", func(t *testing.T) {
		f, err := DecodeDataField([]byte("10\x1fa\x1e"))
		require.NoError(t, err)
		a, ok := f.Subfield('a')
		require.True(t, ok)
		assert.Equal(t, "", a.First())
	})

	t.Run("too short", func(t *testing.T) {
		_, err := DecodeDataField([]byte("1\x1e"))
		assert.True(t, errors.Is(err, ErrMalformedField))
	})
}

func TestDataField_EncodeSortsCodes(t *testing.T) {
	f := NewDataField(' ', '0').
		AddSubfield('x', "Sources").
		AddSubfield('a', "History").
		AddSubfield('x', "Periodicals")

	encoded, err := f.Encode()
	require.NoError(t, err)
	assert.Equal(t, " 0\x1faHistory\x1fxSources\x1fxPeriodicals\x1e", string(encoded))
}

func TestDataField_EncodeDecodeRoundTrip(t *testing.T) {
	testCases := []struct {
		name  string
		field *DataField
	}{
		{"no subfields", NewDataField('1', '4')},
		{"one subfield", NewDataField('1', '0').AddSubfield('a', "Moby Dick")},
		{"repeated subfield", NewDataField(' ', ' ').AddSubfield('a', "one").AddSubfield('a', "two").AddSubfield('a', "three")},
		{"mixed", NewDataField('0', '0').AddSubfield('a', "x").AddSubfield('6', "880-01").AddSubfield('b', "y").AddSubfield('b', "z")},
		{"unicode", NewDataField('1', '0').AddSubfield('a', "Ἰλιάς").AddSubfield('c', "Ὅμηρος")},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := tc.field.Encode()
			require.NoError(t, err)

			v, err := DecodeField("245", encoded)
			require.NoError(t, err)
			decoded, ok := v.(*DataField)
			require.True(t, ok)
			assert.True(t, tc.field.Equal(decoded))
		})
	}
}

func TestEncodeField_RejectsDelimiters(t *testing.T) {
	testCases := []struct {
		name  string
		value FieldValue
	}{
		{"control with terminator", ControlValue("abc\x1edef")},
		{"subfield with delimiter", NewDataField('1', '0').AddSubfield('a', "a\x1fb")},
		{"delimiter as code", NewDataField('1', '0').AddSubfield(SubfieldDelimiter, "x")},
		{"delimiter as indicator", NewDataField(FieldTerminator, '0')},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := EncodeField(tc.value)
			assert.True(t, errors.Is(err, ErrInvalidValue), "got %v", err)
		})
	}
}

func TestEncodeField_BlankIndicators(t *testing.T) {
	encoded, err := EncodeField(&DataField{})
	require.NoError(t, err)
	assert.Equal(t, "  \x1e", string(encoded))
}

func TestIsControlTag(t *testing.T) {
	assert.True(t, IsControlTag("001"))
	assert.True(t, IsControlTag("008"))
	assert.False(t, IsControlTag("010"))
	assert.False(t, IsControlTag("245"))
	assert.False(t, IsControlTag("0"))
}
