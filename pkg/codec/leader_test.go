package codec

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDecodeLeader(t *testing.T) {
	leader, err := DecodeLeader([]byte("00123nam a2200061   4500"))
	require.NoError(t, err)

	assert.Equal(t, 123, leader.RecordLength)
	assert.Equal(t, "n", leader.RecordStatus)
	assert.Equal(t, "a", leader.TypeOfRecord)
	assert.Equal(t, "m ", leader.ImplementationDefined1)
	assert.Equal(t, "a", leader.CharacterCodingScheme)
	assert.Equal(t, 2, leader.IndicatorCount)
	assert.Equal(t, 2, leader.SubfieldCodeLength)
	assert.Equal(t, 61, leader.BaseAddressOfData)
	assert.Equal(t, "   ", leader.ImplementationDefined2)
	assert.Equal(t, "4500", leader.EntryMap)
}

func TestDecodeLeader_NonNumericSlotsDegradeToZero(t *testing.T) {
	leader, err := DecodeLeader([]byte("0x123nam aZZ0006a   4500"))
	require.NoError(t, err)

	assert.Equal(t, 0, leader.RecordLength)
	assert.Equal(t, 0, leader.IndicatorCount)
	assert.Equal(t, 0, leader.SubfieldCodeLength)
	assert.Equal(t, 0, leader.BaseAddressOfData)
	assert.Equal(t, "4500", leader.EntryMap)
}

func TestDecodeLeader_TooShort(t *testing.T) {
	_, err := DecodeLeader([]byte("00123nam"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedLeader))

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 8, pe.Offset)
}

func TestDecodeLeader_RejectsNonASCII(t *testing.T) {
	raw := []byte("00123nam a2200049   4500")
	raw[7] = 0xC3

	_, err := DecodeLeader(raw)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrMalformedLeader))

	var pe *ParseError
	require.True(t, errors.As(err, &pe))
	assert.Equal(t, 7, pe.Offset)
}

func TestLeader_EncodeRejectsNonASCII(t *testing.T) {
	leader := NewLeader()
	leader.ImplementationDefined1 = "é"

	_, err := leader.Encode()
	assert.True(t, errors.Is(err, ErrInvalidValue), "got %v", err)
	assert.Empty(t, leader.String())
}

func TestLeader_EncodeRoundTrip(t *testing.T) {
	testCases := []struct {
		name   string
		leader Leader
		want   string
	}{
		{
			name: "typical book",
			leader: Leader{
				RecordLength:           123,
				RecordStatus:           "n",
				TypeOfRecord:           "a",
				ImplementationDefined1: "m ",
				CharacterCodingScheme:  "a",
				IndicatorCount:         2,
				SubfieldCodeLength:     2,
				BaseAddressOfData:      61,
				ImplementationDefined2: "   ",
				EntryMap:               "4500",
			},
			want: "00123nam a2200061   4500",
		},
		{
			name:   "defaults",
			leader: NewLeader(),
			want:   "00000     2200000   4500",
		},
		{
			name: "maximum lengths",
			leader: Leader{
				RecordLength:           99999,
				RecordStatus:           "c",
				TypeOfRecord:           "j",
				ImplementationDefined1: "am",
				CharacterCodingScheme:  " ",
				IndicatorCount:         2,
				SubfieldCodeLength:     2,
				BaseAddressOfData:      99999,
				ImplementationDefined2: "4a ",
				EntryMap:               "4500",
			},
			want: "99999cjam 22999994a 4500",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			encoded, err := tc.leader.Encode()
			require.NoError(t, err)
			assert.Len(t, encoded, LeaderSize)
			assert.Equal(t, tc.want, string(encoded))

			decoded, err := DecodeLeader(encoded)
			require.NoError(t, err)
			assert.Equal(t, tc.leader, decoded)
		})
	}
}

func TestLeader_EncodePadsAndTruncates(t *testing.T) {
	leader := NewLeader()
	leader.RecordStatus = "nXYZ"
	leader.ImplementationDefined1 = "m"
	leader.EntryMap = "45"

	encoded, err := leader.Encode()
	require.NoError(t, err)
	assert.Equal(t, "00000n m  2200000   45  ", string(encoded))
	assert.Equal(t, string(encoded), leader.String())
}

func TestLeader_EncodeOverflow(t *testing.T) {
	t.Run("record length", func(t *testing.T) {
		leader := NewLeader()
		leader.RecordLength = 100000
		_, err := leader.Encode()
		assert.True(t, errors.Is(err, ErrRecordTooLong))
		assert.Empty(t, leader.String())
	})

	t.Run("indicator count", func(t *testing.T) {
		leader := NewLeader()
		leader.IndicatorCount = 10
		_, err := leader.Encode()
		assert.True(t, errors.Is(err, ErrInvalidValue))
	})
}
