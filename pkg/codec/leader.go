package codec

import (
	"fmt"
	"strings"
	"unicode/utf8"
)

// LeaderSize is the fixed width of a MARC21 leader
const LeaderSize = 24

// Leader is the fixed-width descriptor at the start of every record
type Leader struct {
	RecordLength           int    // [0:5] total record length
	RecordStatus           string // [5]
	TypeOfRecord           string // [6]
	ImplementationDefined1 string // [7:9]
	CharacterCodingScheme  string // [9]
	IndicatorCount         int    // [10]
	SubfieldCodeLength     int    // [11]
	BaseAddressOfData      int    // [12:17] 24 + directory length
	ImplementationDefined2 string // [17:20]
	EntryMap               string // [20:24]
}

// NewLeader returns a leader populated with the MARC21 defaults
func NewLeader() Leader {
	return Leader{
		RecordStatus:           " ",
		TypeOfRecord:           " ",
		ImplementationDefined1: "  ",
		CharacterCodingScheme:  " ",
		IndicatorCount:         2,
		SubfieldCodeLength:     2,
		ImplementationDefined2: "   ",
		EntryMap:               "4500",
	}
}

// DecodeLeader parses the first 24 bytes of data, which must be ASCII.
// Numeric slots that are not plain decimal digits decode to 0.
func DecodeLeader(data []byte) (Leader, error) {
	if len(data) < LeaderSize {
		return Leader{}, &ParseError{Offset: len(data), Err: ErrMalformedLeader}
	}
	for i, c := range data[:LeaderSize] {
		if c >= utf8.RuneSelf {
			return Leader{}, &ParseError{Offset: i, Err: ErrMalformedLeader}
		}
	}

	return Leader{
		RecordLength:           safeInt(data[0:5]),
		RecordStatus:           string(data[5:6]),
		TypeOfRecord:           string(data[6:7]),
		ImplementationDefined1: string(data[7:9]),
		CharacterCodingScheme:  string(data[9:10]),
		IndicatorCount:         safeInt(data[10:11]),
		SubfieldCodeLength:     safeInt(data[11:12]),
		BaseAddressOfData:      safeInt(data[12:17]),
		ImplementationDefined2: string(data[17:20]),
		EntryMap:               string(data[20:24]),
	}, nil
}

// Encode serializes the leader into exactly 24 bytes.
// Format: [length(5)][status(1)][type(1)][impl1(2)][coding(1)][ind(1)][sub(1)][base(5)][impl2(3)][map(4)]
func (l Leader) Encode() ([]byte, error) {
	if l.RecordLength < 0 || l.RecordLength > maxRecordLength {
		return nil, fmt.Errorf("record length %d: %w", l.RecordLength, ErrRecordTooLong)
	}
	if l.BaseAddressOfData < 0 || l.BaseAddressOfData > maxRecordLength {
		return nil, fmt.Errorf("base address %d: %w", l.BaseAddressOfData, ErrRecordTooLong)
	}
	if l.IndicatorCount < 0 || l.IndicatorCount > 9 {
		return nil, fmt.Errorf("indicator count %d: %w", l.IndicatorCount, ErrInvalidValue)
	}
	if l.SubfieldCodeLength < 0 || l.SubfieldCodeLength > 9 {
		return nil, fmt.Errorf("subfield code length %d: %w", l.SubfieldCodeLength, ErrInvalidValue)
	}
	for _, slot := range []string{l.RecordStatus, l.TypeOfRecord, l.ImplementationDefined1,
		l.CharacterCodingScheme, l.ImplementationDefined2, l.EntryMap} {
		if !isASCII(slot) {
			return nil, fmt.Errorf("leader slot %q is not ASCII: %w", slot, ErrInvalidValue)
		}
	}

	var b strings.Builder
	b.Grow(LeaderSize)
	fmt.Fprintf(&b, "%05d", l.RecordLength)
	b.WriteString(fixedWidth(l.RecordStatus, 1))
	b.WriteString(fixedWidth(l.TypeOfRecord, 1))
	b.WriteString(fixedWidth(l.ImplementationDefined1, 2))
	b.WriteString(fixedWidth(l.CharacterCodingScheme, 1))
	fmt.Fprintf(&b, "%01d%01d", l.IndicatorCount, l.SubfieldCodeLength)
	fmt.Fprintf(&b, "%05d", l.BaseAddressOfData)
	b.WriteString(fixedWidth(l.ImplementationDefined2, 3))
	b.WriteString(fixedWidth(l.EntryMap, 4))

	return []byte(b.String()), nil
}

// String returns the leader in its 24-character wire form, or an empty
// string when a numeric slot does not fit.
func (l Leader) String() string {
	b, err := l.Encode()
	if err != nil {
		return ""
	}
	return string(b)
}

// fixedWidth truncates s to width bytes, padding with spaces on the right.
// Slots are ASCII, so bytes and characters coincide.
func fixedWidth(s string, width int) string {
	if len(s) >= width {
		return s[:width]
	}
	return s + strings.Repeat(" ", width-len(s))
}

// safeInt parses an unsigned decimal with leading zeros, returning 0 when
// any byte is not a digit.
func safeInt(b []byte) int {
	if len(b) == 0 {
		return 0
	}
	n := 0
	for _, c := range b {
		if c < '0' || c > '9' {
			return 0
		}
		n = n*10 + int(c-'0')
	}
	return n
}

func isASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] >= utf8.RuneSelf {
			return false
		}
	}
	return true
}
