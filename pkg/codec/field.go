package codec

import (
	"bytes"
	"fmt"
	"sort"
)

// FieldValue is the decoded content of one field occurrence: either a
// ControlValue (tags 00X) or a *DataField.
type FieldValue interface {
	fieldValue()
}

// ControlValue is the bare string held by a control field
type ControlValue string

func (ControlValue) fieldValue() {}

// DataField is a non-control field: two indicators and repeatable subfields
type DataField struct {
	Indicator1 byte
	Indicator2 byte
	subfields  map[byte]*Occurrences[string]
}

func (*DataField) fieldValue() {}

// NewDataField creates an empty data field with the given indicators
func NewDataField(ind1, ind2 byte) *DataField {
	return &DataField{
		Indicator1: ind1,
		Indicator2: ind2,
		subfields:  make(map[byte]*Occurrences[string]),
	}
}

// AddSubfield appends value under code and returns the field for chaining
func (f *DataField) AddSubfield(code byte, value string) *DataField {
	if f.subfields == nil {
		f.subfields = make(map[byte]*Occurrences[string])
	}
	occ, ok := f.subfields[code]
	if !ok {
		occ = &Occurrences[string]{}
		f.subfields[code] = occ
	}
	occ.add(value)
	return f
}

// Subfield returns the values recorded under code
func (f *DataField) Subfield(code byte) (Occurrences[string], bool) {
	occ, ok := f.subfields[code]
	if !ok {
		return Occurrences[string]{}, false
	}
	return *occ, true
}

// Codes returns the subfield codes present, ascending
func (f *DataField) Codes() []byte {
	codes := make([]byte, 0, len(f.subfields))
	for code := range f.subfields {
		codes = append(codes, code)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

// Equal reports whether both fields carry the same indicators and subfields
func (f *DataField) Equal(o *DataField) bool {
	if f == nil || o == nil {
		return f == o
	}
	if f.Indicator1 != o.Indicator1 || f.Indicator2 != o.Indicator2 {
		return false
	}
	if len(f.subfields) != len(o.subfields) {
		return false
	}
	for code, occ := range f.subfields {
		other, ok := o.subfields[code]
		if !ok || !equalStrings(occ.items, other.items) {
			return false
		}
	}
	return true
}

// DecodeField decodes one field's raw bytes, including its trailing
// terminator, according to the kind implied by tag.
// Control values keep subfield delimiters verbatim; a terminator inside
// any field is malformed.
func DecodeField(tag string, raw []byte) (FieldValue, error) {
	if IsControlTag(tag) {
		body := trimTerminator(raw)
		if bytes.ContainsAny(body, terminators) {
			return nil, ErrMalformedField
		}
		return ControlValue(body), nil
	}
	return DecodeDataField(raw)
}

// DecodeDataField parses indicators and subfields. Byte 2 is the slot
// before the subfield data and is skipped.
func DecodeDataField(raw []byte) (*DataField, error) {
	body := trimTerminator(raw)
	if len(body) < 2 || isDelimiter(body[0]) || isDelimiter(body[1]) {
		return nil, ErrMalformedField
	}

	f := NewDataField(body[0], body[1])
	if len(body) <= 3 {
		return f, nil
	}

	for _, chunk := range bytes.Split(body[3:], []byte{SubfieldDelimiter}) {
		if len(chunk) == 0 {
			continue
		}
		if bytes.ContainsAny(chunk, terminators) {
			return nil, ErrMalformedField
		}
		f.AddSubfield(chunk[0], string(chunk[1:]))
	}

	return f, nil
}

// EncodeField serializes a field value, appending the field terminator
func EncodeField(v FieldValue) ([]byte, error) {
	switch fv := v.(type) {
	case ControlValue:
		if bytes.ContainsAny([]byte(fv), terminators) {
			return nil, fmt.Errorf("control value contains a terminator: %w", ErrInvalidValue)
		}
		buf := make([]byte, 0, len(fv)+1)
		buf = append(buf, fv...)
		return append(buf, FieldTerminator), nil
	case *DataField:
		return fv.Encode()
	default:
		return nil, fmt.Errorf("unsupported field value %T: %w", v, ErrInvalidValue)
	}
}

// Encode serializes the field: indicators, then every subfield ordered by
// code with repeated values in their original order, then the terminator.
func (f *DataField) Encode() ([]byte, error) {
	if isDelimiter(f.Indicator1) || isDelimiter(f.Indicator2) {
		return nil, fmt.Errorf("indicator is a delimiter: %w", ErrInvalidValue)
	}

	buf := []byte{indicatorOrBlank(f.Indicator1), indicatorOrBlank(f.Indicator2)}
	for _, code := range f.Codes() {
		if isDelimiter(code) {
			return nil, fmt.Errorf("subfield code %q: %w", code, ErrInvalidValue)
		}
		for _, value := range f.subfields[code].items {
			if bytes.ContainsAny([]byte(value), delimiters) {
				return nil, fmt.Errorf("subfield %c contains a delimiter: %w", code, ErrInvalidValue)
			}
			buf = append(buf, SubfieldDelimiter, code)
			buf = append(buf, value...)
		}
	}

	return append(buf, FieldTerminator), nil
}

// IsControlTag reports whether tag names a control field (00X)
func IsControlTag(tag string) bool {
	return len(tag) >= 2 && tag[0] == '0' && tag[1] == '0'
}

func trimTerminator(raw []byte) []byte {
	if n := len(raw); n > 0 && raw[n-1] == FieldTerminator {
		return raw[:n-1]
	}
	return raw
}

func indicatorOrBlank(b byte) byte {
	if b == 0 {
		return ' '
	}
	return b
}

func isDelimiter(b byte) bool {
	return b == SubfieldDelimiter || b == FieldTerminator || b == RecordTerminator
}

func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
