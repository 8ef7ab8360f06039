package codec

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
)

// Structural bytes of the ISO 2709 layout
const (
	SubfieldDelimiter byte = 0x1F
	FieldTerminator   byte = 0x1E
	RecordTerminator  byte = 0x1D

	delimiters  = "\x1d\x1e\x1f"
	terminators = "\x1d\x1e"

	maxFieldLength  = 9999
	maxRecordLength = 99999
)

// Record is a decoded MARC21 record: a leader plus fields keyed by tag.
// Control tags (00X) hold ControlValue occurrences; all other tags hold
// *DataField occurrences.
type Record struct {
	Leader  Leader
	control map[string]*Occurrences[string]
	data    map[string]*Occurrences[*DataField]
}

// NewRecord creates an empty record with the default leader
func NewRecord() *Record {
	return &Record{
		Leader:  NewLeader(),
		control: make(map[string]*Occurrences[string]),
		data:    make(map[string]*Occurrences[*DataField]),
	}
}

// AddControlField appends a control field occurrence under tag
func (r *Record) AddControlField(tag, value string) error {
	if len(tag) != 3 || !IsControlTag(tag) {
		return fmt.Errorf("tag %q cannot hold a control value: %w", tag, ErrMalformedRecord)
	}
	if r.control == nil {
		r.control = make(map[string]*Occurrences[string])
	}
	occ, ok := r.control[tag]
	if !ok {
		occ = &Occurrences[string]{}
		r.control[tag] = occ
	}
	occ.add(value)
	return nil
}

// AddDataField appends a data field occurrence under tag
func (r *Record) AddDataField(tag string, f *DataField) error {
	if len(tag) != 3 || IsControlTag(tag) {
		return fmt.Errorf("tag %q cannot hold a data field: %w", tag, ErrMalformedRecord)
	}
	if f == nil {
		return fmt.Errorf("tag %s: nil data field: %w", tag, ErrMalformedRecord)
	}
	if r.data == nil {
		r.data = make(map[string]*Occurrences[*DataField])
	}
	occ, ok := r.data[tag]
	if !ok {
		occ = &Occurrences[*DataField]{}
		r.data[tag] = occ
	}
	occ.add(f)
	return nil
}

// Add appends a decoded field value under tag, rejecting a value whose kind
// does not match the tag.
func (r *Record) Add(tag string, v FieldValue) error {
	switch fv := v.(type) {
	case ControlValue:
		return r.AddControlField(tag, string(fv))
	case *DataField:
		return r.AddDataField(tag, fv)
	default:
		return fmt.Errorf("tag %s: unsupported value %T: %w", tag, v, ErrMalformedRecord)
	}
}

// Tags returns every tag present, ascending
func (r *Record) Tags() []string {
	tags := make([]string, 0, len(r.control)+len(r.data))
	for tag := range r.control {
		tags = append(tags, tag)
	}
	for tag := range r.data {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}

// Has reports whether tag is present
func (r *Record) Has(tag string) bool {
	if _, ok := r.control[tag]; ok {
		return true
	}
	_, ok := r.data[tag]
	return ok
}

// ControlField returns the control values under tag
func (r *Record) ControlField(tag string) (Occurrences[string], bool) {
	occ, ok := r.control[tag]
	if !ok {
		return Occurrences[string]{}, false
	}
	return *occ, true
}

// DataField returns the data fields under tag
func (r *Record) DataField(tag string) (Occurrences[*DataField], bool) {
	occ, ok := r.data[tag]
	if !ok {
		return Occurrences[*DataField]{}, false
	}
	return *occ, true
}

// Field returns the occurrences under tag as field values, so either kind
// can be walked uniformly.
func (r *Record) Field(tag string) (Occurrences[FieldValue], bool) {
	if occ, ok := r.control[tag]; ok {
		out := Occurrences[FieldValue]{}
		for _, v := range occ.items {
			out.add(ControlValue(v))
		}
		return out, true
	}
	if occ, ok := r.data[tag]; ok {
		out := Occurrences[FieldValue]{}
		for _, f := range occ.items {
			out.add(f)
		}
		return out, true
	}
	return Occurrences[FieldValue]{}, false
}

// ControlNumber returns the first 001 value, or "" when absent
func (r *Record) ControlNumber() string {
	occ, ok := r.control["001"]
	if !ok {
		return ""
	}
	return occ.First()
}

// Equal compares the leader's content slots and every field. The derived
// record length and base address are ignored.
func (r *Record) Equal(o *Record) bool {
	if r == nil || o == nil {
		return r == o
	}
	a, b := r.Leader, o.Leader
	a.RecordLength, a.BaseAddressOfData = 0, 0
	b.RecordLength, b.BaseAddressOfData = 0, 0
	if a != b {
		return false
	}
	if len(r.control) != len(o.control) || len(r.data) != len(o.data) {
		return false
	}
	for tag, occ := range r.control {
		other, ok := o.control[tag]
		if !ok || !equalStrings(occ.items, other.items) {
			return false
		}
	}
	for tag, occ := range r.data {
		other, ok := o.data[tag]
		if !ok || len(occ.items) != len(other.items) {
			return false
		}
		for i := range occ.items {
			if !occ.items[i].Equal(other.items[i]) {
				return false
			}
		}
	}
	return true
}

// RecordCodec handles serialization and deserialization of MARC21 records
type RecordCodec struct{}

// NewRecordCodec creates a new record codec instance
func NewRecordCodec() *RecordCodec {
	return &RecordCodec{}
}

// Decode parses one complete record: leader, directory, then every field
// the directory points at. Repeated tags accumulate in directory order.
func (c *RecordCodec) Decode(data []byte) (*Record, error) {
	leader, err := DecodeLeader(data)
	if err != nil {
		return nil, err
	}

	entries, err := DecodeDirectory(data[LeaderSize:], FieldTerminator)
	if err != nil {
		var pe *ParseError
		if errors.As(err, &pe) {
			pe.Offset += LeaderSize
		}
		return nil, err
	}

	dirEnd := LeaderSize + len(entries)*DirectoryEntrySize + 1
	base := leader.BaseAddressOfData
	if base == 0 {
		base = dirEnd
	}
	if base < dirEnd {
		return nil, &ParseError{Offset: 12, Err: ErrMalformedLeader}
	}

	// Fields end before the record terminator
	blockEnd := len(data)
	if blockEnd > 0 && data[blockEnd-1] == RecordTerminator {
		blockEnd--
	}
	if base > blockEnd {
		return nil, &ParseError{Offset: base, Err: ErrTruncatedRecord}
	}

	r := NewRecord()
	r.Leader = leader
	for _, e := range entries {
		start := base + e.Offset
		end := start + e.Length
		if end > blockEnd {
			return nil, &ParseError{Offset: start, Tag: e.Tag, Err: ErrTruncatedRecord}
		}

		v, err := DecodeField(e.Tag, data[start:end])
		if err != nil {
			return nil, &ParseError{Offset: start, Tag: e.Tag, Err: err}
		}
		if err := r.Add(e.Tag, v); err != nil {
			return nil, &ParseError{Offset: start, Tag: e.Tag, Err: ErrMalformedRecord}
		}
	}

	return r, nil
}

// Encode serializes a record, recomputing the directory and the leader's
// record length and base address from the current field contents.
// Format: [leader(24)][directory(N*12)][FT][fields...][RT]
func (c *RecordCodec) Encode(r *Record) ([]byte, error) {
	var body bytes.Buffer
	entries := make([]DirectoryEntry, 0, len(r.control)+len(r.data))

	for _, tag := range r.Tags() {
		occ, _ := r.Field(tag)
		for _, v := range occ.items {
			encoded, err := EncodeField(v)
			if err != nil {
				return nil, fmt.Errorf("field %s: %w", tag, err)
			}
			entries = append(entries, DirectoryEntry{
				Tag:    tag,
				Length: len(encoded),
				Offset: body.Len(),
			})
			body.Write(encoded)
		}
	}
	body.WriteByte(RecordTerminator)

	directory, err := EncodeDirectory(entries, FieldTerminator)
	if err != nil {
		return nil, err
	}

	leader := r.Leader
	leader.BaseAddressOfData = LeaderSize + len(directory)
	leader.RecordLength = leader.BaseAddressOfData + body.Len()
	header, err := leader.Encode()
	if err != nil {
		return nil, err
	}

	buf := make([]byte, 0, leader.RecordLength)
	buf = append(buf, header...)
	buf = append(buf, directory...)
	buf = append(buf, body.Bytes()...)
	return buf, nil
}
