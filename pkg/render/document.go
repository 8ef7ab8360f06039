// Package render turns decoded records into human readable text and into
// documents for JSON, YAML and MessagePack output.
package render

import (
	"github.com/ssargent/marcdb/pkg/codec"
)

// Document is an ordered, serialization friendly view of a record
type Document struct {
	Leader string  `json:"leader" yaml:"leader" msgpack:"leader"`
	Fields []Field `json:"fields" yaml:"fields" msgpack:"fields"`
}

// Field is one field occurrence. Control fields carry Value, data fields
// carry indicators and subfields.
type Field struct {
	Tag        string     `json:"tag" yaml:"tag" msgpack:"tag"`
	Value      string     `json:"value,omitempty" yaml:"value,omitempty" msgpack:"value,omitempty"`
	Indicator1 string     `json:"ind1,omitempty" yaml:"ind1,omitempty" msgpack:"ind1,omitempty"`
	Indicator2 string     `json:"ind2,omitempty" yaml:"ind2,omitempty" msgpack:"ind2,omitempty"`
	Subfields  []Subfield `json:"subfields,omitempty" yaml:"subfields,omitempty" msgpack:"subfields,omitempty"`
}

// Subfield is a single code/value pair
type Subfield struct {
	Code  string `json:"code" yaml:"code" msgpack:"code"`
	Value string `json:"value" yaml:"value" msgpack:"value"`
}

// ToDocument builds a Document with tags ascending, occurrences in record
// order and subfields ordered by code
func ToDocument(rec *codec.Record) *Document {
	doc := &Document{Fields: []Field{}}
	if rec == nil {
		return doc
	}

	// lengths are recomputed on encode, so report the encoded form
	doc.Leader = encodedLeader(rec)

	for _, tag := range rec.Tags() {
		if values, ok := rec.ControlField(tag); ok {
			for _, v := range values.All() {
				doc.Fields = append(doc.Fields, Field{Tag: tag, Value: v})
			}
			continue
		}

		fields, _ := rec.DataField(tag)
		for _, f := range fields.All() {
			out := Field{
				Tag:        tag,
				Indicator1: string([]byte{f.Indicator1}),
				Indicator2: string([]byte{f.Indicator2}),
			}
			for _, code := range f.Codes() {
				values, _ := f.Subfield(code)
				for _, v := range values.All() {
					out.Subfields = append(out.Subfields, Subfield{Code: string([]byte{code}), Value: v})
				}
			}
			doc.Fields = append(doc.Fields, out)
		}
	}

	return doc
}

func encodedLeader(rec *codec.Record) string {
	data, err := codec.NewRecordCodec().Encode(rec)
	if err != nil {
		return rec.Leader.String()
	}
	return string(data[:codec.LeaderSize])
}
