package batch

import (
	"strings"
	"unicode"

	"github.com/ssargent/marcdb/pkg/codec"
)

// trailingPunctuation is removed from the end of flattened values
const trailingPunctuation = ":-;,/=."

// Flatten returns a flat view of a record: control fields are keyed by tag,
// subfields by tag followed by code (e.g. "245a"). Values keep record order
// and are passed through Strip.
func Flatten(rec *codec.Record) map[string][]string {
	flat := make(map[string][]string)
	if rec == nil {
		return flat
	}

	for _, tag := range rec.Tags() {
		if values, ok := rec.ControlField(tag); ok {
			for _, v := range values.All() {
				flat[tag] = append(flat[tag], Strip(v))
			}
			continue
		}

		fields, ok := rec.DataField(tag)
		if !ok {
			continue
		}
		for _, field := range fields.All() {
			for _, code := range field.Codes() {
				key := tag + string([]byte{code})
				values, _ := field.Subfield(code)
				for _, v := range values.All() {
					flat[key] = append(flat[key], Strip(v))
				}
			}
		}
	}

	return flat
}

// Strip removes a trailing run of cataloguing punctuation together with any
// whitespace before it, or trailing whitespace when there is no punctuation.
func Strip(s string) string {
	s = strings.TrimRight(s, trailingPunctuation)
	return strings.TrimRightFunc(s, unicode.IsSpace)
}
