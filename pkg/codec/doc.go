// Package codec decodes and encodes MARC21 bibliographic records in the
// ISO 2709 binary exchange format.
//
// # Record Format
//
// A record is laid out as:
//
//	[leader(24)][directory(N*12)][FT][field data...][RT]
//
// The leader begins with the 5-digit total record length and carries the
// base address of data, which is 24 plus the directory length (including
// its terminator). Each directory entry is a 3-byte tag, a 4-digit field
// length and a 5-digit offset relative to the start of the data block.
//
// Fields:
//   - Control fields (tags 00X): raw bytes followed by FT (0x1E)
//   - Data fields: indicator1, indicator2, then repeated
//     [SD (0x1F)][code][value], then FT
//
// The record ends with RT (0x1D).
//
// # One or Many
//
// A tag that appears once in the directory is a single value; a tag that
// appears several times is repeated, in directory order. Subfield codes
// behave the same way inside a data field. Both are exposed through
// Occurrences, whose All method always yields the values in order.
//
// # Usage
//
//	c := codec.NewRecordCodec()
//
//	rec, err := c.Decode(raw)
//	if err != nil {
//	    return err
//	}
//
//	titles, ok := rec.DataField("245")
//	if ok {
//	    a, _ := titles.First().Subfield('a')
//	    fmt.Println(a.First())
//	}
//
//	out, err := c.Encode(rec)
//
// # Canonical Ordering
//
// Encode writes tags in ascending order and subfield codes in ascending
// order within each field; repeated values keep their original order.
// Decode(Encode(r)) is field-for-field equal to r. Byte-identical output
// is only guaranteed for input produced by an encoder that sorts the same
// way.
//
// # Error Handling
//
// Numeric leader and directory slots that are not plain digits decode as
// zero. Structural failures are reported as *ParseError values carrying
// the byte offset and tag under examination, wrapping one of
// ErrMalformedLeader, ErrMalformedDirectory, ErrMalformedField,
// ErrTruncatedRecord or ErrMalformedRecord. Use errors.Is to test the kind.
package codec
