package codec

import (
	"bytes"
	"fmt"
	"sort"
)

// DirectoryEntrySize is the width of one directory entry: tag(3) length(4) offset(5)
const DirectoryEntrySize = 12

// DirectoryEntry locates one field occurrence inside the data block
type DirectoryEntry struct {
	Tag    string
	Length int // field length including its terminator
	Offset int // relative to the start of the data block
}

// DecodeDirectory consumes 12-byte entries up to the first terminator byte.
func DecodeDirectory(data []byte, terminator byte) ([]DirectoryEntry, error) {
	end := bytes.IndexByte(data, terminator)
	if end < 0 {
		return nil, &ParseError{Offset: len(data), Err: ErrMalformedDirectory}
	}
	if end%DirectoryEntrySize != 0 {
		return nil, &ParseError{Offset: end, Err: ErrMalformedDirectory}
	}

	entries := make([]DirectoryEntry, 0, end/DirectoryEntrySize)
	for pos := 0; pos < end; pos += DirectoryEntrySize {
		raw := data[pos : pos+DirectoryEntrySize]
		entries = append(entries, DirectoryEntry{
			Tag:    string(raw[0:3]),
			Length: safeInt(raw[3:7]),
			Offset: safeInt(raw[7:12]),
		})
	}

	return entries, nil
}

// EncodeDirectory writes entries grouped by tag in ascending order, keeping
// the original order of entries that share a tag, followed by terminator.
func EncodeDirectory(entries []DirectoryEntry, terminator byte) ([]byte, error) {
	sorted := make([]DirectoryEntry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Tag < sorted[j].Tag
	})

	buf := make([]byte, 0, len(sorted)*DirectoryEntrySize+1)
	for _, e := range sorted {
		if len(e.Tag) != 3 {
			return nil, fmt.Errorf("directory tag %q: %w", e.Tag, ErrInvalidValue)
		}
		if e.Length < 0 || e.Length > maxFieldLength {
			return nil, fmt.Errorf("field %s length %d: %w", e.Tag, e.Length, ErrFieldTooLong)
		}
		if e.Offset < 0 || e.Offset > maxRecordLength {
			return nil, fmt.Errorf("field %s offset %d: %w", e.Tag, e.Offset, ErrRecordTooLong)
		}
		buf = append(buf, e.Tag...)
		buf = append(buf, fmt.Sprintf("%04d%05d", e.Length, e.Offset)...)
	}
	buf = append(buf, terminator)

	return buf, nil
}
