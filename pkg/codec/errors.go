package codec

import "fmt"

// Errors
var (
	ErrMalformedLeader    = &MARCError{"malformed leader"}
	ErrMalformedDirectory = &MARCError{"malformed directory"}
	ErrMalformedField     = &MARCError{"malformed field"}
	ErrTruncatedRecord    = &MARCError{"truncated record"}
	ErrMalformedRecord    = &MARCError{"malformed record"}
	ErrFieldTooLong       = &MARCError{"field too long"}
	ErrRecordTooLong      = &MARCError{"record too long"}
	ErrInvalidValue       = &MARCError{"invalid value"}
)

// MARCError represents a codec error kind
type MARCError struct {
	Message string
}

func (e *MARCError) Error() string {
	return e.Message
}

// ParseError carries the position at which decoding a record failed.
// Offset is relative to the start of the record; Tag is empty when the
// failure happened before any field was examined.
type ParseError struct {
	Offset int
	Tag    string
	Err    error
}

func (e *ParseError) Error() string {
	if e.Tag != "" {
		return fmt.Sprintf("%v at offset %d (tag %s)", e.Err, e.Offset, e.Tag)
	}
	return fmt.Sprintf("%v at offset %d", e.Err, e.Offset)
}

func (e *ParseError) Unwrap() error {
	return e.Err
}
