package render

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"gopkg.in/yaml.v3"

	"github.com/ssargent/marcdb/pkg/codec"
)

// Supported output formats
const (
	FormatText    = "text"
	FormatJSON    = "json"
	FormatYAML    = "yaml"
	FormatMsgpack = "msgpack"
)

// Encoder writes a stream of records in one output format
type Encoder interface {
	Encode(rec *codec.Record) error
	Close() error
}

// Formats lists the names accepted by NewEncoder
func Formats() []string {
	return []string{FormatText, FormatJSON, FormatYAML, FormatMsgpack}
}

// NewEncoder returns an encoder for format writing to w. Close flushes any
// trailing output but never closes w.
func NewEncoder(format string, w io.Writer) (Encoder, error) {
	switch strings.ToLower(format) {
	case FormatText, "":
		return &textEncoder{w: w}, nil
	case FormatJSON:
		return &jsonEncoder{enc: json.NewEncoder(w)}, nil
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		return &yamlEncoder{enc: enc}, nil
	case FormatMsgpack:
		return &msgpackEncoder{enc: msgpack.NewEncoder(w)}, nil
	default:
		return nil, fmt.Errorf("unsupported format %q (want one of %s)", format, strings.Join(Formats(), ", "))
	}
}

type textEncoder struct {
	w       io.Writer
	written bool
}

func (e *textEncoder) Encode(rec *codec.Record) error {
	if e.written {
		if _, err := io.WriteString(e.w, "\n"); err != nil {
			return err
		}
	}
	e.written = true
	return WriteText(e.w, rec)
}

func (e *textEncoder) Close() error { return nil }

// jsonEncoder emits one document per line
type jsonEncoder struct {
	enc *json.Encoder
}

func (e *jsonEncoder) Encode(rec *codec.Record) error {
	return e.enc.Encode(ToDocument(rec))
}

func (e *jsonEncoder) Close() error { return nil }

// yamlEncoder emits a multi-document stream
type yamlEncoder struct {
	enc *yaml.Encoder
}

func (e *yamlEncoder) Encode(rec *codec.Record) error {
	return e.enc.Encode(ToDocument(rec))
}

func (e *yamlEncoder) Close() error {
	return e.enc.Close()
}

type msgpackEncoder struct {
	enc *msgpack.Encoder
}

func (e *msgpackEncoder) Encode(rec *codec.Record) error {
	return e.enc.Encode(ToDocument(rec))
}

func (e *msgpackEncoder) Close() error { return nil }
