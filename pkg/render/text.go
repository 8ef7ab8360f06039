package render

import (
	"bufio"
	"fmt"
	"io"

	"github.com/ssargent/marcdb/pkg/codec"
)

// WriteText pretty-prints a record. Each field occurrence starts with its
// tag on a line of its own; control values and subfields follow indented
// by a tab.
//
//	245
//		a : Title of the Book
//		c : by Someone
func WriteText(w io.Writer, rec *codec.Record) error {
	bw := bufio.NewWriter(w)

	for _, field := range ToDocument(rec).Fields {
		fmt.Fprintln(bw, field.Tag)
		if codec.IsControlTag(field.Tag) {
			fmt.Fprintf(bw, "\t%s\n", field.Value)
			continue
		}
		for _, sf := range field.Subfields {
			fmt.Fprintf(bw, "\t%s : %s\n", sf.Code, sf.Value)
		}
	}

	return bw.Flush()
}
