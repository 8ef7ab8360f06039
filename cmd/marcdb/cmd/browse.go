/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kballard/go-shellquote"
	"github.com/spf13/cobra"

	"github.com/ssargent/marcdb/pkg/codec"
	"github.com/ssargent/marcdb/pkg/render"
	"github.com/ssargent/marcdb/pkg/store"
)

const browseHelp = `Commands:
  next [n]     read the next n records (default 1) and show the last one
  rewind [n]   move back n records (default 1)
  show         show the current record again
  tags         list the tags of the current record
  pos          print the record position and byte offset
  help         show this help
  exit, quit   leave the browser`

// browseCmd represents the browse command
var browseCmd = &cobra.Command{
	Use:   "browse <file>",
	Short: "Step through a MARC file interactively",
	Long: `Open a MARC file and step forwards and backwards through its records from an
interactive prompt. Type 'help' at the prompt for the list of commands.

Examples:
  marcdb browse records.mrc
  marcdb browse records.mrc --offset 10240`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if args[0] == stdinPath {
			return fmt.Errorf("browse needs a file; standard input cannot be rewound")
		}
		app := appFrom(cmd)
		readerConfig, _ := readerSettings(cmd, app.config)

		reader, err := openSource(args[0], readerConfig)
		if err != nil {
			return err
		}
		defer reader.Close()

		cmd.Printf("Browsing %s\n", args[0])
		cmd.Println("Type commands. 'help' for information or 'exit' to quit.")
		return runBrowser(reader, cmd.InOrStdin(), cmd.OutOrStdout())
	},
}

func init() {
	rootCmd.AddCommand(browseCmd)
	browseCmd.Flags().Int64("offset", 0, "Byte offset of the first record to read")
	browseCmd.Flags().Int("buffer-size", 0, "Read buffer size in bytes (overrides config)")
}

// browser holds the REPL state
type browser struct {
	reader  *store.RecordReader
	out     io.Writer
	current *codec.Record
}

// runBrowser reads commands from in until exit or end of input
func runBrowser(reader *store.RecordReader, in io.Reader, out io.Writer) error {
	b := &browser{reader: reader, out: out}
	scanner := bufio.NewScanner(in)

	for {
		fmt.Fprint(out, "> ")
		if !scanner.Scan() {
			fmt.Fprintln(out)
			return scanner.Err()
		}

		words, err := shellquote.Split(strings.TrimSpace(scanner.Text()))
		if err != nil {
			fmt.Fprintln(out, "parse error:", err)
			continue
		}
		if len(words) == 0 {
			continue
		}

		switch words[0] {
		case "exit", "quit":
			return nil
		case "help":
			fmt.Fprintln(out, browseHelp)
		default:
			if err := b.execute(words[0], words[1:]); err != nil {
				fmt.Fprintln(out, "error:", err)
			}
		}
	}
}

func (b *browser) execute(name string, args []string) error {
	switch name {
	case "next":
		n, err := countArg(args)
		if err != nil {
			return err
		}
		return b.next(n)
	case "rewind":
		n, err := countArg(args)
		if err != nil {
			return err
		}
		if err := b.reader.Rewind(n); err != nil {
			return err
		}
		b.current = nil
		b.printPosition()
		return nil
	case "show":
		if b.current == nil {
			return errors.New("no current record, use next")
		}
		return render.WriteText(b.out, b.current)
	case "tags":
		if b.current == nil {
			return errors.New("no current record, use next")
		}
		fmt.Fprintln(b.out, strings.Join(b.current.Tags(), " "))
		return nil
	case "pos":
		b.printPosition()
		return nil
	default:
		return fmt.Errorf("unknown command %q, type 'help'", name)
	}
}

// next reads n records and shows the last one read
func (b *browser) next(n int) error {
	for i := 0; i < n; i++ {
		offset := b.reader.Offset()
		rec, err := b.reader.Next()
		if err == io.EOF {
			b.current = nil
			fmt.Fprintln(b.out, "end of file")
			return nil
		}
		if err != nil {
			b.current = nil
			return err
		}
		b.current = rec

		if i == n-1 {
			fmt.Fprintf(b.out, "record %d at offset %d\n", b.reader.Position()-1, offset)
			return render.WriteText(b.out, rec)
		}
	}
	return nil
}

func (b *browser) printPosition() {
	fmt.Fprintf(b.out, "position %d, offset %d\n", b.reader.Position(), b.reader.Offset())
}

// countArg parses an optional positive count argument
func countArg(args []string) (int, error) {
	if len(args) == 0 {
		return 1, nil
	}
	if len(args) > 1 {
		return 0, fmt.Errorf("expected at most one argument, got %d", len(args))
	}
	n, err := strconv.Atoi(args[0])
	if err != nil || n < 1 {
		return 0, fmt.Errorf("invalid count %q", args[0])
	}
	return n, nil
}
