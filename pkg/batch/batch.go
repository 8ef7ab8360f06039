// Package batch drives a handler over every record of a MARC stream while
// collecting field statistics.
package batch

import (
	"context"
	"errors"
	"io"

	"go.uber.org/zap"

	"github.com/ssargent/marcdb/pkg/codec"
	"github.com/ssargent/marcdb/pkg/store"
)

// DefaultProgressEvery is the progress logging interval used by DefaultOptions
const DefaultProgressEvery = 1000

// Source yields decoded records. *store.RecordReader satisfies it.
type Source interface {
	Next() (*codec.Record, error)
	Offset() int64
}

// Handler is called once per decoded record
type Handler func(ctx context.Context, rec *codec.Record) error

// Options controls a Process run
type Options struct {
	Limit         int  // stop after this many records (0 = no limit)
	SkipMalformed bool // log and skip records that fail to decode
	ProgressEvery int  // log progress every N records (0 = never)
}

// DefaultOptions returns options for an unlimited run that stops on the
// first malformed record
func DefaultOptions() Options {
	return Options{
		ProgressEvery: DefaultProgressEvery,
	}
}

// Result summarizes a Process run
type Result struct {
	Records int          // records handed to the handler
	Skipped int          // malformed records skipped
	Counts  *FieldCounts // per-key record counts over handled records
}

// Process reads src until end of input, the limit, a fatal error or context
// cancellation. The partial result is returned alongside any error.
func Process(ctx context.Context, src Source, opts Options, logger *zap.Logger, handler Handler) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}
	result := &Result{Counts: NewFieldCounts()}

	for opts.Limit <= 0 || result.Records < opts.Limit {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		rec, err := src.Next()
		if err == io.EOF {
			break
		}
		if err != nil {
			var recErr *store.RecordError
			if opts.SkipMalformed && errors.As(err, &recErr) {
				result.Skipped++
				logger.Warn("skipping malformed record",
					zap.Int("record", recErr.Index),
					zap.Int64("offset", recErr.Offset),
					zap.String("tag", failedTag(err)),
					zap.Error(recErr.Err),
				)
				continue
			}
			return result, err
		}

		if handler != nil {
			if err := handler(ctx, rec); err != nil {
				return result, err
			}
		}
		result.Counts.Observe(rec)
		result.Records++

		if opts.ProgressEvery > 0 && result.Records%opts.ProgressEvery == 0 {
			logger.Info("progress",
				zap.Int("records", result.Records),
				zap.Int("skipped", result.Skipped),
				zap.Int64("offset", src.Offset()),
			)
		}
	}

	return result, nil
}

func failedTag(err error) string {
	var pe *codec.ParseError
	if errors.As(err, &pe) {
		return pe.Tag
	}
	return ""
}
