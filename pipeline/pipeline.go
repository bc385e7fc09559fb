// Package pipeline implements the driver loop of spec.md §2/§4.6: pull a
// batch from the deduplicator, thread it through the configured
// enrichers and the partial filter, hand the result to the sink, then
// destroy the batch before pulling the next one.
//
// Names the loop spec.md §2 describes only in prose; grounded on
// original_source/src/main.c's top-level while loop (source → enrich →
// sink, break on EndOfData) and on spec.md §5's scoped-acquisition
// discipline, expressed here with Go's defer.
package pipeline

import (
	"context"
	"errors"
	"fmt"

	"github.com/cea-hpc/rbh-fsevents/applog"
	"github.com/cea-hpc/rbh-fsevents/dedup"
	"github.com/cea-hpc/rbh-fsevents/enrich"
	"github.com/cea-hpc/rbh-fsevents/fsevent"
	"github.com/cea-hpc/rbh-fsevents/sink"
	"github.com/cea-hpc/rbh-fsevents/source"
)

// Run alternates: pull one batch from dedup, wrap it in enrichers (in
// order) plus dedup.NoPartial, hand it to dst, then destroy the batch.
// Stops cleanly on fsevent.ErrEndOfData, propagates the first other error
// (spec.md §7: "first error logged... process exits non-zero, no
// cross-batch retry").
func Run(ctx context.Context, src source.Source, dd *dedup.Deduplicator, enrichers []*enrich.Enricher, dst sink.Sink) error {
	var eventsYielded uint64

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		batch, err := dd.Next(ctx)
		if err != nil {
			if errors.Is(err, fsevent.ErrEndOfData) {
				return nil
			}
			return fmt.Errorf("pulling batch: %w", err)
		}

		eventsYielded += uint64(batch.Len())
		if err := processBatch(ctx, batch, enrichers, dst); err != nil {
			return err
		}

		// spec.md §6 scenario 6: acknowledge is best-effort — Unsupported
		// is reported but not fatal, and the pipeline continues.
		if err := src.Acknowledge(eventsYielded); err != nil {
			if errors.Is(err, source.ErrUnsupported) {
				applog.Debugf(src, "acknowledge not supported by this source")
			} else {
				applog.Errorf(src, "acknowledging through event %d: %v", eventsYielded, err)
			}
		}
	}
}

// processBatch wires one batch through the enricher chain and the
// partial filter, hands it to dst, and always destroys the batch (and
// resets each enricher's arena) on the way out, per spec.md §5's scoped
// acquisition discipline.
func processBatch(ctx context.Context, batch *dedup.Batch, enrichers []*enrich.Enricher, dst sink.Sink) (err error) {
	defer func() {
		if cerr := batch.Close(); cerr != nil && err == nil {
			err = fmt.Errorf("closing batch: %w", cerr)
		}
	}()

	var it fsevent.Iterator = batch
	for _, e := range enrichers {
		it = e.Wrap(it)
	}
	defer func() {
		for _, e := range enrichers {
			e.ResetArena()
		}
	}()

	filtered := dedup.WrapNoPartial(it)

	if perr := dst.Process(ctx, filtered); perr != nil {
		return fmt.Errorf("processing batch: %w", perr)
	}
	return nil
}
