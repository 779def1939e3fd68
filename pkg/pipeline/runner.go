package pipeline

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"github.com/epitools/tracetab/pkg/cache"
	tterrors "github.com/epitools/tracetab/pkg/errors"
	pkgio "github.com/epitools/tracetab/pkg/io"
	"github.com/epitools/tracetab/pkg/network"
	"github.com/epitools/tracetab/pkg/observability"
	"github.com/epitools/tracetab/pkg/store"
	"github.com/epitools/tracetab/pkg/trace"
)

// Runner encapsulates pipeline execution with caching and optional result
// persistence. Both CLI and API use this to avoid duplicating the logic.
//
// The Runner is stateless except for the cache, store and logger - it does
// not keep pipeline results. Multiple goroutines can safely use the same
// Runner with different options.
type Runner struct {
	Cache  cache.Cache
	Keyer  cache.Keyer
	Store  store.Store
	Logger *log.Logger
}

// NewRunner creates a runner with the given cache, keyer and store.
// If keyer is nil, a DefaultKeyer is used.
// If c is nil, a NullCache is used (caching disabled).
// The store may be nil, in which case Save requests fail.
func NewRunner(c cache.Cache, keyer cache.Keyer, st store.Store, logger *log.Logger) *Runner {
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	if c == nil {
		c = cache.NewNullCache()
	}
	if logger == nil {
		logger = log.Default()
	}
	return &Runner{
		Cache:  c,
		Keyer:  keyer,
		Store:  st,
		Logger: logger,
	}
}

// Execute runs the complete decode → flatten → export pipeline.
func (r *Runner) Execute(ctx context.Context, opts Options) (*Result, error) {
	r.applyLogger(&opts)
	if err := opts.ValidateAndSetDefaults(); err != nil {
		return nil, fmt.Errorf("invalid options: %w", err)
	}

	result := &Result{
		Artifacts: make(map[string][]byte),
	}

	// Stage 1: Decode
	decodeStart := time.Now()
	in, err := r.Decode(ctx, opts)
	if err != nil {
		return nil, err
	}
	result.Input = in
	result.Stats.DecodeTime = time.Since(decodeStart)
	result.Stats.ElementCount = countElements(in)
	result.Stats.EdgeCount = countEdges(in)

	r.Logger.Info("decoded traces",
		"shape", Shape(in),
		"elements", result.Stats.ElementCount,
		"edges", result.Stats.EdgeCount,
		"duration", result.Stats.DecodeTime)

	// Stage 2: Flatten (cached)
	flattenStart := time.Now()
	table, hash, hit, err := r.FlattenWithCacheInfo(ctx, in, opts.Refresh)
	if err != nil {
		return nil, err
	}
	result.Table = table
	result.InputHash = hash
	result.Stats.FlattenTime = time.Since(flattenStart)
	result.Stats.RowCount = table.Len()
	result.CacheInfo.TableHit = hit

	r.Logger.Info("flattened network",
		"rows", table.Len(),
		"cached", hit,
		"duration", result.Stats.FlattenTime)

	// Stage 3: Export
	exportStart := time.Now()
	for _, format := range opts.Formats {
		data, err := r.Export(ctx, table, format)
		if err != nil {
			return nil, err
		}
		result.Artifacts[format] = data
	}
	result.Stats.ExportTime = time.Since(exportStart)

	r.Logger.Info("exported table",
		"formats", opts.Formats,
		"duration", result.Stats.ExportTime)

	// Optional: persist
	if opts.Save {
		if r.Store == nil {
			return nil, tterrors.New(tterrors.ErrCodeUnsupported, "no result store configured")
		}
		id, err := r.Store.SaveResult(ctx, store.Result{
			Label:     opts.Label,
			InputHash: hash,
			Rows:      table,
		})
		if err != nil {
			return nil, tterrors.Wrap(tterrors.ErrCodeStore, err, "failed to save result")
		}
		result.ResultID = id
		r.Logger.Info("saved result", "id", id)
	}

	return result, nil
}

// Decode reads the trace input from the options' reader or input path.
func (r *Runner) Decode(ctx context.Context, opts Options) (trace.Input, error) {
	source := opts.Input
	if opts.Reader != nil {
		source = "reader"
	}

	start := time.Now()
	observability.Flatten().OnDecodeStart(ctx, source)

	var (
		in  trace.Input
		err error
	)
	if opts.Reader != nil {
		in, err = pkgio.ReadJSON(opts.Reader)
	} else {
		in, err = pkgio.ImportJSON(opts.Input)
	}
	observability.Flatten().OnDecodeComplete(ctx, source, time.Since(start), err)

	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, tterrors.Wrap(tterrors.ErrCodeFileNotFound, err, "trace file not found: %s", opts.Input)
		}
		return nil, tterrors.Wrap(tterrors.ErrCodeInvalidInput, err, "failed to decode traces from %s", source)
	}
	return in, nil
}

// Flatten runs the flattening transform without caching.
// Contract violations are wrapped with distinguishable error codes.
func (r *Runner) Flatten(ctx context.Context, in trace.Input) (network.Table, error) {
	start := time.Now()
	shape := Shape(in)
	observability.Flatten().OnFlattenStart(ctx, shape)

	table, err := network.Flatten(in)
	observability.Flatten().OnFlattenComplete(ctx, shape, table.Len(), time.Since(start), err)

	if err != nil {
		return nil, WrapFlattenError(err)
	}
	return table, nil
}

// FlattenWithCacheInfo flattens with table caching and returns the input
// hash and cache hit info. Refresh bypasses the cache read (the fresh
// result is still written back).
func (r *Runner) FlattenWithCacheInfo(ctx context.Context, in trace.Input, refresh bool) (network.Table, string, bool, error) {
	hash, err := cache.HashJSON(in)
	if err != nil {
		return nil, "", false, tterrors.Wrap(tterrors.ErrCodeInternal, err, "failed to hash input")
	}
	key := r.Keyer.TableKey(hash)

	if !refresh {
		if data, hit, err := r.Cache.Get(ctx, key); err == nil && hit {
			var table network.Table
			if err := json.Unmarshal(data, &table); err == nil {
				observability.Cache().OnCacheHit(ctx, "table")
				return table, hash, true, nil
			}
			// Corrupt entry: drop it and recompute.
			_ = r.Cache.Delete(ctx, key)
		}
		observability.Cache().OnCacheMiss(ctx, "table")
	}

	table, err := r.Flatten(ctx, in)
	if err != nil {
		return nil, hash, false, err
	}

	if data, err := json.Marshal(table); err == nil {
		if err := r.Cache.Set(ctx, key, data, cache.DefaultTTL); err == nil {
			observability.Cache().OnCacheSet(ctx, "table", len(data))
		}
	}
	return table, hash, false, nil
}

// Export encodes a table in the given format.
func (r *Runner) Export(ctx context.Context, table network.Table, format string) ([]byte, error) {
	if err := ValidateFormat(format); err != nil {
		return nil, err
	}

	start := time.Now()
	observability.Flatten().OnExportStart(ctx, format)

	var buf bytes.Buffer
	var err error
	switch format {
	case FormatJSON:
		err = pkgio.WriteJSON(table, &buf)
	case FormatCSV:
		err = pkgio.WriteCSV(table, &buf)
	}
	observability.Flatten().OnExportComplete(ctx, format, time.Since(start), err)

	if err != nil {
		return nil, tterrors.Wrap(tterrors.ErrCodeInternal, err, "failed to export %s", format)
	}
	return buf.Bytes(), nil
}

// WrapFlattenError maps core flattening violations onto coded errors so
// CLI and API callers can distinguish the failure classes.
func WrapFlattenError(err error) error {
	switch {
	case errors.Is(err, network.ErrElementNotSingular):
		return tterrors.Wrap(tterrors.ErrCodeInvalidCollectionShape, err, "malformed trace collection")
	case errors.Is(err, network.ErrElementNotBidirectional):
		return tterrors.Wrap(tterrors.ErrCodeInvalidCollectionElement, err, "malformed trace collection")
	case errors.Is(err, network.ErrUnknownDirection):
		return tterrors.Wrap(tterrors.ErrCodeInvalidDirection, err, "invalid trace direction")
	default:
		return tterrors.Wrap(tterrors.ErrCodeInternal, err, "flattening failed")
	}
}

func errInvalidFormat(format string) error {
	return tterrors.New(tterrors.ErrCodeInvalidFormat, "invalid format: %q (must be one of: json, csv)", format)
}

func errMissingInput() error {
	return tterrors.New(tterrors.ErrCodeInvalidInput, "input is required")
}

func (r *Runner) applyLogger(opts *Options) {
	if opts.Logger == nil {
		opts.Logger = r.Logger
	}
}

// Close releases the cache and store connections. Safe to call with either
// unset.
func (r *Runner) Close() error {
	var firstErr error
	if r.Cache != nil {
		if err := r.Cache.Close(); err != nil {
			firstErr = err
		}
	}
	if r.Store != nil {
		if err := r.Store.Close(context.Background()); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}
