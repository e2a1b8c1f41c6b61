// Package transform runs the annotation pipeline over whole files.
package transform

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/phobologic/nginject/internal/discover"
	"github.com/phobologic/nginject/internal/inject"
	"github.com/phobologic/nginject/internal/parse"
	"github.com/phobologic/nginject/internal/printer"
	"github.com/phobologic/nginject/internal/sourcemap"
)

// Options configures a Transformer.
type Options struct {
	Inject inject.Options
	Filter discover.Filter
	// MaxFileSize skips larger inputs. Zero means no limit.
	MaxFileSize int64
	// SourceMaps enables generated-statement detection from inline maps.
	SourceMaps bool
	// Workers bounds Batch concurrency. Zero means GOMAXPROCS.
	Workers int
	// Strict makes Batch stop at the first failing file.
	Strict bool
	Logger *zap.Logger
}

// DefaultOptions returns options for the stock AngularJS setup.
func DefaultOptions() Options {
	return Options{
		Inject:     inject.DefaultOptions(),
		Filter:     discover.DefaultFilter(),
		SourceMaps: true,
	}
}

// Result is the outcome for one file.
type Result struct {
	Path string
	// Output is the transformed source, or the input when nothing changed.
	Output  []byte
	Changed bool
	// Skipped is set when the file was not eligible or too large.
	Skipped     bool
	Annotations []inject.Annotation
	// Err is set by Batch for files that failed.
	Err error
}

// Transformer annotates files. It is safe for concurrent use.
type Transformer struct {
	opts Options
	log  *zap.Logger
}

// New returns a Transformer.
func New(opts Options) *Transformer {
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &Transformer{opts: opts, log: log}
}

// File transforms src, which was read from name.
func (t *Transformer) File(ctx context.Context, name string, src []byte) (*Result, error) {
	res := &Result{Path: name, Output: src}

	if t.opts.MaxFileSize > 0 && int64(len(src)) > t.opts.MaxFileSize {
		t.log.Warn("file skipped", zap.String("file", name),
			zap.Int("size", len(src)), zap.Int64("limit", t.opts.MaxFileSize))
		res.Skipped = true
		return res, nil
	}
	if !t.opts.Filter.Match(name, src) {
		t.log.Debug("file skipped", zap.String("file", name), zap.String("reason", "not eligible"))
		res.Skipped = true
		return res, nil
	}

	popts := parse.Options{}
	if t.opts.SourceMaps {
		oracle, err := sourcemap.NewOracle(name, src)
		if err != nil {
			t.log.Warn("ignoring source map", zap.String("file", name), zap.Error(err))
		} else if oracle != nil {
			popts.Generated = oracle.Generated
		}
	}

	file, err := parse.Parse(ctx, src, name, popts)
	if err != nil {
		return nil, err
	}

	anns, err := inject.Annotate(file, t.opts.Inject)
	if err != nil {
		return nil, err
	}
	res.Annotations = anns
	if len(anns) == 0 {
		return res, nil
	}
	for _, a := range anns {
		t.log.Debug("annotated", zap.String("file", name), zap.Int("line", a.Pos.Line),
			zap.String("name", a.Name), zap.String("strategy", string(a.Strategy)))
	}

	out := printer.Print(file)
	res.Output = out
	res.Changed = !bytes.Equal(out, src)
	return res, nil
}

// Batch transforms the files at paths, relative to root unless absolute.
// Results come back in the order of paths. A file that fails gets its
// error recorded on its Result; with Strict set the first failure aborts
// the batch and is returned.
func (t *Transformer) Batch(ctx context.Context, root string, paths []string) ([]*Result, error) {
	results := make([]*Result, len(paths))

	workers := t.opts.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for i, p := range paths {
		i, p := i, p
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			full := p
			if !filepath.IsAbs(full) {
				full = filepath.Join(root, p)
			}
			res, err := t.path(gctx, full, p)
			if err != nil {
				if t.opts.Strict {
					return err
				}
				t.log.Warn("transform failed", zap.String("file", p), zap.Error(err))
				res = &Result{Path: p, Err: err}
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

func (t *Transformer) path(ctx context.Context, full, name string) (*Result, error) {
	src, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", name, err)
	}
	return t.File(ctx, name, src)
}
