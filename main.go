// nginject adds AngularJS dependency-injection annotations to JavaScript so
// that injection keeps working after minification.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/phobologic/nginject/internal/config"
	"github.com/phobologic/nginject/internal/discover"
	"github.com/phobologic/nginject/internal/toon"
	"github.com/phobologic/nginject/internal/transform"
	"github.com/phobologic/nginject/internal/watch"
)

var version = "dev"

// errUnannotated is returned by --check when some input would change.
var errUnannotated = errors.New("annotations missing")

func main() {
	if err := run(os.Args[1:], os.Stdin, os.Stdout, os.Stderr); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

type options struct {
	write         bool
	outDir        string
	check         bool
	report        bool
	watch         bool
	strict        bool
	workers       int
	maxFileSize   int64
	noSourceMaps  bool
	configPath    string
	verbose       bool
	stdinFilename string
}

func run(args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if args == nil {
		// cobra falls back to os.Args for nil.
		args = []string{}
	}
	cmd := newRootCommand(stdin, stdout, stderr)
	cmd.SetArgs(args)
	return cmd.ExecuteContext(ctx)
}

func newRootCommand(stdin io.Reader, stdout, stderr io.Writer) *cobra.Command {
	opts := &options{}

	cmd := &cobra.Command{
		Use:   "nginject [flags] [path ...]",
		Short: "Add AngularJS dependency annotations to JavaScript",
		Long: `nginject rewrites JavaScript so that AngularJS dependency injection survives
minification. Functions marked with an @ngInject comment, and functions passed
to angular.module(...) registration methods, get their parameter names recorded
either inline (["$scope", function($scope) {}]) or as a hoisted
fn.$inject = ["$scope"] assignment.

With no paths and piped input, stdin is transformed to stdout. Directories are
searched for .js files, honoring .gitignore.`,
		Version:       version,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAnnotate(cmd, opts, args, stdin, stdout, stderr)
		},
	}
	cmd.SetIn(stdin)
	cmd.SetOut(stdout)
	cmd.SetErr(stderr)
	cmd.SetVersionTemplate("nginject {{.Version}}\n")

	f := cmd.Flags()
	f.BoolVarP(&opts.write, "write", "w", false, "rewrite files in place")
	f.StringVarP(&opts.outDir, "out-dir", "o", "", "write results to a mirrored tree under `dir`")
	f.BoolVar(&opts.check, "check", false, "list files that would change and exit non-zero if any")
	f.BoolVar(&opts.report, "report", false, "print a TOON report of applied annotations instead of sources")
	f.BoolVar(&opts.watch, "watch", false, "re-annotate files as they change (needs -w or -o)")
	f.BoolVar(&opts.strict, "strict", false, "stop at the first file that fails")
	f.IntVarP(&opts.workers, "jobs", "j", 0, "files processed concurrently (default GOMAXPROCS)")
	f.Int64Var(&opts.maxFileSize, "max-file-size", config.DefaultMaxFileSize, "skip files larger than this many bytes")
	f.BoolVar(&opts.noSourceMaps, "no-source-maps", false, "ignore inline source maps")
	f.StringVar(&opts.configPath, "config", "", "config file (default ./"+config.FileName+")")
	f.BoolVarP(&opts.verbose, "verbose", "v", false, "log every annotation")
	f.StringVar(&opts.stdinFilename, "stdin-filename", "", "file name used to decide whether piped input is eligible")

	cmd.AddCommand(newInitCommand(stdout, stderr))
	return cmd
}

func runAnnotate(cmd *cobra.Command, opts *options, args []string, stdin io.Reader, stdout, stderr io.Writer) error {
	if opts.write && opts.outDir != "" {
		return errors.New("-w and -o cannot be combined")
	}
	if opts.watch && !opts.write && opts.outDir == "" {
		return errors.New("--watch needs -w or -o")
	}

	cfg, err := loadConfig(cmd, opts)
	if err != nil {
		return err
	}

	log := newLogger(stderr, opts.verbose)
	defer func() { _ = log.Sync() }()

	topts := transform.Options{
		Inject:      cfg.Inject(),
		Filter:      discover.Filter{Extensions: cfg.Extensions, SourceMaps: cfg.SourceMaps},
		MaxFileSize: cfg.MaxFileSize,
		SourceMaps:  cfg.SourceMaps,
		Workers:     cfg.Workers,
		Strict:      cfg.Strict,
		Logger:      log,
	}
	if opts.outDir != "" {
		out, err := filepath.Abs(opts.outDir)
		if err != nil {
			return fmt.Errorf("out dir: %w", err)
		}
		topts.Filter.Exclude = []string{out}
	}
	ctx := cmd.Context()

	if len(args) == 0 && isPiped(stdin) {
		if opts.write || opts.outDir != "" || opts.watch {
			return errors.New("-w, -o and --watch need path arguments")
		}
		return filterStdin(ctx, opts, topts, stdin, stdout)
	}

	if len(args) == 0 {
		args = []string{"."}
	}
	targets, err := collect(args, topts.Filter)
	if err != nil {
		return err
	}
	if len(targets) == 0 {
		return fmt.Errorf("no eligible files found")
	}

	r := &runner{
		opts:   opts,
		tr:     transform.New(topts),
		filter: topts.Filter,
		log:    log,
		root:   reportRoot(args),
		stdout: stdout,
		stderr: stderr,
	}
	err = r.process(ctx, targets)
	if !opts.watch {
		return err
	}
	if err != nil {
		log.Warn("initial pass incomplete", zap.Error(err))
	}
	return r.watch(ctx, args)
}

func loadConfig(cmd *cobra.Command, opts *options) (*config.Config, error) {
	path := opts.configPath
	if path == "" {
		path = config.Find(".")
	}

	cfg := config.Default()
	if path != "" {
		loaded, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	flags := cmd.Flags()
	if flags.Changed("strict") {
		cfg.Strict = opts.strict
	}
	if flags.Changed("jobs") {
		cfg.Workers = opts.workers
	}
	if flags.Changed("max-file-size") {
		cfg.MaxFileSize = opts.maxFileSize
	}
	if opts.noSourceMaps {
		cfg.SourceMaps = false
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func newLogger(w io.Writer, verbose bool) *zap.Logger {
	level := zapcore.WarnLevel
	if verbose {
		level = zapcore.DebugLevel
	}
	enc := zap.NewDevelopmentEncoderConfig()
	enc.TimeKey = ""
	core := zapcore.NewCore(zapcore.NewConsoleEncoder(enc), zapcore.AddSync(w), level)
	return zap.New(core)
}

// isPiped reports whether stdin carries input rather than a terminal.
func isPiped(r io.Reader) bool {
	if r == nil {
		return false
	}
	f, ok := r.(*os.File)
	if !ok {
		return true
	}
	fd := f.Fd()
	if isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd) {
		return false
	}
	info, err := f.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeNamedPipe != 0 || info.Mode().IsRegular()
}

func filterStdin(ctx context.Context, opts *options, topts transform.Options, stdin io.Reader, stdout io.Writer) error {
	src, err := io.ReadAll(stdin)
	if err != nil {
		return fmt.Errorf("reading stdin: %w", err)
	}

	name := opts.stdinFilename
	if name == "" {
		name = "<stdin>"
		topts.Filter.All = true
	}

	res, err := transform.New(topts).File(ctx, name, src)
	if err != nil {
		return err
	}

	switch {
	case opts.report:
		report := &toon.Report{Root: name, Files: []toon.File{reportEntry(name, res)}}
		_, _ = fmt.Fprintln(stdout, toon.Encode(report))
	case !opts.check:
		_, _ = stdout.Write(res.Output)
	}

	if opts.check && res.Changed {
		return fmt.Errorf("%s: %w", name, errUnannotated)
	}
	return nil
}

// target is one input file. rel is its path below the argument it was
// found under, used to mirror the tree for -o.
type target struct {
	path string
	rel  string
}

func collect(args []string, filter discover.Filter) ([]target, error) {
	var targets []target
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("path: %w", err)
		}
		if !info.IsDir() {
			targets = append(targets, target{path: arg, rel: filepath.Base(arg)})
			continue
		}
		files, err := discover.Files(arg, filter)
		if err != nil {
			return nil, fmt.Errorf("discovering files: %w", err)
		}
		for _, f := range files {
			targets = append(targets, target{path: filepath.Join(arg, f.Path), rel: f.Path})
		}
	}
	return targets, nil
}

func reportRoot(args []string) string {
	if len(args) != 1 {
		return strings.Join(args, " ")
	}
	abs, err := filepath.Abs(args[0])
	if err != nil {
		return args[0]
	}
	return filepath.Base(abs)
}

type runner struct {
	opts   *options
	tr     *transform.Transformer
	filter discover.Filter
	log    *zap.Logger
	root   string
	stdout io.Writer
	stderr io.Writer
}

func (r *runner) process(ctx context.Context, targets []target) error {
	paths := make([]string, len(targets))
	for i, t := range targets {
		paths[i] = t.path
	}

	results, err := r.tr.Batch(ctx, "", paths)
	if err != nil {
		return err
	}

	report := &toon.Report{Root: r.root}
	var failed, pending int
	for i, res := range results {
		report.Files = append(report.Files, reportEntry(targets[i].path, res))
		if res.Err != nil {
			failed++
			continue
		}
		if res.Changed {
			pending++
		}
		if err := r.emit(targets[i], res); err != nil {
			return err
		}
	}

	if r.opts.report {
		_, _ = fmt.Fprintln(r.stdout, toon.Encode(report))
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed", failed)
	}
	if r.opts.check && pending > 0 {
		return fmt.Errorf("%d file(s): %w", pending, errUnannotated)
	}
	return nil
}

func (r *runner) emit(t target, res *transform.Result) error {
	switch {
	case r.opts.check:
		if res.Changed && !r.opts.report {
			_, _ = fmt.Fprintln(r.stdout, t.path)
		}
	case r.opts.write:
		if res.Changed {
			return writeFile(t.path, res.Output)
		}
	case r.opts.outDir != "":
		if !res.Skipped {
			return writeFile(filepath.Join(r.opts.outDir, t.rel), res.Output)
		}
	case !r.opts.report:
		if !res.Skipped {
			_, _ = r.stdout.Write(res.Output)
		}
	}
	return nil
}

// watch re-processes files under args as they change until ctx is done.
func (r *runner) watch(ctx context.Context, args []string) error {
	var trees, dirs []string
	explicit := make(map[string]string)
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return fmt.Errorf("path: %w", err)
		}
		if info.IsDir() {
			trees = append(trees, arg)
			dirs = append(dirs, arg)
			continue
		}
		explicit[filepath.Clean(arg)] = filepath.Base(arg)
		dirs = append(dirs, filepath.Dir(arg))
	}

	_, _ = fmt.Fprintf(r.stderr, "watching %s for changes\n", strings.Join(dirs, ", "))

	opts := watch.Options{Filter: r.filter, Logger: r.log}
	return watch.Run(ctx, dirs, opts, func(ctx context.Context, path string) {
		t, ok := locate(trees, explicit, path)
		if !ok {
			return
		}
		if err := r.process(ctx, []target{t}); err != nil {
			r.log.Warn("transform failed", zap.String("file", path), zap.Error(err))
		}
	})
}

// locate maps a changed path back to a target: either a file named on the
// command line or a file below one of the directory arguments.
func locate(trees []string, explicit map[string]string, path string) (target, bool) {
	path = filepath.Clean(path)
	if rel, ok := explicit[path]; ok {
		return target{path: path, rel: rel}, true
	}
	for _, dir := range trees {
		rel, err := filepath.Rel(dir, path)
		if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
			continue
		}
		return target{path: path, rel: rel}, true
	}
	return target{}, false
}

func reportEntry(path string, res *transform.Result) toon.File {
	entry := toon.File{Path: path, Annotations: res.Annotations, Err: res.Err}
	switch {
	case res.Err != nil:
		entry.Status = toon.Failed
	case res.Skipped:
		entry.Status = toon.Skipped
	case res.Changed:
		entry.Status = toon.Changed
	default:
		entry.Status = toon.Unchanged
	}
	return entry
}

func writeFile(path string, data []byte) error {
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, mode); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
