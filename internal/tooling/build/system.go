// Package build runs the generator over package directories: extract the
// model, render the registration file and write it when it changed.
package build

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/conduit-lang/tref/internal/compiler/cache"
	"github.com/conduit-lang/tref/internal/compiler/codegen"
	cerrors "github.com/conduit-lang/tref/internal/compiler/errors"
	"github.com/conduit-lang/tref/internal/compiler/metadata"
)

// Options configures a build
type Options struct {
	// Output is the generated file name in each package directory.
	Output       string
	IncludeTests bool
	MaxJobs      int
	// DryRun renders output without touching the file system.
	DryRun   bool
	UseCache bool
	// ProgressFunc is called once per finished package.
	ProgressFunc func(current, total int, message string)
}

// DefaultOptions returns sensible defaults
func DefaultOptions() *Options {
	return &Options{
		Output:   metadata.DefaultOutput,
		MaxJobs:  runtime.NumCPU(),
		UseCache: true,
	}
}

// Status is what happened to one package.
type Status int

const (
	// StatusWritten means the generated file was created or replaced.
	StatusWritten Status = iota
	// StatusUnchanged means the file on disk already had the output.
	StatusUnchanged
	// StatusRemoved means a stale generated file was deleted.
	StatusRemoved
	// StatusEmpty means the package has no directives.
	StatusEmpty
	// StatusFailed means extraction or generation failed.
	StatusFailed
)

func (s Status) String() string {
	switch s {
	case StatusWritten:
		return "written"
	case StatusUnchanged:
		return "unchanged"
	case StatusRemoved:
		return "removed"
	case StatusEmpty:
		return "empty"
	case StatusFailed:
		return "failed"
	default:
		return "unknown"
	}
}

// PackageResult describes the build of one directory
type PackageResult struct {
	Dir    string
	Output string
	Status Status
	// CacheHit is set when generation was skipped because the sources
	// did not change since the last build.
	CacheHit    bool
	Package     *metadata.Package
	Generated   []byte
	Diagnostics cerrors.ErrorList
	Err         error
}

// Result contains information about the build
type Result struct {
	Packages  []*PackageResult
	Duration  time.Duration
	CacheHits int
}

// Failed reports whether any package failed.
func (r *Result) Failed() bool {
	for _, p := range r.Packages {
		if p.Status == StatusFailed {
			return true
		}
	}
	return false
}

// Count returns the number of packages with status s.
func (r *Result) Count(s Status) int {
	n := 0
	for _, p := range r.Packages {
		if p.Status == s {
			n++
		}
	}
	return n
}

// Diagnostics returns the diagnostics of all packages in directory order.
func (r *Result) Diagnostics() cerrors.ErrorList {
	var all cerrors.ErrorList
	for _, p := range r.Packages {
		all = append(all, p.Diagnostics...)
	}
	return all
}

// System coordinates generation over many packages. It is safe for
// concurrent use; each package is built by a single worker.
type System struct {
	options *Options
	logger  *zap.Logger
	cache   *cache.OutputCache
	hasher  *cache.FileHasher
}

// NewSystem creates a new build system
func NewSystem(opts *Options, logger *zap.Logger) *System {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Output == "" {
		opts.Output = metadata.DefaultOutput
	}
	if opts.MaxJobs < 1 {
		opts.MaxJobs = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	return &System{
		options: opts,
		logger:  logger,
		cache:   cache.NewOutputCache(),
		hasher:  cache.NewFileHasher(),
	}
}

// Options returns the build options.
func (s *System) Options() *Options {
	return s.options
}

// Extractor returns an extractor configured like the build.
func (s *System) Extractor() *metadata.Extractor {
	return metadata.NewExtractor(s.logger, metadata.Options{
		Output:       s.options.Output,
		IncludeTests: s.options.IncludeTests,
	})
}

// Invalidate forgets the cached output of dir.
func (s *System) Invalidate(dir string) {
	s.cache.Invalidate(dir)
}

// Build generates every directory, MaxJobs at a time. Results keep the order
// of dirs. A cancelled context stops packages that have not started.
func (s *System) Build(ctx context.Context, dirs []string) (*Result, error) {
	start := time.Now()
	if len(dirs) == 0 {
		return nil, fmt.Errorf("no package directories to build")
	}

	results := make([]*PackageResult, len(dirs))
	jobs := make(chan int, len(dirs))
	for i := range dirs {
		jobs <- i
	}
	close(jobs)

	numWorkers := s.options.MaxJobs
	if numWorkers > len(dirs) {
		numWorkers = len(dirs)
	}

	var (
		wg   sync.WaitGroup
		mu   sync.Mutex
		done int
	)
	for w := 0; w < numWorkers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				res := s.BuildDir(ctx, dirs[i])
				results[i] = res

				if s.options.ProgressFunc != nil {
					mu.Lock()
					done++
					s.options.ProgressFunc(done, len(dirs), fmt.Sprintf("%s: %s", res.Dir, res.Status))
					mu.Unlock()
				}
			}
		}()
	}
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	result := &Result{Packages: results, Duration: time.Since(start)}
	for _, p := range results {
		if p.CacheHit {
			result.CacheHits++
		}
	}

	s.logger.Debug("build finished",
		zap.Int("packages", len(dirs)),
		zap.Int("written", result.Count(StatusWritten)),
		zap.Int("failed", result.Count(StatusFailed)),
		zap.Int("cache_hits", result.CacheHits),
		zap.Duration("duration", result.Duration))
	return result, nil
}

// BuildDir generates one package directory.
func (s *System) BuildDir(ctx context.Context, dir string) *PackageResult {
	res := &PackageResult{Dir: dir, Output: filepath.Join(dir, s.options.Output)}
	if err := ctx.Err(); err != nil {
		return res.fail(err)
	}

	if s.options.UseCache {
		if hit := s.fromCache(res); hit {
			return res
		}
	}

	pkg, err := s.Extractor().ExtractDir(dir)
	res.Package = pkg
	if err != nil {
		return res.fail(err)
	}

	if pkg.Empty() {
		return s.removeStale(res)
	}

	out, err := codegen.NewGenerator(s.logger).Generate(pkg, res.Output)
	if err != nil {
		return res.fail(err)
	}
	res.Generated = out

	status, err := s.writeIfChanged(res.Output, out)
	if err != nil {
		return res.fail(err)
	}
	res.Status = status

	if s.options.UseCache && !s.options.DryRun {
		s.cache.Set(dir, pkg.SourceHash, out)
	}

	s.logger.Debug("package generated",
		zap.String("dir", dir),
		zap.Stringer("status", status),
		zap.Int("types", len(pkg.Types)),
		zap.Int("enums", len(pkg.Enums)))
	return res
}

// fromCache reuses the last output when neither the sources nor the file on
// disk changed.
func (s *System) fromCache(res *PackageResult) bool {
	paths, err := s.Extractor().SourceFiles(res.Dir)
	if err != nil || len(paths) == 0 {
		return false
	}
	hash, err := s.hasher.HashFiles(paths)
	if err != nil || !s.cache.Fresh(res.Dir, hash) {
		return false
	}
	entry, _ := s.cache.Get(res.Dir)
	current, err := os.ReadFile(res.Output)
	if err != nil || !bytes.Equal(current, entry.Output) {
		return false
	}

	res.Status = StatusUnchanged
	res.CacheHit = true
	res.Generated = entry.Output
	return true
}

func (s *System) writeIfChanged(path string, out []byte) (Status, error) {
	current, err := os.ReadFile(path)
	switch {
	case err == nil:
		if bytes.Equal(current, out) {
			return StatusUnchanged, nil
		}
		if !bytes.HasPrefix(current, []byte(codegen.Header)) {
			return StatusFailed, fmt.Errorf("refusing to overwrite %s: not a generated file", path)
		}
	case !os.IsNotExist(err):
		return StatusFailed, fmt.Errorf("failed to read %s: %w", path, err)
	}

	if s.options.DryRun {
		return StatusWritten, nil
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, out, 0o644); err != nil {
		return StatusFailed, fmt.Errorf("failed to write %s: %w", tmp, err)
	}
	if err := os.Rename(tmp, path); err != nil {
		os.Remove(tmp)
		return StatusFailed, fmt.Errorf("failed to write %s: %w", path, err)
	}
	return StatusWritten, nil
}

func (s *System) removeStale(res *PackageResult) *PackageResult {
	res.Status = StatusEmpty
	s.cache.Invalidate(res.Dir)

	current, err := os.ReadFile(res.Output)
	if err != nil || !bytes.HasPrefix(current, []byte(codegen.Header)) {
		return res
	}
	if !s.options.DryRun {
		if err := os.Remove(res.Output); err != nil {
			return res.fail(fmt.Errorf("failed to remove %s: %w", res.Output, err))
		}
	}
	res.Status = StatusRemoved
	return res
}

func (r *PackageResult) fail(err error) *PackageResult {
	r.Status = StatusFailed
	if list, ok := err.(cerrors.ErrorList); ok {
		r.Diagnostics = list
		return r
	}
	r.Err = err
	return r
}
