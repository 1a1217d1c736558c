package hilbpix

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/rs/zerolog"
)

// Options configures a transform run.
type Options struct {
	Direction Direction
	Offset    string // "auto" or a numeric shift
	Workers   int    // 0 means runtime.NumCPU()
	OutDir    string // "" rewrites files in place
	Cache     *CurveCache
}

// FileResult is the per-file outcome of a batch run.
type FileResult struct {
	Path    string
	Output  string
	Width   int
	Height  int
	Offset  int
	Digest  uint64
	Elapsed time.Duration
	Err     error
}

// BatchReport aggregates a whole run. One file failing never stops the rest.
type BatchReport struct {
	Succeeded int
	Failed    int
	Results   []FileResult
}

// ScanDir lists the supported image files directly inside dir, sorted by
// name.
func ScanDir(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("error listing %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() || !SupportedFile(e.Name()) {
			continue
		}
		files = append(files, filepath.Join(dir, e.Name()))
	}
	sort.Strings(files)
	return files, nil
}

// ProcessFile runs one image through read → curve → offset → permute →
// write. It owns every piece of mutable state it touches except the shared
// read-only curve cache.
func ProcessFile(input, output string, opts Options, logger zerolog.Logger) FileResult {
	res := FileResult{Path: input, Output: output}
	start := time.Now()
	defer func() { res.Elapsed = time.Since(start) }()

	cache := opts.Cache
	if cache == nil {
		cache = NewCurveCache()
	}

	src, err := DecodeImageFile(input)
	if err != nil {
		res.Err = err
		return res
	}
	res.Width, res.Height = src.Width, src.Height
	logger.Debug().
		Int("width", src.Width).Int("height", src.Height).
		Int("channels", src.Channels).Int("depth", src.Depth).
		Msg("decoded")

	curveStart := time.Now()
	curve, err := cache.Get(src.Width, src.Height)
	if err != nil {
		res.Err = err
		return res
	}
	logger.Debug().Dur("elapsed", time.Since(curveStart)).Msg("curve ready")

	res.Offset = SelectOffset(curve.Total(), opts.Offset)

	permStart := time.Now()
	dst, err := Transform(src, curve, res.Offset, opts.Direction)
	if err != nil {
		res.Err = err
		return res
	}
	logger.Debug().Dur("elapsed", time.Since(permStart)).
		Int("offset", res.Offset).Msg("pixels permuted")

	// A permutation cannot zero a non-zero image; if it did, something in
	// the copy loop is broken.
	if src.hasNonZero() && !dst.hasNonZero() {
		res.Err = fmt.Errorf("%w: output buffer is all zero", ErrCurveMismatch)
		return res
	}
	res.Digest = dst.Digest()

	if err = EncodeImageFile(output, dst); err != nil {
		res.Err = err
		return res
	}
	logger.Info().Str("output", output).
		Str("digest", fmt.Sprintf("%016x", res.Digest)).
		Dur("elapsed", time.Since(start)).
		Msgf("%s done", opts.Direction)
	return res
}

// ProcessFiles fans the files out over a bounded worker pool. Each task owns
// its curve (through the shared cache), offset and buffers; the only shared
// mutable state is the cache and the log sink, which zerolog serializes per
// event.
func ProcessFiles(files []string, opts Options, logger zerolog.Logger) *BatchReport {
	report := &BatchReport{Results: make([]FileResult, len(files))}
	if len(files) == 0 {
		return report
	}
	if opts.Cache == nil {
		opts.Cache = NewCurveCache()
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers > len(files) {
		workers = len(files)
	}

	pool, err := ants.NewPool(workers)
	if err != nil {
		// Pool construction only fails on a non-positive size; fall back to
		// sequential processing rather than dropping the run.
		for i, f := range files {
			report.Results[i] = processOne(i, len(files), f, opts, logger)
		}
		tally(report)
		return report
	}
	defer pool.Release()

	var wg sync.WaitGroup
	for i, f := range files {
		i, f := i, f
		wg.Add(1)
		if err = pool.Submit(func() {
			defer wg.Done()
			report.Results[i] = processOne(i, len(files), f, opts, logger)
		}); err != nil {
			report.Results[i] = FileResult{Path: f, Err: err}
			wg.Done()
		}
	}
	wg.Wait()

	tally(report)
	return report
}

func processOne(index, total int, path string, opts Options, logger zerolog.Logger) FileResult {
	taskLog := logger.With().
		Str("file", filepath.Base(path)).
		Int("index", index+1).
		Int("total", total).
		Logger()

	output := OutputPath(path, opts.OutDir)
	res := ProcessFile(path, output, opts, taskLog)
	if res.Err != nil {
		taskLog.Error().Err(res.Err).Msg("file failed")
	}
	return res
}

func tally(report *BatchReport) {
	for _, r := range report.Results {
		if r.Err != nil {
			report.Failed++
		} else {
			report.Succeeded++
		}
	}
}

// Summary renders the end-of-run counts the way the original tool printed
// them.
func (r *BatchReport) Summary() string {
	return fmt.Sprintf("%d succeeded, %d failed of %d files",
		r.Succeeded, r.Failed, len(r.Results))
}

// FailedFiles names every file that did not make it, with its reason.
func (r *BatchReport) FailedFiles() []string {
	var out []string
	for _, res := range r.Results {
		if res.Err != nil {
			out = append(out, fmt.Sprintf("%s: %v", res.Path, res.Err))
		}
	}
	return out
}
