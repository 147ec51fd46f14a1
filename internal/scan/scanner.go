package scan

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charlievieth/fastwalk"
	"go.uber.org/zap"
)

// Fatal root errors, matchable with errors.Is. Everything below the root
// degrades to a Warning instead of failing the scan.
var (
	ErrRootNotFound      = errors.New("root does not exist")
	ErrRootNotReadable   = errors.New("root is not readable")
	ErrRootNotADirectory = errors.New("root is not a directory")
)

// DefaultProgressInterval is the default interval for progress updates.
const DefaultProgressInterval = 500 * time.Millisecond

// Options configures a scan.
type Options struct {
	// Mode selects kilobytes or inode counting.
	Mode Mode
	// FollowSymlinks recurses into symlinked directories. Termination under
	// cyclic links is guaranteed by a visited device+inode set.
	FollowSymlinks bool
	// Apparent uses the logical file length instead of allocated storage.
	Apparent bool
	// Workers bounds the number of concurrent subtree tasks (0 = NumCPU).
	Workers int
	// ProgressInterval controls progress callback cadence.
	ProgressInterval time.Duration
}

// childResult is the independent outcome of one subtree task. Results are
// combined in a single-threaded reduction after all tasks have joined.
type childResult struct {
	entry    Entry
	warnings []Warning
}

// collector aggregates one subtree from concurrent fastwalk callbacks using
// a mutex, since fastwalk invokes the callback from multiple goroutines.
type collector struct {
	mu       sync.Mutex
	metric   int64
	warnings []Warning
	seen     map[fileID]struct{} // non-nil only when following symlinks
}

func (c *collector) add(n int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.metric += n
}

func (c *collector) warn(path string, err error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.warnings = append(c.warnings, Warning{Path: path, Err: err})
}

// mark records id in the visited set and reports whether it was new.
func (c *collector) mark(id fileID) bool {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.seen[id]; ok {
		return false
	}

	c.seen[id] = struct{}{}

	return true
}

// startProgressReporter invokes hook(entries) on each tick until ctx is done.
func startProgressReporter(ctx context.Context, visited *atomic.Int64, hook func(int64), interval time.Duration) {
	if hook == nil {
		return
	}

	if interval <= 0 {
		interval = DefaultProgressInterval
	}

	ticker := time.NewTicker(interval)

	go func() {
		defer ticker.Stop()

		for {
			select {
			case <-ticker.C:
				hook(visited.Load())
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Scan aggregates a metric for every immediate child of root.
//
// Directory children are walked to unlimited depth in parallel; file and
// symlink children contribute their own size (or 1 in inode mode). Two scans
// of an unchanged tree return identical results regardless of scheduling:
// each subtree task produces its entry independently and the reduction is a
// plain sum.
//
// Progress updates with the number of visited entries are sent to
// progressHook if provided.
func Scan(ctx context.Context, root string, opts Options, logger *zap.Logger, progressHook func(int64)) (*Result, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	start := time.Now()

	root = filepath.Clean(root)

	info, err := os.Stat(root)

	switch {
	case errors.Is(err, fs.ErrNotExist):
		return nil, fmt.Errorf("%w: %q", ErrRootNotFound, root)
	case errors.Is(err, fs.ErrPermission):
		return nil, fmt.Errorf("%w: %q", ErrRootNotReadable, root)
	case err != nil:
		return nil, fmt.Errorf("accessing root %q: %w", root, err)
	case !info.IsDir():
		return nil, fmt.Errorf("%w: %q", ErrRootNotADirectory, root)
	}

	// ReadDir returns children sorted by name, which fixes the entry order
	// of the result independently of worker scheduling.
	children, err := os.ReadDir(root)
	if err != nil {
		if errors.Is(err, fs.ErrPermission) {
			return nil, fmt.Errorf("%w: %q", ErrRootNotReadable, root)
		}

		return nil, fmt.Errorf("reading root %q: %w", root, err)
	}

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}

	// Child context to ensure progress reporter cleanup.
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var visited atomic.Int64

	startProgressReporter(ctx, &visited, progressHook, opts.ProgressInterval)

	logger.Debug("starting scan",
		zap.String("root", root),
		zap.Stringer("mode", opts.Mode),
		zap.Int("children", len(children)),
		zap.Int("workers", workers))

	// Fan out one task per immediate child, bounded by the worker limit.
	// Each task writes only its own slot.
	results := make([]childResult, len(children))
	sem := make(chan struct{}, workers)

	var wg sync.WaitGroup

	for i, child := range children {
		wg.Add(1)
		sem <- struct{}{}

		go func(i int, child fs.DirEntry) {
			defer wg.Done()
			defer func() { <-sem }()

			results[i] = scanChild(ctx, filepath.Join(root, child.Name()), child, opts, logger, &visited)
		}(i, child)
	}

	wg.Wait()

	// Cancellation stops spawning and lets in-flight tasks drain; a canceled
	// scan returns no partial result.
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Single-threaded reduction. Summation is associative and commutative,
	// so completion order cannot change per-entry metrics or the total.
	result := &Result{
		Root:    root,
		Mode:    opts.Mode,
		Basis:   BasisAllocated,
		Entries: make([]Entry, 0, len(children)),
	}
	if opts.Apparent {
		result.Basis = BasisApparent
	}

	for i := range results {
		result.Entries = append(result.Entries, results[i].entry)
		result.Total += results[i].entry.Metric
		result.Warnings = append(result.Warnings, results[i].warnings...)
	}

	result.Elapsed = time.Since(start)

	logger.Debug("scan finished",
		zap.Int64("total", result.Total),
		zap.Int("warnings", len(result.Warnings)),
		zap.Duration("elapsed", result.Elapsed))

	return result, nil
}

// scanChild computes the metric for a single immediate child of the root.
// It never fails: unreadable paths contribute zero and a warning.
func scanChild(ctx context.Context, path string, d fs.DirEntry, opts Options, logger *zap.Logger, visited *atomic.Int64) childResult {
	res := childResult{entry: Entry{Name: d.Name(), Kind: KindFromMode(d.Type())}}

	visited.Add(1)

	isDir := d.IsDir()

	// A symlink child is normally counted by its own size and never entered,
	// which also rules out loops through cyclic links. With FollowSymlinks a
	// link to a directory is walked like one.
	if res.entry.Kind == KindSymlink && opts.FollowSymlinks {
		info, err := os.Stat(path)
		if err != nil {
			logger.Warn("unreadable symlink target", zap.String("path", path), zap.Error(err))
			res.warnings = append(res.warnings, Warning{Path: path, Err: err})

			return res
		}

		if !info.IsDir() {
			// Followed link to a file: the target's size counts.
			if opts.Mode == ModeInodes {
				res.entry.Metric = 1
			} else {
				res.entry.Metric = kilobytes(sizeBytes(info, opts.Apparent))
			}

			return res
		}

		isDir = true
	}

	if !isDir {
		info, err := os.Lstat(path)
		if err != nil {
			logger.Warn("unreadable entry", zap.String("path", path), zap.Error(err))
			res.warnings = append(res.warnings, Warning{Path: path, Err: err})

			return res
		}

		if opts.Mode == ModeInodes {
			res.entry.Metric = 1
		} else {
			res.entry.Metric = kilobytes(sizeBytes(info, opts.Apparent))
		}

		return res
	}

	col := &collector{}

	if opts.FollowSymlinks {
		col.seen = make(map[fileID]struct{})

		// Seed with the subtree root so a link cycling back to it terminates.
		if info, err := os.Stat(path); err == nil {
			if id, ok := fileIDOf(info); ok {
				col.seen[id] = struct{}{}
			}
		}
	}

	conf := &fastwalk.Config{
		Follow: opts.FollowSymlinks,
	}

	walkErr := fastwalk.Walk(conf, path, func(p string, de fs.DirEntry, err error) error {
		if err != nil {
			logger.Warn("skipping unreadable entry", zap.String("path", p), zap.Error(err))
			col.warn(p, err)

			return nil
		}

		select {
		case <-ctx.Done():
			return context.Canceled
		default:
		}

		// The child itself is identified by the caller; its own metadata is
		// not part of the metric.
		if p == path {
			return nil
		}

		visited.Add(1)

		info, err := de.Info()
		if err != nil {
			logger.Warn("unreadable metadata", zap.String("path", p), zap.Error(err))
			col.warn(p, err)

			return nil
		}

		// Count each identity once when following links, so hard links and
		// revisited directories cannot inflate the total or loop forever.
		if col.seen != nil {
			if id, ok := fileIDOf(info); ok && !col.mark(id) {
				if de.IsDir() {
					return filepath.SkipDir
				}

				return nil
			}
		}

		if opts.Mode == ModeInodes {
			col.add(1)

			return nil
		}

		// Directory metadata carries no size of its own.
		if de.IsDir() {
			return nil
		}

		col.add(kilobytes(sizeBytes(info, opts.Apparent)))

		return nil
	})
	if walkErr != nil && !errors.Is(walkErr, context.Canceled) {
		logger.Warn("subtree walk aborted", zap.String("path", path), zap.Error(walkErr))
		col.warn(path, walkErr)
	}

	res.entry.Metric = col.metric
	res.warnings = append(res.warnings, col.warnings...)

	return res
}

// sizeBytes returns the byte size backing the kilobyte metric: allocated
// storage by default, the logical length when apparent is set or the
// platform cannot report allocation.
func sizeBytes(info fs.FileInfo, apparent bool) int64 {
	if apparent {
		return info.Size()
	}

	if n, ok := allocatedBytes(info); ok {
		return n
	}

	return info.Size()
}

// kilobytes rounds bytes up to the next whole kilobyte; zero stays zero.
func kilobytes(n int64) int64 {
	if n <= 0 {
		return 0
	}

	return (n + 1023) / 1024
}
