// Package cache keeps directory snapshots in memory and rescans a
// directory only when its modification time has moved past the last scan.
package cache

import (
	"errors"
	"os"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/michaelscutari/dircache/internal/entry"
	"github.com/michaelscutari/dircache/internal/natural"
	"github.com/michaelscutari/dircache/internal/pathutil"
	"github.com/michaelscutari/dircache/internal/scan"
)

// Scanner produces a snapshot for a directory.
type Scanner interface {
	Scan(path string) (*entry.Snapshot, error)
}

// Clock supplies the current time and on-disk modification times.
type Clock interface {
	Now() time.Time
	ModTime(path string) (time.Time, error)
}

// OSClock reads the wall clock and the local filesystem.
type OSClock struct{}

func (OSClock) Now() time.Time { return time.Now() }

func (OSClock) ModTime(path string) (time.Time, error) {
	info, err := os.Stat(path)
	if err != nil {
		return time.Time{}, err
	}
	return info.ModTime(), nil
}

// Options configures a Cache.
type Options struct {
	// Scanner defaults to a recursive scan.Scanner stamped by Clock.
	Scanner Scanner
	Clock   Clock
	// Compare orders names. Defaults to natural.Compare.
	Compare func(a, b string) int
	// MaxEntries bounds the number of cached paths, evicting the least
	// recently used. Zero means unbounded.
	MaxEntries int
	// CacheNested stores every nested snapshot of a recursive scan under
	// its own path as well.
	CacheNested bool
	Logger      *zap.Logger
}

// DefaultOptions returns an unbounded cache over the local filesystem.
func DefaultOptions() *Options {
	return &Options{
		Clock:   OSClock{},
		Compare: natural.Compare,
		Logger:  zap.NewNop(),
	}
}

// WithScanner sets the scanner.
func (o *Options) WithScanner(s Scanner) *Options {
	o.Scanner = s
	return o
}

// WithClock sets the clock.
func (o *Options) WithClock(c Clock) *Options {
	o.Clock = c
	return o
}

// WithMaxEntries bounds the cache.
func (o *Options) WithMaxEntries(n int) *Options {
	o.MaxEntries = n
	return o
}

// WithCacheNested sets whether nested snapshots are stored.
func (o *Options) WithCacheNested(nested bool) *Options {
	o.CacheNested = nested
	return o
}

// WithLogger sets the logger.
func (o *Options) WithLogger(l *zap.Logger) *Options {
	o.Logger = l
	return o
}

// Cache maps normalized absolute directory paths to snapshots.
//
// Snapshots are immutable; a rescan replaces the stored pointer, so a
// reader never observes a half-built snapshot. Query results are copies.
type Cache struct {
	opts Options
	log  *zap.Logger

	mu    sync.Mutex
	snaps map[string]*entry.Snapshot
	lru   *lru
	gen   uint64
}

// New creates a cache. A nil opts uses DefaultOptions.
func New(opts *Options) *Cache {
	if opts == nil {
		opts = DefaultOptions()
	}
	o := *opts
	if o.Clock == nil {
		o.Clock = OSClock{}
	}
	if o.Compare == nil {
		o.Compare = natural.Compare
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.Scanner == nil {
		o.Scanner = scan.NewScanner(scan.DefaultOptions().
			WithClock(o.Clock.Now).
			WithLogger(o.Logger))
	}

	c := &Cache{
		opts:  o,
		log:   o.Logger,
		snaps: make(map[string]*entry.Snapshot),
	}
	if o.MaxEntries > 0 {
		c.lru = newLRU(o.MaxEntries)
	}
	return c
}

// IsCached reports whether path has a snapshot, fresh or not.
func (c *Cache) IsCached(path string) bool {
	_, ok := c.get(pathutil.Resolve(path))
	return ok
}

// IsStale reports whether path is absent from the cache or its current
// modification time is strictly after the last scan. A path whose
// modification time cannot be read is stale.
func (c *Cache) IsStale(path string) bool {
	return c.isStale(pathutil.Resolve(path))
}

func (c *Cache) isStale(key string) bool {
	snap, ok := c.get(key)
	if !ok {
		return true
	}
	mtime, err := c.opts.Clock.ModTime(key)
	if err != nil {
		return true
	}
	return mtime.After(snap.ScannedAt)
}

// EnsureFresh scans path if it is stale and stores the result. A failed
// scan leaves any previous snapshot untouched.
func (c *Cache) EnsureFresh(path string) error {
	key := pathutil.Resolve(path)
	if !c.isStale(key) {
		return nil
	}

	cached := c.IsCached(key)
	snap, err := c.opts.Scanner.Scan(key)
	if err != nil {
		var se *entry.ScanError
		if !errors.As(err, &se) {
			err = &entry.ScanError{Path: key, Err: err}
		}
		c.log.Warn("scan failed", zap.String("path", key), zap.Error(err))
		return err
	}

	c.log.Debug("scanned",
		zap.String("path", key),
		zap.Bool("rescan", cached),
		zap.Int64("files", snap.FileCount),
		zap.Int64("dirs", snap.DirCount),
		zap.Int("skipped", len(snap.Errors)))

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.opts.CacheNested {
		for _, sub := range snap.Subdirs {
			sub.Walk(func(s *entry.Snapshot) {
				c.storeLocked(s.Path, s)
			})
		}
	}
	// The requested path goes last so a bounded cache keeps it.
	c.storeLocked(key, snap)
	return nil
}

func (c *Cache) storeLocked(key string, snap *entry.Snapshot) {
	c.gen++
	snap.Generation = c.gen
	c.snaps[key] = snap
	if c.lru == nil {
		return
	}
	if evicted, ok := c.lru.Add(key); ok {
		delete(c.snaps, evicted)
		c.log.Debug("evicted", zap.String("path", evicted))
	}
}

// Forget drops the snapshot for path, if any.
func (c *Cache) Forget(path string) {
	key := pathutil.Resolve(path)
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.snaps, key)
	if c.lru != nil {
		c.lru.Remove(key)
	}
}

// Len returns the number of cached paths.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.snaps)
}

// Paths returns the cached paths in sorted order.
func (c *Cache) Paths() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	paths := make([]string, 0, len(c.snaps))
	for p := range c.snaps {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths
}

// Info describes a cached snapshot without exposing its entries.
type Info struct {
	Path       string
	Generation uint64
	ScannedAt  time.Time
	FileCount  int64
	DirCount   int64
	Totals     entry.Rollup
	Errors     []entry.ScanError
}

// Info returns the summary of the snapshot stored for path.
func (c *Cache) Info(path string) (Info, error) {
	key := pathutil.Resolve(path)
	snap, ok := c.get(key)
	if !ok {
		return Info{}, &entry.NotCachedError{Path: key}
	}
	return Info{
		Path:       snap.Path,
		Generation: snap.Generation,
		ScannedAt:  snap.ScannedAt,
		FileCount:  snap.FileCount,
		DirCount:   snap.DirCount,
		Totals:     snap.Totals,
		Errors:     append([]entry.ScanError(nil), snap.Errors...),
	}, nil
}

func (c *Cache) get(key string) (*entry.Snapshot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	snap, ok := c.snaps[key]
	if ok && c.lru != nil {
		c.lru.Touch(key)
	}
	return snap, ok
}
