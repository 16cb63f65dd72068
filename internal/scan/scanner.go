package scan

import (
	"context"
	"errors"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/michaelscutari/dircache/internal/entry"
	"github.com/michaelscutari/dircache/internal/pathutil"
)

// ErrStop may be returned by a WalkFunc to abort a walk early.
var ErrStop = errors.New("scan stopped")

// WalkFunc is called with each directory snapshot once it is complete,
// deepest directories first.
type WalkFunc func(snap *entry.Snapshot) error

// Scanner walks directories and builds snapshots.
type Scanner struct {
	opts *ScanOptions
	log  *zap.Logger
}

// NewScanner creates a new scanner. The options are copied.
func NewScanner(opts *ScanOptions) *Scanner {
	if opts == nil {
		opts = DefaultOptions()
	}
	o := *opts
	if o.Enumerator == nil {
		o.Enumerator = OSEnumerator{}
	}
	if o.Now == nil {
		o.Now = time.Now
	}
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	return &Scanner{opts: &o, log: o.Logger}
}

// Options returns the scanner's configuration.
func (s *Scanner) Options() *ScanOptions {
	return s.opts
}

// Scan reads path and, depending on the options, its whole subtree. It
// blocks until every directory has been read.
func (s *Scanner) Scan(path string) (*entry.Snapshot, error) {
	return s.Walk(context.Background(), path, nil)
}

// Walk is Scan with a cancellation point between directories and a
// callback for every completed directory snapshot.
func (s *Scanner) Walk(ctx context.Context, path string, fn WalkFunc) (*entry.Snapshot, error) {
	root := pathutil.Resolve(path)
	w := &walker{s: s, ctx: ctx, fn: fn}

	return w.dir(root, 0)
}

type walker struct {
	s   *Scanner
	ctx context.Context
	fn  WalkFunc
}

func (w *walker) dir(path string, depth int) (*entry.Snapshot, error) {
	if err := w.ctx.Err(); err != nil {
		return nil, err
	}

	opts := w.s.opts
	snap := entry.NewSnapshot(path)
	// Stamped before listing so a change made while the subtree is read
	// leaves the directory stale.
	started := opts.Now()

	err := opts.Enumerator.Enumerate(path, func(raw RawEntry) error {
		childPath := filepath.Join(path, raw.Name)
		key := pathutil.Key(raw.Name)
		if opts.ShouldIgnore(key, childPath) {
			return nil
		}
		if raw.Err != nil {
			w.s.log.Warn("skipping unreadable entry",
				zap.String("path", childPath), zap.Error(raw.Err))
			snap.Errors = append(snap.Errors, entry.ScanError{Path: childPath, Err: raw.Err})
			return nil
		}

		e := newEntry(path, childPath, raw)
		e.Key = uniqueKey(snap, key, raw.Name)
		if e.Kind == entry.KindDir {
			snap.Dirs[e.Key] = e
			snap.DirCount++
			return nil
		}
		snap.Files[e.Key] = e
		snap.FileCount++
		snap.Totals.TotalSize += e.Size
		snap.Totals.TotalFiles++
		return nil
	})
	if err != nil {
		return nil, &entry.ScanError{Path: path, Err: err}
	}

	// Descend in a stable order so nested errors and callbacks are deterministic.
	keys := make([]string, 0, len(snap.Dirs))
	for k := range snap.Dirs {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	for _, key := range keys {
		e := snap.Dirs[key]
		if opts.descend(depth + 1) {
			sub, err := w.dir(e.FullPath, depth+1)
			if err != nil {
				if !w.skippable(err) {
					return nil, err
				}
				w.skip(snap, err)
			} else {
				snap.Errors = append(snap.Errors, sub.Errors...)
				e.ChildFiles = sub.FileCount
				e.ChildDirs = sub.DirCount
				e.Totals = sub.Totals
				if snap.Subdirs == nil {
					snap.Subdirs = make(map[string]*entry.Snapshot)
				}
				snap.Subdirs[key] = sub
			}
		} else {
			files, dirs, err := w.count(e.FullPath)
			if err != nil {
				if !w.skippable(err) {
					return nil, err
				}
				w.skip(snap, err)
			} else {
				e.ChildFiles = files
				e.ChildDirs = dirs
				e.Totals = entry.Rollup{TotalFiles: files, TotalDirs: dirs}
			}
		}
		snap.Dirs[key] = e
		snap.Totals.Add(e.Totals)
	}

	snap.ScannedAt = started
	w.s.log.Debug("scanned directory",
		zap.String("path", path),
		zap.Int64("files", snap.FileCount),
		zap.Int64("dirs", snap.DirCount))

	if w.fn != nil {
		if err := w.fn(snap); err != nil {
			return nil, err
		}
	}
	return snap, nil
}

// count returns the number of non-ignored files and directories directly
// inside path without descending.
func (w *walker) count(path string) (files, dirs int64, err error) {
	if err := w.ctx.Err(); err != nil {
		return 0, 0, err
	}
	opts := w.s.opts
	err = opts.Enumerator.Enumerate(path, func(raw RawEntry) error {
		if raw.Err != nil || opts.ShouldIgnore(pathutil.Key(raw.Name), filepath.Join(path, raw.Name)) {
			return nil
		}
		if raw.IsDir {
			dirs++
		} else {
			files++
		}
		return nil
	})
	if err != nil {
		return 0, 0, &entry.ScanError{Path: path, Err: err}
	}
	return files, dirs, nil
}

// skippable reports whether a nested failure is recorded rather than returned.
func (w *walker) skippable(err error) bool {
	if w.s.opts.AbortOnNestedError || errors.Is(err, ErrStop) || w.ctx.Err() != nil {
		return false
	}
	var se *entry.ScanError
	return errors.As(err, &se)
}

// skip records a nested failure on the parent snapshot. Parents pick up
// their children's errors, so the root ends up holding all of them.
func (w *walker) skip(parent *entry.Snapshot, err error) {
	var se *entry.ScanError
	errors.As(err, &se)
	w.s.log.Warn("skipping unreadable directory",
		zap.String("path", se.Path), zap.Error(se.Err))
	parent.Errors = append(parent.Errors, *se)
}

func newEntry(parent, fullPath string, raw RawEntry) entry.Entry {
	e := entry.Entry{
		Kind:       entry.KindFile,
		FullPath:   fullPath,
		ParentPath: parent,
		Stat:       raw.Stat,
	}
	if raw.IsDir {
		e.Kind = entry.KindDir
		e.DirName = raw.Name
		e.Extension = entry.DirExtension
	} else {
		e.Filename = raw.Name
		e.Extension = pathutil.Extension(raw.Name)
	}
	return e
}

// uniqueKey returns the first of key, the exact name, or the name with a
// "~N" suffix that no file or directory in snap owns yet.
func uniqueKey(snap *entry.Snapshot, key, name string) string {
	if _, taken := snap.Lookup(key); !taken {
		return key
	}
	if _, taken := snap.Lookup(name); !taken {
		return name
	}
	for n := 2; ; n++ {
		candidate := name + "~" + strconv.Itoa(n)
		if _, taken := snap.Lookup(candidate); !taken {
			return candidate
		}
	}
}
