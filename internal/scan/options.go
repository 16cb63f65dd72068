package scan

import (
	"regexp"
	"time"

	"go.uber.org/zap"

	"github.com/michaelscutari/dircache/internal/pathutil"
)

// DefaultIgnoreNames are skipped in every directory, compared case-insensitively.
var DefaultIgnoreNames = []string{".ds_store", ".htaccess"}

// ScanOptions configures the scanning behavior.
type ScanOptions struct {
	// IgnoreNames holds case-folded base names to skip.
	IgnoreNames map[string]struct{}

	// ExcludePatterns are regular expressions matched against full paths.
	ExcludePatterns []*regexp.Regexp

	// Recursive descends into subdirectories. When false only the
	// requested directory is scanned and child counts come from a single
	// enumeration of each subdirectory.
	Recursive bool

	// MaxDepth limits recursion below the scanned directory.
	// Zero means unlimited.
	MaxDepth int

	// AbortOnNestedError makes an unreadable nested directory fail the
	// whole scan. By default it is recorded with zero counts and skipped.
	AbortOnNestedError bool

	// Enumerator reads directories. Defaults to OSEnumerator.
	Enumerator Enumerator

	// Now stamps snapshots. Defaults to time.Now.
	Now func() time.Time

	Logger *zap.Logger
}

// DefaultOptions returns sensible defaults for scanning.
func DefaultOptions() *ScanOptions {
	opts := &ScanOptions{
		IgnoreNames: make(map[string]struct{}),
		Recursive:   true,
		Enumerator:  OSEnumerator{},
		Now:         time.Now,
		Logger:      zap.NewNop(),
	}
	for _, name := range DefaultIgnoreNames {
		opts.AddIgnoreName(name)
	}
	return opts
}

// WithRecursive sets whether subdirectories are scanned.
func (o *ScanOptions) WithRecursive(recursive bool) *ScanOptions {
	o.Recursive = recursive
	return o
}

// WithMaxDepth sets the recursion limit.
func (o *ScanOptions) WithMaxDepth(n int) *ScanOptions {
	o.MaxDepth = n
	return o
}

// WithAbortOnNestedError sets the nested error policy.
func (o *ScanOptions) WithAbortOnNestedError(abort bool) *ScanOptions {
	o.AbortOnNestedError = abort
	return o
}

// WithEnumerator sets the directory reader.
func (o *ScanOptions) WithEnumerator(e Enumerator) *ScanOptions {
	o.Enumerator = e
	return o
}

// WithClock sets the timestamp source.
func (o *ScanOptions) WithClock(now func() time.Time) *ScanOptions {
	o.Now = now
	return o
}

// WithLogger sets the logger.
func (o *ScanOptions) WithLogger(l *zap.Logger) *ScanOptions {
	o.Logger = l
	return o
}

// AddIgnoreName adds a base name to skip.
func (o *ScanOptions) AddIgnoreName(name string) {
	if o.IgnoreNames == nil {
		o.IgnoreNames = make(map[string]struct{})
	}
	o.IgnoreNames[pathutil.Key(name)] = struct{}{}
}

// AddExcludePattern adds a pattern to exclude.
func (o *ScanOptions) AddExcludePattern(pattern string) error {
	re, err := regexp.Compile(pattern)
	if err != nil {
		return err
	}
	o.ExcludePatterns = append(o.ExcludePatterns, re)
	return nil
}

// ShouldExclude checks if a path matches any exclude pattern.
func (o *ScanOptions) ShouldExclude(path string) bool {
	for _, re := range o.ExcludePatterns {
		if re.MatchString(path) {
			return true
		}
	}
	return false
}

// ShouldIgnore reports whether a child with the given folded key and full
// path is skipped.
func (o *ScanOptions) ShouldIgnore(key, path string) bool {
	if _, ok := o.IgnoreNames[key]; ok {
		return true
	}
	return o.ShouldExclude(path)
}

// descend reports whether directories at depth are scanned rather than counted.
func (o *ScanOptions) descend(depth int) bool {
	if !o.Recursive {
		return false
	}
	return o.MaxDepth <= 0 || depth <= o.MaxDepth
}
