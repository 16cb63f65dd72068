package entry

import "time"

// Snapshot is the scan result for exactly one directory level.
// A snapshot is never mutated once its scan has returned.
type Snapshot struct {
	Path      string
	Files     map[string]Entry
	Dirs      map[string]Entry
	FileCount int64
	DirCount  int64
	ScannedAt time.Time

	// Generation is assigned by the cache when the snapshot is stored.
	Generation uint64

	// Totals covers the whole scanned subtree, not just this level.
	Totals Rollup

	// Errors lists children anywhere in this subtree that could not be
	// read. Unreadable directories stay listed with zero counts.
	Errors []ScanError

	// Subdirs holds nested snapshots keyed like Dirs, when the scan recursed.
	Subdirs map[string]*Snapshot
}

// NewSnapshot returns an empty snapshot for path.
func NewSnapshot(path string) *Snapshot {
	return &Snapshot{
		Path:  path,
		Files: make(map[string]Entry),
		Dirs:  make(map[string]Entry),
	}
}

// Lookup finds an entry by key in either mapping.
func (s *Snapshot) Lookup(key string) (Entry, bool) {
	if e, ok := s.Files[key]; ok {
		return e, true
	}
	e, ok := s.Dirs[key]
	return e, ok
}

// Walk calls fn for s and every nested snapshot, parents first.
func (s *Snapshot) Walk(fn func(*Snapshot)) {
	fn(s)
	for _, sub := range s.Subdirs {
		sub.Walk(fn)
	}
}
