package cache

import (
	"fmt"
	"slices"
	"strings"

	"github.com/michaelscutari/dircache/internal/entry"
	"github.com/michaelscutari/dircache/internal/pathutil"
)

// Order selects the sort key for cached entries.
type Order int

const (
	OrderName Order = iota
	OrderModified
	OrderCreated
)

func (o Order) String() string {
	switch o {
	case OrderModified:
		return "mtime"
	case OrderCreated:
		return "ctime"
	default:
		return "name"
	}
}

// ParseOrder parses the flag form of an Order.
func ParseOrder(s string) (Order, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "name", "":
		return OrderName, nil
	case "mtime", "modified", "lmod":
		return OrderModified, nil
	case "ctime", "created":
		return OrderCreated, nil
	}
	return OrderName, fmt.Errorf("invalid sort order %q (expected name|mtime|ctime)", s)
}

// SortedBy returns copies of the files and directories cached for path,
// sorted by order. It never scans; call EnsureFresh first.
//
// Ties are broken by natural name order so results are deterministic.
// reverse flips the final sequence exactly.
func (c *Cache) SortedBy(path string, order Order, reverse bool) ([]entry.Entry, []entry.Entry, error) {
	key := pathutil.Resolve(path)
	snap, ok := c.get(key)
	if !ok {
		return nil, nil, &entry.NotCachedError{Path: key}
	}
	files := c.sortEntries(snap.Files, order, reverse)
	dirs := c.sortEntries(snap.Dirs, order, reverse)
	return files, dirs, nil
}

// SiblingOffset finds the directory called name (trimmed, case-insensitive)
// in the sorted directory list of path and returns the index offset
// positions away, clamped to the list. ok is false when name is not listed.
func (c *Cache) SiblingOffset(path, name string, offset int, order Order, reverse bool) (int, bool, error) {
	_, dirs, err := c.SortedBy(path, order, reverse)
	if err != nil {
		return 0, false, err
	}

	target := pathutil.Key(name)
	found := -1
	for i := range dirs {
		if pathutil.Key(dirs[i].DirName) == target {
			found = i
			break
		}
	}
	if found < 0 {
		return 0, false, nil
	}
	return clamp(found+offset, 0, len(dirs)-1), true, nil
}

func (c *Cache) sortEntries(m map[string]entry.Entry, order Order, reverse bool) []entry.Entry {
	out := make([]entry.Entry, 0, len(m))
	for _, e := range m {
		out = append(out, e)
	}

	cmp := c.opts.Compare
	slices.SortFunc(out, func(a, b entry.Entry) int {
		if n := cmp(a.Name(), b.Name()); n != 0 {
			return n
		}
		return strings.Compare(a.Name(), b.Name())
	})

	switch order {
	case OrderModified:
		slices.SortStableFunc(out, func(a, b entry.Entry) int {
			return a.ModTime.Compare(b.ModTime)
		})
	case OrderCreated:
		slices.SortStableFunc(out, func(a, b entry.Entry) int {
			return a.ChangeTime.Compare(b.ChangeTime)
		})
	}

	if reverse {
		slices.Reverse(out)
	}
	return out
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
