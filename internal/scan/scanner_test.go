package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/michaelscutari/dircache/internal/entry"
)

// fakeFS is an in-memory Enumerator keyed by absolute directory path.
type fakeFS struct {
	dirs map[string][]RawEntry
	errs map[string]error
}

func (f *fakeFS) Enumerate(dir string, fn func(RawEntry) error) error {
	if err, ok := f.errs[dir]; ok {
		return err
	}
	children, ok := f.dirs[dir]
	if !ok {
		return os.ErrNotExist
	}
	for _, c := range children {
		if err := fn(c); err != nil {
			return err
		}
	}
	return nil
}

func file(name string, size int64) RawEntry {
	return RawEntry{Name: name, Stat: entry.Stat{Size: size, Mode: 0644}}
}

func dir(name string) RawEntry {
	return RawEntry{Name: name, IsDir: true, Stat: entry.Stat{Mode: os.ModeDir | 0755}}
}

func writeFile(t *testing.T, path string, data string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(data), 0644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func mkdir(t *testing.T, path string) {
	t.Helper()
	if err := os.MkdirAll(path, 0755); err != nil {
		t.Fatalf("mkdir %s: %v", path, err)
	}
}

func TestScanBuildsEntriesAndChildCounts(t *testing.T) {
	root := t.TempDir()
	writeFile(t, filepath.Join(root, "Notes.TXT"), "hello")
	writeFile(t, filepath.Join(root, ".DS_Store"), "junk")
	writeFile(t, filepath.Join(root, ".htaccess"), "junk")
	mkdir(t, filepath.Join(root, "Photos", "2019"))
	writeFile(t, filepath.Join(root, "Photos", "a.jpg"), "aa")
	writeFile(t, filepath.Join(root, "Photos", "b.jpg"), "bbb")
	writeFile(t, filepath.Join(root, "Photos", "2019", "c.jpg"), "c")
	mkdir(t, filepath.Join(root, "Empty"))

	scanner := NewScanner(DefaultOptions())
	snap, err := scanner.Scan(root)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}

	if snap.FileCount != 1 || snap.DirCount != 2 {
		t.Fatalf("expected 1 file and 2 dirs, got %d/%d", snap.FileCount, snap.DirCount)
	}
	if _, ok := snap.Files[".ds_store"]; ok {
		t.Fatalf("expected .DS_Store to be ignored")
	}

	notes, ok := snap.Files["notes.txt"]
	if !ok {
		t.Fatalf("expected notes.txt keyed by folded name, got %v", snap.Files)
	}
	if notes.Filename != "Notes.TXT" || notes.Extension != "txt" || notes.Size != 5 {
		t.Fatalf("unexpected file entry: %+v", notes)
	}
	if notes.DirName != "" || notes.Kind != entry.KindFile {
		t.Fatalf("file entry should not carry a directory name: %+v", notes)
	}
	if notes.ParentPath != snap.Path || notes.FullPath != filepath.Join(snap.Path, "Notes.TXT") {
		t.Fatalf("unexpected paths: parent=%s full=%s", notes.ParentPath, notes.FullPath)
	}

	photos := snap.Dirs["photos"]
	if photos.Filename != "" || photos.DirName != "Photos" || photos.Extension != "dir" {
		t.Fatalf("unexpected directory entry: %+v", photos)
	}
	if photos.ChildFiles != 2 || photos.ChildDirs != 1 {
		t.Fatalf("expected photos to hold 2 files and 1 dir, got %d/%d", photos.ChildFiles, photos.ChildDirs)
	}
	if photos.Totals.TotalFiles != 3 || photos.Totals.TotalDirs != 1 || photos.Totals.TotalSize != 6 {
		t.Fatalf("unexpected photos rollup: %+v", photos.Totals)
	}

	empty := snap.Dirs["empty"]
	if empty.ChildFiles != 0 || empty.ChildDirs != 0 {
		t.Fatalf("expected empty dir counts to be zero, got %d/%d", empty.ChildFiles, empty.ChildDirs)
	}

	if snap.Totals.TotalFiles != 4 || snap.Totals.TotalDirs != 3 {
		t.Fatalf("unexpected root rollup: %+v", snap.Totals)
	}

	nested := snap.Subdirs["photos"]
	if nested == nil || nested.Subdirs["2019"] == nil {
		t.Fatalf("expected nested snapshots to be kept")
	}
	if nested.Subdirs["2019"].FileCount != 1 {
		t.Fatalf("unexpected nested file count %d", nested.Subdirs["2019"].FileCount)
	}
}

func TestScanEmptyDirectory(t *testing.T) {
	root := t.TempDir()
	snap, err := NewScanner(nil).Scan(root)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(snap.Files) != 0 || len(snap.Dirs) != 0 || snap.FileCount != 0 || snap.DirCount != 0 {
		t.Fatalf("expected empty snapshot, got %+v", snap)
	}
	if snap.ScannedAt.IsZero() {
		t.Fatalf("expected scan time to be recorded")
	}
}

func TestScanMissingRootReturnsScanError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "nope")
	_, err := NewScanner(nil).Scan(missing)
	var se *entry.ScanError
	if !errors.As(err, &se) {
		t.Fatalf("expected ScanError, got %v", err)
	}
	if se.Path != missing {
		t.Fatalf("unexpected error path %s", se.Path)
	}
}

func TestScanDoesNotFollowSymlinks(t *testing.T) {
	root := t.TempDir()
	target := filepath.Join(root, "target")
	mkdir(t, target)
	writeFile(t, filepath.Join(target, "inside.txt"), "x")
	if err := os.Symlink(target, filepath.Join(root, "link")); err != nil {
		t.Skipf("symlinks unsupported: %v", err)
	}

	snap, err := NewScanner(nil).Scan(root)
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	link, ok := snap.Files["link"]
	if !ok {
		t.Fatalf("expected symlink to be recorded as a file entry")
	}
	if !link.IsSymlink() {
		t.Fatalf("expected symlink mode, got %v", link.Mode)
	}
	if snap.DirCount != 1 {
		t.Fatalf("expected only the real directory to count, got %d", snap.DirCount)
	}
}

func TestScanSkipsUnreadableNestedDirectory(t *testing.T) {
	fs := &fakeFS{
		dirs: map[string][]RawEntry{
			"/vfs":    {dir("ok"), dir("locked"), file("a.txt", 1)},
			"/vfs/ok": {file("b.txt", 2)},
		},
		errs: map[string]error{"/vfs/locked": os.ErrPermission},
	}
	opts := DefaultOptions().WithEnumerator(fs)

	snap, err := NewScanner(opts).Scan("/vfs")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	locked := snap.Dirs["locked"]
	if locked.ChildFiles != 0 || locked.ChildDirs != 0 {
		t.Fatalf("expected zero counts for unreadable dir, got %d/%d", locked.ChildFiles, locked.ChildDirs)
	}
	if snap.DirCount != 2 {
		t.Fatalf("expected unreadable dir to still be listed, got %d dirs", snap.DirCount)
	}
	if len(snap.Errors) != 1 || snap.Errors[0].Path != "/vfs/locked" {
		t.Fatalf("expected one recorded error, got %+v", snap.Errors)
	}
	if !errors.Is(snap.Errors[0].Err, os.ErrPermission) {
		t.Fatalf("unexpected recorded cause %v", snap.Errors[0].Err)
	}
	if snap.Dirs["ok"].ChildFiles != 1 {
		t.Fatalf("expected sibling scan to continue")
	}
}

func TestScanAbortsOnNestedErrorWhenConfigured(t *testing.T) {
	fs := &fakeFS{
		dirs: map[string][]RawEntry{
			"/vfs": {dir("locked")},
		},
		errs: map[string]error{"/vfs/locked": os.ErrPermission},
	}
	opts := DefaultOptions().WithEnumerator(fs).WithAbortOnNestedError(true)

	_, err := NewScanner(opts).Scan("/vfs")
	var se *entry.ScanError
	if !errors.As(err, &se) || se.Path != "/vfs/locked" {
		t.Fatalf("expected nested ScanError, got %v", err)
	}
}

func TestScanMaxDepthCountsWithoutDescending(t *testing.T) {
	fs := &fakeFS{
		dirs: map[string][]RawEntry{
			"/vfs":       {dir("a")},
			"/vfs/a":     {dir("b"), file("x", 1)},
			"/vfs/a/b":   {file("y", 1), file("z", 1), dir("c")},
			"/vfs/a/b/c": {file("deep", 1)},
		},
	}
	opts := DefaultOptions().WithEnumerator(fs).WithMaxDepth(1)

	snap, err := NewScanner(opts).Scan("/vfs")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	a := snap.Subdirs["a"]
	if a == nil {
		t.Fatalf("expected depth 1 directory to be scanned")
	}
	if len(a.Subdirs) != 0 {
		t.Fatalf("expected no snapshots beyond max depth")
	}
	b := a.Dirs["b"]
	if b.ChildFiles != 2 || b.ChildDirs != 1 {
		t.Fatalf("expected counted children 2/1, got %d/%d", b.ChildFiles, b.ChildDirs)
	}
}

func TestScanNonRecursive(t *testing.T) {
	fs := &fakeFS{
		dirs: map[string][]RawEntry{
			"/vfs":   {dir("a"), file("f", 1)},
			"/vfs/a": {file("x", 1), file(".DS_Store", 1)},
		},
	}
	opts := DefaultOptions().WithEnumerator(fs).WithRecursive(false)

	snap, err := NewScanner(opts).Scan("/vfs")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if len(snap.Subdirs) != 0 {
		t.Fatalf("expected no nested snapshots")
	}
	if snap.Dirs["a"].ChildFiles != 1 {
		t.Fatalf("expected ignored names to be skipped when counting, got %d", snap.Dirs["a"].ChildFiles)
	}
}

func TestScanKeepsCaseCollisions(t *testing.T) {
	tests := []struct {
		name     string
		children []RawEntry
		files    map[string]string
		dirs     map[string]string
	}{
		{
			name:     "lowercase first",
			children: []RawEntry{file("readme", 1), file("README", 2)},
			files:    map[string]string{"readme": "readme", "README": "README"},
		},
		{
			name:     "uppercase first",
			children: []RawEntry{file("README", 1), file("readme", 2)},
			files:    map[string]string{"readme": "README", "readme~2": "readme"},
		},
		{
			name:     "directory then file",
			children: []RawEntry{dir("Docs"), file("docs", 1)},
			files:    map[string]string{"docs~2": "docs"},
			dirs:     map[string]string{"docs": "Docs"},
		},
		{
			name:     "three spellings",
			children: []RawEntry{file("Readme", 1), file("readme", 1), file("README", 1)},
			files:    map[string]string{"readme": "Readme", "readme~2": "readme", "README": "README"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			fs := &fakeFS{dirs: map[string][]RawEntry{"/vfs": tt.children}}
			snap, err := NewScanner(DefaultOptions().WithEnumerator(fs)).Scan("/vfs")
			if err != nil {
				t.Fatalf("scan: %v", err)
			}
			if int(snap.FileCount) != len(snap.Files) || int(snap.DirCount) != len(snap.Dirs) {
				t.Fatalf("counts %d/%d disagree with maps %d/%d",
					snap.FileCount, snap.DirCount, len(snap.Files), len(snap.Dirs))
			}
			if len(snap.Files) != len(tt.files) || len(snap.Dirs) != len(tt.dirs) {
				t.Fatalf("expected every name kept, got files=%v dirs=%v", snap.Files, snap.Dirs)
			}
			for key, name := range tt.files {
				e, ok := snap.Files[key]
				if !ok || e.Filename != name || e.Key != key {
					t.Fatalf("expected file %q under key %q, got %+v", name, key, snap.Files)
				}
				if _, both := snap.Dirs[key]; both {
					t.Fatalf("key %q present in both files and dirs", key)
				}
			}
			for key, name := range tt.dirs {
				e, ok := snap.Dirs[key]
				if !ok || e.DirName != name || e.Key != key {
					t.Fatalf("expected dir %q under key %q, got %+v", name, key, snap.Dirs)
				}
			}
		})
	}
}

func TestScanRecordsUnreadableEntries(t *testing.T) {
	broken := RawEntry{Name: "gone.txt", Err: os.ErrNotExist}
	fs := &fakeFS{
		dirs: map[string][]RawEntry{
			"/vfs":   {dir("a"), file("ok.txt", 1)},
			"/vfs/a": {broken, file("b.txt", 1)},
		},
	}
	snap, err := NewScanner(DefaultOptions().WithEnumerator(fs)).Scan("/vfs")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	a := snap.Subdirs["a"]
	if a.FileCount != 1 {
		t.Fatalf("expected unreadable entry to stay uncounted, got %d", a.FileCount)
	}
	if len(a.Errors) != 1 || a.Errors[0].Path != "/vfs/a/gone.txt" {
		t.Fatalf("expected error on the containing snapshot, got %+v", a.Errors)
	}
	if len(snap.Errors) != 1 || !errors.Is(snap.Errors[0].Err, os.ErrNotExist) {
		t.Fatalf("expected error propagated to the root, got %+v", snap.Errors)
	}
}

func TestScanAttachesNestedErrorsToEachAncestor(t *testing.T) {
	fs := &fakeFS{
		dirs: map[string][]RawEntry{
			"/vfs":         {dir("a"), dir("b")},
			"/vfs/a":       {dir("inner")},
			"/vfs/a/inner": {dir("locked")},
			"/vfs/b":       {file("x", 1)},
		},
		errs: map[string]error{"/vfs/a/inner/locked": os.ErrPermission},
	}
	snap, err := NewScanner(DefaultOptions().WithEnumerator(fs)).Scan("/vfs")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	a := snap.Subdirs["a"]
	inner := a.Subdirs["inner"]
	for _, s := range []*entry.Snapshot{snap, a, inner} {
		if len(s.Errors) != 1 || s.Errors[0].Path != "/vfs/a/inner/locked" {
			t.Fatalf("expected %s to report the skipped directory, got %+v", s.Path, s.Errors)
		}
	}
	if b := snap.Subdirs["b"]; len(b.Errors) != 0 {
		t.Fatalf("expected unrelated sibling to report nothing, got %+v", b.Errors)
	}
}

func TestScanStampsBeforeListing(t *testing.T) {
	fs := &fakeFS{
		dirs: map[string][]RawEntry{
			"/vfs":     {dir("sub")},
			"/vfs/sub": {file("x", 1)},
		},
	}
	tick := time.Date(2020, 1, 1, 0, 0, 0, 0, time.UTC)
	clock := func() time.Time {
		tick = tick.Add(time.Second)
		return tick
	}
	snap, err := NewScanner(DefaultOptions().WithEnumerator(fs).WithClock(clock)).Scan("/vfs")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	sub := snap.Subdirs["sub"]
	if !snap.ScannedAt.Before(sub.ScannedAt) {
		t.Fatalf("expected root stamped before its subtree was read, root=%v sub=%v",
			snap.ScannedAt, sub.ScannedAt)
	}
}

func TestWalkVisitsDeepestFirstAndStops(t *testing.T) {
	fs := &fakeFS{
		dirs: map[string][]RawEntry{
			"/vfs":     {dir("a"), dir("b")},
			"/vfs/a":   {dir("c")},
			"/vfs/a/c": {},
			"/vfs/b":   {},
		},
	}
	scanner := NewScanner(DefaultOptions().WithEnumerator(fs))

	var visited []string
	snap, err := scanner.Walk(context.Background(), "/vfs", func(s *entry.Snapshot) error {
		visited = append(visited, s.Path)
		return nil
	})
	if err != nil {
		t.Fatalf("walk: %v", err)
	}
	want := []string{"/vfs/a/c", "/vfs/a", "/vfs/b", "/vfs"}
	if len(visited) != len(want) {
		t.Fatalf("unexpected visit order %v", visited)
	}
	for i := range want {
		if visited[i] != want[i] {
			t.Fatalf("unexpected visit order %v", visited)
		}
	}
	if snap.Path != "/vfs" {
		t.Fatalf("unexpected root %s", snap.Path)
	}

	_, err = scanner.Walk(context.Background(), "/vfs", func(s *entry.Snapshot) error {
		if s.Path == "/vfs/a" {
			return ErrStop
		}
		return nil
	})
	if !errors.Is(err, ErrStop) {
		t.Fatalf("expected ErrStop, got %v", err)
	}
}

func TestWalkHonorsCancellation(t *testing.T) {
	fs := &fakeFS{dirs: map[string][]RawEntry{"/vfs": {dir("a")}, "/vfs/a": {}}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := NewScanner(DefaultOptions().WithEnumerator(fs)).Walk(ctx, "/vfs", nil)
	if !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancellation, got %v", err)
	}
}

func TestScanUsesInjectedClock(t *testing.T) {
	fixed := time.Date(2020, 1, 2, 3, 4, 5, 0, time.UTC)
	fs := &fakeFS{dirs: map[string][]RawEntry{"/vfs": {}}}
	opts := DefaultOptions().WithEnumerator(fs).WithClock(func() time.Time { return fixed })

	snap, err := NewScanner(opts).Scan("/vfs")
	if err != nil {
		t.Fatalf("scan: %v", err)
	}
	if !snap.ScannedAt.Equal(fixed) {
		t.Fatalf("expected injected scan time, got %v", snap.ScannedAt)
	}
}
