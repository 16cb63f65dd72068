package entry

import (
	"os"
	"time"
)

// DirExtension is the extension recorded for every directory entry.
const DirExtension = "dir"

// Kind represents the type of filesystem entry.
type Kind uint8

const (
	KindFile Kind = 0
	KindDir  Kind = 1
)

func (k Kind) String() string {
	if k == KindDir {
		return "dir"
	}
	return "file"
}

// KindFromMode derives the Kind from an os.FileMode.
// Anything that is not a directory (including symlinks) is a file.
func KindFromMode(mode os.FileMode) Kind {
	if mode.IsDir() {
		return KindDir
	}
	return KindFile
}

// Stat is the lstat metadata recorded for an entry.
type Stat struct {
	Size       int64
	Mode       os.FileMode
	ModTime    time.Time
	ChangeTime time.Time // st_ctime, used as the created time
	AccessTime time.Time
	UID        uint32
	GID        uint32
	Nlink      uint64
	Inode      uint64
	DevID      uint64
}

// Entry is one file or subdirectory within a scanned directory.
type Entry struct {
	// Key is the case-folded name used for mapping identity only.
	Key string
	// Filename is the original-case name of a file. Empty for directories.
	Filename string
	// DirName is the original-case name of a directory. Empty for files.
	DirName string

	Kind       Kind
	FullPath   string
	ParentPath string
	Extension  string // lowercase, no leading dot
	Stat

	// Directories only.
	ChildFiles int64
	ChildDirs  int64
	Totals     Rollup
}

// Name returns the display name regardless of kind.
func (e *Entry) Name() string {
	if e.Kind == KindDir {
		return e.DirName
	}
	return e.Filename
}

// DotExtension returns the extension in ".xxx" form, or "" if there is none.
func (e *Entry) DotExtension() string {
	if e.Extension == "" {
		return ""
	}
	return "." + e.Extension
}

// IsSymlink reports whether the entry describes a symlink itself.
func (e *Entry) IsSymlink() bool {
	return e.Mode&os.ModeSymlink != 0
}

// Rollup represents aggregated statistics for a directory subtree.
type Rollup struct {
	TotalSize  int64
	TotalFiles int64
	TotalDirs  int64
}

// Add folds a child directory's rollup into r, counting the child itself.
func (r *Rollup) Add(child Rollup) {
	r.TotalSize += child.TotalSize
	r.TotalFiles += child.TotalFiles
	r.TotalDirs += child.TotalDirs + 1
}
