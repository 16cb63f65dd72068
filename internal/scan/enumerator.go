package scan

import (
	"errors"
	"io"
	"os"
	"path/filepath"

	"github.com/michaelscutari/dircache/internal/entry"
)

const readDirBatch = 256

// RawEntry is one child reported by an Enumerator.
type RawEntry struct {
	Name  string
	IsDir bool
	Stat  entry.Stat

	// Err is set when the child was listed but its metadata could not be read.
	Err error
}

// Enumerator lists the immediate children of a directory, in no particular
// order, calling fn once per child. Returning an error from fn stops the
// enumeration and is returned as is.
type Enumerator interface {
	Enumerate(dir string, fn func(RawEntry) error) error
}

// OSEnumerator reads directories from the local filesystem using lstat
// semantics: a symlink is described, never followed.
type OSEnumerator struct{}

// Enumerate implements Enumerator.
func (OSEnumerator) Enumerate(dir string, fn func(RawEntry) error) error {
	f, err := os.Open(dir)
	if err != nil {
		return err
	}
	defer f.Close()

	for {
		batch, err := f.ReadDir(readDirBatch)
		for _, de := range batch {
			raw := RawEntry{Name: de.Name()}
			// Always use Lstat to avoid following symlinks
			info, lerr := os.Lstat(filepath.Join(dir, de.Name()))
			if lerr != nil {
				raw.Err = lerr
			} else {
				raw.IsDir = entry.KindFromMode(info.Mode()) == entry.KindDir
				raw.Stat = statFromInfo(info)
			}
			if ferr := fn(raw); ferr != nil {
				return ferr
			}
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}
