//go:build !linux && !darwin

package scan

import (
	"os"

	"github.com/michaelscutari/dircache/internal/entry"
)

func statFromInfo(info os.FileInfo) entry.Stat {
	return entry.Stat{
		Size:       info.Size(),
		Mode:       info.Mode(),
		ModTime:    info.ModTime(),
		ChangeTime: info.ModTime(),
		AccessTime: info.ModTime(),
	}
}
