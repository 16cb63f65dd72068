//go:build darwin

package scan

import (
	"os"
	"syscall"
	"time"

	"github.com/michaelscutari/dircache/internal/entry"
)

func statFromInfo(info os.FileInfo) entry.Stat {
	st := entry.Stat{
		Size:       info.Size(),
		Mode:       info.Mode(),
		ModTime:    info.ModTime(),
		ChangeTime: info.ModTime(),
		AccessTime: info.ModTime(),
	}
	if sys, ok := info.Sys().(*syscall.Stat_t); ok {
		st.ChangeTime = time.Unix(sys.Ctimespec.Unix())
		st.AccessTime = time.Unix(sys.Atimespec.Unix())
		st.UID = sys.Uid
		st.GID = sys.Gid
		st.Nlink = uint64(sys.Nlink)
		st.Inode = sys.Ino
		st.DevID = uint64(sys.Dev)
	}
	return st
}
