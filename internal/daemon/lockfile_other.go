//go:build !unix

package daemon

import "os"

// Unix sockets are the only transport served here; other platforms run
// without the instance lock.
func (l *LockFile) platformLock(f *os.File) error {
	return nil
}

func (l *LockFile) platformUnlock(f *os.File) {}
