//go:build windows

package filelock

import (
	"errors"
	"os"
	"time"

	"golang.org/x/sys/windows"
)

// pollEvery is how long acquire sleeps between attempts
const pollEvery = 5 * time.Millisecond

// acquire polls a non-blocking LockFileEx on the first byte.
func acquire(f *os.File) error {
	h := windows.Handle(f.Fd())
	flags := uint32(windows.LOCKFILE_EXCLUSIVE_LOCK | windows.LOCKFILE_FAIL_IMMEDIATELY)
	for {
		err := windows.LockFileEx(h, flags, 0, 1, 0, &windows.Overlapped{})
		switch {
		case err == nil:
			return nil
		case errors.Is(err, windows.ERROR_LOCK_VIOLATION):
			time.Sleep(pollEvery)
		default:
			return err
		}
	}
}

func release(f *os.File) error {
	return windows.UnlockFileEx(windows.Handle(f.Fd()), 0, 1, 0, &windows.Overlapped{})
}
