//go:build !windows

package filelock

import (
	"errors"
	"os"
	"syscall"
)

// acquire retries when a signal interrupts the blocking flock
func acquire(f *os.File) error {
	for {
		err := syscall.Flock(int(f.Fd()), syscall.LOCK_EX)
		if !errors.Is(err, syscall.EINTR) {
			return err
		}
	}
}

func release(f *os.File) error {
	return syscall.Flock(int(f.Fd()), syscall.LOCK_UN)
}
