// Package filelock serializes writers of a shared document across processes.
// The lock is advisory and lives on a sidecar file next to the document, so
// the document itself can be replaced by rename while the lock is held.
package filelock

import (
	"fmt"
	"os"
)

// Suffix is appended to the document path to name its lock file
const Suffix = ".lock"

// Lock blocks until the caller holds the exclusive lock guarding document.
// The sidecar is created when missing and left in place on release.
func Lock(document string) (unlock func() error, err error) {
	f, err := os.OpenFile(document+Suffix, os.O_CREATE|os.O_RDWR, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open lock for %s: %w", document, err)
	}
	if err := acquire(f); err != nil {
		f.Close()
		return nil, fmt.Errorf("lock %s: %w", document, err)
	}

	var released bool
	return func() error {
		if released {
			return nil
		}
		released = true
		if err := release(f); err != nil {
			f.Close()
			return err
		}
		return f.Close()
	}, nil
}
