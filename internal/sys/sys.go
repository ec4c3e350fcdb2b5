// Package sys wraps the platform file-mapping and file-locking primitives.
package sys

import (
	"errors"
	"os"
)

// ErrLockHeld reports that another process holds the advisory lock.
var ErrLockHeld = errors.New("file lock held by another process")

func OpenFile(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_CREATE|os.O_RDWR, 0644)
}
