//go:build linux

package sys

import (
	"os"

	"golang.org/x/sys/unix"
)

func Remap(file *os.File, newLength uint64, olddat []byte) ([]byte, error) {
	return unix.Mremap(olddat, int(newLength), unix.MREMAP_MAYMOVE)
}
