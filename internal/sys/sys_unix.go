//go:build unix

package sys

import (
	"os"

	"golang.org/x/sys/unix"
)

func FileLock(file *os.File) error {
	err := unix.Flock(int(file.Fd()), unix.LOCK_EX|unix.LOCK_NB)
	if err == unix.EWOULDBLOCK {
		return ErrLockHeld
	}
	return err
}

func FileUnlock(file *os.File) error {
	return unix.Flock(int(file.Fd()), unix.LOCK_UN)
}

func MMap(file *os.File, length uint64) (dat []byte, err error) {
	dat, err = unix.Mmap(int(file.Fd()), 0, int(length), unix.PROT_READ|unix.PROT_WRITE, unix.MAP_SHARED)
	return
}

func MUnmap(file *os.File, dat []byte) error {
	return unix.Munmap(dat)
}

func MSync(file *os.File, dat []byte) error {
	return unix.Msync(dat, unix.MS_SYNC)
}

func GetSysPageSize() int {
	return unix.Getpagesize()
}
