//go:build windows

package sys

import (
	"os"
	"unsafe"

	"golang.org/x/sys/windows"
)

func FileLock(file *os.File) error {
	ov := new(windows.Overlapped)
	err := windows.LockFileEx(windows.Handle(file.Fd()),
		windows.LOCKFILE_EXCLUSIVE_LOCK|windows.LOCKFILE_FAIL_IMMEDIATELY, 0, 1, 0, ov)
	if err == windows.ERROR_LOCK_VIOLATION {
		return ErrLockHeld
	}
	return err
}

func FileUnlock(file *os.File) error {
	ov := new(windows.Overlapped)
	return windows.UnlockFileEx(windows.Handle(file.Fd()), 0, 1, 0, ov)
}

func MMap(file *os.File, length uint64) (dat []byte, err error) {
	h, err := windows.CreateFileMapping(windows.Handle(file.Fd()), nil,
		windows.PAGE_READWRITE, uint32(length>>32), uint32(length), nil)
	if err != nil {
		return nil, err
	}
	addr, err := windows.MapViewOfFile(h, windows.FILE_MAP_READ|windows.FILE_MAP_WRITE, 0, 0, uintptr(length))
	if err != nil {
		windows.CloseHandle(h)
		return nil, err
	}
	// The view keeps the mapping alive, the handle is not needed anymore.
	windows.CloseHandle(h)
	return unsafe.Slice((*byte)(unsafe.Pointer(addr)), length), nil
}

func MUnmap(file *os.File, dat []byte) error {
	return windows.UnmapViewOfFile(uintptr(unsafe.Pointer(&dat[0])))
}

func MSync(file *os.File, dat []byte) error {
	err := windows.FlushViewOfFile(uintptr(unsafe.Pointer(&dat[0])), 0)
	if err != nil {
		return err
	}
	return windows.FlushFileBuffers(windows.Handle(file.Fd()))
}

func Remap(file *os.File, newLength uint64, olddat []byte) (dat []byte, err error) {
	err = MUnmap(file, olddat)
	if err != nil {
		return
	}
	return MMap(file, newLength)
}

func GetSysPageSize() int {
	return os.Getpagesize()
}
