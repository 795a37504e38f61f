//go:build windows

package shm

import (
	"errors"
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/ghalamif/SensorFlow/internal/domain"
)

const (
	DefaultName = `Global\HWiNFO_SENS_SM2`
	defaultDir  = ""
)

var procOpenFileMappingW = windows.NewLazySystemDLL("kernel32.dll").NewProc("OpenFileMappingW")

func open(cfg Config) (*Segment, error) {
	name, err := windows.UTF16PtrFromString(cfg.Name)
	if err != nil {
		return nil, fmt.Errorf("segment name %q: %w", cfg.Name, err)
	}

	r, _, callErr := procOpenFileMappingW.Call(
		uintptr(windows.FILE_MAP_READ),
		0,
		uintptr(unsafe.Pointer(name)),
	)
	if r == 0 {
		return nil, classifyErr(cfg.Name, callErr)
	}
	handle := windows.Handle(r)

	addr, err := windows.MapViewOfFile(handle, windows.FILE_MAP_READ, 0, 0, 0)
	if err != nil {
		_ = windows.CloseHandle(handle)
		return nil, classifyErr(cfg.Name, err)
	}

	var info windows.MemoryBasicInformation
	if err := windows.VirtualQuery(addr, &info, unsafe.Sizeof(info)); err != nil {
		_ = windows.UnmapViewOfFile(addr)
		_ = windows.CloseHandle(handle)
		return nil, fmt.Errorf("query view of %s: %w", cfg.Name, err)
	}

	data := unsafe.Slice((*byte)(unsafe.Pointer(addr)), int(info.RegionSize))
	return &Segment{
		name: cfg.Name,
		data: data,
		release: func() error {
			return errors.Join(windows.UnmapViewOfFile(addr), windows.CloseHandle(handle))
		},
	}, nil
}

func classifyErr(name string, err error) error {
	switch {
	case errors.Is(err, windows.ERROR_FILE_NOT_FOUND):
		return fmt.Errorf("%w: %s", domain.ErrSegmentNotFound, name)
	case errors.Is(err, windows.ERROR_ACCESS_DENIED):
		return fmt.Errorf("%w: %s: %w", domain.ErrAccessDenied, name, err)
	default:
		return fmt.Errorf("attach %s: %w", name, err)
	}
}
