//go:build unix

package shm

import (
	"errors"
	"fmt"

	"golang.org/x/sys/unix"

	"github.com/ghalamif/SensorFlow/internal/domain"
)

const (
	DefaultName = "HWiNFO_SENS_SM2"
	defaultDir  = "/dev/shm"
)

func open(cfg Config) (*Segment, error) {
	path := cfg.Path()

	fd, err := unix.Open(path, unix.O_RDONLY|unix.O_CLOEXEC, 0)
	if err != nil {
		return nil, classifyErr(path, err)
	}

	var st unix.Stat_t
	if err := unix.Fstat(fd, &st); err != nil {
		_ = unix.Close(fd)
		return nil, fmt.Errorf("stat %s: %w", path, err)
	}
	if st.Size <= 0 {
		_ = unix.Close(fd)
		return &Segment{name: path}, nil
	}

	data, err := unix.Mmap(fd, 0, int(st.Size), unix.PROT_READ, unix.MAP_SHARED)
	if err != nil {
		_ = unix.Close(fd)
		return nil, classifyErr(path, err)
	}
	// fd stays open so Bytes can clamp the view to the file's current
	// size; pages past EOF fault with SIGBUS.
	return &Segment{
		name: path,
		data: data,
		limit: func(n int) int {
			var st unix.Stat_t
			if err := unix.Fstat(fd, &st); err != nil {
				return n
			}
			return int(max(0, min(st.Size, int64(n))))
		},
		release: func() error {
			return errors.Join(unix.Munmap(data), unix.Close(fd))
		},
	}, nil
}

func classifyErr(path string, err error) error {
	switch {
	case errors.Is(err, unix.ENOENT):
		return fmt.Errorf("%w: %s", domain.ErrSegmentNotFound, path)
	case errors.Is(err, unix.EACCES), errors.Is(err, unix.EPERM):
		return fmt.Errorf("%w: %s: %w", domain.ErrAccessDenied, path, err)
	default:
		return fmt.Errorf("attach %s: %w", path, err)
	}
}
