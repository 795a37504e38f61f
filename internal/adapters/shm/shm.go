// Package shm attaches read-only to the producer's named shared-memory
// segment. Windows uses a named file mapping; unix systems use the POSIX
// shm file of the same name.
package shm

import (
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ghalamif/SensorFlow/internal/ports"
)

// Config names the segment to attach to.
type Config struct {
	Name string `yaml:"name"`
	// Dir is where POSIX shm files live. Ignored on Windows.
	Dir string `yaml:"dir"`
}

func (c *Config) ApplyDefaults() {
	if c.Name == "" {
		c.Name = DefaultName
	}
	if c.Dir == "" {
		c.Dir = defaultDir
	}
}

func (c *Config) Validate() error {
	if c.Name == "" {
		return errors.New("segment name is required")
	}
	if strings.ContainsRune(localName(c.Name), '/') {
		return fmt.Errorf("segment name %q must not contain '/'", c.Name)
	}
	return nil
}

// Path is the POSIX shm file backing the segment on unix systems.
func (c Config) Path() string {
	return filepath.Join(c.Dir, localName(c.Name))
}

// localName strips the Windows session namespace prefix so the same
// configured name works on every platform.
func localName(name string) string {
	for _, prefix := range []string{`Global\`, `Local\`} {
		if strings.HasPrefix(name, prefix) {
			return name[len(prefix):]
		}
	}
	return name
}

// Segment is an attached, read-only view of the shared region.
type Segment struct {
	name string
	mu   sync.Mutex
	data []byte
	// limit, when set, bounds the view to what the backing object
	// currently holds.
	limit   func(n int) int
	release func() error
	closed  bool
}

// Bytes returns the mapped region. The slice is only valid until Close.
// On unix it is cut down to the file's current size, so a producer that
// shrank its file yields a short view rather than unbacked pages.
func (s *Segment) Bytes() []byte {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	if s.limit != nil {
		return s.data[:s.limit(len(s.data))]
	}
	return s.data
}

func (s *Segment) Name() string { return s.name }

// Close unmaps the region. Calling it again is a no-op.
func (s *Segment) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	s.data = nil
	if s.release == nil {
		return nil
	}
	return s.release()
}

// Open attaches to the segment described by cfg. It fails with
// domain.ErrSegmentNotFound when no producer has created it and
// domain.ErrAccessDenied when read access is refused.
func Open(cfg Config) (*Segment, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return open(cfg)
}

// Opener adapts Open to ports.SegmentOpener.
type Opener struct {
	Config Config
}

func (o Opener) Open() (ports.Segment, error) {
	seg, err := Open(o.Config)
	if err != nil {
		return nil, err
	}
	return seg, nil
}

var (
	_ ports.Segment       = (*Segment)(nil)
	_ ports.SegmentOpener = Opener{}
)
