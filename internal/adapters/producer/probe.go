// Package producer looks for the external process that publishes the
// shared segment, so attach failures can say whether it is running.
package producer

import (
	"context"
	"fmt"
	"strings"

	"github.com/shirou/gopsutil/v3/process"

	"github.com/ghalamif/SensorFlow/internal/ports"
)

var DefaultProcessNames = []string{"HWiNFO64.exe", "HWiNFO32.exe", "HWiNFO.exe"}

type Config struct {
	ProcessNames []string `yaml:"process_names"`
}

func (c *Config) ApplyDefaults() {
	if len(c.ProcessNames) == 0 {
		c.ProcessNames = append([]string(nil), DefaultProcessNames...)
	}
}

type procInfo struct {
	PID  int32
	Name string
}

// Probe scans the process table for any of the configured names.
type Probe struct {
	names []string
	list  func(ctx context.Context) ([]procInfo, error)
}

func NewProbe(cfg Config) *Probe {
	cfg.ApplyDefaults()
	names := make([]string, 0, len(cfg.ProcessNames))
	for _, n := range cfg.ProcessNames {
		names = append(names, normalize(n))
	}
	return &Probe{names: names, list: listProcesses}
}

func (p *Probe) Probe(ctx context.Context) (ports.ProducerStatus, error) {
	procs, err := p.list(ctx)
	if err != nil {
		return ports.ProducerStatus{}, fmt.Errorf("list processes: %w", err)
	}
	for _, proc := range procs {
		got := normalize(proc.Name)
		for _, want := range p.names {
			if got == want {
				return ports.ProducerStatus{Running: true, Name: proc.Name, PID: proc.PID}, nil
			}
		}
	}
	return ports.ProducerStatus{}, nil
}

// normalize folds case and drops the .exe suffix so Windows image names
// match processes seen through compatibility layers.
func normalize(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.TrimSuffix(name, ".exe")
}

func listProcesses(ctx context.Context) ([]procInfo, error) {
	procs, err := process.ProcessesWithContext(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]procInfo, 0, len(procs))
	for _, p := range procs {
		name, err := p.NameWithContext(ctx)
		if err != nil {
			// Processes exit between listing and inspection.
			continue
		}
		out = append(out, procInfo{PID: p.Pid, Name: name})
	}
	return out, nil
}

var _ ports.ProducerProbe = (*Probe)(nil)
