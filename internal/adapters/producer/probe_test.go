package producer

import (
	"context"
	"errors"
	"os"
	"testing"

	"github.com/shirou/gopsutil/v3/process"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeList(procs ...procInfo) func(context.Context) ([]procInfo, error) {
	return func(context.Context) ([]procInfo, error) { return procs, nil }
}

func TestProbeMatchesConfiguredNames(t *testing.T) {
	tests := []struct {
		name    string
		procs   []procInfo
		running bool
	}{
		{"exact", []procInfo{{PID: 4, Name: "HWiNFO64.exe"}}, true},
		{"case folded", []procInfo{{PID: 4, Name: "hwinfo64.EXE"}}, true},
		{"without suffix", []procInfo{{PID: 4, Name: "HWiNFO32"}}, true},
		{"other process", []procInfo{{PID: 4, Name: "explorer.exe"}}, false},
		{"empty table", nil, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProbe(Config{})
			p.list = fakeList(tt.procs...)

			st, err := p.Probe(context.Background())
			require.NoError(t, err)
			assert.Equal(t, tt.running, st.Running)
			if tt.running {
				assert.Equal(t, int32(4), st.PID)
			}
		})
	}
}

func TestProbeReportsListFailure(t *testing.T) {
	p := NewProbe(Config{})
	boom := errors.New("denied")
	p.list = func(context.Context) ([]procInfo, error) { return nil, boom }

	_, err := p.Probe(context.Background())
	require.ErrorIs(t, err, boom)
}

func TestProbeFindsCurrentProcess(t *testing.T) {
	self, err := process.NewProcess(int32(os.Getpid()))
	require.NoError(t, err)
	name, err := self.Name()
	require.NoError(t, err)

	st, err := NewProbe(Config{ProcessNames: []string{name}}).Probe(context.Background())
	require.NoError(t, err)
	assert.True(t, st.Running)
}

func TestConfigDefaults(t *testing.T) {
	var cfg Config
	cfg.ApplyDefaults()
	assert.Equal(t, DefaultProcessNames, cfg.ProcessNames)

	cfg.ProcessNames[0] = "changed"
	assert.Equal(t, "HWiNFO64.exe", DefaultProcessNames[0])
}
