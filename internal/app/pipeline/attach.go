package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ghalamif/SensorFlow/internal/domain"
	"github.com/ghalamif/SensorFlow/internal/ports"
)

const probeTimeout = 2 * time.Second

// ExplainAttach adds what the process table says about the producer to
// an attach failure. A nil probe leaves err as is. Probe errors are
// logged through obs (which may be nil) and never replace err.
func ExplainAttach(err error, probe ports.ProducerProbe, obs ports.Observability) error {
	switch {
	case errors.Is(err, domain.ErrAccessDenied):
		return fmt.Errorf("%w (run with rights to read the producer's shared memory)", err)
	case !errors.Is(err, domain.ErrSegmentNotFound) || probe == nil:
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), probeTimeout)
	defer cancel()
	st, perr := probe.Probe(ctx)
	if perr != nil {
		if obs != nil {
			obs.LogWarn("producer_probe_failed", perr)
		}
		return err
	}
	if st.Running {
		return fmt.Errorf("%w (producer %s is running as pid %d but shared memory support is disabled)", err, st.Name, st.PID)
	}
	return fmt.Errorf("%w (producer is not running)", err)
}
