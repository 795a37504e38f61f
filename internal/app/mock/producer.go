// Package mock imitates the external producer by rewriting a segment file
// in place, so the monitor can be exercised without the real process.
package mock

import (
	"context"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/ghalamif/SensorFlow/internal/domain"
	"github.com/ghalamif/SensorFlow/internal/layout"
	"github.com/ghalamif/SensorFlow/internal/ports"
)

// Frame returns the synthetic segment published at tick. Values drift
// slowly so consecutive snapshots differ.
func Frame(tick int, now time.Time) layout.Segment {
	phase := float64(tick) / 10
	return layout.Segment{
		Version:  2,
		Revision: 1,
		PollTime: now.Unix(),
		Sensors: []domain.SensorDescriptor{
			{ID: 0xf0000100, NameOrig: "CPU [#0]: Intel Core i7-12700K"},
			{ID: 0xe0002000, NameOrig: "GPU [#0]: NVIDIA GeForce RTX 3080", NameUser: "GPU Core"},
			{ID: 0xf0007000, Instance: 1, NameOrig: "Nuvoton NCT6798D"},
		},
		Readings: []domain.ReadingDescriptor{
			reading(domain.ReadingTemperature, 0, 1, "CPU Package", "°C", 45+8*math.Sin(phase)),
			reading(domain.ReadingPower, 0, 2, "CPU Package Power", "W", 65+20*math.Sin(phase/2)),
			reading(domain.ReadingVoltage, 0, 3, "Vcore", "V", 1.25),
			reading(domain.ReadingUsage, 0, 4, "Total CPU Usage", "%", 30+25*math.Abs(math.Sin(phase))),
			reading(domain.ReadingCurrent, 0, 5, "CPU IA Cores Current", "A", 40+5*math.Cos(phase)),
			reading(domain.ReadingClock, 0, 6, "Core 0 Clock", "MHz", 4700),
			reading(domain.ReadingFrequency, 1, 7, "GPU Clock", "MHz", 1905+45*math.Sin(phase)),
			reading(domain.ReadingFan, 2, 8, "CPU Fan", "RPM", 1200),
			reading(domain.ReadingTemperature, 2, 9, "System", "°C", 35),
		},
	}
}

func reading(typ domain.ReadingType, sensor, id uint32, label, unit string, v float64) domain.ReadingDescriptor {
	return domain.ReadingDescriptor{
		Type:        typ,
		SensorIndex: sensor,
		ID:          id,
		LabelOrig:   label,
		Unit:        unit,
		Value:       v,
		Min:         v,
		Max:         v,
		Avg:         v,
	}
}

// Producer rewrites the file at Path every Interval until its context is
// cancelled, then marks the segment dead the way the real producer does
// on exit.
type Producer struct {
	Path     string
	Interval time.Duration
	Obs      ports.Observability
}

func (p *Producer) Run(ctx context.Context) error {
	obs := p.Obs
	if obs == nil {
		obs = ports.NopObservability{}
	}
	interval := p.Interval
	if interval <= 0 {
		interval = time.Second
	}

	f, err := os.OpenFile(p.Path, os.O_RDWR|os.O_CREATE, 0o644)
	if err != nil {
		return fmt.Errorf("create segment: %w", err)
	}
	defer f.Close()

	first := Frame(0, time.Now())
	size := int64(len(first.Bytes()))
	if err := f.Truncate(size); err != nil {
		return fmt.Errorf("size segment: %w", err)
	}

	write := func(seg layout.Segment) error {
		_, err := f.WriteAt(seg.Bytes(), 0)
		return err
	}
	if err := write(first); err != nil {
		return err
	}
	obs.LogInfo("mock_producer_started", ports.Field{Key: "path", Value: p.Path}, ports.Field{Key: "bytes", Value: size})

	t := time.NewTicker(interval)
	defer t.Stop()
	for tick := 1; ; tick++ {
		select {
		case <-ctx.Done():
			dead := Frame(tick, time.Now())
			dead.Dead = true
			if err := write(dead); err != nil {
				return fmt.Errorf("mark segment dead: %w", err)
			}
			obs.LogInfo("mock_producer_stopped", ports.Field{Key: "ticks", Value: tick})
			return nil
		case now := <-t.C:
			if err := write(Frame(tick, now)); err != nil {
				return fmt.Errorf("write segment: %w", err)
			}
		}
	}
}
