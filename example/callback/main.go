package main

import (
	"context"
	"fmt"
	"log"
	"os/signal"
	"syscall"
	"time"

	"github.com/ghalamif/SensorFlow/pkg/sensorflow"
)

func main() {
	cfg := sensorflow.DefaultConfig()
	cfg.Poll.IntervalMs = 500

	callback := sensorflow.SubscriberFunc(func(s sensorflow.Snapshot) {
		meta := s.Meta()
		fmt.Printf("%s cycle=%d", meta.CollectedAt.Format(time.RFC3339Nano), meta.Cycle)
		for _, m := range sensorflow.Metrics {
			if v, ok := s.Value(m); ok {
				fmt.Printf(" %s=%.2f", m, v)
			}
		}
		fmt.Println()
	})

	mon, err := sensorflow.New(cfg, sensorflow.WithSubscriber(callback))
	if err != nil {
		log.Fatalf("build monitor: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := mon.Run(ctx); err != nil {
		log.Fatalf("monitor exited: %v", err)
	}
}
