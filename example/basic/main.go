package main

import (
	"context"
	"log"
	"os/signal"
	"syscall"

	sensorflow "github.com/ghalamif/SensorFlow"
)

func main() {
	cfg, err := sensorflow.LoadConfigOrDefault("../../config.yaml")
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	mon, err := sensorflow.New(cfg)
	if err != nil {
		log.Fatalf("build monitor: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := mon.Run(ctx); err != nil {
		log.Fatalf("monitor exited: %v", err)
	}
}
