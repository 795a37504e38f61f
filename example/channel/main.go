package main

import (
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	sensorflow "github.com/ghalamif/SensorFlow"
)

func main() {
	sub, snapshots, closeSub := sensorflow.NewChannelSubscriber(8)
	defer closeSub()

	cfg := sensorflow.DefaultConfig()
	mon, err := sensorflow.New(cfg, sensorflow.WithSubscriber(sub))
	if err != nil {
		log.Fatalf("build monitor: %v", err)
	}
	if err := mon.Start(); err != nil {
		if errors.Is(err, sensorflow.ErrSegmentNotFound) {
			log.Fatalf("nothing to read yet: %v", err)
		}
		log.Fatalf("start: %v", err)
	}
	defer mon.Stop()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	for {
		select {
		case <-sig:
			return
		case s := <-snapshots:
			temp, ok := s.CPUTemperature()
			if !ok {
				fmt.Println("no CPU temperature this cycle")
				continue
			}
			fmt.Printf("[%d] CPU %.1f °C\n", s.Meta().Cycle, temp)
		}
	}
}
