package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	sensorflow "github.com/ghalamif/SensorFlow"
	"github.com/ghalamif/SensorFlow/internal/adapters/observability"
	"github.com/ghalamif/SensorFlow/internal/app/config"
	"github.com/ghalamif/SensorFlow/internal/app/mock"
)

//go:embed assets/banner_color.ansi
var bannerColor string

//go:embed assets/banner_plain.txt
var bannerPlain string

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	cmd := os.Args[1]
	var err error

	switch cmd {
	case "run":
		fmt.Fprintln(os.Stderr, selectBanner())
		err = runCommand(os.Args[2:])
	case "probe":
		err = probeCommand(os.Args[2:], os.Stdout)
	case "validate":
		err = validateCommand(os.Args[2:])
	case "stats":
		err = statsCommand(os.Args[2:])
	case "mock":
		err = mockCommand(os.Args[2:])
	case "help", "-h", "--help":
		printUsage()
		return
	default:
		printUsage()
		err = fmt.Errorf("unknown command %q", cmd)
	}

	if err != nil {
		log.Fatalf("sensorflow %s: %v", cmd, err)
	}
}

func runCommand(args []string) error {
	fs := pflag.NewFlagSet("run", pflag.ExitOnError)
	cfgPath := fs.StringP("config", "c", "", "Path to configuration file (defaults apply when absent)")
	interval := fs.Duration("interval", 0, "Override poll.interval_ms")
	metricsAddr := fs.String("metrics-addr", "", "Override metrics.addr")
	printSnapshots := fs.Bool("print", true, "Print each snapshot as a JSON line on stdout")
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := sensorflow.LoadConfigOrDefault(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	if *interval > 0 {
		cfg.Poll.IntervalMs = int(*interval / time.Millisecond)
	}
	if *metricsAddr != "" {
		cfg.Metrics.Addr = *metricsAddr
	}

	var opts []sensorflow.Option
	if *printSnapshots {
		enc := json.NewEncoder(os.Stdout)
		opts = append(opts, sensorflow.WithSubscriber(sensorflow.SubscriberFunc(func(s sensorflow.Snapshot) {
			_ = enc.Encode(s)
		})))
	}

	mon, err := sensorflow.New(cfg, opts...)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return mon.Run(ctx)
}

func validateCommand(args []string) error {
	fs := pflag.NewFlagSet("validate", pflag.ExitOnError)
	cfgPath := fs.StringP("config", "c", "./config.yaml", "Path to configuration file to validate")
	if err := fs.Parse(args); err != nil {
		return err
	}

	if _, err := sensorflow.LoadConfig(*cfgPath); err != nil {
		return err
	}
	fmt.Printf("config %s looks good\n", *cfgPath)
	return nil
}

func mockCommand(args []string) error {
	fs := pflag.NewFlagSet("mock", pflag.ExitOnError)
	cfgPath := fs.StringP("config", "c", "", "Path to configuration file (segment.* is used)")
	interval := fs.Duration("interval", time.Second, "Rewrite interval")
	keep := fs.Bool("keep", false, "Leave the segment file behind on exit")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if runtime.GOOS == "windows" {
		return errors.New("the mock producer writes a POSIX shm file and is not available on windows")
	}

	cfg, err := config.LoadOrDefault(*cfgPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logger, err := observability.NewLogger(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return err
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	path := cfg.Segment.Path()
	p := &mock.Producer{
		Path:     path,
		Interval: *interval,
		Obs:      observability.NewPromObs(nil, logger),
	}
	err = p.Run(ctx)
	if !*keep {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			err = errors.Join(err, rmErr)
		}
	}
	return err
}

func selectBanner() string {
	if os.Getenv("NO_COLOR") != "" {
		return bannerPlain
	}
	return bannerColor
}

func printUsage() {
	fmt.Printf(`SensorFlow CLI

Usage:
  sensorflow <command> [flags]

Commands:
  run        Poll the shared segment and publish snapshots (metrics on /metrics)
  probe      Decode the segment once and print the catalog and snapshot
  validate   Load and validate a config file without starting the monitor
  stats      Poll the Prometheus metrics endpoint and print live counters
  mock       Publish a synthetic segment for local testing (unix only)

Examples:
  sensorflow run --config ./config.yaml
  sensorflow probe --json
  sensorflow validate --config ./config.yaml
  sensorflow stats --url http://localhost:9120/metrics --interval 1s
  sensorflow mock --interval 500ms
`)
}
