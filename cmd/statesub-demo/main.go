// Command statesub-demo is an interactive console for subscription
// containers.
//
// It loads named stores and values from a YAML definition (or built-in
// defaults) and lets you read, write and watch them:
//   - a counter store whose "foo" key can be watched on its own
//   - a synced text value shared by several watchers
//   - a delayed fetch into a mounted scope that can be unmounted early
//
// Usage:
//
//	statesub-demo [flags]
//
// Flags:
//
//	-config string     Container definition file (YAML)
//	-log-level string  Log level: debug, info, warn, error (default "info")
//	-journal string    Write container events to a CBOR journal file
//	-metrics           Collect container metrics (default true)
//
// Examples:
//
//	# Start with the built-in counter, mounter and text containers
//	statesub-demo
//
//	# Record a journal for statesub-log
//	statesub-demo -journal demo.slog -log-level debug
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	gometrics "github.com/hashicorp/go-metrics"

	"github.com/statesub/statesub-go/cmd/statesub-demo/interactive"
	"github.com/statesub/statesub-go/pkg/config"
	sslog "github.com/statesub/statesub-go/pkg/log"
	"github.com/statesub/statesub-go/pkg/metrics"
	"github.com/statesub/statesub-go/pkg/subscription"
)

// Config holds the command-line settings.
type Config struct {
	ConfigFile  string
	LogLevel    string
	JournalFile string
	Metrics     bool
}

var cfg Config

func init() {
	flag.StringVar(&cfg.ConfigFile, "config", "", "Container definition file (YAML)")
	flag.StringVar(&cfg.LogLevel, "log-level", "info", "Log level: debug, info, warn, error")
	flag.StringVar(&cfg.JournalFile, "journal", "", "Write container events to a CBOR journal file")
	flag.BoolVar(&cfg.Metrics, "metrics", true, "Collect container metrics")
}

func main() {
	flag.Parse()

	setupLogging(cfg.LogLevel)

	defs, err := loadDefinitions(cfg.ConfigFile)
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	opts := []subscription.Option{subscription.WithSlog(slog.Default())}

	var journal *sslog.FileLogger
	events := []sslog.Logger{sslog.NewSlogAdapter(slog.Default())}
	if cfg.JournalFile != "" {
		journal, err = sslog.NewFileLogger(cfg.JournalFile)
		if err != nil {
			log.Fatalf("Failed to open journal: %v", err)
		}
		events = append(events, journal)
		log.Printf("Journal: %s", cfg.JournalFile)
	}
	opts = append(opts, subscription.WithEventLogger(sslog.NewMultiLogger(events...)))

	var sink *gometrics.InmemSink
	if cfg.Metrics {
		m, s, err := metrics.NewInmem(time.Minute, 10*time.Minute)
		if err != nil {
			log.Fatalf("Failed to set up metrics: %v", err)
		}
		sink = s
		opts = append(opts, subscription.WithMetrics(metrics.NewRecorder(m)))
	}

	containers := defs.Build(opts...)
	log.Printf("Loaded %d store(s), %d value(s)", len(containers.Stores), len(containers.Values))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	console, err := interactive.New(containers, sink)
	if err != nil {
		log.Fatalf("Failed to create console: %v", err)
	}
	// Redirect log output through readline to avoid interfering with input
	log.SetOutput(console.Stdout())
	go console.Run(ctx, cancel)

	if journal != nil {
		go syncJournal(ctx, journal)
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	select {
	case sig := <-sigCh:
		log.Printf("Received signal: %v", sig)
	case <-ctx.Done():
	}

	cancel()

	if journal != nil {
		if err := journal.Close(); err != nil {
			log.Printf("Error closing journal: %v", err)
		}
		if n := journal.Dropped(); n > 0 {
			log.Printf("Journal: %d event(s) could not be encoded", n)
		}
	}

	log.Println("Goodbye!")
}

// syncJournal flushes the journal once a second so statesub-log can read
// a session that is still running.
func syncJournal(ctx context.Context, journal *sslog.FileLogger) {
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := journal.Sync(); err != nil {
				log.Printf("Journal sync failed: %v", err)
			}
		}
	}
}

func loadDefinitions(path string) (*config.Config, error) {
	if path == "" {
		return config.Default(), nil
	}
	return config.Load(path)
}

// setupLogging configures the standard logger and, through it, the default
// slog logger used by the containers.
func setupLogging(level string) {
	log.SetFlags(log.Ltime | log.Lmicroseconds)

	switch level {
	case "debug":
		log.SetFlags(log.Ltime | log.Lmicroseconds | log.Lshortfile)
		slog.SetLogLoggerLevel(slog.LevelDebug)
	case "warn":
		log.SetFlags(log.Ltime)
		slog.SetLogLoggerLevel(slog.LevelWarn)
	case "error":
		log.SetFlags(log.Ltime)
		slog.SetLogLoggerLevel(slog.LevelError)
	default:
		slog.SetLogLoggerLevel(slog.LevelInfo)
	}
}
