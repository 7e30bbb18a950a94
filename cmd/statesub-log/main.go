// Command statesub-log is a tool for viewing and analyzing statesub journal files.
//
// Journal files are written by containers configured with a
// log.FileLogger, e.g. by statesub-demo with the -journal flag.
//
// Usage:
//
//	statesub-log <command> [flags] <file.slog>
//
// Commands:
//
//	view     View journal in human-readable format
//	export   Export journal to JSON lines or CSV
//	stats    Show statistics about the journal
//
// Examples:
//
//	# View all events
//	statesub-log view demo.slog
//
//	# View only updates of the counter store
//	statesub-log view -container counter -category update demo.slog
//
//	# Export to JSONL
//	statesub-log export -format jsonl demo.slog
//
//	# Show statistics
//	statesub-log stats demo.slog
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/statesub/statesub-go/cmd/statesub-log/commands"
	"github.com/statesub/statesub-go/pkg/log"
)

const usage = `statesub-log - statesub Journal Analyzer

Usage:
  statesub-log <command> [flags] <file.slog>

Commands:
  view     View journal in human-readable format
  export   Export journal to JSON lines or CSV
  stats    Show statistics about the journal

Use "statesub-log <command> -help" for more information about a command.
`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}

	cmd := os.Args[1]
	args := os.Args[2:]

	switch cmd {
	case "view":
		runView(args)
	case "export":
		runExport(args)
	case "stats":
		runStats(args)
	case "-h", "-help", "--help", "help":
		fmt.Print(usage)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", cmd)
		fmt.Fprint(os.Stderr, usage)
		os.Exit(1)
	}
}

func fail(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func requirePath(fs *flag.FlagSet) string {
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: journal file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func runView(args []string) {
	fs := flag.NewFlagSet("view", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `statesub-log view - View journal in human-readable format

Usage:
  statesub-log view [flags] <file.slog>

Flags:
`)
		fs.PrintDefaults()
	}

	containerID := fs.String("id", "", "Filter by container ID")
	container := fs.String("container", "", "Filter by container name")
	category := fs.String("category", "", "Filter by category (create, subscribe, unsubscribe, update)")
	timeStart := fs.String("time-start", "", "Filter by start time (RFC3339)")
	timeEnd := fs.String("time-end", "", "Filter by end time (RFC3339)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	filter := log.Filter{
		ContainerID:   *containerID,
		ContainerName: *container,
	}

	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fail(err)
		}
		filter.Category = &c
	}
	if *timeStart != "" {
		ts, err := time.Parse(time.RFC3339, *timeStart)
		if err != nil {
			fail(fmt.Errorf("invalid -time-start: %w", err))
		}
		filter.TimeStart = &ts
	}
	if *timeEnd != "" {
		ts, err := time.Parse(time.RFC3339, *timeEnd)
		if err != nil {
			fail(fmt.Errorf("invalid -time-end: %w", err))
		}
		filter.TimeEnd = &ts
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fail(err)
	}
}

func runExport(args []string) {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `statesub-log export - Export journal to JSON lines or CSV

Usage:
  statesub-log export [flags] <file.slog>

Flags:
`)
		fs.PrintDefaults()
	}

	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.String("o", "", "Output file (default: stdout)")

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fail(err)
	}
}

func runStats(args []string) {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, `statesub-log stats - Show statistics about the journal

Usage:
  statesub-log stats <file.slog>

`)
	}

	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	path := requirePath(fs)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fail(err)
	}
}
