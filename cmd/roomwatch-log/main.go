// Command roomwatch-log views and analyzes roomwatch journal files.
//
// Journals are written by roomwatch when started with --journal.
//
// Usage:
//
//	roomwatch-log <command> [flags] <journal.cbor>
//
// Commands:
//
//	view     View journal in human-readable format
//	export   Export journal to JSONL or CSV format
//	filter   Filter journal and write to new file
//	stats    Show statistics about the journal
//
// Examples:
//
//	# View all events
//	roomwatch-log view roomwatch.cbor
//
//	# Everything caused by one presence event or command
//	roomwatch-log view --event 5f6g7h8i roomwatch.cbor
//
//	# Export to CSV
//	roomwatch-log export --format csv roomwatch.cbor
//
//	# Keep one requester's entries
//	roomwatch-log filter --requester u1 -o u1.cbor roomwatch.cbor
package main

import (
	"fmt"
	"os"

	flag "github.com/spf13/pflag"

	"github.com/roomwatch/roomwatch-go/cmd/roomwatch-log/commands"
)

const usage = `roomwatch-log - Roomwatch Journal Analyzer

Usage:
  roomwatch-log <command> [flags] <journal.cbor>

Commands:
  view     View journal in human-readable format
  export   Export journal to JSONL or CSV format
  filter   Filter journal and write to new file
  stats    Show statistics about the journal

Use "roomwatch-log <command> --help" for more information about a command.
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
	case "filter":
		runFilter(args)
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

func newFlagSet(name, summary string) *flag.FlagSet {
	fs := flag.NewFlagSet(name, flag.ExitOnError)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "roomwatch-log %s - %s\n\nUsage:\n  roomwatch-log %s [flags] <journal.cbor>\n\nFlags:\n", name, summary, name)
		fs.PrintDefaults()
	}
	return fs
}

// journalArg parses args and returns the journal path, exiting if missing.
func journalArg(fs *flag.FlagSet, args []string) string {
	if err := fs.Parse(args); err != nil {
		os.Exit(1)
	}
	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Error: journal file path required")
		fs.Usage()
		os.Exit(1)
	}
	return fs.Arg(0)
}

func fatal(err error) {
	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}

func runView(args []string) {
	fs := newFlagSet("view", "View journal in human-readable format")
	category := fs.String("category", "", "Filter by category (presence, subscription, notification, relocation, error)")
	eventID := fs.String("event", "", "Filter by event ID (full or the short form shown by view)")

	path := journalArg(fs, args)

	filter := commands.ViewFilter{EventID: *eventID}
	if *category != "" {
		c, err := commands.ParseCategoryFlag(*category)
		if err != nil {
			fatal(err)
		}
		filter.Category = &c
	}

	if err := commands.RunView(path, filter, os.Stdout); err != nil {
		fatal(err)
	}
}

func runExport(args []string) {
	fs := newFlagSet("export", "Export journal to JSONL or CSV format")
	format := fs.String("format", "jsonl", "Output format (jsonl, csv)")
	output := fs.StringP("output", "o", "", "Output file (default: stdout)")

	path := journalArg(fs, args)

	if err := commands.RunExport(path, *format, *output); err != nil {
		fatal(err)
	}
}

func runFilter(args []string) {
	fs := newFlagSet("filter", "Filter journal and write to new file")
	var opts commands.FilterOptions
	fs.StringVarP(&opts.Output, "output", "o", "", "Output file (required)")
	fs.StringVar(&opts.EventID, "event", "", "Filter by event ID")
	fs.StringVar(&opts.Requester, "requester", "", "Filter by requester ID")
	fs.StringVar(&opts.Subject, "subject", "", "Filter by subject (entity or room) ID")
	fs.StringVar(&opts.Destination, "destination", "", "Filter by destination ID")
	fs.StringVar(&opts.TimeStart, "time-start", "", "Filter by start time (RFC3339)")
	fs.StringVar(&opts.TimeEnd, "time-end", "", "Filter by end time (RFC3339)")
	fs.StringVar(&opts.Category, "category", "", "Filter by category")

	path := journalArg(fs, args)

	if opts.Output == "" {
		fmt.Fprintln(os.Stderr, "Error: output file (-o) required")
		fs.Usage()
		os.Exit(1)
	}

	n, err := commands.RunFilter(path, opts)
	if err != nil {
		fatal(err)
	}
	fmt.Printf("Filtered %d events to %s\n", n, opts.Output)
}

func runStats(args []string) {
	fs := newFlagSet("stats", "Show statistics about the journal")
	path := journalArg(fs, args)

	if err := commands.RunStats(path, os.Stdout); err != nil {
		fatal(err)
	}
}
