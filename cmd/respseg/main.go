// Command respseg segments oscillometry recordings into breaths and
// extracts per-breath impedance features.
//
// Usage:
//
//	respseg [flags] file-or-dir ...
//	respseg -list -db runs.db
//
// Every argument is a tab-delimited device export or a directory of them
// (.csv and .txt). A summary line is printed per recording.
//
// Examples:
//
//	respseg patient01.txt
//	respseg -out results -tall exports/
//	respseg -config resp.json -out results -zip -db runs.db exports/
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

type options struct {
	configPath string
	sampleRate float64
	outDir     string
	zip        bool
	tall       bool
	dbPath     string
	list       bool
	jobs       int
	paths      []string
}

func parseFlags(args []string, stderr io.Writer) (*options, error) {
	fs := flag.NewFlagSet("respseg", flag.ContinueOnError)
	fs.SetOutput(stderr)

	opts := &options{}
	fs.StringVar(&opts.configPath, "config", "", "JSON analysis configuration")
	fs.Float64Var(&opts.sampleRate, "fs", 0, "sample rate in Hz (overrides the configuration)")
	fs.StringVar(&opts.outDir, "out", "", "write CSV tables to this directory")
	fs.BoolVar(&opts.zip, "zip", false, "bundle the tables of each recording into one zip archive")
	fs.BoolVar(&opts.tall, "tall", false, "also write the tall per-segment feature table")
	fs.StringVar(&opts.dbPath, "db", "", "store runs in this SQLite database")
	fs.BoolVar(&opts.list, "list", false, "list the runs stored in -db and exit")
	fs.IntVar(&opts.jobs, "j", 0, "recordings analyzed concurrently (default GOMAXPROCS)")
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: respseg [flags] file-or-dir ...\n")
		fmt.Fprintf(stderr, "       respseg -list -db runs.db\n\n")
		fmt.Fprintf(stderr, "Segments oscillometry recordings into breaths and extracts impedance features.\n\n")
		fmt.Fprintf(stderr, "Flags:\n")
		fs.PrintDefaults()
		fmt.Fprintf(stderr, "\nExamples:\n")
		fmt.Fprintf(stderr, "  respseg patient01.txt\n")
		fmt.Fprintf(stderr, "  respseg -out results -tall exports/\n")
		fmt.Fprintf(stderr, "  respseg -config resp.json -out results -zip -db runs.db exports/\n")
	}

	if err := fs.Parse(args); err != nil {
		return nil, err
	}

	opts.paths = fs.Args()

	switch {
	case opts.list && opts.dbPath == "":
		return nil, fmt.Errorf("-list requires -db")
	case !opts.list && len(opts.paths) == 0:
		fs.Usage()
		return nil, fmt.Errorf("no input files")
	case opts.zip && opts.outDir == "":
		return nil, fmt.Errorf("-zip requires -out")
	}

	return opts, nil
}

func run(args []string, stdout, stderr io.Writer) int {
	opts, err := parseFlags(args, stderr)
	if err != nil {
		if !errors.Is(err, flag.ErrHelp) {
			fmt.Fprintf(stderr, "error: %v\n", err)
		}
		return 2
	}

	if opts.list {
		if err := listRuns(opts.dbPath, stdout); err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			return 1
		}
		return 0
	}

	if err := analyze(opts, stdout, stderr); err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}

	return 0
}
