package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"text/tabwriter"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/cwbudde/algo-resp/analysis"
	"github.com/cwbudde/algo-resp/export"
	"github.com/cwbudde/algo-resp/internal/config"
	"github.com/cwbudde/algo-resp/internal/store"
	"github.com/cwbudde/algo-resp/recording"
)

var errFailed = errors.New("some recordings failed")

func loadConfig(opts *options) (*config.Config, error) {
	cfg := &config.Config{}
	if opts.configPath != "" {
		var err error
		if cfg, err = config.Load(opts.configPath); err != nil {
			return nil, err
		}
	}

	if opts.sampleRate > 0 {
		fs := opts.sampleRate
		cfg.SampleRate = &fs
	}

	return cfg, nil
}

// analyze loads every input, runs the pipeline concurrently per recording
// and writes the requested outputs. It returns errFailed when any input
// could not be loaded or analyzed.
func analyze(opts *options, stdout, stderr io.Writer) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	failed := false

	loader := cfg.Loader()
	var recs []*recording.Recording
	for _, path := range opts.paths {
		loaded, err := loader.Load(path)
		if err != nil {
			fmt.Fprintf(stderr, "error: %v\n", err)
			failed = true
			continue
		}
		recs = append(recs, loaded...)
	}

	results := make([]*analysis.Result, len(recs))

	jobs := opts.jobs
	if jobs <= 0 {
		jobs = runtime.GOMAXPROCS(0)
	}

	var g errgroup.Group
	g.SetLimit(jobs)

	acfg := cfg.Analysis()
	for i, rec := range recs {
		g.Go(func() error {
			// Aborted runs are reported through Result.Reason.
			results[i], _ = analysis.Run(rec, acfg)
			return nil
		})
	}
	_ = g.Wait()

	for _, res := range results {
		if res.Table == nil {
			failed = true
		}
	}

	if err := printSummary(stdout, results); err != nil {
		return err
	}

	if opts.outDir != "" {
		if err := writeOutputs(opts, results); err != nil {
			return err
		}
	}

	if opts.dbPath != "" {
		if err := saveRuns(opts.dbPath, results); err != nil {
			return err
		}
	}

	if failed {
		return errFailed
	}
	return nil
}

func writeOutputs(opts *options, results []*analysis.Result) error {
	for _, res := range results {
		if res.Table == nil {
			continue
		}

		files, err := export.Files(res, export.Options{Tall: opts.tall})
		if err != nil {
			return fmt.Errorf("%s: %w", res.Recording, err)
		}

		if !opts.zip {
			if err := export.WriteDir(opts.outDir, files); err != nil {
				return err
			}
			continue
		}

		if err := writeZip(filepath.Join(opts.outDir, res.Recording+".zip"), files); err != nil {
			return err
		}
	}

	return nil
}

func writeZip(path string, files []export.File) (err error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := f.Close(); err == nil {
			err = cerr
		}
	}()

	return export.WriteZip(f, files, time.Now())
}

func saveRuns(path string, results []*analysis.Result) error {
	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	for _, res := range results {
		if _, err := s.SaveRun(res); err != nil {
			return fmt.Errorf("%s: %w", res.Recording, err)
		}
	}

	return nil
}

func printSummary(w io.Writer, results []*analysis.Result) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Recording\tBreaths\tRate [1/min]\tCycle [s]\tInsp Vol\tExp Vol\tStatus\n")
	fmt.Fprintf(tw, "---------\t-------\t------------\t---------\t--------\t-------\t------\n")

	for _, res := range results {
		s := res.Summary
		status := "ok"
		if res.Reason != "" {
			status = res.Reason
		}

		fmt.Fprintf(tw, "%s\t%d\t%.1f\t%.2f ± %.2f\t%.3f\t%.3f\t%s\n",
			res.Recording, s.Breaths, s.Rate, s.MeanCycleDuration, s.StdCycleDuration,
			s.MeanInspVolume, s.MeanExpVolume, status)
	}

	return tw.Flush()
}

func listRuns(path string, w io.Writer) error {
	s, err := store.Open(path)
	if err != nil {
		return err
	}
	defer s.Close()

	runs, err := s.Runs()
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Run\tCreated\tRecording\tBreaths\tRate [1/min]\tStatus\n")
	fmt.Fprintf(tw, "---\t-------\t---------\t-------\t------------\t------\n")

	for _, r := range runs {
		status := "ok"
		if r.Reason != "" {
			status = r.Reason
		}

		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.1f\t%s\n",
			r.RunID, time.Unix(0, r.CreatedAt).Format(time.DateTime), r.Recording,
			r.Breaths, r.Summary.Rate, status)
	}

	return tw.Flush()
}
