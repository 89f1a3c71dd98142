// Command recordopt runs one record optimization pass: read a batch from the
// configured source, apply the compiled rules, write the result to the
// configured sink.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	clog "github.com/charmbracelet/log"

	"recordopt/internal/config"
	"recordopt/internal/metrics"
	"recordopt/internal/metrics/prompush"
	"recordopt/internal/storage"
	"recordopt/internal/storage/postgres"
	"recordopt/internal/storage/sqlite"
	"recordopt/optimizer"
)

func main() {
	var (
		cfgPath        string
		metricsBackend string
		pushgatewayURL string
		validate       bool
	)

	flag.StringVar(&cfgPath, "config", "run.json", "run config JSON path")
	flag.StringVar(&metricsBackend, "metrics-backend", "", "metrics backend (pushgateway, none); overrides config")
	flag.StringVar(&pushgatewayURL, "pushgateway-url", "", "Pushgateway base URL; overrides config and env PUSHGATEWAY_URL")
	flag.BoolVar(&validate, "validate", false, "validate the configuration and exit")
	verbose := flag.Bool("v", false, "enable verbose logs")
	flag.Parse()

	log := clog.NewWithOptions(os.Stderr, clog.Options{ReportTimestamp: true})
	if *verbose {
		log.SetLevel(clog.DebugLevel)
	}

	run, err := config.Load(cfgPath)
	if err != nil {
		log.Fatal("load config", "err", err)
	}

	issues := config.ValidateRun(*run)
	hasError := false
	for _, iss := range issues {
		if iss.Severity == config.SeverityError {
			hasError = true
			log.Error("config issue", "path", iss.Path, "msg", iss.Message)
		} else {
			log.Warn("config issue", "path", iss.Path, "msg", iss.Message)
		}
	}
	if hasError {
		log.Fatal("configuration is invalid", "config", cfgPath)
	}
	if validate {
		log.Info("configuration is valid", "config", cfgPath)
		return
	}

	setupMetrics(log, run, metricsBackend, pushgatewayURL, *verbose)
	defer func() {
		if err := metrics.Flush(); err != nil {
			log.Error("metrics flush", "err", err)
		}
	}()

	ctx := context.Background()
	start := time.Now()
	err = execute(ctx, log, run)
	metrics.RecordRun(run.Job, err, time.Since(start))
	if err != nil {
		log.Fatal("run failed", "job", run.Job, "err", err)
	}
	log.Info("run complete", "job", run.Job, "took", time.Since(start).Truncate(time.Millisecond))
}

// setupMetrics installs the metrics backend: flag overrides config, env fills
// in a missing gateway URL. Failures fall back to the nop backend so a broken
// gateway never blocks a run.
func setupMetrics(log *clog.Logger, run *config.Run, backendFlag, urlFlag string, verbose bool) {
	backend := backendFlag
	if backend == "" {
		backend = run.Metrics.Backend
	}

	switch backend {
	case "pushgateway":
		gwURL := urlFlag
		if gwURL == "" {
			gwURL = run.Metrics.PushgatewayURL
		}
		if gwURL == "" {
			gwURL = os.Getenv("PUSHGATEWAY_URL")
		}
		if gwURL == "" {
			gwURL = "http://localhost:9091"
		}

		b, err := prompush.NewBackend(run.Job, gwURL)
		if err != nil {
			log.Warn("metrics backend init failed, metrics disabled", "err", err)
			return
		}
		log.Debug("metrics enabled", "backend", backend, "url", gwURL, "job", run.Job)
		metrics.SetBackend(b)

	case "", "none":
		if verbose {
			log.Debug("metrics disabled", "backend", backend)
		}

	default:
		log.Warn("unknown metrics backend, metrics disabled", "backend", backend)
	}
}

// execute performs the read, optimize, write cycle for one run.
func execute(ctx context.Context, log *clog.Logger, run *config.Run) error {
	rs, err := config.CompileRules(run.Rules)
	if err != nil {
		return fmt.Errorf("compile rules: %w", err)
	}

	source, closeSource, err := openSource(ctx, run.Source)
	if err != nil {
		return fmt.Errorf("open source: %w", err)
	}
	defer closeSource()

	sink, closeSink, err := openSink(ctx, run.Output)
	if err != nil {
		return fmt.Errorf("open output: %w", err)
	}
	defer closeSink()

	batch, err := source.Read(ctx)
	if err != nil {
		return fmt.Errorf("read source: %w", err)
	}
	log.Debug("batch read", "records", batch.Len())
	metrics.RecordRecords(run.Job, "in", batch.Len())

	opt := &optimizer.Optimizer{}
	out, err := opt.Optimize(batch, rs)
	if err != nil {
		return fmt.Errorf("optimize: %w", err)
	}
	stats := opt.Stats()
	log.Debug("batch optimized",
		"in", stats.RecordsIn,
		"out", stats.RecordsOut,
		"rules_applied", stats.RulesApplied,
		"duplicates", stats.Duplicates,
	)
	metrics.RecordRecords(run.Job, "out", out.Len())
	metrics.RecordRecords(run.Job, "duplicates", stats.Duplicates)

	if err := sink.Write(ctx, out); err != nil {
		return fmt.Errorf("write output: %w", err)
	}
	return nil
}

func openSource(ctx context.Context, src config.Source) (storage.Source, func(), error) {
	switch src.Kind {
	case "file":
		return storage.NewFileSource(src.File.Path), func() {}, nil
	case "sqlite":
		st, closeFn, err := sqlite.Open(ctx, sqlite.Config{
			DSN:   src.SQLite.DSN,
			Table: src.SQLite.Table,
			Query: src.SQLite.Query,
		})
		if err != nil {
			return nil, nil, err
		}
		return st, closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown source kind %q", src.Kind)
	}
}

func openSink(ctx context.Context, out config.Output) (storage.Sink, func(), error) {
	switch out.Kind {
	case "file":
		return storage.NewFileSink(out.File.Path), func() {}, nil
	case "sqlite":
		st, closeFn, err := sqlite.Open(ctx, sqlite.Config{
			DSN:     out.SQLite.DSN,
			Table:   out.SQLite.Table,
			Columns: out.SQLite.Columns,
		})
		if err != nil {
			return nil, nil, err
		}
		return st, closeFn, nil
	case "postgres":
		sk, closeFn, err := postgres.Open(ctx, postgres.Config{
			DSN:     out.Postgres.DSN,
			Table:   out.Postgres.Table,
			Columns: out.Postgres.Columns,
		})
		if err != nil {
			return nil, nil, err
		}
		return sk, closeFn, nil
	default:
		return nil, nil, fmt.Errorf("unknown output kind %q", out.Kind)
	}
}
