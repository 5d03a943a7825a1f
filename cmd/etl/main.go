// Command etl runs the student roster pipeline once and exits, or, with
// -check-quality, inspects the persisted run history instead of loading.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/sirupsen/logrus"

	"rosteretl/internal/config"
	"rosteretl/internal/etl"
	"rosteretl/internal/load"
	"rosteretl/internal/metrics"
	"rosteretl/internal/metrics/prompush"
	"rosteretl/internal/quality"
	"rosteretl/internal/source"
	"rosteretl/internal/storage"
	"rosteretl/internal/storage/postgres"
)

func main() {
	var (
		checkQuality   = flag.Bool("check-quality", false, "check the latest run against the validity threshold instead of running the pipeline")
		metricsBackend = flag.String("metrics-backend", "none", "operational metrics backend: none or pushgateway")
		pushgatewayURL = flag.String("pushgateway-url", "", "Prometheus Pushgateway URL (required with -metrics-backend=pushgateway)")
		jobName        = flag.String("job", "rosteretl", "Pushgateway job name")
		verbose        = flag.Bool("v", false, "force debug logging regardless of LOG_LEVEL")
	)
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := newLogger(cfg, *verbose)

	issues := config.Validate(cfg)
	for _, iss := range issues {
		if iss.Severity == config.SeverityError {
			log.WithField("path", iss.Path).Error(iss.Message)
		} else {
			log.WithField("path", iss.Path).Warn(iss.Message)
		}
	}
	if config.HasError(issues) {
		log.Fatal("configuration is invalid")
	}

	if *metricsBackend == "pushgateway" {
		backend, err := prompush.NewBackend(*jobName, *pushgatewayURL)
		if err != nil {
			log.WithError(err).Fatal("metrics backend setup failed")
		}
		metrics.SetBackend(backend)
	}

	ctx := context.Background()

	store, err := postgres.New(ctx, postgres.Config{
		DSN:            cfg.DSN(),
		MaxConns:       cfg.DBMaxConns,
		ConnectTimeout: 10 * time.Second,
	})
	if err != nil {
		log.WithError(err).Fatal("database connection failed")
	}
	defer store.Close()

	if *checkQuality {
		os.Exit(runQualityCheck(ctx, store, cfg, log))
	}

	if cfg.AutoCreateTables {
		if err := storage.EnsureSchema(ctx, store); err != nil {
			log.WithError(err).Fatal("schema bootstrap failed")
		}
	}

	src, err := buildSource(ctx, cfg)
	if err != nil {
		log.WithError(err).Fatal("source setup failed")
	}

	pipeline := &etl.Pipeline{
		Source:     source.WithRetry(src, cfg.MaxRetries),
		Loader:     &load.StudentLoader{Store: store, BatchSize: cfg.BatchSize, Workers: cfg.LoaderWorkers, Log: log},
		DeadLetter: &load.DeadLetter{Store: store},
		Tracker:    &quality.Tracker{Store: store},
		Log:        log,
	}

	sum, runErr := pipeline.Run(ctx)
	if err := metrics.Flush(); err != nil {
		log.WithError(err).Warn("metrics flush failed")
	}
	if runErr != nil {
		log.WithError(runErr).WithField("run_id", sum.RunID).Error("run failed")
		os.Exit(1)
	}
}

// runQualityCheck reports the latest run's validity against the configured
// threshold. Exit code 2 signals degradation so cron jobs can alert on it.
func runQualityCheck(ctx context.Context, store storage.Store, cfg config.Config, log *logrus.Logger) int {
	provider := &quality.Provider{Store: store}
	deg, err := provider.CheckDegradation(ctx, cfg.QualityThresholdPct)
	if err != nil {
		log.WithError(err).Error("quality check failed")
		return 1
	}

	fields := logrus.Fields{
		"validity_rate": fmt.Sprintf("%.2f", deg.ValidityRate),
		"threshold":     fmt.Sprintf("%.1f", deg.Threshold),
		"run_id":        deg.RunID,
	}
	if deg.Degraded {
		log.WithFields(fields).Warn(deg.Reason)
		return 2
	}
	log.WithFields(fields).Info(deg.Reason)
	return 0
}

// buildSource picks the extractor for the configured source kind.
func buildSource(ctx context.Context, cfg config.Config) (source.Source, error) {
	switch cfg.SourceKind {
	case config.SourceSheets:
		return source.NewSheets(ctx, cfg.CredentialsPath, cfg.SheetID, cfg.SheetName, cfg.SkipRows)
	case config.SourceXLSX:
		return &source.XLSX{Path: cfg.SourcePath, SheetName: cfg.SheetName, SkipRows: cfg.SkipRows}, nil
	case config.SourceCSV:
		return &source.CSV{Path: cfg.SourcePath, SkipRows: cfg.SkipRows}, nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.SourceKind)
	}
}

// newLogger configures logrus from LOG_LEVEL and the optional LOG_FILE.
func newLogger(cfg config.Config, verbose bool) *logrus.Logger {
	log := logrus.New()

	level, err := logrus.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = logrus.InfoLevel
	}
	if verbose {
		level = logrus.DebugLevel
	}
	log.SetLevel(level)

	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			log.WithError(err).Warn("cannot open log file, using stderr")
		} else {
			log.SetOutput(f)
		}
	}
	return log
}
