package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gcbaptista/searchlab/api"
	"github.com/gcbaptista/searchlab/config"
	"github.com/gcbaptista/searchlab/internal/analytics"
	"github.com/gcbaptista/searchlab/internal/collection"
	"github.com/gcbaptista/searchlab/internal/engine"
	"github.com/gcbaptista/searchlab/internal/experiment"
	"github.com/gcbaptista/searchlab/internal/logger"
	"github.com/gcbaptista/searchlab/internal/metrics"
)

const version = "1.0.0"

func main() {
	var (
		help       = flag.Bool("help", false, "Show help message")
		showVer    = flag.Bool("version", false, "Show version information")
		configPath = flag.String("config", "", "Path to the YAML experiment file")
		envFile    = flag.String("env-file", "", "Optional dotenv file with SL_* overrides")
		collPath   = flag.String("collection", "", "Collection file; overrides collection.path")
		presets    = flag.String("presets", "", "Comma-separated presets; overrides the experiment file")
		serve      = flag.Bool("serve", false, "Serve the HTTP API instead of running the experiment")
		hits       = flag.Int("hits", 10, "Hits printed per query in the text report, 0 for all")
		jsonOut    = flag.Bool("json", false, "Print the experiment report as JSON")
		xlsxPath   = flag.String("xlsx", "", "Also write the experiment report to this .xlsx file")
		listOnly   = flag.Bool("list-presets", false, "List every preset name and exit")
	)
	flag.Parse()

	if *help {
		fmt.Printf("searchlab - in-memory retrieval test bench for analyzers and ranking models\n\n")
		fmt.Printf("Usage: %s [options]\n\n", os.Args[0])
		fmt.Printf("Options:\n")
		flag.PrintDefaults()
		fmt.Printf("\nExamples:\n")
		fmt.Printf("  %s -collection corpus.xml                        # Run the default query on vsm-porter-stop\n", os.Args[0])
		fmt.Printf("  %s -config experiment.yaml -xlsx report.xlsx     # Run an experiment and export it\n", os.Args[0])
		fmt.Printf("  %s -config experiment.yaml -serve                # Serve the HTTP API\n", os.Args[0])
		return
	}
	if *showVer {
		fmt.Printf("searchlab v%s\n", version)
		return
	}
	if *listOnly {
		for _, p := range config.Presets() {
			fmt.Printf("%-20s %-8s %s\n", p.Name, p.Similarity, p.Analyzer)
		}
		return
	}

	if err := config.LoadEnvFile(*envFile); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "loading config: %v\n", err)
		os.Exit(1)
	}
	if *collPath != "" {
		cfg.Collection.Path = *collPath
	}
	if *presets != "" {
		cfg.Presets = strings.Split(*presets, ",")
	}

	logger.Setup(cfg.Logging.Level, cfg.Logging.Format)
	log := logger.WithComponent("main")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, runOptions{
		serve:    *serve,
		hits:     *hits,
		jsonOut:  *jsonOut,
		xlsxPath: *xlsxPath,
	}, log); err != nil {
		log.Error("searchlab failed", "error", err)
		os.Exit(1)
	}
}

type runOptions struct {
	serve    bool
	hits     int
	jsonOut  bool
	xlsxPath string
}

func run(ctx context.Context, cfg *config.Experiment, opts runOptions, log *slog.Logger) error {
	if cfg.Collection.Path == "" {
		return errors.New("no collection: set collection.path, SL_COLLECTION_PATH or -collection")
	}
	selected, err := config.LookupPresets(cfg.Presets)
	if err != nil {
		return err
	}

	docs, err := collection.Load(cfg.Collection.Path, cfg.Collection.Format)
	if err != nil {
		return err
	}

	var m *metrics.Metrics
	if cfg.Server.MetricsEnabled {
		m = metrics.New()
	}

	engineOpts := engine.OptionsFromExperiment(cfg)
	engineOpts.Metrics = m
	engineOpts.Logger = logger.WithComponent("engine")
	eng := engine.NewEngine(docs, engineOpts)
	defer eng.Close()

	if err := eng.BuildPresets(ctx, selected); err != nil {
		return err
	}

	if opts.serve {
		return serveAPI(ctx, cfg, eng, m, log)
	}
	return runExperiment(ctx, cfg, eng, selected, opts, log)
}

func runExperiment(ctx context.Context, cfg *config.Experiment, eng *engine.Engine, selected []config.Preset, opts runOptions, log *slog.Logger) error {
	names := make([]string, len(selected))
	for i, p := range selected {
		names[i] = p.Name
	}

	report, err := experiment.NewRunner(eng).Run(ctx, names, cfg.Queries)
	if err != nil {
		return err
	}

	if opts.jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(report); err != nil {
			return err
		}
	} else if err := report.WriteText(os.Stdout, opts.hits); err != nil {
		return err
	}

	if opts.xlsxPath != "" {
		f, err := os.Create(opts.xlsxPath)
		if err != nil {
			return fmt.Errorf("creating report file: %w", err)
		}
		if err := report.WriteXLSX(f); err != nil {
			f.Close()
			return fmt.Errorf("writing report file: %w", err)
		}
		if err := f.Close(); err != nil {
			return err
		}
		log.Info("report written", "path", opts.xlsxPath)
	}
	return nil
}

func serveAPI(ctx context.Context, cfg *config.Experiment, eng *engine.Engine, m *metrics.Metrics, log *slog.Logger) error {
	gin.SetMode(gin.ReleaseMode)
	router := api.NewRouter(eng, api.RouterOptions{
		Metrics:        m,
		Analytics:      analytics.NewService(eng),
		Logger:         logger.WithComponent("api"),
		AllowedOrigins: cfg.Server.AllowedOrigins,
		RateLimit:      cfg.Server.RateLimit,
		RateBurst:      cfg.Server.RateBurst,
	})

	srv := &http.Server{
		Addr:              ":" + strconv.Itoa(cfg.Server.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("starting server", "addr", srv.Addr, "presets", len(eng.ListPresets()))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	log.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
