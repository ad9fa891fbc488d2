package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/viant/procsim"
	"github.com/viant/procsim/server"
	"github.com/viant/procsim/service/report"
	"github.com/viant/procsim/service/report/fs"
	"github.com/viant/procsim/service/report/sqlite"
	"go.uber.org/zap"
)

var (
	configURL   = flag.String("config", "", "URL of a YAML config file")
	scenarioURL = flag.String("scenario", "", "URL of a YAML scenario to replay")
	random      = flag.Int("random", 5, "Number of random processes to submit when no scenario is given")
	maxSteps    = flag.Int("steps", procsim.DefaultMaxSteps, "Maximum number of steps before giving up")
	serveAddr   = flag.String("serve", "", "Serve the HTTP API on this address instead of running once")
	reportURL   = flag.String("report", "", "Base URL where run reports are saved (file://, mem://, s3://...)")
	dbPath      = flag.String("db", "", "SQLite file to store the run in")
	traceFile   = flag.String("trace", "", "Write OpenTelemetry spans to this file")
	watch       = flag.Bool("watch", false, "Print the simulation after every step")
)

func main() {
	flag.Parse()
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := exitCode(run(ctx), os.Stderr)
	stop()
	os.Exit(code)
}

// exitCode prints err to w and returns the process exit status
func exitCode(err error, w io.Writer) int {
	if err == nil {
		return 0
	}
	fmt.Fprintln(w, au.Red(err.Error()))
	return 1
}

func run(ctx context.Context) error {
	config := procsim.DefaultConfig()
	if *configURL != "" {
		loaded, err := procsim.LoadConfig(ctx, *configURL)
		if err != nil {
			return err
		}
		config = loaded
	}
	if *traceFile != "" {
		config.Tracing.Enabled = true
		config.Tracing.Output = *traceFile
	}
	options := []procsim.Option{procsim.WithConfig(config)}
	if *reportURL != "" {
		repository, err := fs.New(ctx, *reportURL)
		if err != nil {
			return err
		}
		options = append(options, procsim.WithRepository(repository))
	}
	if *watch {
		options = append(options, procsim.WithStepListener(func(_ context.Context, view *procsim.View) {
			renderView(os.Stdout, view)
		}))
	}
	srv, err := procsim.New(options...)
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()
	if *serveAddr != "" {
		return serve(ctx, srv)
	}
	ret, err := simulate(ctx, srv.Runtime())
	if err != nil {
		return err
	}
	renderReport(os.Stdout, ret)
	if *dbPath != "" {
		return store(ret)
	}
	return nil
}

func simulate(ctx context.Context, runtime *procsim.Runtime) (*report.Report, error) {
	if *scenarioURL != "" {
		scenario, err := procsim.LoadScenario(ctx, *scenarioURL)
		if err != nil {
			return nil, err
		}
		if scenario.MaxSteps == 0 {
			scenario.MaxSteps = *maxSteps
		}
		return runtime.Play(ctx, scenario)
	}
	for i := 0; i < *random; i++ {
		if _, err := runtime.SubmitRandom(ctx); err != nil {
			return nil, err
		}
	}
	if _, err := runtime.Drain(ctx, *maxSteps); err != nil {
		return nil, err
	}
	return runtime.Report(ctx, report.WithOrigin(fmt.Sprintf("random:%d", *random)))
}

func serve(ctx context.Context, srv *procsim.Service) error {
	api := server.New(srv.Runtime(), server.WithLogger(srv.Logger()), server.WithDrainSteps(*maxSteps))
	errs := make(chan error, 1)
	go func() { errs <- api.ListenAndServe(*serveAddr) }()
	select {
	case err := <-errs:
		return err
	case <-ctx.Done():
	}
	srv.Logger().Info("shutting down", zap.String("addr", *serveAddr))
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return api.Shutdown(shutdownCtx)
}

func store(r *report.Report) error {
	db, err := sqlite.Open(*dbPath)
	if err != nil {
		return err
	}
	defer db.Close()
	runRowID, err := db.Store(r)
	if err != nil {
		return fmt.Errorf("there was an error saving the run: %w", err)
	}
	fmt.Printf("stored run #%d in %s\n", au.Bold(runRowID), *dbPath)
	return nil
}
