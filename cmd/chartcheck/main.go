package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/okian/peloton/internal/chartcheck"
	"github.com/okian/peloton/pkg/logger"
)

// Default configuration constants.
const (
	defaultViews       = 20
	defaultWorkers     = 2 // multiplier for runtime.NumCPU()
	defaultTimeout     = 30 * time.Second
	defaultTestTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		views   = flag.Int("views", defaultViews, "Number of views to open")
		marks   = flag.Int("marks", 0, "Marks hovered per view, 0 for all")
		workers = flag.Int("workers", runtime.NumCPU()*defaultWorkers, "Number of concurrent workers")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		logFile = flag.String("log", "", "Also write the log to this file")
		verbose = flag.Bool("verbose", false, "Log every mismatch")
		help    = flag.Bool("help", false, "Show help")
	)
	flag.Parse()

	if *help {
		chartcheck.ShowHelp()
		return
	}

	closeLog, err := chartcheck.SetupLogging(*logFile)
	if err != nil {
		os.Stderr.WriteString("Failed to setup logging: " + err.Error() + "\n")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTestTimeout)
	_, err = chartcheck.Run(ctx, &chartcheck.Config{
		BaseURL: *baseURL,
		Views:   *views,
		Workers: *workers,
		Marks:   *marks,
		Timeout: *timeout,
		Verbose: *verbose,
	})
	cancel()
	_ = closeLog()
	if err != nil {
		logger.Get().Error(context.Background(), "check failed", logger.Error(err))
		os.Exit(1)
	}
}
