package chartcheck

import (
	"fmt"
	"io"
	"os"

	"github.com/okian/peloton/pkg/logger"
)

// File permission constants.
const (
	logFilePermission = 0600
)

// SetupLogging initializes the logger on stdout and, when logFile is set,
// on that file as well. The returned close func releases the file.
func SetupLogging(logFile string) (func() error, error) {
	if logFile == "" {
		return func() error { return nil }, logger.Init(logger.WithWriter(os.Stdout))
	}
	f, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, logFilePermission)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	if err := logger.Init(logger.WithWriter(io.MultiWriter(os.Stdout, f))); err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return f.Close, nil
}

// ShowHelp prints usage information.
func ShowHelp() {
	os.Stdout.WriteString(`Peloton Chart Check
===================

Opens views on a running peloton server, hovers their marks and checks the
tooltips and rendered dots against /dataset.

Usage:
  chartcheck [options]

Options:
  -url string
        Base URL of the service (default "http://localhost:9080")
  -views int
        Number of views to open (default 20)
  -marks int
        Marks hovered per view, 0 for all (default 0)
  -workers int
        Number of concurrent workers (default CPU cores * 2)
  -timeout duration
        HTTP request timeout (default 30s)
  -log string
        Also write the log to this file
  -verbose
        Log every mismatch
  -help
        Show this help message
`)
}
