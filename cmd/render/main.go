package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/okian/peloton/internal/adapters/dataset"
	app "github.com/okian/peloton/internal/app"
	"github.com/okian/peloton/pkg/logger"
)

const defaultTimeout = 30 * time.Second

func main() {
	var (
		format  = flag.String("format", "svg", "Output format: svg or png")
		out     = flag.String("out", "", "Output file (default stdout)")
		file    = flag.String("file", "", "Read the dataset from a local JSON file")
		url     = flag.String("url", dataset.DefaultURL, "Dataset URL, used when -file is empty")
		timeout = flag.Duration("timeout", defaultTimeout, "Overall deadline")
		verbose = flag.Bool("verbose", false, "Enable debug logging")
	)
	flag.Parse()

	if err := logger.Init(logger.WithWriter(os.Stderr)); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		os.Exit(1)
	}
	if *verbose {
		_ = logger.SetLevelString("debug")
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := render(ctx, *format, *out, *file, *url); err != nil {
		logger.Get().Error(ctx, "render failed", logger.Error(err))
		cancel()
		os.Exit(1)
	}
}

func render(ctx context.Context, format, out, file, url string) error {
	log := logger.Get()
	opts := []app.Option{app.WithLogger(log), app.WithDatasetURL(url, 0)}
	if file != "" {
		opts = append(opts, app.WithLoader(dataset.NewLoader(dataset.NewFileSource(file), log.Named("dataset"))))
	}
	svc := app.New(opts...)
	if err := svc.Start(ctx); err != nil {
		return err
	}
	defer svc.Stop()

	var draw func(context.Context, io.Writer) error
	switch format {
	case "svg":
		draw = svc.RenderSVG
	case "png":
		draw = svc.RenderPNG
	default:
		return fmt.Errorf("unknown format %q", format)
	}

	if out == "" {
		return draw(ctx, os.Stdout)
	}
	if err := writeFile(ctx, out, draw); err != nil {
		return err
	}
	log.Info(ctx, "chart written", logger.String("format", format), logger.String("out", out))
	return nil
}

// writeFile draws into path. A failed draw or close leaves no file behind.
func writeFile(ctx context.Context, path string, draw func(context.Context, io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := draw(ctx, f); err != nil {
		_ = f.Close()
		_ = os.Remove(path)
		return err
	}
	if err := f.Close(); err != nil {
		_ = os.Remove(path)
		return fmt.Errorf("failed to close %s: %w", path, err)
	}
	return nil
}
