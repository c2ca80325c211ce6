package chartcheck

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/okian/peloton/pkg/logger"
)

// ErrMismatch is returned when the service renders something the dataset
// does not support.
var ErrMismatch = errors.New("chart does not match dataset")

// Run executes a complete check and returns its statistics.
func Run(ctx context.Context, config *Config) (*Stats, error) {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get()

	log.Info(ctx, "starting chart check",
		logger.String("baseURL", config.BaseURL),
		logger.Int("views", config.Views),
		logger.Int("workers", config.Workers),
		logger.Int("marks", config.Marks),
		logger.Duration("timeout", config.Timeout))

	client := newHTTPClient(config.BaseURL, config.Timeout)

	// Step 1: Check service health
	if err := checkServiceHealth(ctx, client); err != nil {
		return stats, fmt.Errorf("service health check failed: %w", err)
	}

	// Step 2: Fetch the dataset the chart is built from
	var records []Record
	resp, err := client.Get(ctx, "/dataset")
	if err != nil {
		return stats, fmt.Errorf("dataset retrieval failed: %w", err)
	}
	if err := decode(resp, http.StatusOK, &records); err != nil {
		return stats, fmt.Errorf("dataset retrieval failed: %w", err)
	}
	stats.Records = len(records)

	// Step 3: Verify the one-shot chart
	problems, err := checkOneShot(ctx, client, records)
	if err != nil {
		return stats, err
	}

	// Step 4: Exercise views concurrently
	problems = append(problems, exerciseViews(ctx, config, client, records, stats)...)

	stats.EndTime = time.Now()
	stats.Duration = stats.EndTime.Sub(stats.StartTime)
	stats.Mismatches = len(problems)
	displayFinalStats(ctx, stats)

	if len(problems) > 0 {
		reportProblems(ctx, problems, config.Verbose)
		return stats, fmt.Errorf("%w: %d problems", ErrMismatch, len(problems))
	}
	log.Info(ctx, "check completed successfully")
	return stats, nil
}

func checkServiceHealth(ctx context.Context, client *HTTPClient) error {
	resp, err := client.Get(ctx, "/healthz")
	if err != nil {
		return fmt.Errorf("failed to connect to service: %w", err)
	}
	return decode(resp, http.StatusOK, nil)
}

func checkOneShot(ctx context.Context, client *HTTPClient, records []Record) ([]string, error) {
	resp, err := client.Get(ctx, "/chart.svg")
	if err != nil {
		return nil, fmt.Errorf("chart retrieval failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("chart retrieval failed with status: %d", resp.StatusCode)
	}
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("chart retrieval failed: %w", err)
	}
	return verifyChart(string(body), records), nil
}

// exerciseViews fans views out to a pool of workers.
func exerciseViews(ctx context.Context, config *Config, client *HTTPClient, records []Record, stats *Stats) []string {
	workers := max(config.Workers, 1)
	jobs := make(chan int, workers*workerChannelMultiplier)

	var (
		mu       sync.Mutex
		problems []string
		wg       sync.WaitGroup
	)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range jobs {
				res, err := checkView(ctx, client, records, config.Marks)
				mu.Lock()
				stats.PointerEvents += res.events
				stats.Backpressured += res.backpressured
				problems = append(problems, res.problems...)
				if err != nil {
					stats.ViewsFailed++
					problems = append(problems, err.Error())
				} else {
					stats.ViewsOpened++
				}
				mu.Unlock()
			}
		}()
	}

	go func() {
		defer close(jobs)
		for i := 0; i < config.Views; i++ {
			select {
			case <-ctx.Done():
				return
			case jobs <- i:
			}
		}
	}()
	wg.Wait()
	return problems
}

// displayFinalStats logs the final check statistics.
func displayFinalStats(ctx context.Context, stats *Stats) {
	var successRate float64
	if total := stats.ViewsOpened + stats.ViewsFailed; total > 0 {
		successRate = float64(stats.ViewsOpened) / float64(total) * PercentageMultiplier
	}
	logger.Get().Info(ctx, "final statistics",
		logger.Int("records", stats.Records),
		logger.Int("viewsOpened", stats.ViewsOpened),
		logger.Int("viewsFailed", stats.ViewsFailed),
		logger.Int("pointerEvents", stats.PointerEvents),
		logger.Int("backpressured", stats.Backpressured),
		logger.Int("mismatches", stats.Mismatches),
		logger.Duration("duration", stats.Duration),
		logger.Float64("successRate", successRate))
}
