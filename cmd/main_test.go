package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/okian/peloton/internal/config"
	"github.com/okian/peloton/internal/domain/types"
	"github.com/okian/peloton/pkg/logger"
	"github.com/smartystreets/goconvey/convey"
)

const testDataset = "../internal/adapters/dataset/testdata/cyclists.json"

func TestMainFunction(t *testing.T) {
	convey.Convey("Given the main application", t, func() {
		_ = logger.Init(logger.WithWriter(io.Discard))

		convey.Convey("When configuration comes from the environment", func() {
			_ = os.Setenv("PELOTON_ADDR", ":8080")
			_ = os.Setenv("PELOTON_DATASET_FILE", testDataset)
			_ = os.Setenv("PELOTON_MAX_VIEWS", "4")
			defer func() {
				_ = os.Unsetenv("PELOTON_ADDR")
				_ = os.Unsetenv("PELOTON_DATASET_FILE")
				_ = os.Unsetenv("PELOTON_MAX_VIEWS")
			}()

			cfg, err := config.Load(context.Background())
			convey.So(err, convey.ShouldBeNil)
			convey.So(cfg.Addr, convey.ShouldEqual, ":8080")
			convey.So(cfg.MaxViews, convey.ShouldEqual, 4)

			convey.Convey("Then the service reads the dataset file", func() {
				ctx := context.Background()
				svc := newService(cfg, logger.Get())
				convey.So(svc.Start(ctx), convey.ShouldBeNil)
				defer svc.Stop()

				recs, err := svc.Records(ctx)
				convey.So(err, convey.ShouldBeNil)
				convey.So(recs, convey.ShouldHaveLength, 6)
				convey.So(svc.GetStats()["maxViews"], convey.ShouldEqual, 4)

				convey.Convey("And every surface is routed", func() {
					mux := newMux(ctx, svc)
					for path, want := range map[string]string{
						"/":             "text/html",
						"/healthz":      "text/plain",
						"/stats":        "application/json",
						"/dataset":      "application/json",
						"/chart.svg":    "image/svg+xml",
						"/api-docs":     "text/html",
						"/openapi.yaml": "application/yaml",
					} {
						w := httptest.NewRecorder()
						mux.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, http.NoBody))
						convey.So(w.Code, convey.ShouldEqual, http.StatusOK)
						convey.So(w.Header().Get("Content-Type"), convey.ShouldStartWith, want)
					}

					w := httptest.NewRecorder()
					mux.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/views", http.NoBody))
					convey.So(w.Code, convey.ShouldEqual, http.StatusCreated)
					var sum types.ViewSummary
					convey.So(json.Unmarshal(w.Body.Bytes(), &sum), convey.ShouldBeNil)
					convey.So(sum.Points, convey.ShouldHaveLength, 6)
				})
			})
		})

		convey.Convey("When the address is empty", func() {
			_ = os.Setenv("PELOTON_ADDR", "")
			defer func() { _ = os.Unsetenv("PELOTON_ADDR") }()

			convey.Convey("Then configuration loading fails", func() {
				cfg, err := config.Load(context.Background())
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(cfg, convey.ShouldBeNil)
			})
		})
	})
}

func TestMainApplicationComponents(t *testing.T) {
	convey.Convey("Given the system metrics updater", t, func() {
		convey.Convey("Then it returns once the context ends", func() {
			ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
			defer cancel()
			done := make(chan struct{})
			go func() {
				startSystemMetricsUpdater(ctx)
				close(done)
			}()
			select {
			case <-done:
			case <-time.After(time.Second):
			}
			convey.So(ctx.Err(), convey.ShouldNotBeNil)
		})

		convey.Convey("Then a single update does not panic", func() {
			convey.So(updateSystemMetrics, convey.ShouldNotPanic)
		})
	})
}
