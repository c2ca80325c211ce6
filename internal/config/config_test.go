package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/okian/peloton/internal/config"
	"github.com/smartystreets/goconvey/convey"
)

func TestConfig_New(t *testing.T) {
	convey.Convey("Given a new config with default options", t, func() {
		cfg := config.New()

		convey.Convey("Then it should have sensible defaults", func() {
			convey.So(cfg.Addr, convey.ShouldEqual, ":9080")
			convey.So(cfg.DatasetURL, convey.ShouldEqual, config.DefaultDatasetURL)
			convey.So(cfg.Width, convey.ShouldEqual, 950)
			convey.So(cfg.Height, convey.ShouldEqual, 500)
			convey.So(cfg.PadX, convey.ShouldEqual, 150)
			convey.So(cfg.PadY, convey.ShouldEqual, 100)
			convey.So(cfg.XPadYears, convey.ShouldEqual, 2)
			convey.So(cfg.YPadSeconds, convey.ShouldEqual, 15)
			convey.So(cfg.MarkRadius, convey.ShouldEqual, 6)
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Validate(t *testing.T) {
	convey.Convey("Given configs with invalid fields", t, func() {
		cases := map[string]func(c *config.Config){
			"empty addr":         func(c *config.Config) { c.Addr = "" },
			"no dataset":         func(c *config.Config) { c.DatasetURL = ""; c.DatasetFile = "" },
			"zero width":         func(c *config.Config) { c.Width = 0 },
			"negative pad":       func(c *config.Config) { c.PadY = -1 },
			"pad eats the range": func(c *config.Config) { c.PadX = 475 },
			"negative years":     func(c *config.Config) { c.XPadYears = -2 },
			"zero radius":        func(c *config.Config) { c.MarkRadius = 0 },
			"negative timeout":   func(c *config.Config) { c.FetchTimeoutMS = -5 },
		}
		for name, mutate := range cases {
			convey.Convey("Then "+name+" is rejected", func() {
				cfg := config.New()
				mutate(cfg)
				err := cfg.Validate()
				convey.So(err, convey.ShouldNotBeNil)
				convey.So(errors.Is(err, config.ErrInvalidConfig), convey.ShouldBeTrue)
			})
		}

		convey.Convey("And a file-only dataset is accepted", func() {
			cfg := config.New()
			cfg.DatasetURL = ""
			cfg.DatasetFile = "testdata/cyclist-data.json"
			convey.So(cfg.Validate(), convey.ShouldBeNil)
		})
	})
}

func TestConfig_Conversions(t *testing.T) {
	convey.Convey("Given a config with custom geometry", t, func() {
		cfg := config.New()
		cfg.Width, cfg.Height = 800, 400
		cfg.XPadYears = 0
		cfg.YPadSeconds = 30
		cfg.MarkRadius = 4
		cfg.FetchTimeoutMS = 1500

		convey.Convey("Then the layout carries the same values", func() {
			l := cfg.Layout()
			convey.So(l.Width, convey.ShouldEqual, 800.0)
			convey.So(l.Height, convey.ShouldEqual, 400.0)
			convey.So(l.XPadYears, convey.ShouldEqual, 0)
			convey.So(l.YPad, convey.ShouldEqual, 30*time.Second)
			convey.So(l.Validate(), convey.ShouldBeNil)
		})

		convey.Convey("Then the style and timeout follow", func() {
			convey.So(cfg.Style().MarkRadius, convey.ShouldEqual, 4.0)
			convey.So(cfg.Style().Accent, convey.ShouldEqual, "orange")
			convey.So(cfg.FetchTimeout(), convey.ShouldEqual, 1500*time.Millisecond)
		})
	})
}
