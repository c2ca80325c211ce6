// Package config defines service configuration structures and loading hooks.
//
// Conventions:
// - New() returns a Config filled with defaults.
// - Load(ctx) layers a YAML file and PELOTON_* environment variables on top.
// - External errors are wrapped with this package's sentinel errors.
package config

import (
	"fmt"
	"time"

	"github.com/okian/peloton/internal/adapters/dataset"
	"github.com/okian/peloton/internal/domain/chart"
	"github.com/okian/peloton/internal/domain/scale"
)

// DefaultDatasetURL is the cyclist finish-time dataset.
const DefaultDatasetURL = dataset.DefaultURL

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":9080".
	Addr string `koanf:"addr"`

	// DatasetURL is fetched once per process when DatasetFile is empty.
	DatasetURL string `koanf:"dataset_url"`

	// DatasetFile, when set, reads the dataset from disk instead.
	DatasetFile string `koanf:"dataset_file"`

	// FetchTimeoutMS bounds the dataset request. 0 disables the client timeout.
	FetchTimeoutMS int `koanf:"fetch_timeout_ms"`

	// Width and Height are the SVG dimensions in pixels.
	Width  int `koanf:"width"`
	Height int `koanf:"height"`

	// PadX and PadY inset the plotting area on both sides.
	PadX int `koanf:"pad_x"`
	PadY int `koanf:"pad_y"`

	// XPadYears extends the x domain below the earliest year. 0 leaves it unpadded.
	XPadYears int `koanf:"x_pad_years"`

	// YPadSeconds extends the y domain below the fastest time.
	YPadSeconds int `koanf:"y_pad_seconds"`

	// MarkRadius is the circle radius of every mark.
	MarkRadius int `koanf:"mark_radius"`

	// MaxViews bounds the number of live render contexts.
	MaxViews int `koanf:"max_views"`

	// MailboxSize bounds pending pointer events per view.
	MailboxSize int `koanf:"mailbox_size"`
}

// New creates a Config populated with defaults.
func New() *Config {
	return &Config{
		LogLevel:       "info",
		Addr:           ":9080",
		DatasetURL:     DefaultDatasetURL,
		FetchTimeoutMS: 0,
		Width:          950,
		Height:         500,
		PadX:           150,
		PadY:           100,
		XPadYears:      2,
		YPadSeconds:    15,
		MarkRadius:     6,
		MaxViews:       256,
		MailboxSize:    64,
	}
}

// Validate reports the first invalid field wrapped in ErrInvalidConfig.
func (c *Config) Validate() error {
	switch {
	case c.Addr == "":
		return fmt.Errorf("%w: addr must not be empty", ErrInvalidConfig)
	case c.DatasetURL == "" && c.DatasetFile == "":
		return fmt.Errorf("%w: one of dataset_url or dataset_file is required", ErrInvalidConfig)
	case c.Width <= 0 || c.Height <= 0:
		return fmt.Errorf("%w: width and height must be positive", ErrInvalidConfig)
	case c.PadX < 0 || c.PadY < 0:
		return fmt.Errorf("%w: padding must not be negative", ErrInvalidConfig)
	case 2*c.PadX >= c.Width || 2*c.PadY >= c.Height:
		return fmt.Errorf("%w: padding leaves no room to plot", ErrInvalidConfig)
	case c.XPadYears < 0 || c.YPadSeconds < 0:
		return fmt.Errorf("%w: domain padding must not be negative", ErrInvalidConfig)
	case c.MarkRadius <= 0:
		return fmt.Errorf("%w: mark_radius must be positive", ErrInvalidConfig)
	case c.FetchTimeoutMS < 0:
		return fmt.Errorf("%w: fetch_timeout_ms must not be negative", ErrInvalidConfig)
	}
	return nil
}

// Layout converts the geometry settings.
func (c *Config) Layout() scale.Layout {
	l := scale.DefaultLayout()
	l.Width, l.Height = float64(c.Width), float64(c.Height)
	l.PadX, l.PadY = float64(c.PadX), float64(c.PadY)
	l.XPadYears = c.XPadYears
	l.YPad = time.Duration(c.YPadSeconds) * time.Second
	return l
}

// Style returns the default style with the configured mark radius.
func (c *Config) Style() chart.Style {
	st := chart.DefaultStyle()
	st.MarkRadius = float64(c.MarkRadius)
	return st
}

// FetchTimeout is FetchTimeoutMS as a duration.
func (c *Config) FetchTimeout() time.Duration {
	return time.Duration(c.FetchTimeoutMS) * time.Millisecond
}
