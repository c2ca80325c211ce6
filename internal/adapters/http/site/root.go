// Package site serves the embedded interactive chart page.
package site

import (
	"context"
	"errors"
	"net/http"
)

// ErrServe is returned when the embedded page cannot be served.
var ErrServe = errors.New("chart site serve failed")

// Register attaches the embedded page and its assets to mux.
func Register(_ context.Context, mux *http.ServeMux) {
	if mux == nil {
		panic("mux is nil")
	}
	mux.Handle("GET /", http.FileServer(FS()))
}
