package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/okian/peloton/internal/adapters/dataset"
	"github.com/okian/peloton/internal/adapters/mq/worker"
	"github.com/okian/peloton/internal/adapters/repository"
	service "github.com/okian/peloton/internal/app"
	"github.com/okian/peloton/internal/domain/interaction"
	"github.com/okian/peloton/internal/domain/scale"
)

// Sentinel kinds for API errors.
var (
	ErrBadRequest   = errors.New("bad request")
	ErrNotFound     = errors.New("not found")
	ErrBackpressure = errors.New("backpressure")
	ErrUpstream     = errors.New("upstream dataset unavailable")
	ErrUnavailable  = errors.New("service unavailable")
	ErrInternal     = errors.New("internal error")
)

// Error carries the operation that failed, the API kind it maps to and the
// underlying cause.
type Error struct {
	Op   string
	Kind error
	Err  error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: %v", e.Op, e.Kind)
	}
	return fmt.Sprintf("%s: %v: %v", e.Op, e.Kind, e.Err)
}

// Unwrap exposes both the kind and the cause to errors.Is.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

// NewKind returns an error of kind without a cause.
func NewKind(op string, kind error) error {
	return &Error{Op: op, Kind: kind}
}

// WrapKind attaches op and kind to err.
func WrapKind(op string, kind, err error) error {
	return &Error{Op: op, Kind: kind, Err: err}
}

// Wrap classifies err by the sentinel it wraps.
func Wrap(op string, err error) error {
	return WrapKind(op, kindOf(err), err)
}

func kindOf(err error) error {
	switch {
	case errors.Is(err, ErrBadRequest),
		errors.Is(err, interaction.ErrUnknownMark),
		errors.Is(err, interaction.ErrUnknownKind):
		return ErrBadRequest
	case errors.Is(err, repository.ErrNotFound), errors.Is(err, worker.ErrClosed):
		return ErrNotFound
	case errors.Is(err, worker.ErrBackpressure):
		return ErrBackpressure
	case errors.Is(err, dataset.ErrFetch),
		errors.Is(err, dataset.ErrDecode),
		errors.Is(err, dataset.ErrMalformedRecord),
		errors.Is(err, scale.ErrEmptyDataset):
		return ErrUpstream
	case errors.Is(err, service.ErrNotStarted), errors.Is(err, context.Canceled):
		return ErrUnavailable
	default:
		return ErrInternal
	}
}

type kindStatus struct {
	status int
	code   string
}

var statusByKind = map[error]kindStatus{
	ErrBadRequest:   {http.StatusBadRequest, "bad_request"},
	ErrNotFound:     {http.StatusNotFound, "not_found"},
	ErrBackpressure: {http.StatusTooManyRequests, "backpressure"},
	ErrUpstream:     {http.StatusBadGateway, "upstream_error"},
	ErrUnavailable:  {http.StatusServiceUnavailable, "unavailable"},
	ErrInternal:     {http.StatusInternalServerError, "internal_error"},
}

// statusOf maps an error to its HTTP status and response code.
func statusOf(err error) (int, string) {
	kind := kindOf(err)
	var e *Error
	if errors.As(err, &e) {
		kind = e.Kind
	}
	if ks, ok := statusByKind[kind]; ok {
		return ks.status, ks.code
	}
	return http.StatusInternalServerError, "internal_error"
}
