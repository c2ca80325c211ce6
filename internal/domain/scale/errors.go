package scale

import "errors"

// Sentinel kinds for scale construction.
var (
	ErrEmptyDataset  = errors.New("cannot build scales from an empty dataset")
	ErrInvalidLayout = errors.New("invalid chart layout")
)
