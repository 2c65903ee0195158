package domain

import "errors"

// ErrEmptyBatch indicates RunBatch was invoked with no source URLs.
var ErrEmptyBatch = errors.New("batch contains no source urls")
