package service

import "errors"

// ErrNotFound is returned when a competitor is not on the roster.
var ErrNotFound = errors.New("competitor not found")
