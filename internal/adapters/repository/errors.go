package repository

import "errors"

// Sentinel kinds for history errors.
var (
	ErrEmpty        = errors.New("no results recorded")
	ErrInvalidLimit = errors.New("invalid history limit")
)
