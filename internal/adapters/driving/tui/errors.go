package tui

import "errors"

// ErrMissingRecallService is returned when the recall service is not provided.
var ErrMissingRecallService = errors.New("tui: recall service is required")

// ErrInvalidPorts is returned when ports validation fails.
var ErrInvalidPorts = errors.New("tui: invalid ports configuration")
