package main

import "errors"

var (
	// ErrOutOfRange is returned when a cell lies outside a grid's bounds.
	ErrOutOfRange = errors.New("cell out of range")

	// ErrInvalidPathInput marks a caller contract violation while building a path.
	ErrInvalidPathInput = errors.New("invalid path input")

	ErrRoomNotFound     = errors.New("room not found")
	ErrObstacleNotFound = errors.New("obstacle not found")
	ErrInvalidRoom      = errors.New("invalid room")
	ErrInvalidBounds    = errors.New("invalid bounds")
)
