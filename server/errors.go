package main

import "github.com/pkg/errors"

var (
	ErrRoomNotFound  = errors.New("room not found")
	ErrAgentNotFound = errors.New("agent not found")
	ErrRoomFull      = errors.New("room full")
	ErrTooManyRooms  = errors.New("too many rooms")
)
