package core

import "errors"

var (
	ErrDuplicateUsername    = errors.New("username already taken")
	ErrRoomExists           = errors.New("room already exists")
	ErrRoomNotFound         = errors.New("room not found")
	ErrNotRegistered        = errors.New("connection not registered")
	ErrAlreadyInDefaultRoom = errors.New("already in the default room")
)
