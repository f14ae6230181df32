package models

import "errors"

// Тексты ошибок уходят клиенту в ack как есть
var (
	ErrRoomNotFound = errors.New("Room not found")
	ErrRoomFull     = errors.New("Room full")
	ErrNotMember    = errors.New("connection is not a member of the room")
)
