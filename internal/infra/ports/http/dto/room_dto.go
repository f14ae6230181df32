package dto

import "github.com/qrave1/RhythmDuel/internal/domain/output"

type RoomResponse struct {
	ID      string `json:"id"`
	Exists  bool   `json:"exists"`
	Members int    `json:"members"`
	Started bool   `json:"started"`
	// Joinable - в комнате есть свободное место
	Joinable bool `json:"joinable"`
}

func NewRoomResponse(info output.RoomInfo, capacity int) RoomResponse {
	return RoomResponse{
		ID:       info.ID,
		Exists:   true,
		Members:  info.Members,
		Started:  info.Started,
		Joinable: info.Members < capacity,
	}
}
