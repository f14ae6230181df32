package events

import (
	"encoding/json"

	"github.com/qrave1/RhythmDuel/internal/domain/output"
)

// Типы входящих сообщений
const (
	TypeCreateRoom = "createRoom"
	TypeJoinRoom   = "joinRoom"
	TypeLeaveRoom  = "leaveRoom"
	TypeSetReady   = "setReady"
	TypeHit        = "hit"
	TypeGameOver   = "gameOver"
)

// Типы исходящих сообщений
const (
	TypeConnected   = "connected"
	TypeAck         = "ack"
	TypeRoomUpdate  = "roomUpdate"
	TypeStartDuel   = "startDuel"
	TypeOpponentHit = "opponentHit"
	TypeDuelEnded   = "duelEnded"
	TypeError       = "error"
)

// Message - входящее сообщение от клиента.
// AckID присылают только createRoom и joinRoom.
type Message struct {
	Type  string          `json:"type"`
	AckID *int64          `json:"ackId,omitempty"`
	Data  json.RawMessage `json:"data"`
}

// Envelope - исходящее сообщение
type Envelope struct {
	Type  string `json:"type"`
	AckID *int64 `json:"ackId,omitempty"`
	Data  any    `json:"data,omitempty"`
}

type CreateRoomEvent struct {
	Name string `json:"name"`
}

type JoinRoomEvent struct {
	RoomID string `json:"roomId"`
	Name   string `json:"name"`
}

type LeaveRoomEvent struct {
	RoomID string `json:"roomId"`
}

type SetReadyEvent struct {
	RoomID string `json:"roomId"`
	Ready  bool   `json:"ready"`
}

// HitEvent - timeMs берётся с клиента и сервером не проверяется
type HitEvent struct {
	RoomID string  `json:"roomId"`
	Lane   int     `json:"lane"`
	TimeMs float64 `json:"timeMs"`
}

type GameOverEvent struct {
	RoomID string `json:"roomId"`
	Winner string `json:"winner"`
}

type ConnectedEvent struct {
	ID string `json:"id"`
}

// AckEvent - ответ на createRoom/joinRoom
type AckEvent struct {
	OK     bool   `json:"ok"`
	RoomID string `json:"roomId,omitempty"`
	Error  string `json:"error,omitempty"`
}

type StartDuelEvent struct {
	StartTime int64 `json:"startTime"`
	Seed      int64 `json:"seed"`
}

type OpponentHitEvent struct {
	Lane   int     `json:"lane"`
	TimeMs float64 `json:"timeMs"`
	From   string  `json:"from"`
}

type DuelEndedEvent struct {
	Winner string `json:"winner"`
}

type ErrorEvent struct {
	Message string `json:"message"`
}

func RoomUpdate(snapshot output.RoomSnapshot) Envelope {
	return Envelope{Type: TypeRoomUpdate, Data: snapshot}
}
