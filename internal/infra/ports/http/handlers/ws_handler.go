package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"github.com/qrave1/RhythmDuel/internal/application/config"
	"github.com/qrave1/RhythmDuel/internal/application/constant"
	"github.com/qrave1/RhythmDuel/internal/domain/events"
	"github.com/qrave1/RhythmDuel/internal/infra/adapters/memory"
	"github.com/qrave1/RhythmDuel/internal/usecase"
)

const maxMessageSize = 4096

var errUnknownMessageType = errors.New("unknown message type")

// WebSocketHandler связывает соединение с участием в комнате
type WebSocketHandler struct {
	upgrader *websocket.Upgrader

	readTimeout time.Duration

	duelUsecase usecase.DuelUsecase

	wsConnRepo memory.WebsocketConnectionRepository
}

func NewWebSocketHandler(cfg *config.Config, duelUsecase usecase.DuelUsecase, wsConnRepo memory.WebsocketConnectionRepository) *WebSocketHandler {
	return &WebSocketHandler{
		upgrader: &websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				if cfg.Debug {
					return true
				}

				origin := r.Header.Get("Origin")

				return origin == "" || origin == cfg.Domain
			},
		},
		readTimeout: cfg.WS.ReadTimeout,
		duelUsecase: duelUsecase,
		wsConnRepo:  wsConnRepo,
	}
}

func (h *WebSocketHandler) Handle(c echo.Context) error {
	ws, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"WebSocket upgrade error",
			slog.Any(constant.Error, err),
		)
		return err
	}
	defer ws.Close()

	connID := uuid.NewString()

	h.wsConnRepo.Add(connID, ws)
	defer h.wsConnRepo.Remove(connID)

	// Отключение обрабатывается так же, как явный выход из комнаты
	defer h.duelUsecase.Disconnect(context.WithoutCancel(c.Request().Context()), connID)

	slog.Info("websocket connected", slog.String(constant.ConnID, connID))

	ws.SetReadLimit(maxMessageSize)

	if err = ws.SetReadDeadline(time.Now().Add(h.readTimeout)); err != nil {
		return nil
	}
	ws.SetPongHandler(func(string) error {
		return ws.SetReadDeadline(time.Now().Add(h.readTimeout))
	})

	h.wsConnRepo.Write(connID, events.Envelope{
		Type: events.TypeConnected,
		Data: events.ConnectedEvent{ID: connID},
	})

	ctx := c.Request().Context()

	for {
		_, msg, err := ws.ReadMessage()
		if err != nil {
			h.handleWebsocketError(connID, err)

			return nil
		}

		message := new(events.Message)

		if err = json.Unmarshal(msg, message); err != nil {
			slog.Warn(
				"unmarshal websocket message",
				slog.Any(constant.Error, err),
				slog.String(constant.ConnID, connID),
			)
			h.writeError(connID, "malformed message")

			continue
		}

		if err = h.handleMessage(ctx, connID, message); err != nil {
			slog.Warn(
				"handle message",
				slog.Any(constant.Error, err),
				slog.String(constant.ConnID, connID),
				slog.String("type", message.Type),
			)
			h.writeError(connID, err.Error())
		}
	}
}

func (h *WebSocketHandler) handleMessage(
	ctx context.Context,
	connID string,
	msg *events.Message,
) error {
	switch msg.Type {
	case events.TypeCreateRoom:
		var createEvent events.CreateRoomEvent

		if err := decode(msg.Data, &createEvent); err != nil {
			return fmt.Errorf("unmarshal create room event: %w", err)
		}

		_ = h.duelUsecase.CreateRoom(ctx, connID, createEvent.Name, h.ack(connID, msg.AckID))

	case events.TypeJoinRoom:
		var joinEvent events.JoinRoomEvent

		if err := decode(msg.Data, &joinEvent); err != nil {
			return fmt.Errorf("unmarshal join room event: %w", err)
		}

		// RoomNotFound/RoomFull уже отправлены клиенту в ack
		_ = h.duelUsecase.JoinRoom(ctx, connID, joinEvent.RoomID, joinEvent.Name, h.ack(connID, msg.AckID))

	case events.TypeLeaveRoom:
		var leaveEvent events.LeaveRoomEvent

		if err := decode(msg.Data, &leaveEvent); err != nil {
			return fmt.Errorf("unmarshal leave room event: %w", err)
		}

		h.duelUsecase.LeaveRoom(ctx, connID, leaveEvent.RoomID)

	case events.TypeSetReady:
		var readyEvent events.SetReadyEvent

		if err := decode(msg.Data, &readyEvent); err != nil {
			return fmt.Errorf("unmarshal set ready event: %w", err)
		}

		h.duelUsecase.SetReady(ctx, connID, readyEvent.RoomID, readyEvent.Ready)

	case events.TypeHit:
		var hitEvent events.HitEvent

		if err := decode(msg.Data, &hitEvent); err != nil {
			return fmt.Errorf("unmarshal hit event: %w", err)
		}

		h.duelUsecase.RelayHit(ctx, connID, hitEvent)

	case events.TypeGameOver:
		var gameOverEvent events.GameOverEvent

		if err := decode(msg.Data, &gameOverEvent); err != nil {
			return fmt.Errorf("unmarshal game over event: %w", err)
		}

		h.duelUsecase.EndDuel(ctx, connID, gameOverEvent.RoomID, gameOverEvent.Winner)

	default:
		return errUnknownMessageType
	}

	return nil
}

// ack отвечает только отправителю; без ackId клиент ответа не ждёт
func (h *WebSocketHandler) ack(connID string, ackID *int64) usecase.AckFunc {
	return func(ack events.AckEvent) {
		h.wsConnRepo.Write(connID, events.Envelope{
			Type:  events.TypeAck,
			AckID: ackID,
			Data:  ack,
		})
	}
}

func (h *WebSocketHandler) writeError(connID, message string) {
	h.wsConnRepo.Write(connID, events.Envelope{
		Type: events.TypeError,
		Data: events.ErrorEvent{Message: message},
	})
}

func (h *WebSocketHandler) handleWebsocketError(connID string, err error) {
	var closeErr *websocket.CloseError
	if errors.As(err, &closeErr) {
		switch closeErr.Code {
		case websocket.CloseNormalClosure, websocket.CloseGoingAway, websocket.CloseNoStatusReceived:
			slog.Info("websocket disconnected", slog.String(constant.ConnID, connID))
		default:
			slog.Warn(
				"websocket closed",
				slog.Int("code", closeErr.Code),
				slog.String(constant.ConnID, connID),
			)
		}
	} else {
		slog.Info(
			"websocket read",
			slog.Any(constant.Error, err),
			slog.String(constant.ConnID, connID),
		)
	}
}

// decode допускает пустой data: клиенты шлют {"type":"createRoom"} без полей
func decode(data json.RawMessage, v any) error {
	if len(data) == 0 || string(data) == "null" {
		return nil
	}

	return json.Unmarshal(data, v)
}
