package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/qrave1/RhythmDuel/internal/application/constant"
	"github.com/qrave1/RhythmDuel/internal/domain/models"
	"github.com/qrave1/RhythmDuel/internal/infra/ports/http/dto"
	"github.com/qrave1/RhythmDuel/internal/usecase"
)

type RoomHandler struct {
	duelUsecase usecase.DuelUsecase
}

func NewRoomHandler(duelUsecase usecase.DuelUsecase) *RoomHandler {
	return &RoomHandler{duelUsecase: duelUsecase}
}

// GetRoomHandler позволяет проверить код комнаты до подключения по websocket
func (h *RoomHandler) GetRoomHandler(c echo.Context) error {
	roomID := models.NormalizeRoomID(c.Param("id"))
	if roomID == "" {
		return c.JSON(http.StatusBadRequest, map[string]string{"error": "room id is required"})
	}

	info, err := h.duelUsecase.RoomInfo(c.Request().Context(), roomID)
	if err != nil {
		if errors.Is(err, models.ErrRoomNotFound) {
			return c.JSON(http.StatusNotFound, dto.RoomResponse{ID: roomID})
		}

		slog.Error("get room info", slog.Any(constant.Error, err), slog.String(constant.RoomID, roomID))
		return c.JSON(http.StatusInternalServerError, map[string]string{"error": "failed to get room"})
	}

	return c.JSON(http.StatusOK, dto.NewRoomResponse(info, models.RoomCapacity))
}
