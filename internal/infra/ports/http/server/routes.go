package server

import (
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"github.com/qrave1/RhythmDuel/internal/application/config"
	"github.com/qrave1/RhythmDuel/internal/infra/ports/http/handlers"
	"github.com/qrave1/RhythmDuel/internal/infra/ports/http/middleware"
)

func New(
	cfg *config.Config,
	roomHandler *handlers.RoomHandler,
	wsHandler *handlers.WebSocketHandler,
) *echo.Echo {
	e := echo.New()

	e.HideBanner = true
	e.HidePort = true

	e.Use(echomw.Recover())
	e.Use(middleware.SlogLogger())
	e.Use(middleware.PrometheusMiddleware())

	e.GET("/ws", wsHandler.Handle)

	api := e.Group("/api")
	{
		api.GET("/rooms/:id", roomHandler.GetRoomHandler)
	}

	e.Static("/", cfg.StaticDir)

	return e
}
