package cmd

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/qrave1/RhythmDuel/internal/application/config"
	"github.com/qrave1/RhythmDuel/internal/application/constant"
	"github.com/qrave1/RhythmDuel/internal/application/metric"
	"github.com/qrave1/RhythmDuel/internal/infra/adapters/memory"
	"github.com/qrave1/RhythmDuel/internal/infra/ports/http/handlers"
	"github.com/qrave1/RhythmDuel/internal/infra/ports/http/server"
	"github.com/qrave1/RhythmDuel/internal/usecase"
)

func runApp() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		slog.Error("parse config", slog.Any(constant.Error, err))
		os.Exit(1)
	}

	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}

	slog.SetDefault(
		slog.New(
			slog.NewJSONHandler(
				os.Stdout,
				&slog.HandlerOptions{Level: level},
			),
		),
	)

	slog.Info("Running app", slog.Bool("debug", cfg.Debug), slog.String("version", Version))

	roomRepo := memory.NewRoomRepository(memory.NanoidCode)
	wsConnRepo := memory.NewWSConnectionRepository(memory.WSOptions{
		SendBuffer:   cfg.WS.SendBuffer,
		PingInterval: cfg.WS.PingInterval,
		WriteTimeout: cfg.WS.WriteTimeout,
	})

	duelUsecase := usecase.NewDuelUsecase(
		roomRepo,
		wsConnRepo,
		clockwork.NewRealClock(),
		cfg.Duel.Countdown,
		usecase.RandomSeed,
	)

	roomHandler := handlers.NewRoomHandler(duelUsecase)
	wsHandler := handlers.NewWebSocketHandler(cfg, duelUsecase, wsConnRepo)

	echoSrv := server.New(cfg, roomHandler, wsHandler)

	metricsSrv := metric.NewServer()

	echoSrvCh := make(chan error, 1)
	metricsSrvCh := make(chan error, 1)

	// Запускаем HTTP сервер
	go func() {
		slog.Info("HTTP server starting", slog.String("port", cfg.Port))
		echoSrvCh <- echoSrv.Start(":" + cfg.Port)
	}()

	// Запускаем сервер метрик
	go func() {
		metricsSrvCh <- metricsSrv.Start(":" + cfg.MetricPort)
	}()

	select {
	case <-ctx.Done():
		slog.Info("Shutting down servers due to context cancel")
	case err := <-echoSrvCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("HTTP server failed", slog.Any(constant.Error, err))
			os.Exit(1)
		}
	case err := <-metricsSrvCh:
		if !errors.Is(err, http.ErrServerClosed) {
			slog.Error("Metrics server failed", slog.Any(constant.Error, err))
			os.Exit(1)
		}
	}

	timeoutCtx, timeoutCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer timeoutCancel()

	if err := echoSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown HTTP server", slog.Any(constant.Error, err))
	}

	if err := metricsSrv.Shutdown(timeoutCtx); err != nil {
		slog.Error("Failed to gracefully shutdown metric server", slog.Any(constant.Error, err))
	}
}
