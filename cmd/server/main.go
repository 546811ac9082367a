package main

import (
	"context"
	"ctchen222/solo-tic-tac-toe/internal/api/controller"
	"ctchen222/solo-tic-tac-toe/internal/bot"
	"ctchen222/solo-tic-tac-toe/internal/celebration"
	"ctchen222/solo-tic-tac-toe/internal/config"
	"ctchen222/solo-tic-tac-toe/internal/db"
	"ctchen222/solo-tic-tac-toe/internal/engine"
	"ctchen222/solo-tic-tac-toe/internal/history"
	"ctchen222/solo-tic-tac-toe/internal/hub"
	"ctchen222/solo-tic-tac-toe/internal/logger"
	"ctchen222/solo-tic-tac-toe/internal/server"
	"ctchen222/solo-tic-tac-toe/internal/telemetry"
	"errors"
	"flag"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
)

func main() {
	configPath := flag.String("config", "", "path to a YAML config file")
	flag.Parse()

	cfg := config.MustLoad(*configPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Initialize telemetry
	shutdown, err := telemetry.InitOtel(ctx, telemetry.Settings{
		Endpoint:       cfg.Telemetry.Endpoint,
		ServiceName:    cfg.Telemetry.ServiceName,
		ServiceVersion: cfg.Telemetry.ServiceVersion,
	})
	if err != nil {
		slog.Error("failed to initialize telemetry", "error", err)
		os.Exit(1)
	}
	defer func() {
		if err := shutdown(context.Background()); err != nil {
			slog.Error("error shutting down telemetry", "error", err)
		}
	}()

	logger.Init(cfg.SlogLevel())

	// Round history lives in SQLite, in memory unless configured otherwise.
	historyDB, err := db.OpenSQLite(ctx, cfg.History.DSN)
	if err != nil {
		slog.Error("failed to open history database", "error", err)
		os.Exit(1)
	}
	defer historyDB.Close()
	rounds := history.NewRepository(historyDB)

	games := engine.New(bot.NewRandomMove(nil), engine.WithOpponentDelay(cfg.OpponentDelay))
	defer games.Close()
	games.AddRoundRecorder(history.NewRecorder(rounds))

	if cfg.Redis.Addr != "" {
		rdb, err := db.NewRedisClient(ctx, cfg.Redis.Addr)
		if err != nil {
			slog.Error("failed to initialize redis", "error", err)
			os.Exit(1)
		}
		defer rdb.Close()

		publisher := celebration.NewRedisPublisher(rdb)
		games.AddWinObserver(publisher)
		games.AddRoundRecorder(publisher)
	}

	// Create hub
	h := hub.NewHub(games)
	games.Subscribe(h)
	games.AddWinObserver(h)
	go h.Run(ctx)

	srv := server.NewServer(h, controller.NewGameController(games, rounds))

	// Graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)

	httpServer := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: srv.Handler(),
	}

	go func() {
		slog.Info("http server started", "addr", cfg.HTTPAddr, "opponent.delay", cfg.OpponentDelay)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("ListenAndServe failed", "error", err)
			stop <- syscall.SIGTERM
		}
	}()

	<-stop

	slog.Info("shutting down server")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	}
	cancel()

	slog.Info("server exiting")
}
