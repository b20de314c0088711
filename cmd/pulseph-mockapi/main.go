package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/nhle/pulseph/internal/logging"
	"github.com/nhle/pulseph/internal/mockapi"
)

func main() {
	if err := run(); err != nil {
		os.Exit(1)
	}
}

func run() error {
	logger := logging.SetupStderr(slog.LevelInfo)

	cfg, err := mockapi.LoadServerConfig()
	if err != nil {
		logger.Error("load config failed", slog.Any("error", err))
		return err
	}

	level := logging.ParseLevel(cfg.LogLevel)
	if cfg.LogFormat == "json" {
		logger = logging.NewJSON(os.Stderr, level)
	} else {
		logger = logging.New(os.Stderr, level)
	}
	slog.SetDefault(logger)

	backend := mockapi.NewBackend(cfg.LGUs)
	handler := mockapi.NewRouter(mockapi.NewHandler(logger, backend), cfg.Router, logger)
	server := mockapi.NewServer(cfg.Addr, handler, logger)

	ctx, stop := context.WithCancel(context.Background())
	defer stop()

	errChan := make(chan error, 1)
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := server.Run(ctx); err != nil {
			logger.Error("mock backend failed", slog.Any("error", err))
			errChan <- err
		}
		logger.Info("mock backend stopped")
	}()

	quitChan := make(chan os.Signal, 1)
	signal.Notify(quitChan, syscall.SIGINT, syscall.SIGTERM)

	var runErr error
	select {
	case sig := <-quitChan:
		logger.Info("captured signal, initiating shutdown", slog.String("signal", sig.String()))
	case runErr = <-errChan:
	}

	stop()
	wg.Wait()
	return runErr
}
