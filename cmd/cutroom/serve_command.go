package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"cutroom/internal/httpapi"
	"cutroom/internal/library"
	"cutroom/internal/logging"
	"cutroom/internal/preflight"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the local HTTP API server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runServeProcess(cmd, ctx)
		},
	}
}

func runServeProcess(cmd *cobra.Command, ctx *commandContext) error {
	signalCtx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, err := ctx.ensureConfig()
	if err != nil {
		return err
	}

	runID := time.Now().UTC().Format("20060102T150405.000Z")
	logPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("cutroom-%s.log", runID))
	eventsPath := filepath.Join(cfg.Paths.LogDir, fmt.Sprintf("cutroom-%s.events", runID))
	logHub := logging.NewStreamHub(4096)
	eventArchive, archiveErr := logging.NewEventArchive(eventsPath)
	if archiveErr != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "warn: unable to initialize log archive: %v\n", archiveErr)
	} else if eventArchive != nil {
		logHub.AddSink(eventArchive)
	}

	logger, err := logging.New(logging.Options{
		Level:            cfg.Logging.Level,
		Format:           cfg.Logging.Format,
		OutputPaths:      []string{"stdout", logPath},
		ErrorOutputPaths: []string{"stderr", logPath},
		Stream:           logHub,
	})
	if err != nil {
		return err
	}
	logging.CleanupOldLogs(logger, cfg.Logging.RetentionDays,
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "cutroom-*.log", Exclude: []string{logPath}},
		logging.RetentionTarget{Dir: cfg.Paths.LogDir, Pattern: "cutroom-*.events", Exclude: []string{eventsPath}},
	)

	// Failed checks are advisory here. The API still serves project CRUD
	// without ffmpeg on the PATH; exports will fail with a clear error.
	for _, check := range preflight.RunAll(signalCtx, cfg) {
		if check.Passed {
			continue
		}
		logger.Warn("preflight check failed",
			logging.String("check", check.Name),
			logging.String("detail", check.Detail),
		)
	}

	pidPath := filepath.Join(cfg.Paths.LogDir, "cutroom.pid")
	if err := writePIDFile(pidPath); err != nil {
		return fmt.Errorf("write pid file: %w", err)
	}
	defer os.Remove(pidPath)

	store, err := library.Open(cfg)
	if err != nil {
		logger.Error("open library store", logging.Error(err))
		return err
	}
	defer store.Close()

	server := httpapi.NewServer(httpapi.ServerConfig{
		Config:  cfg,
		Library: store,
		Logger:  logger,
		Stream:  logHub,
		Version: version,
	})

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- server.Start()
	}()

	select {
	case err := <-serveErr:
		if err != nil {
			logger.Error("api server stopped", logging.Error(err))
		}
		return err
	case <-signalCtx.Done():
	}

	logger.Info("cutroom serve shutting down")
	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Warn("server shutdown", logging.Error(err))
	}
	return nil
}

func writePIDFile(path string) error {
	if path == "" {
		return nil
	}
	value := strconv.Itoa(os.Getpid()) + "\n"
	return os.WriteFile(path, []byte(value), 0o644)
}
