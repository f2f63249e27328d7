package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"hubhook/internal/channel"
	"hubhook/internal/eventlog"
	"hubhook/internal/security"
	"hubhook/internal/server"

	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the webhook gateway",
	Long: `Start the HTTP server that receives Meta webhook deliveries.

Each enabled channel gets its own path (/facebook, /instagram, /threads)
answering the GET verification handshake and accepting signed POST events.
GET / dumps the event log, newest first.`,
	RunE: runServe,
}

func init() {
	f := serveCmd.Flags()
	f.String("host", "", "Host to bind to (default 0.0.0.0)")
	f.IntP("port", "p", 0, "Port to listen on (default 5000)")
	f.String("app-secret", "", "App secret used to verify payload signatures")
	f.String("verify-token", "", "Token expected in the subscription handshake")
	f.Bool("enforce-signature", true, "Reject POSTs without a valid signature")
	f.StringSlice("channels", nil, "Channels to enable (default facebook,instagram,threads)")
	f.String("store", "", "Event store driver: memory, file or sqlite")
	f.String("store-path", "", "Path for the file or sqlite store")
	f.String("log", "", "Path to log file (stdout only when empty)")
	f.String("log-level", "", "Log level: debug, info, warn or error")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, cfgPath, err := loadConfig(cmd)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if problems := cfg.Validate(); len(problems) > 0 {
		fmt.Fprintln(os.Stderr, "Configuration is invalid:")
		for _, p := range problems {
			fmt.Fprintln(os.Stderr, p)
		}
		return fmt.Errorf("configuration validation failed (%d problems)", len(problems))
	}

	// Set up logging
	logger, closeLog, err := setupLogging(os.Stdout, cfg.Log.File, cfg.LogLevel())
	if err != nil {
		return fmt.Errorf("failed to setup logging: %w", err)
	}
	defer closeLog()

	logger.Info("Starting hubhook", "version", version, "config", cfgPath)
	for _, w := range cfg.Warnings() {
		logger.Warn(w)
	}
	if !cfg.EnforceSignature {
		logger.Warn("SIGNATURE ENFORCEMENT DISABLED: unsigned and forged POSTs will be accepted")
	}
	logger.Info("Credentials loaded",
		"app_secret_set", cfg.AppSecret != "",
		"verify_token", security.Mask(cfg.VerifyToken))

	channels, err := cfg.ChannelList()
	if err != nil {
		return fmt.Errorf("invalid channels: %w", err)
	}

	logger.Info("Opening event store", "driver", cfg.Store.Driver, "path", cfg.StorePath())
	store, err := eventlog.Open(cfg.Store.Driver, cfg.StorePath())
	if err != nil {
		logger.Error("Failed to open event store", "error", err)
		return fmt.Errorf("failed to open event store: %w", err)
	}
	defer store.Close()

	srv := server.NewServer(channel.NewRegistry(channels), store, logger, server.Options{
		VerifyToken:      cfg.VerifyToken,
		AppSecret:        cfg.AppSecret,
		EnforceSignature: cfg.EnforceSignature,
	})

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Start(ctx, cfg.Addr()); err != nil {
		logger.Error("Server failed", "error", err)
		return fmt.Errorf("server failed: %w", err)
	}

	logger.Info("Server stopped")
	return nil
}

// setupLogging configures a JSON slog logger writing to console and, when
// logPath is set, to a log file. The returned func closes the file.
func setupLogging(console io.Writer, logPath string, level slog.Level) (*slog.Logger, func() error, error) {
	out := console
	closeFn := func() error { return nil }

	if logPath != "" {
		// Create log directory if needed
		if logDir := filepath.Dir(logPath); logDir != "." {
			if err := os.MkdirAll(logDir, security.PermDirectory); err != nil {
				return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
			}
		}

		file, err := security.OpenAppendFile(logPath, security.PermLogFile)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}

		// Log to both file and console
		out = io.MultiWriter(console, file)
		closeFn = file.Close
	}

	handler := slog.NewJSONHandler(out, &slog.HandlerOptions{
		Level: level,
	})

	return slog.New(handler), closeFn, nil
}
