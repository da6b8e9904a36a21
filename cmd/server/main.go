package main

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	callmem "github.com/Wyydra/huddle/internal/adapter/driven/call/memory"
	"github.com/Wyydra/huddle/internal/adapter/driven/gateway/ws"
	repo "github.com/Wyydra/huddle/internal/adapter/driven/persistence/memory"
	"github.com/Wyydra/huddle/internal/adapter/driven/persistence/sqlite"
	"github.com/Wyydra/huddle/internal/adapter/driven/preview"
	handler "github.com/Wyydra/huddle/internal/adapter/driving/http"
	"github.com/Wyydra/huddle/internal/config"
	"github.com/Wyydra/huddle/internal/core/port"
	"github.com/Wyydra/huddle/internal/core/service"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var opts config.Options

var rootCmd = &cobra.Command{
	Use:   "huddle-server",
	Short: "Chat and call signaling server",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(opts)
		if err != nil {
			return err
		}
		setupLogging(cfg)
		return run(cfg)
	},
}

func init() {
	f := rootCmd.Flags()
	f.StringVar(&opts.EnvFile, "env-file", "", "dotenv file to load (default .env)")
	f.StringVar(&opts.Addr, "addr", "", "listen address (env HUDDLE_ADDR)")
	f.StringVar(&opts.StaticDir, "static", "", "directory served on / (env HUDDLE_STATIC_DIR)")
	f.StringVar(&opts.Storage, "storage", "", "memory or sqlite (env HUDDLE_STORAGE)")
	f.StringVar(&opts.SQLitePath, "sqlite-path", "", "sqlite database file (env HUDDLE_SQLITE_PATH)")
	f.StringVar(&opts.LogLevel, "log-level", "", "debug, info, warn or error (env LOG_LEVEL)")
}

func main() {
	rootCmd.SilenceUsage = true
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func setupLogging(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		level = zerolog.InfoLevel
	}
	var w io.Writer = os.Stdout
	if cfg.LogPretty {
		w = zerolog.ConsoleWriter{Out: os.Stdout}
	}
	log.Logger = zerolog.New(w).Level(level).With().Timestamp().Caller().Logger()
}

func run(cfg *config.Config) error {
	var (
		messages port.MessageRepository
		users    port.UserRepository
	)
	switch cfg.Storage {
	case config.StorageSQLite:
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return err
		}
		defer db.Close()
		messages = sqlite.NewMessageRepository(db)
		users = sqlite.NewUserRepository(db)
		log.Info().Str("path", cfg.SQLitePath).Msg("Using sqlite storage")
	default:
		messages = repo.NewMessageRepository()
		users = repo.NewUserRepository()
	}

	previewer, err := preview.NewHTMLPreviewer(cfg.PreviewTimeout, cfg.PreviewCacheSize)
	if err != nil {
		return err
	}

	hub := ws.NewHub()
	workspaces := service.NewWorkspaceService(users, time.Now)
	chatService := service.NewChatService(messages, hub, workspaces)
	callService := service.NewCallService(callmem.NewCallEngine(), hub, workspaces)

	h := handler.NewHandler(chatService, callService, workspaces, users, previewer, hub, cfg.AllowedOrigins)
	h.StaticDir = cfg.StaticDir

	go hub.Run()

	srv := &http.Server{
		Addr:    cfg.Addr,
		Handler: h.NewRouter(),
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", cfg.Addr).Msg("Starting server")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errc <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case <-quit:
	case err := <-errc:
		log.Error().Err(err).Msg("Failed to start server")
		return err
	}
	log.Info().Msg("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}

	hub.Stop()
	workspaces.Stop()
	log.Info().Msg("Server exited")
	return nil
}
