package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/charmbracelet/ssh"
	"github.com/charmbracelet/wish"
	"github.com/charmbracelet/wish/activeterm"
	"github.com/charmbracelet/wish/logging"
	"github.com/rs/zerolog"
	"github.com/tomz197/glider/internal/app"
	"github.com/tomz197/glider/internal/assets"
	"github.com/tomz197/glider/internal/config"
	"github.com/tomz197/glider/internal/draw"
	glog "github.com/tomz197/glider/internal/logging"
	"github.com/tomz197/glider/internal/session"
	"github.com/tomz197/glider/internal/telemetry"
)

// server holds what every SSH session shares. Each session still flies
// its own independent game.
type server struct {
	settings config.Settings
	registry *session.Registry
	loader   *assets.Loader
	metrics  *telemetry.Metrics
	log      zerolog.Logger
}

func main() {
	configDir := flag.String("config", ".", "directory containing glider.toml")
	flag.Parse()

	settings, err := config.Load(*configDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	log := glog.NewConsole(settings.Log.Level)

	provider, err := telemetry.Open(settings.Telemetry, "glider-ssh")
	if err != nil {
		log.Fatal().Err(err).Msg("failed to set up telemetry")
	}
	metrics, err := telemetry.NewMetricsFrom(provider.MeterProvider())
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create metrics")
	}
	log.Info().Bool("enabled", provider.Enabled()).Str("file", settings.Telemetry.File).Msg("telemetry config")

	srv := &server{
		settings: settings,
		registry: session.NewRegistry(),
		loader:   assets.NewLoader(nil, glog.Component(log, "assets")),
		metrics:  metrics,
		log:      log,
	}

	workingDir, workErr := os.Getwd()
	if workErr != nil {
		log.Warn().Err(workErr).Msg("failed to get working directory")
	}
	log.Info().
		Str("host", settings.SSH.Host).
		Str("port", settings.SSH.Port).
		Str("hostKeyPath", settings.SSH.HostKeyPath).
		Str("workingDir", workingDir).
		Msg("SSH config")

	opts := []ssh.Option{
		wish.WithAddress(net.JoinHostPort(settings.SSH.Host, settings.SSH.Port)),
		wish.WithMiddleware(
			srv.gameMiddleware,
			activeterm.Middleware(),
			logging.Middleware(),
		),
		// Set TCP_NODELAY to reduce latency for game input
		ssh.WrapConn(func(ctx ssh.Context, conn net.Conn) net.Conn {
			if tcpConn, ok := conn.(*net.TCPConn); ok {
				_ = tcpConn.SetNoDelay(true)
			}
			return conn
		}),
	}

	if settings.SSH.HostKeyPath != "" {
		opts = append(opts, wish.WithHostKeyPath(settings.SSH.HostKeyPath))
	}

	s, err := wish.NewServer(opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create server")
	}

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	log.Info().Msgf("Starting SSH server on %s:%s", settings.SSH.Host, settings.SSH.Port)
	go func() {
		if err := s.ListenAndServe(); err != nil && !errors.Is(err, ssh.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	<-done
	log.Info().Int("games", srv.registry.Count()).Msg("Shutting down server...")

	if !srv.registry.Shutdown(15 * time.Second) {
		log.Warn().Int("games", srv.registry.Count()).Msg("games still running after shutdown timeout")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := s.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("shutdown error")
	}
	if err := provider.Shutdown(ctx); err != nil {
		log.Error().Err(err).Msg("failed to flush metrics")
	}
}

// gameMiddleware handles SSH sessions and runs a game for each.
func (srv *server) gameMiddleware(next ssh.Handler) ssh.Handler {
	return func(sess ssh.Session) {
		pty, winCh, ok := sess.Pty()
		if !ok {
			fmt.Fprintln(sess, "Error: PTY required. Please connect with: ssh -t user@host")
			return
		}

		handle, ctx := srv.registry.Register(sess.Context(), sess.User())
		defer srv.registry.Unregister(handle.ID)

		log := srv.log.With().Int("game", handle.ID).Str("user", sess.User()).Logger()
		log.Info().
			Str("terminal", pty.Term).
			Int("width", pty.Window.Width).
			Int("height", pty.Window.Height).
			Msg("new game session")

		// Create a terminal size tracker that updates on window changes
		sizeTracker := newSizeTracker(pty.Window.Width, pty.Window.Height)

		go func() {
			for win := range winCh {
				sizeTracker.update(win.Width, win.Height)
			}
		}()

		err := app.Run(ctx, app.Options{
			Settings: srv.settings,
			In:       sess,
			Out:      sess,
			SizeFunc: sizeTracker.getSize,
			Loader:   srv.loader,
			Metrics:  srv.metrics,
			Logger:   log,
		})
		if err != nil {
			log.Error().Err(err).Msg("game error")
		}

		log.Info().Dur("played", time.Since(handle.Started)).Msg("session ended")
		next(sess)
	}
}

// sizeTracker tracks terminal size from SSH window change events.
type sizeTracker struct {
	mu     sync.RWMutex
	width  int
	height int
}

func newSizeTracker(width, height int) *sizeTracker {
	return &sizeTracker{width: width, height: height}
}

func (s *sizeTracker) update(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.width = width
	s.height = height
}

func (s *sizeTracker) getSize() (int, int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.width, s.height, nil
}

// Ensure sizeTracker.getSize satisfies draw.TermSizeFunc
var _ draw.TermSizeFunc = (*sizeTracker)(nil).getSize
