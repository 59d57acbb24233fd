package main

import (
	"context"
	"crypto/tls"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v3"

	"github.com/scottcame/piet/config"
	"github.com/scottcame/piet/internal/database"
	"github.com/scottcame/piet/internal/global"
	"github.com/scottcame/piet/internal/logger"
)

const shutdownTimeout = 10 * time.Second

// listenAddress accepts a bare port ("8080") or a host:port
func listenAddress(address string) string {
	if strings.Contains(address, ":") {
		return address
	}
	return ":" + address
}

// resolvePath resolves a relative path against the directory holding config/env
func resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	currentDir, err := os.Getwd()
	if err != nil {
		return path
	}
	for {
		if _, err := os.Stat(filepath.Join(currentDir, "config", "env")); err == nil {
			return filepath.Join(currentDir, path)
		}
		parentDir := filepath.Dir(currentDir)
		if parentDir == currentDir {
			return path
		}
		currentDir = parentDir
	}
}

// serve runs the app until it is shut down
func serve(app *fiber.App, cfg *config.Configuration) error {
	log := logger.GetAppLogger()
	address := listenAddress(cfg.Address)

	if !cfg.EnableTLS {
		log.WithFields(map[string]interface{}{
			"address":  address,
			"protocol": "HTTP",
		}).Info("Starting server with HTTP")
		return app.Listen(address, fiber.ListenConfig{DisableStartupMessage: true})
	}

	certPath := resolvePath(cfg.TLSCertFile)
	keyPath := resolvePath(cfg.TLSKeyFile)
	cert, err := tls.LoadX509KeyPair(certPath, keyPath)
	if err != nil {
		return err
	}

	ln, err := net.Listen("tcp", address)
	if err != nil {
		return err
	}
	tlsListener := tls.NewListener(ln, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})

	log.WithFields(map[string]interface{}{
		"address": address,
		"cert":    certPath,
		"key":     keyPath,
	}).Info("Starting server with HTTPS/TLS")
	return app.Listener(tlsListener, fiber.ListenConfig{DisableStartupMessage: true})
}

// run wires and serves the application until ctx is cancelled. Every failure is logged and
// returned after the deferred cleanup has closed the store and flushed the loggers.
func run(ctx context.Context) error {
	initLogger()
	defer logger.Shutdown()
	log := logger.GetAppLogger()

	cfg, err := initConfig()
	if err != nil {
		log.WithError(err).Error("Invalid configuration")
		return err
	}

	store, err := initStore(ctx, cfg)
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := database.CloseInstance(closeCtx, global.MongoDB_Session); err != nil {
			log.WithError(err).Warn("Failed to close MongoDB connection")
		}
		global.MongoDB_Session = nil
	}()
	if err != nil {
		log.WithError(err).Error("Failed to initialize the analysis store")
		return err
	}

	app, err := InitFiberApp(cfg, initService(cfg, store))
	if err != nil {
		log.WithError(err).Error("Failed to initialize routes")
		return err
	}

	go func() {
		<-ctx.Done()
		log.Info("Shutting down server")
		if err := app.ShutdownWithTimeout(shutdownTimeout); err != nil {
			log.WithError(err).Error("Server shutdown failed")
		}
	}()

	if err := serve(app, cfg); err != nil {
		log.WithError(err).Error("Server stopped with error")
		return err
	}
	log.Info("Server stopped")
	return nil
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx)
	stop()
	if err != nil {
		os.Exit(1)
	}
}
