package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"syscall"
	"time"

	"github.com/common-nighthawk/go-figure"
	"github.com/jrsteele09/fintrack-client/internal/config"
	"github.com/jrsteele09/fintrack-client/internal/fakeapi"
	"github.com/jrsteele09/fintrack-client/internal/logger"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	for {
		if err := run(); err != nil {
			log.Error().Err(err).Msg("Error running fake API")
			time.Sleep(1 * time.Second)
		} else {
			break
		}
	}
	log.Info().Msg("Fake API stopped")
}

func run() (returnError error) {
	defer func() {
		if r := recover(); r != nil {
			log.Error().Msgf("Recovered from panic: %v", r)
			debug.PrintStack()
			returnError = errors.New("panic recovered")
		}
	}()

	c := config.New()
	l := logger.Setup(c.IsDev())
	displayAppname(c.GetAppName())

	api := fakeapi.New(c,
		fakeapi.WithLogger(l),
		fakeapi.WithRefreshRotation(c.GetRotateRefreshTokens()),
		fakeapi.WithAllowedOrigins(c.GetAllowedOrigins()...),
	)
	if c.IsDev() {
		logRoutes(l, api)
	}

	server := &http.Server{Addr: c.GetPort(), Handler: api, ReadHeaderTimeout: 10 * time.Second}
	serveErr := make(chan error, 1)
	go func() { serveErr <- listenAndServe(l, server) }()

	select {
	case err := <-serveErr:
		return err
	case <-waitForStopSignal():
	}
	return shutdown(server)
}

func listenAndServe(l zerolog.Logger, server *http.Server) error {
	l.Info().Str("addr", server.Addr).Str("base", fakeapi.BasePath).Msg("Fake API listening")
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server.ListenAndServe %w", err)
	}
	return nil
}

func waitForStopSignal() <-chan os.Signal {
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	return stop
}

func shutdown(server *http.Server) error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		return fmt.Errorf("server.Shutdown: %w", err)
	}
	return nil
}

func logRoutes(l zerolog.Logger, api *fakeapi.Server) {
	for _, r := range api.Routes() {
		l.Debug().Str("method", r.Method).Str("path", r.Path).Msg("route")
	}
}

func displayAppname(appname string) {
	myFigure := figure.NewFigure(appname+" API", "cybermedium", true)
	myFigure.Print()
	fmt.Println()
}
