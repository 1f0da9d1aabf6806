package main

import (
	"context"
	"flag"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"syscall"
	"time"

	"github.com/georgbuechner/dissonance/pkg/config"
	"github.com/georgbuechner/dissonance/pkg/history"
	"github.com/georgbuechner/dissonance/pkg/server"
	"github.com/sirupsen/logrus"
)

// fieldRows and fieldCols size the Field every new game is dealt.
const (
	fieldRows = 50
	fieldCols = 50
)

var logLevelFlag = flag.String("log-level", "", "Log level (debug, info, warn, error); overrides config file and LOG_LEVEL")
var portFlag = flag.Int("port", 0, "Port to listen on; overrides config file")
var standaloneFlag = flag.Bool("standalone", false, "Run without match history; overrides config file")
var basePathFlag = flag.String("base-path", "", "Base directory for server data; overrides config file")

func main() {
	flag.Parse()

	if err := config.Load(); err != nil {
		logrus.WithError(err).Fatal("failed to load configuration")
	}
	cfg := config.Get()
	if *portFlag != 0 {
		cfg.Port = *portFlag
	}
	if *standaloneFlag {
		cfg.Standalone = true
	}
	if *basePathFlag != "" {
		cfg.BasePath = *basePathFlag
	}

	level := cfg.LogLevel
	if env := os.Getenv("LOG_LEVEL"); env != "" {
		level = env
	}
	if *logLevelFlag != "" {
		level = *logLevelFlag
	}
	parsed, err := logrus.ParseLevel(level)
	if err != nil {
		logrus.WithError(err).Fatal("invalid log level")
	}
	logrus.SetLevel(parsed)
	logrus.SetFormatter(&logrus.JSONFormatter{})

	stop, err := config.Watch(func(old, new config.Config) {
		if lvl, lvlErr := logrus.ParseLevel(new.LogLevel); lvlErr == nil {
			logrus.SetLevel(lvl)
		}
		logrus.WithFields(logrus.Fields{
			"old_port": old.Port,
			"new_port": new.Port,
		}).Info("configuration reloaded")
	})
	if err != nil {
		logrus.WithError(err).Warn("config hot-reload disabled")
	} else {
		defer stop()
	}

	var hist *history.History
	if !cfg.Standalone {
		dbPath := filepath.Join(cfg.BasePath, "matches.db")
		hist, err = history.New(dbPath)
		if err != nil {
			logrus.WithError(err).Fatal("failed to open match history")
		}
		defer hist.Close()
	}

	tickInterval := time.Duration(cfg.TickMS) * time.Millisecond
	srv := server.NewServer(hist, fieldRows, fieldCols, cfg.BaseResourceGain, tickInterval, int64(cfg.IronDripMS), cfg.MaxGames)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws", srv.HandleWebSocket)
	mux.HandleFunc("/lobby", srv.HandleLobby)

	httpServer := &http.Server{
		Addr:    ":" + strconv.Itoa(cfg.Port),
		Handler: mux,
	}

	logrus.WithFields(logrus.Fields{
		"port":       cfg.Port,
		"log_level":  level,
		"standalone": cfg.Standalone,
	}).Info("starting dissonance server")

	go func() {
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.WithError(err).Fatal("server stopped unexpectedly")
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	<-sigChan

	logrus.Info("shutdown signal received, stopping server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("error during HTTP shutdown")
	}
	if err := srv.Shutdown(ctx); err != nil {
		logrus.WithError(err).Error("error waiting for games to finish")
	}

	logrus.Info("server stopped")
}
