// Command kvcored runs a single-threaded, in-memory key-value engine: one
// eventloop.Loop driving a keyspace.Server, a pubsub.Hub, and a
// commands.Dispatcher. It has no network transport of its own — spec.md's
// wire protocol is an external collaborator's concern — so this binary
// exists to assemble and own the engine's lifecycle: config load, logger
// setup, active-expiration scheduling, and graceful shutdown.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pelletier/go-toml/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/kvcore/kvcore/commands"
	"github.com/kvcore/kvcore/eventloop"
	"github.com/kvcore/kvcore/keyspace"
	"github.com/kvcore/kvcore/pubsub"
)

var (
	configPath string
	logPath    string
)

func main() {
	cfg := keyspace.DefaultConfig

	root := &cobra.Command{
		Use:   "kvcored",
		Short: "in-memory key-value engine",
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cfg)
		},
	}
	root.Flags().StringVar(&configPath, "config", "", "path to a TOML config file")
	root.Flags().StringVar(&logPath, "log-file", "", "log file path; empty logs to stderr")
	root.Flags().AddFlagSet(cfg.FlagSet())
	root.PreRunE = func(cmd *cobra.Command, args []string) error {
		if configPath == "" {
			return nil
		}
		return loadConfigFile(configPath, &cfg)
	}

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfigFile(path string, cfg *keyspace.Config) error {
	b, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return toml.Unmarshal(b, cfg)
}

func buildLogger(path string) (*zap.Logger, error) {
	encoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
	if path == "" {
		return zap.New(zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), zap.InfoLevel)), nil
	}
	rotator := &lumberjack.Logger{Filename: path, MaxSize: 100, MaxBackups: 3, MaxAge: 28, Compress: true}
	return zap.New(zapcore.NewCore(encoder, zapcore.AddSync(rotator), zap.InfoLevel)), nil
}

func run(cfg keyspace.Config) error {
	log, err := buildLogger(logPath)
	if err != nil {
		return err
	}
	defer log.Sync()

	reg := prometheus.NewRegistry()
	server := keyspace.NewServer(cfg)
	server.SetMetrics(keyspace.NewMetrics(reg))
	// hub and dispatcher are constructed here so a transport layer (out of
	// this spec's scope) has a Server/Hub/Dispatcher triple ready to wire
	// a Context around per accepted connection.
	hub := pubsub.NewHub()
	dispatcher := commands.NewDispatcher()
	_ = hub
	_ = dispatcher

	loop, err := eventloop.New()
	if err != nil {
		return err
	}
	loop.SetMetrics(eventloop.NewMetrics(reg))
	defer loop.Close()

	log.Info("kvcored starting",
		zap.Int("databases", cfg.Databases),
		zap.Duration("active_expire_budget", cfg.ActiveExpireBudget),
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	budgetMs := int64(cfg.ActiveExpireBudget / time.Millisecond)
	expireID := loop.AddTimeEvent(time.Now().UnixMilli(), budgetMs, func(id, now int64) eventloop.TimerResult {
		server.ActiveExpireAll(now)
		return eventloop.After(budgetMs)
	}, nil)
	defer loop.RemoveTimeEvent(expireID)

	for {
		select {
		case <-ctx.Done():
			log.Info("kvcored stopping")
			return nil
		default:
		}
		if server.ShutdownRequested() {
			log.Info("kvcored stopping: SHUTDOWN issued")
			return nil
		}
		if err := loop.ProcessCycle(time.Now().UnixMilli(), false); err != nil {
			log.Error("event loop cycle failed", zap.Error(err))
			return err
		}
	}
}
