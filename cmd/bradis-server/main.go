// Command bradis-server runs the RESP-protocol key-value server:
// process entrypoint, logger bring-up, and graceful shutdown wiring for
// the store executor, the async reclaimer, and the TCP listener.
//
// Logger bring-up mirrors cmd/zmux-server/main.go's verbatim in style;
// everything else in that file (the gin/HTTP admin API) has no
// counterpart here, since this process exposes only the RESP/TCP wire
// protocol.
package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/edirooss/bradis/internal/command"
	"github.com/edirooss/bradis/internal/config"
	"github.com/edirooss/bradis/internal/pubsub"
	"github.com/edirooss/bradis/internal/reclaim"
	"github.com/edirooss/bradis/internal/server"
	"github.com/edirooss/bradis/internal/store"
	"github.com/edirooss/bradis/internal/value"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	addr := flag.String("addr", "127.0.0.1:6380", "TCP address to listen on")
	reclaimBuffer := flag.Int("reclaim-buffer", 4096, "buffered size of the async value-reclamation queue")
	flag.Parse()

	logConfig := zap.NewDevelopmentConfig()
	logConfig.EncoderConfig.TimeKey = ""
	logConfig.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
	logConfig.DisableStacktrace = true
	logConfig.DisableCaller = true
	log := zap.Must(logConfig.Build())
	defer log.Sync()
	log = log.Named("main")

	cfg := config.Default()
	st := store.New(log, thresholdsFrom(cfg), cfg.ProtoMaxBulkLen)
	rc := reclaim.New(log, *reclaimBuffer)
	hub := pubsub.NewHub()
	deps := command.NewDeps(st, cfg, hub, rc, log)

	srv := server.New(server.Config{Addr: *addr}, deps, st, rc, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := srv.Run(ctx); err != nil {
		log.Fatal("server stopped", zap.Error(err))
	}
	log.Info("shutdown complete")
}

// thresholdsFrom narrows the full redis.conf-style Config down to the
// encoding-promotion fields value.Value implementations need, keeping
// the value package free of a config import cycle.
func thresholdsFrom(cfg *config.Config) value.Thresholds {
	return value.Thresholds{
		HashMaxListpackEntries: cfg.HashMaxListpackEntries,
		HashMaxListpackValue:   cfg.HashMaxListpackValue,

		SetMaxIntsetEntries:   cfg.SetMaxIntsetEntries,
		SetMaxListpackEntries: cfg.SetMaxListpackEntries,
		SetMaxListpackValue:   cfg.SetMaxListpackValue,

		ZSetMaxListpackEntries: cfg.ZSetMaxListpackEntries,
		ZSetMaxListpackValue:   cfg.ZSetMaxListpackValue,

		ListMaxListpackSize: cfg.ListMaxListpackSize,
	}
}
