// Package server implements the TCP bring-up and per-connection
// reader/coordinator/writer pipeline spec.md section 4.D and
// SPEC_FULL.md section H describe: the piece that turns the command
// and store packages into an actually-reachable RESP server.
//
// Grounded on the HyperCache resp-server.go reference file's
// Server/acceptConnections/handleConnection shape, restructured so each
// connection's byte-level reading, command dispatch, and reply writing
// run on three independently-scheduled goroutines instead of one, and
// on errgroup.Group for tying the store executor, the async reclaimer,
// and the accept loop's lifetimes together.
package server

import (
	"context"
	"errors"
	"fmt"
	"net"

	"github.com/edirooss/bradis/internal/command"
	"github.com/edirooss/bradis/internal/reclaim"
	"github.com/edirooss/bradis/internal/store"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// Config holds the TCP-level bring-up parameters — distinct from
// config.Config, which holds the redis.conf-style keyspace thresholds
// CONFIG GET/SET exposes.
type Config struct {
	// Addr is the host:port the listener binds, e.g. "0.0.0.0:6380".
	Addr string
}

// Server owns the TCP listener, the connection registry, and the
// client-id allocator, and supervises the store executor and the
// reclaimer alongside its own accept loop.
type Server struct {
	cfg     Config
	deps    *command.Deps
	store   *store.Store
	reclaim *reclaim.Reclaimer
	log     *zap.Logger

	ids      *idAllocator
	registry *registry
}

// New wires deps.Registry to a fresh connection registry and returns a
// Server ready to Run. deps, st, and rc must be the same instances the
// caller already constructed store.New/reclaim.New/command.NewDeps
// with.
func New(cfg Config, deps *command.Deps, st *store.Store, rc *reclaim.Reclaimer, log *zap.Logger) *Server {
	reg := newRegistry()
	deps.Registry = reg
	return &Server{
		cfg:      cfg,
		deps:     deps,
		store:    st,
		reclaim:  rc,
		log:      log.Named("server"),
		ids:      newIDAllocator(),
		registry: reg,
	}
}

// Run binds the listener and blocks until ctx is cancelled or one of
// the supervised tasks fails. The store executor, the reclaimer, and
// the accept loop all run inside one errgroup.Group: any one of them
// returning an error cancels the shared context and brings the other
// two down too, rather than leaving a half-alive process (e.g. a
// listener with no executor behind it).
func (srv *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", srv.cfg.Addr)
	if err != nil {
		return fmt.Errorf("server: listen on %s: %w", srv.cfg.Addr, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error { return srv.store.Run(gctx) })
	g.Go(func() error { return srv.reclaim.Run(gctx) })
	g.Go(func() error { return srv.acceptLoop(gctx, ln) })

	// Accept blocks on the kernel socket, not on gctx, so something has
	// to force it to return once the group is cancelled.
	g.Go(func() error {
		<-gctx.Done()
		return ln.Close()
	})

	srv.log.Info("listening", zap.String("addr", ln.Addr().String()))
	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

func (srv *Server) acceptLoop(ctx context.Context, ln net.Listener) error {
	for {
		nc, err := ln.Accept()
		if err != nil {
			select {
			case <-ctx.Done():
				return ctx.Err()
			default:
				return fmt.Errorf("server: accept: %w", err)
			}
		}
		go srv.serveConn(ctx, nc)
	}
}
