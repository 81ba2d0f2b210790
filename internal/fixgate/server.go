package fixgate

import (
	"context"
	"errors"
	"fmt"
	"net"

	"go.uber.org/zap"

	"github.com/avolkova/fix-exchange/internal/engine"
)

// Server accepts FIX connections and runs one session per client. Sessions
// share the engine; the engine's lock is what serializes matching.
type Server struct {
	addr string
	eng  *engine.Engine
	log  *zap.Logger
}

func NewServer(addr string, eng *engine.Engine, log *zap.Logger) *Server {
	if log == nil {
		log = zap.NewNop()
	}
	return &Server{addr: addr, eng: eng, log: log}
}

// Run listens until ctx is cancelled. Per-connection failures only tear down
// their own session.
func (s *Server) Run(ctx context.Context) error {
	var lc net.ListenConfig
	ln, err := lc.Listen(ctx, "tcp", s.addr)
	if err != nil {
		return fmt.Errorf("fixgate: listen %s: %w", s.addr, err)
	}
	go func() {
		<-ctx.Done()
		ln.Close()
	}()
	s.log.Info("FIX gateway listening", zap.String("addr", s.addr))

	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			return fmt.Errorf("fixgate: accept: %w", err)
		}
		sess := newSession(conn, s.eng, s.log)
		s.log.Info("client connected",
			zap.String("session", sess.id),
			zap.String("remote", conn.RemoteAddr().String()))
		go sess.run(ctx)
	}
}
