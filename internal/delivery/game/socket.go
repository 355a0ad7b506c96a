package game

import (
	"context"
	"errors"
	"net"

	"go.uber.org/zap"
)

// SocketServer accepts plain TCP clients speaking the line protocol.
type SocketServer struct {
	addr string
	log  *zap.SugaredLogger
	hub  *Hub
}

func NewSocketServer(addr string, log *zap.SugaredLogger, hub *Hub) *SocketServer {
	return &SocketServer{addr: addr, log: log, hub: hub}
}

func (s *SocketServer) ListenAndServe(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}
	return s.Serve(ctx, ln)
}

// Serve accepts connections on ln until ctx is done.
func (s *SocketServer) Serve(ctx context.Context, ln net.Listener) error {
	stop := context.AfterFunc(ctx, func() { _ = ln.Close() })
	defer stop()

	s.log.Infof("Socket server is listening on %s", ln.Addr())
	for {
		conn, err := ln.Accept()
		if err != nil {
			if ctx.Err() != nil || errors.Is(err, net.ErrClosed) {
				return nil
			}
			s.log.Errorf("Accept: %v", err)
			return err
		}
		s.log.Infof("Connected to client: %s", conn.RemoteAddr())
		go s.hub.Serve(ctx, newTCPConn(conn))
	}
}
