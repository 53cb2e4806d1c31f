package rpc

import (
	"context"
	"io"
	"os"

	"github.com/sourcegraph/jsonrpc2"

	"github.com/alucardeht/workspace-lens/internal/tools"
)

type Server struct {
	registry *tools.Registry
	handler  *Handler
}

func NewServer(registry *tools.Registry) *Server {
	return &Server{
		registry: registry,
		handler:  NewHandler(registry),
	}
}

func (s *Server) Registry() *tools.Registry {
	return s.registry
}

// NewConn starts serving rwc and returns the connection. Requests are
// handled one at a time per connection, in arrival order.
func (s *Server) NewConn(ctx context.Context, rwc io.ReadWriteCloser) *jsonrpc2.Conn {
	stream := jsonrpc2.NewBufferedStream(rwc, jsonrpc2.VSCodeObjectCodec{})
	return jsonrpc2.NewConn(ctx, stream, jsonrpc2.HandlerWithError(s.handler.Handle).SuppressErrClosed())
}

// ServeStream blocks until the peer disconnects or ctx is cancelled.
func (s *Server) ServeStream(ctx context.Context, rwc io.ReadWriteCloser) error {
	conn := s.NewConn(ctx, rwc)

	select {
	case <-conn.DisconnectNotify():
		log.Debug("peer disconnected")
		return nil
	case <-ctx.Done():
		conn.Close()
		return ctx.Err()
	}
}

// ServeStdio serves a single editor over the process's stdin and stdout.
func (s *Server) ServeStdio(ctx context.Context) error {
	log.Info("serving on stdio")
	return s.ServeStream(ctx, stdio{})
}

type stdio struct{}

func (stdio) Read(p []byte) (int, error) {
	return os.Stdin.Read(p)
}

func (stdio) Write(p []byte) (int, error) {
	return os.Stdout.Write(p)
}

func (stdio) Close() error {
	if err := os.Stdin.Close(); err != nil {
		return err
	}
	return os.Stdout.Close()
}
