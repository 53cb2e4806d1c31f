package daemon

import (
	"context"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"
)

type SocketListener struct {
	path     string
	listener net.Listener
}

func NewSocketListener(socketPath string) *SocketListener {
	return &SocketListener{
		path: socketPath,
	}
}

// Start replaces any stale socket file at path. Callers hold the instance
// lock first so a live server's socket is never removed.
func (sl *SocketListener) Start() error {
	dir := filepath.Dir(sl.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	if err := os.Remove(sl.path); err != nil && !os.IsNotExist(err) {
		return err
	}

	listener, err := net.Listen("unix", sl.path)
	if err != nil {
		return err
	}

	sl.listener = listener
	return os.Chmod(sl.path, 0700)
}

func (sl *SocketListener) Accept() (net.Conn, error) {
	if sl.listener == nil {
		return nil, fmt.Errorf("listener not started")
	}
	return sl.listener.Accept()
}

func (sl *SocketListener) Close() error {
	if sl.listener == nil {
		return nil
	}
	return sl.listener.Close()
}

type SocketConnector struct {
	path    string
	timeout time.Duration
}

func NewSocketConnector(socketPath string) *SocketConnector {
	return &SocketConnector{
		path:    socketPath,
		timeout: 2 * time.Second,
	}
}

func (sc *SocketConnector) Connect(ctx context.Context) (net.Conn, error) {
	dialer := net.Dialer{Timeout: sc.timeout}
	return dialer.DialContext(ctx, "unix", sc.path)
}
