package daemon

import (
	"context"
	"fmt"
	"net"
	"os"
	"sync"
	"time"

	"github.com/alucardeht/workspace-lens/internal/logger"
	"github.com/alucardeht/workspace-lens/internal/rpc"
)

var log = logger.ForComponent("daemon")

// Daemon serves JSON-RPC to any number of editors over a unix socket.
type Daemon struct {
	socketPath   string
	listener     *SocketListener
	lock         *LockFile
	server       *rpc.Server
	connections  map[net.Conn]bool
	connMu       sync.Mutex
	wg           sync.WaitGroup
	shutdown     chan struct{}
	shutdownOnce sync.Once
	startTime    time.Time
}

func NewDaemon(socketPath string, server *rpc.Server) *Daemon {
	return &Daemon{
		socketPath:  socketPath,
		listener:    NewSocketListener(socketPath),
		lock:        NewLockFile(socketPath + ".lock"),
		server:      server,
		connections: make(map[net.Conn]bool),
		shutdown:    make(chan struct{}),
		startTime:   time.Now(),
	}
}

func (d *Daemon) Start(ctx context.Context) error {
	if err := d.lock.Acquire(); err != nil {
		return fmt.Errorf("failed to lock %s: %w", d.socketPath, err)
	}

	if err := d.listener.Start(); err != nil {
		d.lock.Release()
		return fmt.Errorf("failed to listen: %w", err)
	}

	log.Info("listening", "socket", d.socketPath)

	d.wg.Add(1)
	go d.acceptConnections(ctx)

	return nil
}

// Serve starts the daemon and blocks until ctx is cancelled or Shutdown is
// called.
func (d *Daemon) Serve(ctx context.Context) error {
	if err := d.Start(ctx); err != nil {
		return err
	}

	select {
	case <-ctx.Done():
	case <-d.shutdown:
	}

	d.Shutdown()
	return nil
}

func (d *Daemon) acceptConnections(ctx context.Context) {
	defer d.wg.Done()

	for {
		conn, err := d.listener.Accept()
		if err != nil {
			select {
			case <-d.shutdown:
				return
			default:
				log.Warn("accept failed", "error", err)
				continue
			}
		}

		d.connMu.Lock()
		d.connections[conn] = true
		d.connMu.Unlock()

		d.wg.Add(1)
		go d.handleConnection(ctx, conn)
	}
}

func (d *Daemon) handleConnection(ctx context.Context, conn net.Conn) {
	defer func() {
		conn.Close()
		d.connMu.Lock()
		delete(d.connections, conn)
		d.connMu.Unlock()
		d.wg.Done()
	}()

	log.Debug("client connected")

	connCtx, cancel := context.WithCancel(ctx)
	defer cancel()

	go func() {
		select {
		case <-d.shutdown:
			cancel()
		case <-connCtx.Done():
		}
	}()

	if err := d.server.ServeStream(connCtx, conn); err != nil && connCtx.Err() == nil {
		log.Warn("connection ended with error", "error", err)
	}
}

func (d *Daemon) Shutdown() {
	d.shutdownOnce.Do(func() {
		log.Info("shutting down", "uptime", d.Uptime())
		close(d.shutdown)

		d.listener.Close()

		d.connMu.Lock()
		for conn := range d.connections {
			conn.Close()
		}
		d.connMu.Unlock()

		d.wg.Wait()

		if d.lock.IsLocked() {
			os.Remove(d.socketPath)
			d.lock.Release()
		}
	})
}

func (d *Daemon) SocketPath() string {
	return d.socketPath
}

func (d *Daemon) Uptime() time.Duration {
	return time.Since(d.startTime)
}

func (d *Daemon) Connections() int {
	d.connMu.Lock()
	defer d.connMu.Unlock()
	return len(d.connections)
}
