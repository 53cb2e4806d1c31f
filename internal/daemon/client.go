package daemon

import (
	"context"
	"fmt"

	"github.com/sourcegraph/jsonrpc2"
)

// Client talks to a running server over its unix socket.
type Client struct {
	conn *jsonrpc2.Conn
}

func Dial(ctx context.Context, socketPath string) (*Client, error) {
	netConn, err := NewSocketConnector(socketPath).Connect(ctx)
	if err != nil {
		return nil, fmt.Errorf("connect to %s: %w", socketPath, err)
	}

	stream := jsonrpc2.NewBufferedStream(netConn, jsonrpc2.VSCodeObjectCodec{})
	return &Client{conn: jsonrpc2.NewConn(ctx, stream, nil)}, nil
}

func (c *Client) Call(ctx context.Context, method string, params, result interface{}) error {
	return c.conn.Call(ctx, method, params, result)
}

func (c *Client) Close() error {
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
