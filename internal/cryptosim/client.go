package cryptosim

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/stealthrocket/cryptosim/internal/cryptocall"
)

// Client is a connection to a cryptosim server. It embeds the call proxy, so
// the full service surface is available as methods on the client itself.
//
// A Client is safe for concurrent use; exchanges on the underlying
// connection are serialized.
type Client struct {
	*cryptocall.Proxy

	conn         net.Conn
	maxFrameSize int
	mutex        sync.Mutex
}

// Dial connects to the server listening on address and returns a ready
// client.
func Dial(ctx context.Context, network, address string) (*Client, error) {
	d := net.Dialer{}
	conn, err := d.DialContext(ctx, network, address)
	if err != nil {
		return nil, err
	}
	return NewClient(conn), nil
}

// NewClient returns a client exchanging messages on conn, which it takes
// ownership of.
func NewClient(conn net.Conn) *Client {
	c := &Client{conn: conn, maxFrameSize: DefaultMaxFrameSize}
	c.Proxy = cryptocall.NewProxy(c)
	return c
}

func (c *Client) Close() error {
	return c.conn.Close()
}

// RoundTrip implements cryptocall.Transport: one framed request out, one
// framed reply back. The reply buffer is freshly allocated because callers
// may still be reading it when the next exchange starts.
func (c *Client) RoundTrip(ctx context.Context, req []byte) ([]byte, error) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	if deadline, ok := ctx.Deadline(); ok {
		c.conn.SetDeadline(deadline)
		defer c.conn.SetDeadline(time.Time{})
	}
	if err := writeFrame(c.conn, req, c.maxFrameSize); err != nil {
		return nil, err
	}
	return readFrame(c.conn, nil, c.maxFrameSize)
}
