package socket

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"sync"
	"time"

	"github.com/mklimuk/pressure"
	"github.com/mklimuk/pressure/prsctx"
)

const DefaultTimeout = 2 * time.Second

var _ pressure.TransportCloser = &Conn{}

// Conn is a line oriented instrument link over a raw TCP socket, e.g. the
// Ethernet port of a controller or a serial device server.
//
// A reply that arrives after its query timed out would otherwise answer the
// next query. After a failed read the link is stale: a dialed Conn
// reconnects before the next exchange, a Conn built on an existing net.Conn
// drains input for up to one timeout.
type Conn struct {
	mx      sync.Mutex
	addr    string
	conn    net.Conn
	reader  *bufio.Reader
	timeout time.Duration
	status  pressure.Status
	stale   bool
	dial    func(ctx context.Context) (net.Conn, error)
}

// Dial connects to host:port. timeout bounds both the dial and every reply.
func Dial(ctx context.Context, addr string, timeout time.Duration) (*Conn, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	dial := func(ctx context.Context) (net.Conn, error) {
		d := net.Dialer{Timeout: timeout}
		c, err := d.DialContext(ctx, "tcp", addr)
		if err != nil {
			return nil, fmt.Errorf("%w: could not connect to %s: %w", pressure.ErrTransport, addr, err)
		}
		slog.Debug("socket connected", "addr", addr)
		return c, nil
	}
	c, err := dial(ctx)
	if err != nil {
		return nil, err
	}
	conn := NewConn(addr, c, timeout)
	conn.dial = dial
	return conn, nil
}

func NewConn(addr string, c net.Conn, timeout time.Duration) *Conn {
	return &Conn{addr: addr, conn: c, reader: bufio.NewReader(c), timeout: timeout}
}

func (c *Conn) Write(ctx context.Context, command string) error {
	c.mx.Lock()
	defer c.mx.Unlock()
	if err := c.resync(ctx); err != nil {
		return err
	}
	return c.write(ctx, command)
}

func (c *Conn) Query(ctx context.Context, command string) (string, error) {
	c.mx.Lock()
	defer c.mx.Unlock()
	if err := c.resync(ctx); err != nil {
		return "", err
	}
	if n := c.reader.Buffered(); n > 0 {
		_, _ = c.reader.Discard(n)
	}
	if err := c.write(ctx, command); err != nil {
		return "", err
	}
	if err := c.conn.SetReadDeadline(c.deadline(ctx)); err != nil {
		return "", fmt.Errorf("%w: %w", pressure.ErrTransport, err)
	}
	line, err := c.reader.ReadSlice('\n')
	if errors.Is(err, bufio.ErrBufferFull) {
		// no terminator within a full buffer; the rest of the line is dropped
		c.stale = true
		c.status = pressure.StatusMaxCount
		return string(line), nil
	}
	if err != nil {
		c.stale = true
		c.status = pressure.StatusUnknown
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return "", fmt.Errorf("%w: read from %s timed out (got %q): %w", pressure.ErrTransport, c.addr, line, err)
		}
		return "", fmt.Errorf("%w: read from %s failed: %w", pressure.ErrTransport, c.addr, err)
	}
	if prsctx.IsVerbose(ctx) {
		slog.DebugContext(ctx, "rx", "addr", c.addr, "data", fmt.Sprintf("%q", line))
	}
	c.status = pressure.StatusTermChar
	return string(line), nil
}

func (c *Conn) LastStatus() pressure.Status {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.status
}

func (c *Conn) Close() error {
	c.mx.Lock()
	defer c.mx.Unlock()
	return c.conn.Close()
}

// resync drops whatever a stale link may still deliver.
func (c *Conn) resync(ctx context.Context) error {
	if !c.stale {
		return nil
	}
	if c.dial != nil {
		_ = c.conn.Close()
		conn, err := c.dial(ctx)
		if err != nil {
			return err
		}
		c.conn = conn
		c.reader.Reset(conn)
		c.stale = false
		return nil
	}
	if err := c.conn.SetReadDeadline(c.deadline(ctx)); err != nil {
		return fmt.Errorf("%w: %w", pressure.ErrTransport, err)
	}
	for {
		if _, err := c.reader.ReadSlice('\n'); err != nil {
			var netErr net.Error
			if errors.As(err, &netErr) && netErr.Timeout() {
				break
			}
			if errors.Is(err, bufio.ErrBufferFull) {
				continue
			}
			return fmt.Errorf("%w: read from %s failed: %w", pressure.ErrTransport, c.addr, err)
		}
	}
	c.stale = false
	return nil
}

func (c *Conn) write(ctx context.Context, command string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if prsctx.IsVerbose(ctx) {
		slog.DebugContext(ctx, "tx", "addr", c.addr, "data", fmt.Sprintf("%q", command))
	}
	if err := c.conn.SetWriteDeadline(c.deadline(ctx)); err != nil {
		return fmt.Errorf("%w: %w", pressure.ErrTransport, err)
	}
	if _, err := c.conn.Write([]byte(command)); err != nil {
		c.stale = true
		c.status = pressure.StatusUnknown
		return fmt.Errorf("%w: write to %s failed: %w", pressure.ErrTransport, c.addr, err)
	}
	c.status = pressure.StatusSuccess
	return nil
}

// deadline is the earlier of the context deadline and the configured timeout.
func (c *Conn) deadline(ctx context.Context) time.Time {
	d := time.Now().Add(c.timeout)
	if dl, ok := ctx.Deadline(); ok && dl.Before(d) {
		return dl
	}
	return d
}
