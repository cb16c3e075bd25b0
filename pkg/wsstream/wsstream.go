// Package wsstream carries varint streams over WebSocket connections.
//
// The payloads of consecutive binary messages form one byte stream, so
// a value may be split across messages. Conn implements
// varint.ContextByteReader and varint.ContextWriter.
package wsstream

import (
	"context"
	"io"
	"sync"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"
)

// ErrTextMessage is returned when the peer sends a text message.
var ErrTextMessage = errors.New("wsstream: unexpected text message")

// Conn is a byte stream over a WebSocket connection.
//
// Reads and writes may run concurrently with each other, but not with
// themselves. Cancelling the context of a blocked read forces the
// read deadline; gorilla/websocket treats that as fatal, so the
// connection cannot be read from afterwards.
type Conn struct {
	conn *websocket.Conn

	r   io.Reader
	buf [1]byte

	wmu sync.Mutex
}

// New wraps an established WebSocket connection.
func New(conn *websocket.Conn) *Conn {
	return &Conn{conn: conn}
}

// Dial opens a WebSocket connection to url.
func Dial(ctx context.Context, url string) (*Conn, error) {
	conn, resp, err := websocket.DefaultDialer.DialContext(ctx, url, nil)
	if err != nil {
		if resp != nil {
			return nil, errors.Wrapf(err, "dial %s: %s", url, resp.Status)
		}
		return nil, errors.Wrapf(err, "dial %s", url)
	}
	return New(conn), nil
}

// Underlying returns the wrapped connection.
func (c *Conn) Underlying() *websocket.Conn {
	return c.conn
}

// ReadByteContext returns the next byte of the stream. It returns
// io.EOF when the peer closes the connection normally.
func (c *Conn) ReadByteContext(ctx context.Context) (byte, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if ctx.Done() != nil {
		stop := context.AfterFunc(ctx, func() {
			c.conn.SetReadDeadline(time.Now())
		})
		defer stop()
	}

	for {
		if c.r == nil {
			mt, r, err := c.conn.NextReader()
			if err != nil {
				return 0, c.readError(ctx, err)
			}
			if mt != websocket.BinaryMessage {
				return 0, ErrTextMessage
			}
			c.r = r
		}

		n, err := c.r.Read(c.buf[:])
		if n == 1 {
			return c.buf[0], nil
		}
		if err == io.EOF {
			c.r = nil
			continue
		}
		if err != nil {
			return 0, c.readError(ctx, err)
		}
	}
}

func (c *Conn) readError(ctx context.Context, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	if websocket.IsCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
		return io.EOF
	}
	return err
}

// WriteContext sends p as one binary message. The context deadline, if
// any, becomes the write deadline.
func (c *Conn) WriteContext(ctx context.Context, p []byte) (int, error) {
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	c.wmu.Lock()
	defer c.wmu.Unlock()

	deadline, _ := ctx.Deadline()
	if err := c.conn.SetWriteDeadline(deadline); err != nil {
		return 0, err
	}
	if err := c.conn.WriteMessage(websocket.BinaryMessage, p); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return 0, ctxErr
		}
		return 0, err
	}
	return len(p), nil
}

// CloseWithReason sends a close frame with the given code and reason,
// then closes the connection.
func (c *Conn) CloseWithReason(code int, reason string) error {
	c.wmu.Lock()
	msg := websocket.FormatCloseMessage(code, reason)
	werr := c.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
	c.wmu.Unlock()
	if err := c.conn.Close(); err != nil {
		return err
	}
	if werr != nil && !errors.Is(werr, websocket.ErrCloseSent) {
		return werr
	}
	return nil
}

// Close sends a normal close frame and closes the connection.
func (c *Conn) Close() error {
	return c.CloseWithReason(websocket.CloseNormalClosure, "")
}
