package server

import (
	"io"
	"log/slog"
	"net/http"

	"github.com/cockroachdb/errors"
	"github.com/gorilla/websocket"

	verrors "github.com/vango-dev/varint/internal/errors"
	"github.com/vango-dev/varint/pkg/varint"
	"github.com/vango-dev/varint/pkg/wsstream"
)

// handleStream upgrades to a WebSocket, decodes values of {kind} from
// the incoming binary messages and answers each value with one message
// holding its canonical encoding. A malformed value closes the
// connection with code 1007.
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	kind, ok := s.kindParam(w, r)
	if !ok {
		return
	}
	ws, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already replied to the client.
		s.logger.DebugContext(r.Context(), "websocket upgrade failed", "error", err)
		return
	}
	conn := wsstream.New(ws)
	ctx := r.Context()
	logger := s.logger.With("kind", kind.String(), "remote", r.RemoteAddr)
	logger.DebugContext(ctx, "stream opened")

	var buf []byte
	count := 0
	for {
		buf, err = s.obs.ReadAppend(ctx, kind, conn, buf[:0])
		if err != nil {
			s.closeStream(conn, logger, kind, count, err)
			return
		}
		if _, err := s.obs.WriteEncoded(ctx, kind, conn, buf); err != nil {
			logger.DebugContext(ctx, "stream write failed", "error", err)
			conn.Underlying().Close()
			return
		}
		count++
	}
}

func (s *Server) closeStream(conn *wsstream.Conn, logger *slog.Logger, kind varint.Kind, count int, err error) {
	switch {
	case errors.Is(err, io.EOF):
		logger.Debug("stream closed", "values", count)
		conn.Close()
	case errors.Is(err, varint.ErrOverflow), errors.Is(err, io.ErrUnexpectedEOF):
		e := verrors.FromDecode(err, kind)
		logger.Debug("stream rejected", "values", count, "error", e.FormatCompact())
		conn.CloseWithReason(websocket.CloseInvalidFramePayloadData, e.FormatCompact())
	case errors.Is(err, wsstream.ErrTextMessage):
		logger.Debug("stream rejected", "values", count, "error", err)
		conn.CloseWithReason(websocket.CloseUnsupportedData, "binary messages only")
	default:
		logger.Debug("stream failed", "values", count, "error", err)
		conn.Underlying().Close()
	}
}
