package feed

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/rustyeddy/signaltrader/market"
)

// WebSocket reads JSON tick messages from a websocket server and
// reconnects with backoff when the connection drops. Messages look like
//
//	{"type":"tick","instrument":"USD_JPY","time":"2024-03-01T09:00:00Z","bid":150.1,"ask":150.12}
//
// Messages with another type (heartbeats) are ignored.
type WebSocket struct {
	URL         string
	Header      http.Header
	ReadTimeout time.Duration
	// MaxRetries bounds consecutive failed connection attempts. Zero
	// retries forever.
	MaxRetries int

	log *zap.Logger
}

var _ Feed = (*WebSocket)(nil)

func NewWebSocket(url string, log *zap.Logger) *WebSocket {
	if log == nil {
		log = zap.NewNop()
	}
	return &WebSocket{URL: url, ReadTimeout: 60 * time.Second, log: log}
}

type tickMessage struct {
	Type       string    `json:"type"`
	Instrument string    `json:"instrument"`
	Time       time.Time `json:"time"`
	Bid        float64   `json:"bid"`
	Ask        float64   `json:"ask"`
}

// errHandler marks errors returned by the tick handler, which end Run
// instead of triggering a reconnect.
type errHandler struct{ err error }

func (e errHandler) Error() string { return e.err.Error() }
func (e errHandler) Unwrap() error { return e.err }

func (w *WebSocket) Run(ctx context.Context, h Handler) error {
	retry := 0
	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		connected, err := w.session(ctx, h)
		var he errHandler
		if errors.As(err, &he) {
			return he.err
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
		if connected {
			retry = 0
		}

		if w.MaxRetries > 0 && retry >= w.MaxRetries {
			return fmt.Errorf("feed: websocket %s: giving up after %d attempts: %w", w.URL, retry, err)
		}

		delay := backoff(retry)
		retry++
		w.log.Warn("websocket disconnected", zap.String("url", w.URL), zap.Error(err), zap.Duration("retry_in", delay))

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
}

func (w *WebSocket) session(ctx context.Context, h Handler) (bool, error) {
	dialer := websocket.Dialer{HandshakeTimeout: 10 * time.Second}
	conn, _, err := dialer.DialContext(ctx, w.URL, w.Header)
	if err != nil {
		return false, err
	}
	defer conn.Close()

	w.log.Info("websocket connected", zap.String("url", w.URL))

	stop := context.AfterFunc(ctx, func() { _ = conn.Close() })
	defer stop()

	for {
		if w.ReadTimeout > 0 {
			_ = conn.SetReadDeadline(time.Now().Add(w.ReadTimeout))
		}
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return true, err
		}

		var m tickMessage
		if err := json.Unmarshal(msg, &m); err != nil {
			w.log.Warn("bad tick message", zap.ByteString("msg", msg), zap.Error(err))
			continue
		}
		if m.Type != "" && m.Type != "tick" {
			continue
		}

		tick := market.Tick{Instrument: m.Instrument, Time: m.Time, Bid: m.Bid, Ask: m.Ask}
		if err := h(ctx, tick); err != nil {
			return true, errHandler{err}
		}
	}
}

// backoff grows exponentially from 500ms to 30s with jitter.
func backoff(retry int) time.Duration {
	if retry > 6 {
		retry = 6
	}
	d := 500 * time.Millisecond << retry
	if d > 30*time.Second {
		d = 30 * time.Second
	}
	return d + time.Duration(rand.Int63n(int64(d/4)+1))
}
