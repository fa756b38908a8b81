package service

import (
	"context"
	"time"

	"daily_trader/internal/models"

	"github.com/bytedance/sonic"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

type outMessage struct {
	Destination   string         `json:"destination"`
	CorrelationID string         `json:"correlationId"`
	CST           string         `json:"cst"`
	SecurityToken string         `json:"securityToken"`
	Payload       map[string]any `json:"payload,omitempty"`
}

type inMessage struct {
	Status      string `json:"status"`
	Destination string `json:"destination"`
	Payload     struct {
		Epic      string  `json:"epic"`
		Bid       float64 `json:"bid"`
		Ofr       float64 `json:"ofr"`
		Timestamp int64   `json:"timestamp"`
		ErrorCode string  `json:"errorCode"`
	} `json:"payload"`
}

// StreamQuotes одно соединение на все epics, переподключение до отмены ctx.
// Канал закрывается при отмене ctx.
func (c *Client) StreamQuotes(ctx context.Context, sess models.Session, epics []string) <-chan models.Quote {
	ch := make(chan models.Quote, 256)

	go func() {
		defer close(ch)

		if len(epics) == 0 {
			return
		}

		for {
			if ctx.Err() != nil {
				return
			}

			err := c.session(ctx, sess, epics, ch)
			c.setConnected(false)
			if ctx.Err() != nil {
				return
			}
			c.log.Warn("stream dropped, reconnecting", zap.Error(err), zap.Duration("in", c.reconnect))

			select {
			case <-ctx.Done():
				return
			case <-time.After(c.reconnect):
			}
		}
	}()

	return ch
}

func (c *Client) session(ctx context.Context, sess models.Session, epics []string, out chan<- models.Quote) error {
	c.log.Info("connect", zap.String("url", c.url), zap.Int("epics", len(epics)))
	conn, _, err := c.dialer.DialContext(ctx, c.url, nil)
	if err != nil {
		return err
	}
	defer conn.Close()

	sub := outMessage{
		Destination:   "marketData.subscribe",
		CorrelationID: c.nextCorrelationID(),
		CST:           sess.CST,
		SecurityToken: sess.SecurityToken,
		Payload:       map[string]any{"epics": epics},
	}
	if err := c.write(conn, sub); err != nil {
		return err
	}
	c.setConnected(true)

	done := make(chan struct{})
	defer close(done)

	// ping и закрытие соединения по ctx
	go func() {
		t := time.NewTicker(c.pingInterval)
		defer t.Stop()
		for {
			select {
			case <-done:
				return
			case <-ctx.Done():
				_ = conn.WriteControl(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
					time.Now().Add(time.Second))
				_ = conn.Close()
				return
			case <-t.C:
				ping := outMessage{
					Destination:   "ping",
					CorrelationID: c.nextCorrelationID(),
					CST:           sess.CST,
					SecurityToken: sess.SecurityToken,
				}
				if err := c.write(conn, ping); err != nil {
					c.log.Warn("ping failed", zap.Error(err))
				}
			}
		}
	}()

	for {
		_, msg, err := conn.ReadMessage()
		if err != nil {
			return err
		}

		q, ok, err := parseQuote(msg)
		if err != nil {
			c.log.Debug("skip frame", zap.Error(err), zap.ByteString("raw", msg))
			continue
		}
		if !ok {
			continue
		}

		select {
		case out <- q:
		case <-ctx.Done():
			return ctx.Err()
		}
	}
}

func (c *Client) write(conn *websocket.Conn, m outMessage) error {
	data, err := sonic.Marshal(m)
	if err != nil {
		return err
	}
	_ = conn.SetWriteDeadline(time.Now().Add(10 * time.Second))
	return conn.WriteMessage(websocket.TextMessage, data)
}

// parseQuote ok=false для служебных кадров (ответ на subscribe, ping).
func parseQuote(msg []byte) (models.Quote, bool, error) {
	var in inMessage
	if err := sonic.Unmarshal(msg, &in); err != nil {
		return models.Quote{}, false, err
	}
	if in.Destination != "quote" || in.Payload.Epic == "" {
		return models.Quote{}, false, nil
	}
	q := models.Quote{
		Epic: in.Payload.Epic,
		Bid:  in.Payload.Bid,
		Ofr:  in.Payload.Ofr,
	}
	if in.Payload.Timestamp > 0 {
		q.Time = time.UnixMilli(in.Payload.Timestamp).UTC()
	}
	return q, true, nil
}
