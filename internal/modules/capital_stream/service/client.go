package service

import (
	"strconv"
	"sync/atomic"
	"time"

	"daily_trader/internal/modules/config"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// ConnListener получает смену состояния соединения (для health).
type ConnListener func(connected bool)

type Client struct {
	url          string
	dialer       *websocket.Dialer
	pingInterval time.Duration
	reconnect    time.Duration
	log          *zap.Logger
	onConn       ConnListener

	corr atomic.Int64
}

func NewClient(cfg *config.Config, log *zap.Logger) *Client {
	ping := cfg.Capital.PingInterval
	// сервер рвёт сессию без ping дольше 10 минут
	if ping <= 0 || ping > 9*time.Minute {
		ping = 5 * time.Minute
	}
	return &Client{
		url:          cfg.Capital.StreamURL,
		dialer:       &websocket.Dialer{HandshakeTimeout: 10 * time.Second},
		pingInterval: ping,
		reconnect:    time.Second,
		log:          log.Named("stream"),
	}
}

func (c *Client) OnConnChange(fn ConnListener) { c.onConn = fn }

func (c *Client) setConnected(v bool) {
	if c.onConn != nil {
		c.onConn(v)
	}
}

func (c *Client) nextCorrelationID() string {
	return strconv.FormatInt(c.corr.Add(1), 10)
}
