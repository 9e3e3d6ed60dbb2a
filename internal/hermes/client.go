package hermes

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/nats-io/nats.go"
)

// Subjects published during an import.
const (
	SubjectChannelCommitted = "dpe.import.channel.committed"
	SubjectImportCompleted  = "dpe.import.completed"
)

// ChannelCommitted is published after a channel's messages are committed.
type ChannelCommitted struct {
	RunID     string `json:"run_id"`
	ChannelID int64  `json:"channel_id,string"`
	Channel   string `json:"channel"`
	Messages  int    `json:"messages"`
	Timestamp string `json:"timestamp"`
}

// ImportCompleted is published once the last channel is committed.
type ImportCompleted struct {
	RunID      string  `json:"run_id"`
	Channels   int     `json:"channels"`
	Messages   int     `json:"messages"`
	StoredRows int64   `json:"stored_rows"`
	Seconds    float64 `json:"seconds"`
	Timestamp  string  `json:"timestamp"`
}

type Client struct {
	conn   *nats.Conn
	logger *slog.Logger
}

func NewClient(ctx context.Context, url, token string, logger *slog.Logger) (*Client, error) {
	opts := []nats.Option{
		nats.Name("dpe"),
		nats.MaxReconnects(10),
		nats.ReconnectWait(2 * time.Second),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			if err != nil {
				logger.Warn("nats disconnected", "error", err)
			}
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
	}
	if token != "" {
		opts = append(opts, nats.Token(token))
	}
	if deadline, ok := ctx.Deadline(); ok {
		opts = append(opts, nats.Timeout(time.Until(deadline)))
	}

	nc, err := nats.Connect(url, opts...)
	if err != nil {
		return nil, fmt.Errorf("nats connect: %w", err)
	}

	return &Client{conn: nc, logger: logger}, nil
}

func (c *Client) Publish(subject string, data any) error {
	payload, err := json.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal payload: %w", err)
	}
	return c.conn.Publish(subject, payload)
}

// Close flushes pending events before closing the connection.
func (c *Client) Close() {
	if err := c.conn.Flush(); err != nil {
		c.logger.Warn("nats flush failed", "error", err)
	}
	c.conn.Close()
}
