package changes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/postplanner/internal/common"
	"github.com/dmitrijs2005/postplanner/internal/logging"
	"github.com/dmitrijs2005/postplanner/internal/schedule"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// notificationConn is the part of *pgx.Conn the Listener needs.
type notificationConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	WaitForNotification(ctx context.Context) (*pgconn.Notification, error)
	Close(ctx context.Context) error
}

var connect = func(ctx context.Context, dsn string) (notificationConn, error) {
	conn, err := pgx.Connect(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return conn, nil
}

// Listener LISTENs on the change channel fed by the table triggers and
// republishes every notification into a Broker.
type Listener struct {
	dsn     string
	channel string
	broker  *Broker
	logger  logging.Logger
	retry   time.Duration
}

// NewListener creates a Listener for the default change channel.
func NewListener(dsn string, broker *Broker, logger logging.Logger) *Listener {
	if logger == nil {
		logger = logging.Nop{}
	}
	return &Listener{
		dsn:     dsn,
		channel: common.ChangeChannel,
		broker:  broker,
		logger:  logger.With("module", "listener"),
		retry:   2 * time.Second,
	}
}

// Run blocks until ctx is cancelled, reconnecting after connection errors.
func (l *Listener) Run(ctx context.Context) error {
	for {
		err := l.listen(ctx)
		if ctx.Err() != nil {
			return nil
		}
		l.logger.Error(ctx, "change listener failed, reconnecting", "error", err, "retry", l.retry)

		select {
		case <-ctx.Done():
			return nil
		case <-time.After(l.retry):
		}
	}
}

func (l *Listener) listen(ctx context.Context) error {
	conn, err := connect(ctx, l.dsn)
	if err != nil {
		return fmt.Errorf("connect: %w", err)
	}
	defer func() {
		closeCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), 5*time.Second)
		defer cancel()
		_ = conn.Close(closeCtx)
	}()

	if _, err := conn.Exec(ctx, "LISTEN "+pgx.Identifier{l.channel}.Sanitize()); err != nil {
		return fmt.Errorf("listen %s: %w", l.channel, err)
	}
	l.logger.Info(ctx, "listening for changes", "channel", l.channel)

	for {
		n, err := conn.WaitForNotification(ctx)
		if err != nil {
			return fmt.Errorf("wait for notification: %w", err)
		}
		ev, err := DecodeEvent(n.Payload)
		if err != nil {
			l.logger.Warn(ctx, "malformed change payload", "error", err)
			continue
		}
		l.broker.Publish(ctx, ev)
	}
}

// ErrMalformedEvent is returned by DecodeEvent for payloads missing the
// fields every event must carry.
var ErrMalformedEvent = errors.New("malformed change event")

// DecodeEvent parses a notification payload produced by the
// notify_schedule_change trigger.
func DecodeEvent(payload string) (schedule.ChangeEvent, error) {
	var ev schedule.ChangeEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return schedule.ChangeEvent{}, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if ev.UserID == "" || ev.Table == "" || ev.Type == "" {
		return schedule.ChangeEvent{}, ErrMalformedEvent
	}
	return ev, nil
}
