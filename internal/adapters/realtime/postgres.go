package realtime

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"eventmanager/internal/domain"

	"github.com/lib/pq"
)

// DefaultChannel is the LISTEN/NOTIFY channel carrying participant changes.
const DefaultChannel = "participant_changes"

// PGNotifier publishes changes with pg_notify so every process listening on the
// channel sees them.
type PGNotifier struct {
	db      *sql.DB
	channel string
}

// NewPGNotifier returns a notifier writing to channel through db.
func NewPGNotifier(db *sql.DB, channel string) *PGNotifier {
	if channel == "" {
		channel = DefaultChannel
	}
	return &PGNotifier{db: db, channel: channel}
}

func (n *PGNotifier) Publish(ctx context.Context, change domain.ParticipantChange) error {
	payload, err := json.Marshal(change)
	if err != nil {
		return fmt.Errorf("marshal participant change: %w", err)
	}
	if _, err := n.db.ExecContext(ctx, `SELECT pg_notify($1, $2)`, n.channel, string(payload)); err != nil {
		return fmt.Errorf("pg_notify: %w", err)
	}
	return nil
}

// listenerPingInterval is how often an idle LISTEN connection is checked.
const listenerPingInterval = 90 * time.Second

// notificationSource is the part of *pq.Listener that Run consumes.
type notificationSource interface {
	NotificationChannel() <-chan *pq.Notification
	Ping() error
	Close() error
}

// PGListener relays notifications from a LISTEN channel into a local notifier,
// usually a Hub.
type PGListener struct {
	listener     notificationSource
	channel      string
	sink         domain.ChangeNotifier
	logger       *slog.Logger
	pingInterval time.Duration
}

// NewPGListener opens a dedicated LISTEN connection for channel. Reconnects are
// handled by pq with a backoff between 10s and 1m.
func NewPGListener(dsn, channel string, sink domain.ChangeNotifier, logger *slog.Logger) (*PGListener, error) {
	if channel == "" {
		channel = DefaultChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	report := func(ev pq.ListenerEventType, err error) {
		if err != nil {
			logger.Warn("participant change listener", "event", ev, "err", err)
		}
	}
	l := pq.NewListener(dsn, 10*time.Second, time.Minute, report)
	if err := l.Listen(channel); err != nil {
		_ = l.Close()
		return nil, fmt.Errorf("listen %s: %w", channel, err)
	}
	return &PGListener{listener: l, channel: channel, sink: sink, logger: logger, pingInterval: listenerPingInterval}, nil
}

// Run relays notifications until ctx is done, then closes the listener.
func (l *PGListener) Run(ctx context.Context) error {
	defer l.listener.Close()
	interval := l.pingInterval
	if interval <= 0 {
		interval = listenerPingInterval
	}
	ping := time.NewTicker(interval)
	defer ping.Stop()

	notifications := l.listener.NotificationChannel()
	for {
		select {
		case <-ctx.Done():
			return nil
		case n := <-notifications:
			l.handle(ctx, n)
		case <-ping.C:
			go func() {
				if err := l.listener.Ping(); err != nil {
					l.logger.Warn("participant change listener ping", "err", err)
				}
			}()
		}
	}
}

// handle decodes one notification and forwards it. A nil notification is sent by
// pq after a reconnect.
func (l *PGListener) handle(ctx context.Context, n *pq.Notification) {
	if n == nil {
		l.logger.Info("participant change listener reconnected", "channel", l.channel)
		return
	}
	var change domain.ParticipantChange
	if err := json.Unmarshal([]byte(n.Extra), &change); err != nil {
		l.logger.Warn("decode participant change", "channel", n.Channel, "err", err)
		return
	}
	if err := l.sink.Publish(ctx, change); err != nil {
		l.logger.Warn("relay participant change", "event_id", change.EventID, "err", err)
	}
}
