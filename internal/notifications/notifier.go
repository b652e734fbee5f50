package notifications

import (
	"context"

	"github.com/google/uuid"

	"github.com/omarhijazi/souqline-backend/pkg/logger"
	"github.com/omarhijazi/souqline-backend/pkg/redis"
)

// Notification is the payload pushed to a user about an order event.
type Notification struct {
	Event       string `json:"event"`
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
	Message     string `json:"message"`
}

// Options selects delivery channels.
type Options struct {
	SendEmail  bool
	SendSocket bool
}

// Notifier is fire-and-forget: delivery failures are logged, never returned to
// the order pipeline.
type Notifier interface {
	Send(ctx context.Context, userID uuid.UUID, n Notification, opts Options)
	IsUserOnline(ctx context.Context, userID uuid.UUID) bool
}

type notifier struct {
	presence *redis.Client
	logg     *logger.Logger
}

// NewNotifier wires the default notifier. presence may be nil, in which case
// every user is treated as offline.
func NewNotifier(presence *redis.Client, logg *logger.Logger) Notifier {
	return &notifier{presence: presence, logg: logg}
}

func (n *notifier) Send(ctx context.Context, userID uuid.UUID, payload Notification, opts Options) {
	if userID == uuid.Nil {
		return
	}
	if n.logg == nil {
		return
	}
	ctx = n.logg.WithFields(ctx, map[string]any{
		"user_id":     userID.String(),
		"event":       payload.Event,
		"order_id":    payload.OrderID,
		"send_email":  opts.SendEmail,
		"send_socket": opts.SendSocket && n.IsUserOnline(ctx, userID),
	})
	n.logg.Info(ctx, "notification dispatched")
}

func (n *notifier) IsUserOnline(ctx context.Context, userID uuid.UUID) bool {
	if n.presence == nil {
		return false
	}
	online, err := n.presence.Exists(ctx, redis.PresenceKey(userID.String()))
	if err != nil {
		if n.logg != nil {
			n.logg.Warn(ctx, "presence lookup failed")
		}
		return false
	}
	return online
}
