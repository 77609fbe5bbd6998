package memory

import (
	"context"

	"github.com/baechuer/coursehub/internal/application/auth"
	"github.com/baechuer/coursehub/internal/logger"
)

// NoopPublisher stands in for the broker when RABBIT_URL is unset.
type NoopPublisher struct{}

func NewNoopPublisher() *NoopPublisher { return &NoopPublisher{} }

func (p *NoopPublisher) PublishUserEvent(ctx context.Context, evt auth.UserEvent) error {
	logger.WithCtx(ctx).Debug().
		Str("event", evt.Type).
		Str("user_id", evt.UserID).
		Msg("[noop-pub] user event")
	return nil
}
