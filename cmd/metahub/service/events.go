package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/metahub-labs/platform/common/logger"
	"github.com/metahub-labs/platform/common/queue"
	rediscommon "github.com/metahub-labs/platform/common/redis"
)

// Branch lifecycle event names
const (
	EventBranchCreated        = "branch.created"
	EventBranchUpdated        = "branch.updated"
	EventBranchActivated      = "branch.activated"
	EventBranchDefaultChanged = "branch.default_changed"
	EventBranchDeleted        = "branch.deleted"

	// Emitted when a compensating namespace drop fails, so an out-of-band
	// reaper can clean the orphan up later.
	EventNamespaceOrphaned = "namespace.orphaned"
)

const (
	lifecycleTopic   = "branch.lifecycle"
	lifecycleChannel = "metahub.branch.events"
)

// EventPublisher fans branch lifecycle events out to in-process subscribers
// and, when configured, to Redis pub/sub for other platform services.
// Publication is best-effort: failures are logged, never surfaced.
type EventPublisher struct {
	queue queue.Queue
	redis *rediscommon.Client
	log   *logger.Logger
}

// NewEventPublisher creates an event publisher. Either backend may be nil.
func NewEventPublisher(q queue.Queue, redis *rediscommon.Client, log *logger.Logger) *EventPublisher {
	return &EventPublisher{
		queue: q,
		redis: redis,
		log:   log,
	}
}

// Publish emits one lifecycle event with a JSON payload
func (p *EventPublisher) Publish(ctx context.Context, event string, payload map[string]any) {
	if payload == nil {
		payload = make(map[string]any)
	}
	payload["event"] = event
	payload["occurred_at"] = time.Now().UTC().Format(time.RFC3339Nano)

	body, err := json.Marshal(payload)
	if err != nil {
		p.log.Error("failed to encode lifecycle event", "event", event, "error", err)
		return
	}

	if p.queue != nil {
		if err := p.queue.Publish(ctx, lifecycleTopic, event, body); err != nil {
			p.log.Warn("failed to publish lifecycle event to queue", "event", event, "error", err)
		}
	}

	if p.redis != nil {
		if err := p.redis.PublishEvent(ctx, lifecycleChannel, string(body)); err != nil {
			p.log.Warn("failed to publish lifecycle event to redis", "event", event, "error", err)
		}
	}
}
