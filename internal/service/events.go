package service

import (
	"context"
	"time"

	"github.com/Skotchmaster/phone_shop/internal/logging"
	"github.com/Skotchmaster/phone_shop/internal/mykafka"
)

const publishTimeout = 5 * time.Second

// publish sends a domain event after the fact. The request has already
// succeeded, so a broker failure is logged and swallowed.
func publish(ctx context.Context, pub mykafka.Publisher, topic, key string, event map[string]any) {
	if pub == nil {
		return
	}
	event["at"] = time.Now().UTC()

	pctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()

	if err := pub.PublishEvent(pctx, topic, key, event); err != nil {
		logging.FromContext(ctx).Warn("kafka_publish_error",
			"topic", topic,
			"type", event["type"],
			"error", err,
		)
	}
}
