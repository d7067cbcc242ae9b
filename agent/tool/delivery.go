package tool

import (
	"context"
	"errors"

	leadx "github.com/tanpawarit/Chative-Voice-SDR/agent/lead"
)

// Publisher sends a JSON payload to a destination URL (QStash in production).
type Publisher interface {
	Publish(ctx context.Context, destination string, payload any) error
}

// PublishDelivery forwards stored leads to a webhook through a Publisher.
type PublishDelivery struct {
	publisher   Publisher
	destination string
}

func NewPublishDelivery(publisher Publisher, destination string) *PublishDelivery {
	return &PublishDelivery{publisher: publisher, destination: destination}
}

func (d *PublishDelivery) SendLead(ctx context.Context, rec leadx.Record) error {
	if d == nil || d.publisher == nil {
		return errors.New("lead delivery publisher is nil")
	}
	if d.destination == "" {
		return errors.New("lead delivery destination is empty")
	}
	return d.publisher.Publish(ctx, d.destination, rec)
}
