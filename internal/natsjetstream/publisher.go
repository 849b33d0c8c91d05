package natsjetstream

import (
	"context"
	"encoding/json"

	"github.com/acmclub/ojrank/internal/apperrors"
)

type Publisher struct {
	client *Client
}

func NewPublisher(client *Client) *Publisher {
	return &Publisher{client: client}
}

func (p *Publisher) PublishJSON(ctx context.Context, subject string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return apperrors.Wrap(err, apperrors.CodeEventPublish, "failed to encode event payload")
	}

	return p.Publish(ctx, subject, data)
}

func (p *Publisher) Publish(ctx context.Context, subject string, data []byte) error {
	if _, err := p.client.js.Publish(ctx, subject, data); err != nil {
		return apperrors.Wrap(err, apperrors.CodeEventPublish, "failed to publish message")
	}
	return nil
}
