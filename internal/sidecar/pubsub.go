package sidecar

import (
	"context"
	"fmt"
	"net/http"
)

// Bus publishes envelopes through the substrate's topic-publish primitive.
type Bus struct {
	client *Client
	pubsub string
}

func NewBus(client *Client, pubsubName string) *Bus {
	return &Bus{
		client: client,
		pubsub: pubsubName,
	}
}

func (b *Bus) Publish(ctx context.Context, topic string, event interface{}) error {
	url := fmt.Sprintf("%s/publish/%s/%s", b.client.baseURL, b.pubsub, topic)

	headers := map[string]string{
		"Content-Type": "application/cloudevents+json",
	}

	status, body, err := b.client.do(ctx, b.client.httpClient, http.MethodPost, url, event, headers)
	if err != nil {
		return err
	}
	return classifyStatus(status, body)
}
