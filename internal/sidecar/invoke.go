package sidecar

import (
	"context"
	"fmt"
	"net/http"
)

// Invoker calls sibling services through the substrate's service-invocation
// primitive.
type Invoker struct {
	client *Client
}

func NewInvoker(client *Client) *Invoker {
	return &Invoker{client: client}
}

func (i *Invoker) Get(ctx context.Context, appID, method string) ([]byte, error) {
	url := fmt.Sprintf("%s/invoke/%s/method/%s", i.client.baseURL, appID, method)

	status, body, err := i.client.do(ctx, i.client.invokeClient, http.MethodGet, url, nil, nil)
	if err != nil {
		return nil, err
	}
	if err := classifyStatus(status, body); err != nil {
		return nil, err
	}
	return body, nil
}

func (i *Invoker) Post(ctx context.Context, appID, method string, reqBody interface{}, headers map[string]string) ([]byte, error) {
	url := fmt.Sprintf("%s/invoke/%s/method/%s", i.client.baseURL, appID, method)

	status, body, err := i.client.do(ctx, i.client.invokeClient, http.MethodPost, url, reqBody, headers)
	if err != nil {
		return nil, err
	}
	if err := classifyStatus(status, body); err != nil {
		return nil, err
	}
	return body, nil
}
