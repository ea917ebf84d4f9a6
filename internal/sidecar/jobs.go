package sidecar

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Jobs registers one-shot timers with the substrate's scheduling primitive.
type Jobs struct {
	client *Client
}

type jobRequest struct {
	Data    interface{} `json:"data"`
	DueTime string      `json:"dueTime"`
}

func NewJobs(client *Client) *Jobs {
	return &Jobs{client: client}
}

func (j *Jobs) Schedule(ctx context.Context, name string, data interface{}, dueIn time.Duration) error {
	url := fmt.Sprintf("%s/jobs/%s", j.client.baseURL, name)

	payload := jobRequest{
		Data:    data,
		DueTime: fmt.Sprintf("%ds", int64(dueIn.Seconds())),
	}

	status, body, err := j.client.do(ctx, j.client.httpClient, http.MethodPost, url, payload, nil)
	if err != nil {
		return err
	}
	return classifyStatus(status, body)
}

func (j *Jobs) Cancel(ctx context.Context, name string) error {
	url := fmt.Sprintf("%s/jobs/%s", j.client.baseURL, name)

	status, body, err := j.client.do(ctx, j.client.httpClient, http.MethodDelete, url, nil, nil)
	if err != nil {
		return err
	}
	// Cancelling a job that never existed or already fired is a no-op.
	if status == http.StatusNotFound {
		return nil
	}
	return classifyStatus(status, body)
}
