package taskapi

import (
	"context"
	"encoding/json"
	"fmt"

	"tasknotify/internal/logger"
	"tasknotify/internal/sidecar"
	"tasknotify/pkg/circuitbreaker"
	"tasknotify/pkg/errors"
)

// Client reaches the task-management boundary through the substrate's
// service-invocation primitive. Calls optionally pass through a circuit
// breaker so a dead backend fails fast.
type Client struct {
	rpc     sidecar.RpcClient
	appID   string
	breaker *circuitbreaker.Wrapper
	logger  logger.Logger
}

func NewClient(rpc sidecar.RpcClient, appID string, breaker *circuitbreaker.Wrapper, log logger.Logger) *Client {
	return &Client{
		rpc:     rpc,
		appID:   appID,
		breaker: breaker,
		logger:  log,
	}
}

func (c *Client) FetchTask(ctx context.Context, taskID int64) (*Task, error) {
	method := fmt.Sprintf("api/todos/%d", taskID)

	body, err := c.execute(ctx, func() ([]byte, error) {
		return c.rpc.Get(ctx, c.appID, method)
	})
	if err != nil {
		return nil, err
	}

	var task Task
	if err := json.Unmarshal(body, &task); err != nil {
		return nil, errors.ErrInternal.WithCause(fmt.Errorf("failed to decode task %d: %w", taskID, err))
	}
	return &task, nil
}

// FetchTaskTitle degrades to a default title when the boundary is
// unreachable; reminder payloads never block on it.
func (c *Client) FetchTaskTitle(ctx context.Context, taskID int64, fallback string) string {
	task, err := c.FetchTask(ctx, taskID)
	if err != nil {
		c.logger.WarnwCtx(ctx, "Failed to fetch task title, using fallback",
			"task_id", taskID,
			"error", err,
		)
		return fallback
	}
	if task.Title == "" {
		return fallback
	}
	return task.Title
}

func (c *Client) CreateTask(ctx context.Context, req CreateTaskRequest, userID string) (*Task, error) {
	headers := map[string]string{
		"X-User-Id": userID,
	}

	body, err := c.execute(ctx, func() ([]byte, error) {
		return c.rpc.Post(ctx, c.appID, "api/todos", req, headers)
	})
	if err != nil {
		return nil, err
	}

	var task Task
	if err := json.Unmarshal(body, &task); err != nil {
		return nil, errors.ErrInternal.WithCause(fmt.Errorf("failed to decode created task: %w", err))
	}
	return &task, nil
}

func (c *Client) execute(ctx context.Context, fn func() ([]byte, error)) ([]byte, error) {
	if c.breaker == nil {
		return fn()
	}

	result, err := c.breaker.ExecuteWithContext(ctx, func() (interface{}, error) {
		return fn()
	})
	c.breaker.RecordRequest(err == nil)
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}
