package sidecar

import (
	"context"
	"time"
)

// The substrate exposes four narrow primitives over local HTTP. Each gets its
// own interface so domain logic can run against in-memory fakes.

type EventBus interface {
	Publish(ctx context.Context, topic string, event interface{}) error
}

type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value interface{}) error
}

type JobScheduler interface {
	Schedule(ctx context.Context, name string, data interface{}, dueIn time.Duration) error
	Cancel(ctx context.Context, name string) error
}

type RpcClient interface {
	Get(ctx context.Context, appID, method string) ([]byte, error)
	Post(ctx context.Context, appID, method string, body interface{}, headers map[string]string) ([]byte, error)
}
