package sidecar

import (
	"context"
	"fmt"
	"net/http"

	"tasknotify/pkg/errors"
)

// StateStore reads and writes keyed values through the substrate's state
// primitive. Upserts carry the batch shape the substrate expects even for a
// single key.
type StateStore struct {
	client *Client
	store  string
}

type stateItem struct {
	Key   string      `json:"key"`
	Value interface{} `json:"value"`
}

func NewStateStore(client *Client, storeName string) *StateStore {
	return &StateStore{
		client: client,
		store:  storeName,
	}
}

func (s *StateStore) Put(ctx context.Context, key string, value interface{}) error {
	url := fmt.Sprintf("%s/state/%s", s.client.baseURL, s.store)

	payload := []stateItem{{Key: key, Value: value}}

	status, body, err := s.client.do(ctx, s.client.httpClient, http.MethodPost, url, payload, nil)
	if err != nil {
		return err
	}
	return classifyStatus(status, body)
}

func (s *StateStore) Get(ctx context.Context, key string) ([]byte, error) {
	url := fmt.Sprintf("%s/state/%s/%s", s.client.baseURL, s.store, key)

	status, body, err := s.client.do(ctx, s.client.httpClient, http.MethodGet, url, nil, nil)
	if err != nil {
		return nil, err
	}
	if status == http.StatusNotFound || (status == http.StatusOK && len(body) == 0) {
		// The substrate answers an absent key with 404 or an empty body
		// depending on the backing store.
		return nil, errors.ErrNotFound.AsFatal()
	}
	if err := classifyStatus(status, body); err != nil {
		return nil, err
	}
	return body, nil
}
