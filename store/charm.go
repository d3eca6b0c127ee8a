// ABOUTME: Charm KV backend
// ABOUTME: Adapts the charm client so snapshots sync across devices
package store

import (
	"context"
	"errors"

	"github.com/harperreed/closex/charm"
)

type charmBackend struct {
	client *charm.Client
}

// NewCharmBackend stores values through a charm client.
func NewCharmBackend(client *charm.Client) Backend {
	return &charmBackend{client: client}
}

func (b *charmBackend) Get(_ context.Context, key string) ([]byte, error) {
	value, err := b.client.Get([]byte(key))
	if errors.Is(err, charm.ErrNotFound) {
		return nil, ErrNotFound
	}
	return value, err
}

func (b *charmBackend) Set(_ context.Context, key string, value []byte) error {
	return b.client.Set([]byte(key), value)
}

func (b *charmBackend) Delete(_ context.Context, key string) error {
	return b.client.Delete([]byte(key))
}

func (b *charmBackend) Close() error {
	return b.client.Close()
}
