// ABOUTME: Tests for the charm client wrapper
// ABOUTME: Runs against the BadgerDB-backed test client

package charm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClientSetGetDelete(t *testing.T) {
	c := NewTestClient(t)

	require.NoError(t, c.Set([]byte("close_data"), []byte(`{"a":1}`)))

	got, err := c.Get([]byte("close_data"))
	require.NoError(t, err)
	assert.Equal(t, `{"a":1}`, string(got))

	require.NoError(t, c.Delete([]byte("close_data")))

	_, err = c.Get([]byte("close_data"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientGetMissing(t *testing.T) {
	c := NewTestClient(t)

	_, err := c.Get([]byte("nope"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestClientResetAndKeys(t *testing.T) {
	c := NewTestClient(t)

	require.NoError(t, c.Set([]byte("a"), []byte("1")))
	require.NoError(t, c.Set([]byte("b"), []byte("2")))

	keys, err := c.Keys()
	require.NoError(t, err)
	assert.Len(t, keys, 2)

	require.NoError(t, c.Reset())
	keys, err = c.Keys()
	require.NoError(t, err)
	assert.Empty(t, keys)
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, DefaultCharmHost, cfg.Host)
	assert.True(t, cfg.AutoSync)
}
