package session

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeBackend хранит записи в памяти, сериализуя их как настоящий кэш.
type fakeBackend struct {
	values map[string][]byte
	ttls   map[string]time.Duration
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{
		values: make(map[string][]byte),
		ttls:   make(map[string]time.Duration),
	}
}

func (f *fakeBackend) Get(_ context.Context, key string, result any) (bool, error) {
	raw, ok := f.values[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(raw, result)
}

func (f *fakeBackend) Set(_ context.Context, key string, value any, expiration time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.values[key] = raw
	f.ttls[key] = expiration
	return nil
}

func (f *fakeBackend) Invalidate(_ context.Context, key string) error {
	delete(f.values, key)
	return nil
}

func TestStore_CreateGetDestroy(t *testing.T) {
	backend := newFakeBackend()
	store := New(backend, 7*24*time.Hour)
	ctx := context.Background()

	token, err := store.Create(ctx, Data{UserUID: "uid-1", Role: "student", IsPaid: true})
	require.NoError(t, err)
	assert.Len(t, token, 64)

	data, found, err := store.Get(ctx, token)
	require.NoError(t, err)
	require.True(t, found)
	assert.Equal(t, "uid-1", data.UserUID)
	assert.Equal(t, "student", data.Role)
	assert.True(t, data.IsPaid)
	assert.Equal(t, 7*24*time.Hour, backend.ttls["session:"+token])

	require.NoError(t, store.Destroy(ctx, token))

	_, found, err = store.Get(ctx, token)
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_GetUnknownToken(t *testing.T) {
	store := New(newFakeBackend(), time.Hour)

	_, found, err := store.Get(context.Background(), "no-such-token")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_TokensAreUnique(t *testing.T) {
	store := New(newFakeBackend(), time.Hour)
	ctx := context.Background()

	first, err := store.Create(ctx, Data{UserUID: "uid-1"})
	require.NoError(t, err)
	second, err := store.Create(ctx, Data{UserUID: "uid-1"})
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
}
