package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"catalog-backend/internal/domains/schema/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mockRepo struct {
	types []model.EntityType
	calls int
	err   error
}

func (m *mockRepo) ListTypes(context.Context) ([]model.EntityType, error) {
	m.calls++
	return m.types, m.err
}

// memoryCache is a minimal in-process Cache for tests.
type memoryCache struct {
	store   map[string][]byte
	failing bool
}

func newMemoryCache() *memoryCache {
	return &memoryCache{store: make(map[string][]byte)}
}

func (c *memoryCache) Get(_ context.Context, key string, dest interface{}) (bool, error) {
	if c.failing {
		return false, errors.New("cache down")
	}
	data, ok := c.store[key]
	if !ok {
		return false, nil
	}
	return true, json.Unmarshal(data, dest)
}

func (c *memoryCache) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	if c.failing {
		return errors.New("cache down")
	}
	data, err := json.Marshal(value)
	if err != nil {
		return err
	}
	c.store[key] = data
	return nil
}

func (c *memoryCache) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(c.store, k)
	}
	return nil
}

func (c *memoryCache) Ping(context.Context) error { return nil }

func sampleTypes() []model.EntityType {
	return []model.EntityType{
		{Key: "application", Label: "Application", Fields: []model.FieldDefinition{
			{Key: "owner", Label: "Owner", Type: model.FieldTypeText},
		}},
		{Key: "server", Label: "Server"},
	}
}

func TestGetRegistryCachesRepoReads(t *testing.T) {
	repo := &mockRepo{types: sampleTypes()}
	svc := NewSchemaService(repo, newMemoryCache())

	first, err := svc.GetRegistry(context.Background())
	require.NoError(t, err)
	second, err := svc.GetRegistry(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, repo.calls)
	assert.Len(t, first.Types(), 2)
	assert.Len(t, second.Types(), 2)

	_, ok := second.Type("application")
	assert.True(t, ok)
}

func TestGetRegistryDegradesWhenCacheDown(t *testing.T) {
	repo := &mockRepo{types: sampleTypes()}
	cache := newMemoryCache()
	cache.failing = true
	svc := NewSchemaService(repo, cache)

	registry, err := svc.GetRegistry(context.Background())
	require.NoError(t, err)
	assert.Len(t, registry.Types(), 2)

	// Every call falls through to the repository.
	_, err = svc.GetRegistry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}

func TestGetRegistryPropagatesRepoError(t *testing.T) {
	repo := &mockRepo{err: errors.New("connection refused")}
	svc := NewSchemaService(repo, newMemoryCache())

	_, err := svc.GetRegistry(context.Background())
	require.Error(t, err)
}

func TestGetType(t *testing.T) {
	svc := NewSchemaService(&mockRepo{types: sampleTypes()}, newMemoryCache())

	entityType, err := svc.GetType(context.Background(), "server")
	require.NoError(t, err)
	assert.Equal(t, "Server", entityType.Label)

	_, err = svc.GetType(context.Background(), "nonsense")
	assert.ErrorIs(t, err, model.ErrTypeNotFound)
}

func TestInvalidateForcesReload(t *testing.T) {
	repo := &mockRepo{types: sampleTypes()}
	svc := NewSchemaService(repo, newMemoryCache())

	_, err := svc.GetRegistry(context.Background())
	require.NoError(t, err)
	require.NoError(t, svc.Invalidate(context.Background()))

	_, err = svc.GetRegistry(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls)
}
