package repository

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redismock/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

type cachedStudent struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

func TestCacheRepositoryGetMiss(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewCacheRepository(client, nil)

	mock.ExpectGet("students:owner-1").RedisNil()

	var dest []cachedStudent
	err := repo.Get(context.Background(), "students:owner-1", &dest)
	assert.ErrorIs(t, err, appErrors.ErrCacheMiss)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepositoryGetHit(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewCacheRepository(client, nil)

	mock.ExpectGet("students:owner-1").SetVal(`[{"id":"s1","name":"Rahim"}]`)

	var dest []cachedStudent
	require.NoError(t, repo.Get(context.Background(), "students:owner-1", &dest))
	assert.Equal(t, []cachedStudent{{ID: "s1", Name: "Rahim"}}, dest)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepositoryGetBackendError(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewCacheRepository(client, nil)

	mock.ExpectGet("students:owner-1").SetErr(errors.New("i/o timeout"))

	var dest []cachedStudent
	err := repo.Get(context.Background(), "students:owner-1", &dest)
	require.Error(t, err)
	assert.False(t, errors.Is(err, appErrors.ErrCacheMiss))
}

func TestCacheRepositorySet(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewCacheRepository(client, nil)

	value := []cachedStudent{{ID: "s1", Name: "Rahim"}}
	payload, err := json.Marshal(value)
	require.NoError(t, err)
	mock.ExpectSet("students:owner-1", payload, 24*time.Hour).SetVal("OK")

	require.NoError(t, repo.Set(context.Background(), "students:owner-1", value, 24*time.Hour))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepositoryDeleteKeysInOneCall(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := NewCacheRepository(client, nil)

	mock.ExpectDel("students:owner-1", "batches:owner-1").SetVal(2)

	require.NoError(t, repo.Delete(context.Background(), "students:owner-1", "batches:owner-1"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCacheRepositoryWithoutClient(t *testing.T) {
	repo := NewCacheRepository(nil, nil)

	var dest []cachedStudent
	assert.ErrorIs(t, repo.Get(context.Background(), "k", &dest), appErrors.ErrCacheMiss)
	assert.NoError(t, repo.Set(context.Background(), "k", dest, time.Minute))
	assert.NoError(t, repo.Delete(context.Background(), "k"))
	assert.False(t, repo.Enabled())
}
