package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/coaching-center-api/internal/models"
	appErrors "github.com/noah-isme/coaching-center-api/pkg/errors"
)

func TestBatchListReadThrough(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	_, err := env.batches.Create(ctx, ownerA, CreateBatchRequest{BatchName: "Zoology", Days: []string{"Sunday"}})
	require.NoError(t, err)
	_, err = env.batches.Create(ctx, ownerA, CreateBatchRequest{BatchName: "Algebra"})
	require.NoError(t, err)

	batches, hit, err := env.batches.List(ctx, ownerA)
	require.NoError(t, err)
	assert.False(t, hit)
	require.Len(t, batches, 2)
	assert.Equal(t, "Algebra", batches[0].BatchName)

	_, hit, err = env.batches.List(ctx, ownerA)
	require.NoError(t, err)
	assert.True(t, hit)

	others, _, err := env.batches.List(ctx, ownerB)
	require.NoError(t, err)
	assert.Empty(t, others)
}

func TestBatchCreateValidation(t *testing.T) {
	env := newTestEnv(t)

	_, err := env.batches.Create(context.Background(), ownerA, CreateBatchRequest{BatchName: "Bad days", Days: []string{"Someday"}})
	assertAppError(t, err, appErrors.ErrValidation)

	_, err = env.batches.Create(context.Background(), ownerA, CreateBatchRequest{BatchName: "Negative", PaymentAmount: -1})
	assertAppError(t, err, appErrors.ErrValidation)
}

func TestAccountReadThrough(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	env.db.PutAccount(models.Account{ID: ownerA, Name: "Bright Coaching", Email: "owner@example.com", Plan: "pro"})

	account, hit, err := env.accounts.Get(ctx, ownerA)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Equal(t, "Bright Coaching", account.Name)
	assert.Equal(t, env.cache.AccountTTL(), env.cacheRepo.ttls[AccountKey(ownerA)])

	cached, hit, err := env.accounts.Get(ctx, ownerA)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, account, cached)

	_, _, err = env.accounts.Get(ctx, ownerB)
	assertAppError(t, err, appErrors.ErrNotFound)
}
