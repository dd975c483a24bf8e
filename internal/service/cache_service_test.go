package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCacheService_SetGet(t *testing.T) {
	cs := NewCacheService()

	cs.Set("key", 42, time.Minute)
	value, found := cs.Get("key")
	assert.True(t, found)
	assert.Equal(t, 42, value)

	_, found = cs.Get("missing")
	assert.False(t, found)
}

func TestCacheService_Expiration(t *testing.T) {
	cs := NewCacheService()

	cs.Set("key", "value", -time.Second)
	_, found := cs.Get("key")
	assert.False(t, found)
}

func TestCacheService_InvalidateByPrefix(t *testing.T) {
	cs := NewCacheService()

	cs.Set("stats:platform", 1, time.Minute)
	cs.Set("stats:admin", 2, time.Minute)
	cs.Set("profile:abc", 3, time.Minute)

	cs.InvalidateByPrefix("stats:")

	_, found := cs.Get("stats:platform")
	assert.False(t, found)
	_, found = cs.Get("stats:admin")
	assert.False(t, found)
	_, found = cs.Get("profile:abc")
	assert.True(t, found)
}

func TestCacheService_GetOrSet(t *testing.T) {
	cs := NewCacheService()
	ctx := context.Background()
	calls := 0

	compute := func() (interface{}, error) {
		calls++
		return "computed", nil
	}

	value, err := cs.GetOrSet(ctx, "key", time.Minute, compute)
	assert.NoError(t, err)
	assert.Equal(t, "computed", value)

	value, err = cs.GetOrSet(ctx, "key", time.Minute, compute)
	assert.NoError(t, err)
	assert.Equal(t, "computed", value)
	assert.Equal(t, 1, calls)
}

func TestCacheService_GetOrSet_ErrorNotCached(t *testing.T) {
	cs := NewCacheService()
	ctx := context.Background()

	_, err := cs.GetOrSet(ctx, "key", time.Minute, func() (interface{}, error) {
		return nil, errors.New("db down")
	})
	assert.Error(t, err)

	_, found := cs.Get("key")
	assert.False(t, found)
}
