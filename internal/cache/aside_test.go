package cache

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupTestRedis(t *testing.T) *miniredis.Miniredis {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)

	SetClient(redis.NewClient(&redis.Options{Addr: mr.Addr()}))
	t.Cleanup(func() { SetClient(nil) })
	return mr
}

// waitForKey polls miniredis until the asynchronous cache population lands.
func waitForKey(t *testing.T, mr *miniredis.Miniredis, key string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if mr.Exists(key) {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("key %q never populated", key)
}

type testPost struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

func TestAside_MissFetchesAndPopulates(t *testing.T) {
	mr := setupTestRedis(t)
	ctx := context.Background()

	fetchCalls := 0
	var got []testPost
	err := Aside(ctx, AllPostsKey, &got, PostTTL, func() error {
		fetchCalls++
		got = []testPost{{ID: 1, Title: "hello"}}
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetchCalls)
	assert.Len(t, got, 1)

	// Population is asynchronous and must not have blocked the caller.
	waitForKey(t, mr, AllPostsKey)

	// Second read is served from the cache without touching the store.
	var cached []testPost
	err = Aside(ctx, AllPostsKey, &cached, PostTTL, func() error {
		fetchCalls++
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 1, fetchCalls)
	assert.Equal(t, got, cached)
}

func TestAside_FetchErrorSkipsPopulation(t *testing.T) {
	mr := setupTestRedis(t)
	ctx := context.Background()

	var got []testPost
	err := Aside(ctx, AllPostsKey, &got, PostTTL, func() error {
		return assert.AnError
	})
	assert.Error(t, err)

	time.Sleep(20 * time.Millisecond)
	assert.False(t, mr.Exists(AllPostsKey))
}

func TestGetSet_RoundTrip(t *testing.T) {
	setupTestRedis(t)
	ctx := context.Background()

	Set(ctx, PostKey(7), testPost{ID: 7, Title: "cached"}, PostTTL)

	var got testPost
	require.NoError(t, Get(ctx, PostKey(7), &got))
	assert.Equal(t, uint(7), got.ID)
}

func TestGet_CorruptValueIsMiss(t *testing.T) {
	mr := setupTestRedis(t)
	require.NoError(t, mr.Set(PostKey(3), "{not json"))

	var got testPost
	assert.ErrorIs(t, Get(context.Background(), PostKey(3), &got), ErrMiss)
}

func TestGet_NilClientIsMiss(t *testing.T) {
	SetClient(nil)

	var got testPost
	assert.ErrorIs(t, Get(context.Background(), PostKey(1), &got), ErrMiss)
}

func TestInvalidate(t *testing.T) {
	mr := setupTestRedis(t)
	ctx := context.Background()

	raw, _ := json.Marshal(testPost{ID: 9})
	require.NoError(t, mr.Set(PostKey(9), string(raw)))
	require.NoError(t, mr.Set(AllPostsKey, string(raw)))

	InvalidatePost(ctx, 9)

	assert.False(t, mr.Exists(PostKey(9)))
	assert.False(t, mr.Exists(AllPostsKey))
}

func TestInvalidate_NilClientNoPanic(t *testing.T) {
	SetClient(nil)
	InvalidatePostsList(context.Background())
}
