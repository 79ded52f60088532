package cache

import (
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resolveTestCache skips the test when no Redis endpoint is reachable and
// clears the keys the test touches.
func resolveTestCache(t *testing.T, keys ...string) {
	t.Helper()
	if err := GetClient().Ping(ctx).Err(); err != nil {
		t.Skipf("Skipping Redis-dependent test: no reachable Redis endpoint (%v)", err)
	}
	cleanup := func() {
		_ = GetClient().Del(ctx, keys...).Err()
	}
	cleanup()
	t.Cleanup(cleanup)
}

func TestDeletePattern(t *testing.T) {
	resolveTestCache(t, "leaderboard:", "leaderboard:sunset", "ranking:other")

	require.NoError(t, Set("leaderboard:", "overall", time.Minute))
	require.NoError(t, Set("leaderboard:sunset", "filtered", time.Minute))
	require.NoError(t, Set("ranking:other", "unrelated", time.Minute))

	require.NoError(t, DeletePattern("leaderboard:*"))

	// Both the overall and the per-hashtag renderings are gone.
	_, err := Get("leaderboard:")
	assert.ErrorIs(t, err, redis.Nil)
	_, err = Get("leaderboard:sunset")
	assert.ErrorIs(t, err, redis.Nil)

	got, err := Get("ranking:other")
	require.NoError(t, err)
	assert.Equal(t, "unrelated", got)
}

func TestDeletePattern_NoMatches(t *testing.T) {
	resolveTestCache(t)
	assert.NoError(t, DeletePattern("no-such-prefix:*"))
}
