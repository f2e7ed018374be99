package redismedium_test

import (
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/jrsteele09/go-session-guard/localstore"
	"github.com/jrsteele09/go-session-guard/localstore/redismedium"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newMiniRedisClient(t *testing.T) (*miniredis.Miniredis, *goredis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	require.NoError(t, err)

	client := goredis.NewClient(&goredis.Options{
		Addr: mr.Addr(),
	})
	return mr, client
}

func TestMedium_NamespacedRoundTrip(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	m, err := redismedium.New(client, "device-1")
	require.NoError(t, err)

	_, err = m.Get(localstore.KeyUserProfile)
	require.ErrorIs(t, err, localstore.ErrNotFound)

	require.NoError(t, m.Set(localstore.KeyUserProfile, `{"id":"u1"}`))
	require.True(t, mr.Exists("device-1:user_profile"))

	v, err := m.Get(localstore.KeyUserProfile)
	require.NoError(t, err)
	require.Equal(t, `{"id":"u1"}`, v)

	require.NoError(t, m.Delete(localstore.KeyUserProfile))
	require.False(t, mr.Exists("device-1:user_profile"))
	require.NoError(t, m.Delete(localstore.KeyUserProfile))
}

func TestMedium_NamespacesAreIsolated(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer mr.Close()
	defer func() { _ = client.Close() }()

	a, err := redismedium.New(client, "a")
	require.NoError(t, err)
	b, err := redismedium.New(client, "b")
	require.NoError(t, err)

	require.NoError(t, a.Set(localstore.KeyLoginAttempts, "4"))
	_, err = b.Get(localstore.KeyLoginAttempts)
	require.ErrorIs(t, err, localstore.ErrNotFound)
}

func TestMedium_ServerDownIsAnError(t *testing.T) {
	mr, client := newMiniRedisClient(t)
	defer func() { _ = client.Close() }()

	m, err := redismedium.New(client, "ns")
	require.NoError(t, err)
	mr.Close()

	err = m.Set(localstore.KeySessionToken, "x")
	require.Error(t, err)
	require.NotErrorIs(t, err, localstore.ErrNotFound)
	require.Contains(t, err.Error(), "[redismedium.Set] session_token: ")
}

func TestNew_Validation(t *testing.T) {
	_, err := redismedium.New(nil, "ns")
	require.Error(t, err)

	_, client := newMiniRedisClient(t)
	_, err = redismedium.New(client, "")
	require.Error(t, err)
}
