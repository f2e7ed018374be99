package sqlitemedium_test

import (
	"path/filepath"
	"testing"

	"github.com/jrsteele09/go-session-guard/localstore"
	"github.com/jrsteele09/go-session-guard/localstore/sqlitemedium"
	"github.com/stretchr/testify/require"
)

func TestMedium_RoundTrip(t *testing.T) {
	m, err := sqlitemedium.Open(filepath.Join(t.TempDir(), "state", "session.db"))
	require.NoError(t, err)
	defer m.Close()

	_, err = m.Get(localstore.KeySessionToken)
	require.ErrorIs(t, err, localstore.ErrNotFound)

	require.NoError(t, m.Set(localstore.KeySessionToken, `{"token":"a"}`))
	require.NoError(t, m.Set(localstore.KeySessionToken, `{"token":"b"}`))

	v, err := m.Get(localstore.KeySessionToken)
	require.NoError(t, err)
	require.Equal(t, `{"token":"b"}`, v)

	require.NoError(t, m.Delete(localstore.KeySessionToken))
	require.NoError(t, m.Delete(localstore.KeySessionToken))
}

func TestMedium_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.db")

	first, err := sqlitemedium.Open(path)
	require.NoError(t, err)
	require.NoError(t, first.Set(localstore.KeyLoginAttempts, "3"))
	require.NoError(t, first.Close())

	second, err := sqlitemedium.Open(path)
	require.NoError(t, err)
	defer second.Close()

	v, err := second.Get(localstore.KeyLoginAttempts)
	require.NoError(t, err)
	require.Equal(t, "3", v)
}

func TestOpen_RequiresPath(t *testing.T) {
	_, err := sqlitemedium.Open("")
	require.Error(t, err)
}
