package gateway_test

import (
	"testing"

	"github.com/jrsteele09/go-session-guard/gateway"
	"github.com/jrsteele09/go-session-guard/gateway/fakegateway"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	fake := fakegateway.New()

	t.Run("missing identity provider", func(t *testing.T) {
		gw, err := gateway.New(nil, fake)
		require.Nil(t, gw)
		require.ErrorIs(t, err, gateway.ErrUnavailable)
	})

	t.Run("missing data store", func(t *testing.T) {
		gw, err := gateway.New(fake, nil)
		require.Nil(t, gw)
		require.ErrorIs(t, err, gateway.ErrUnavailable)
	})

	t.Run("composed", func(t *testing.T) {
		gw, err := gateway.New(fake, fake)
		require.NoError(t, err)
		require.NotNil(t, gw)
	})
}
