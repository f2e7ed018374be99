package audit_test

import (
	"context"
	"errors"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/jrsteele09/go-session-guard/audit"
	"github.com/jrsteele09/go-session-guard/gateway"
	"github.com/jrsteele09/go-session-guard/gateway/fakegateway"
)

func TestNewEmitter_RequiresSink(t *testing.T) {
	_, err := audit.NewEmitter(nil, gateway.ClientContext{})
	require.Error(t, err)
}

func TestEmitter_Emit(t *testing.T) {
	now := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	client := gateway.ClientContext{UserAgent: "sessionctl/1.0", Platform: "linux/amd64", Language: "ro"}
	fake := fakegateway.New()

	emitter, err := audit.NewEmitter(fake, client, audit.WithNowTime(func() time.Time { return now }))
	require.NoError(t, err)

	emitter.Emit(context.Background(), audit.LoginSuccess, "u1", map[string]any{"email": "ion@firma.ro"})
	emitter.Emit(context.Background(), audit.LoginFailed, "", nil)

	rows := fake.AuditRows()
	require.Len(t, rows, 2)

	require.Equal(t, "login_success", rows[0].EventType)
	require.NotNil(t, rows[0].IdentityID)
	require.Equal(t, "u1", *rows[0].IdentityID)
	require.Equal(t, client, rows[0].ClientContext)
	require.Equal(t, now, rows[0].Timestamp)
	require.NotEmpty(t, rows[0].ID)

	require.Nil(t, rows[1].IdentityID)
	require.NotNil(t, rows[1].Metadata)
}

func TestEmitter_SinkFailureIsSwallowed(t *testing.T) {
	fake := fakegateway.New()
	fake.FailOn(fakegateway.MethodInsertAuditRow, errors.New("db down"))

	emitter, err := audit.NewEmitter(fake, gateway.ClientContext{})
	require.NoError(t, err)

	require.NotPanics(t, func() {
		emitter.Emit(context.Background(), audit.Logout, "u1", nil)
	})
	require.Equal(t, 1, fake.Calls(fakegateway.MethodInsertAuditRow))
}

func TestEmitter_CancelledCallerStillWrites(t *testing.T) {
	fake := fakegateway.New()
	emitter, err := audit.NewEmitter(fake, gateway.ClientContext{})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	emitter.Emit(ctx, audit.Logout, "u1", nil)
	require.Len(t, fake.AuditRows(), 1)
}

func TestDetectClientContext(t *testing.T) {
	cc := audit.DetectClientContext("sessionctl", "1.2.0", "ro")
	require.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, cc.Platform)
	require.Contains(t, cc.UserAgent, "sessionctl/1.2.0")
	require.Equal(t, "1.2.0", cc.AppVersion)
	require.Equal(t, "ro", cc.Language)
}
