package zendesk_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/jmerrifield20/zendesk/pkg/config"
	"github.com/jmerrifield20/zendesk/pkg/dispatch"
	"github.com/jmerrifield20/zendesk/pkg/zendesk"
)

// resetProcessNamespace clears the process-wide store and default client now
// and after the test.
func resetProcessNamespace(t *testing.T) *observer.ObservedLogs {
	t.Helper()
	config.Global().Reset()
	zendesk.Reset()

	core, logs := observer.New(zapcore.InfoLevel)
	zendesk.SetLogger(zap.New(core))

	t.Cleanup(func() {
		config.Global().Reset()
		zendesk.Reset()
		zendesk.SetLogger(zap.NewNop())
	})
	return logs
}

func TestDefault_sharesOneClientAcrossPackageFunctions(t *testing.T) {
	logs := resetProcessNamespace(t)
	zendesk.Configure(config.Options{"subdomain": "acme"})

	ok, err := zendesk.Supports("tickets", false)
	require.NoError(t, err)
	assert.True(t, ok)

	first, err := zendesk.Default().DefaultClient()
	require.NoError(t, err)
	assert.Equal(t, "https://acme.zendesk.com/api/v2", first.URL())

	coll, err := zendesk.Tickets()
	require.NoError(t, err)
	assert.Equal(t, "tickets", coll.Resource().Name)

	v, err := zendesk.Invoke(context.Background(), "users")
	require.NoError(t, err)
	assert.NotNil(t, v)

	second, err := zendesk.Default().DefaultClient()
	require.NoError(t, err)
	assert.Same(t, first, second)
	assert.Equal(t, 1, logs.FilterMessage("default zendesk client initialized").Len())
}

func TestDefault_newClientIsIndependent(t *testing.T) {
	resetProcessNamespace(t)
	zendesk.Configure(config.Options{"subdomain": "acme"})

	def, err := zendesk.Default().DefaultClient()
	require.NoError(t, err)

	explicit, err := zendesk.NewClient(config.Options{"subdomain": "other"})
	require.NoError(t, err)
	assert.NotSame(t, def, explicit)
	assert.Equal(t, "https://other.zendesk.com/api/v2", explicit.URL())

	again, err := zendesk.Default().DefaultClient()
	require.NoError(t, err)
	assert.Same(t, def, again)
	assert.Equal(t, config.Options{"subdomain": "acme"}, zendesk.Options())
}

func TestDefault_resetReturnsToUninitialized(t *testing.T) {
	resetProcessNamespace(t)
	zendesk.Configure(config.Options{"subdomain": "acme"})

	before, err := zendesk.Default().DefaultClient()
	require.NoError(t, err)

	// With the store emptied, only a cached client could satisfy the call.
	config.Global().Reset()
	_, err = zendesk.Invoke(context.Background(), "tickets")
	require.NoError(t, err)

	zendesk.Reset()
	_, err = zendesk.Invoke(context.Background(), "tickets")
	assert.ErrorIs(t, err, config.ErrInvalidConfig)

	zendesk.Configure(config.Options{"subdomain": "acme"})
	after, err := zendesk.Default().DefaultClient()
	require.NoError(t, err)
	assert.NotSame(t, before, after)
}

func TestDefault_nonPublicIntrinsicsAreNotInvoked(t *testing.T) {
	resetProcessNamespace(t)
	zendesk.Configure(config.Options{"subdomain": "acme"})

	before, err := zendesk.Default().DefaultClient()
	require.NoError(t, err)

	ok, err := zendesk.Supports("reset", true)
	require.NoError(t, err)
	assert.True(t, ok)

	_, err = zendesk.Invoke(context.Background(), "reset")
	assert.ErrorIs(t, err, dispatch.ErrUndefinedOperation)

	after, err := zendesk.Default().DefaultClient()
	require.NoError(t, err)
	assert.Same(t, before, after, "reset must not run through Invoke")
}
