package dispatch_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jmerrifield20/zendesk/pkg/dispatch"
)

func echo(_ context.Context, args ...any) (any, error) {
	return args, nil
}

func TestTable_SupportsRespectsVisibility(t *testing.T) {
	tbl := dispatch.NewTable("widget")
	tbl.Register("public_op", dispatch.Public, echo)
	tbl.Register("hidden_op", dispatch.NonPublic, echo)

	assert.True(t, tbl.Supports("public_op", false))
	assert.True(t, tbl.Supports("public_op", true))
	assert.False(t, tbl.Supports("hidden_op", false))
	assert.True(t, tbl.Supports("hidden_op", true))
	assert.False(t, tbl.Supports("missing", true))
}

func TestTable_NormalizesNames(t *testing.T) {
	tbl := dispatch.NewTable("widget")
	tbl.Register("CurrentUser", dispatch.Public, echo)

	assert.True(t, tbl.Supports("current_user", false))
	assert.True(t, tbl.Supports("current-user", false))
	assert.Equal(t, []string{"current_user"}, tbl.Names(false))
}

func TestTable_CallPassesArgsThrough(t *testing.T) {
	tbl := dispatch.NewTable("widget")
	tbl.Register("echo", dispatch.Public, echo)

	cb := func() {}
	got, err := tbl.Call(context.Background(), "echo", 1, "two", cb)
	require.NoError(t, err)

	args := got.([]any)
	require.Len(t, args, 3)
	assert.Equal(t, 1, args[0])
	assert.Equal(t, "two", args[1])
	assert.NotNil(t, args[2])
}

func TestTable_CallMiss(t *testing.T) {
	tbl := dispatch.NewTable("widget")
	tbl.Register("hidden", dispatch.NonPublic, echo)

	for _, name := range []string{"missing", "hidden"} {
		_, err := tbl.Call(context.Background(), name)
		require.Error(t, err)
		assert.True(t, errors.Is(err, dispatch.ErrUndefinedOperation))

		var undef *dispatch.UndefinedOperationError
		require.True(t, errors.As(err, &undef))
		assert.Equal(t, "widget", undef.Receiver)
		assert.Equal(t, name, undef.Operation)
	}

	_, err := tbl.CallNonPublic(context.Background(), "hidden")
	assert.NoError(t, err)
}

func TestArg(t *testing.T) {
	args := []any{"q", 3}

	s, ok, err := dispatch.Arg[string](args, 0)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "q", s)

	_, ok, err = dispatch.Arg[string](args, 5)
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = dispatch.Arg[string](args, 1)
	assert.Error(t, err)
}

func TestTrailing(t *testing.T) {
	called := false
	fn := func() { called = true }

	got, rest, ok := dispatch.Trailing[func()]([]any{"a", fn})
	require.True(t, ok)
	assert.Equal(t, []any{"a"}, rest)
	got()
	assert.True(t, called)

	_, rest, ok = dispatch.Trailing[func()]([]any{"a"})
	assert.False(t, ok)
	assert.Equal(t, []any{"a"}, rest)
}
