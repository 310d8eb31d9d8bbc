package secrets

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zalando/go-keyring"
)

func TestStatic(t *testing.T) {
	pw, err := Static("hunter2").Password(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "hunter2", pw)
}

func TestEnv(t *testing.T) {
	t.Setenv("PGTABLES_TEST_PASSWORD", "from-env")

	pw, err := Env("PGTABLES_TEST_PASSWORD").Password(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-env", pw)

	_, err = Env("PGTABLES_TEST_UNSET_PASSWORD").Password(context.Background())
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestKeyring(t *testing.T) {
	keyring.MockInit()
	require.NoError(t, keyring.Set("omv_pg", "omv_pg", "s3cret"))

	t.Run("found", func(t *testing.T) {
		pw, err := Keyring{Service: "omv_pg", Account: "omv_pg"}.Password(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "s3cret", pw)
	})

	t.Run("missing", func(t *testing.T) {
		_, err := Keyring{Service: "omv_pg", Account: "other"}.Password(context.Background())
		assert.ErrorIs(t, err, ErrNotFound)
		assert.Contains(t, err.Error(), "omv_pg/other")
	})

	t.Run("cancelled", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		_, err := Keyring{Service: "omv_pg", Account: "omv_pg"}.Password(ctx)
		assert.ErrorIs(t, err, context.Canceled)
	})
}

func TestResolve(t *testing.T) {
	assert.Equal(t, Static("pw"), Resolve("pw", "", "", "user"))
	assert.Equal(t, Env("PGPASSWORD"), Resolve("pw", "PGPASSWORD", "", "user"))
	assert.Equal(t, Keyring{Service: "svc", Account: "user"}, Resolve("pw", "PGPASSWORD", "svc", "user"))
	assert.Equal(t, Static(""), Resolve("", "", "", ""))
}
