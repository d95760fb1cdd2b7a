package signing

import (
	"testing"
	"time"

	"github.com/pquerna/otp/totp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnrollTOTPProducesValidatableSecret(t *testing.T) {
	t.Parallel()

	key, err := EnrollTOTP("tradecore", "operator@example.com")
	require.NoError(t, err)
	assert.Equal(t, "tradecore", key.Issuer())
	assert.Equal(t, "operator@example.com", key.AccountName())

	now := time.Now()
	code, err := TOTPCode(key.Secret(), now)
	require.NoError(t, err)
	assert.True(t, totp.Validate(code, key.Secret()))
}
