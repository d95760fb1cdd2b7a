package signing

import (
	"fmt"
	"time"

	"github.com/pquerna/otp"
	"github.com/pquerna/otp/totp"
)

// EnrollTOTP generates a fresh TOTP secret for the optional second signing
// factor some venues require alongside HMAC, keyed to issuer/accountName so
// it shows up correctly labelled in an authenticator app.
func EnrollTOTP(issuer, accountName string) (*otp.Key, error) {
	key, err := totp.Generate(totp.GenerateOpts{
		Issuer:      issuer,
		AccountName: accountName,
	})
	if err != nil {
		return nil, fmt.Errorf("generating totp secret: %w", err)
	}
	return key, nil
}

// TOTPCode returns the 6-digit code for secret at time at. No Signer in this
// package calls it.
func TOTPCode(secret string, at time.Time) (string, error) {
	code, err := totp.GenerateCode(secret, at)
	if err != nil {
		return "", fmt.Errorf("generating totp code: %w", err)
	}
	return code, nil
}
