package auth

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

const otpDigits = 6

// GenerateOTP returns a zero-padded numeric one-time code for password reset.
func GenerateOTP() (string, error) {
	limit := big.NewInt(1)
	for i := 0; i < otpDigits; i++ {
		limit.Mul(limit, big.NewInt(10))
	}
	n, err := rand.Int(rand.Reader, limit)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", otpDigits, n), nil
}
