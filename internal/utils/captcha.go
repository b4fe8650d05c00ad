package utils

import (
	"crypto/rand" // secure random number generation
	"fmt"
	"math/big"
)

// NewCaptcha returns a six-digit numeric code generated from
// cryptographically secure random data.  Leading zeros are preserved.
func NewCaptcha() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%06d", n.Int64()), nil
}
