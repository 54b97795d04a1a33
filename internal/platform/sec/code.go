// Copyright (c) 2026 Critica. All rights reserved.

package sec

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// GenerateConfirmationCode produces a random numeric code of the given length.
//
// # Entropy
//
// Digits are drawn from [crypto/rand]; a 6-digit code keyed by username with a
// short TTL and single-use semantics is resistant to online guessing once the
// auth endpoints sit behind the rate limiter.
func GenerateConfirmationCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("sec: invalid confirmation code length %d", length)
	}

	digits := make([]byte, length)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", fmt.Errorf("sec: failed to generate confirmation code: %w", err)
		}
		digits[i] = byte('0' + n.Int64())
	}

	return string(digits), nil
}
