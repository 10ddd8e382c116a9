package utils

import (
	"crypto/rand"
	"fmt"
	"math/big"
)

// joinCodeAlphabet excludes no characters on purpose: codes are compared
// case-sensitively and entered via clipboard, not typed.
const joinCodeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"

// GenerateJoinCode generates a cryptographically random alphanumeric join
// code of the given length. Random generation (rather than a counter) keeps
// codes unguessable; uniqueness is enforced by the caller against the
// database constraint, retrying on collision.
func GenerateJoinCode(length int) (string, error) {
	if length <= 0 {
		return "", fmt.Errorf("length must be positive")
	}
	max := big.NewInt(int64(len(joinCodeAlphabet)))
	code := make([]byte, length)
	for i := range code {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		code[i] = joinCodeAlphabet[idx.Int64()]
	}
	return string(code), nil
}
