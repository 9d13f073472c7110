package impl

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"math/big"
	"strconv"
)

const (
	codeMin  = 100000
	codeSpan = 899999 // codes fall in [100000, 999999)
)

// GenerateVerificationCode draws a six digit code uniformly from
// [100000, 999999).
func GenerateVerificationCode() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(codeSpan))
	if err != nil {
		return "", err
	}
	return strconv.FormatInt(n.Int64()+codeMin, 10), nil
}

// HashVerificationCode is the unsalted SHA-256 hex digest of the raw code.
func HashVerificationCode(code string) string {
	sum := sha256.Sum256([]byte(code))
	return hex.EncodeToString(sum[:])
}

func codeMatches(storedHash, submitted string) bool {
	return subtle.ConstantTimeCompare([]byte(storedHash), []byte(HashVerificationCode(submitted))) == 1
}
