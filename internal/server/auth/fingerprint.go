package auth

import (
	"crypto/sha1"
	"encoding/hex"
)

// Fingerprint hashes a User-Agent header so the raw string never reaches
// the store. An absent header fingerprints as the hash of "".
func Fingerprint(userAgent string) string {
	sum := sha1.Sum([]byte(userAgent))
	return hex.EncodeToString(sum[:])
}
