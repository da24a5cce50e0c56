package gateway

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// callbackSignature computes the HMAC-SHA256 hex digest over the
// concatenated fields, keyed by the driver's callback secret.
func callbackSignature(secret string, fields ...string) string {
	h := hmac.New(sha256.New, []byte(secret))
	h.Write([]byte(strings.Join(fields, "")))
	return hex.EncodeToString(h.Sum(nil))
}

func signatureEqual(want, got string) bool {
	return want != "" && strings.EqualFold(want, got)
}
