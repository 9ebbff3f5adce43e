package crypto

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/base64"
	"fmt"
	"strconv"
	"time"
)

// HMACAuth holds the credentials for HMAC-authenticated requests against the
// upstream data API.
type HMACAuth struct {
	Key    string // API key
	Secret string // API secret
}

// Headers returns the authentication headers for a request. The signature is
// HMAC-SHA256(secret, timestamp+method+pathAndQuery) encoded as base64.
//
// Returned header keys:
//   - X-PDX-KEY
//   - X-PDX-TIMESTAMP
//   - X-PDX-SIGNATURE
func (h *HMACAuth) Headers(method, pathAndQuery string) map[string]string {
	return h.HeadersAt(method, pathAndQuery, time.Now().Unix())
}

// HeadersAt is like Headers but lets the caller supply the Unix timestamp
// (useful for deterministic testing).
func (h *HMACAuth) HeadersAt(method, pathAndQuery string, unixTS int64) map[string]string {
	ts := strconv.FormatInt(unixTS, 10)

	message := ts + method + pathAndQuery
	sig := hmacSHA256Base64([]byte(h.Secret), message)

	return map[string]string{
		"X-PDX-KEY":       h.Key,
		"X-PDX-TIMESTAMP": ts,
		"X-PDX-SIGNATURE": sig,
	}
}

// String returns a redacted representation suitable for logging.
func (h *HMACAuth) String() string {
	redact := func(s string) string {
		if len(s) <= 4 {
			return "****"
		}
		return s[:4] + "****"
	}
	return fmt.Sprintf("HMACAuth{key=%s, secret=%s}", redact(h.Key), redact(h.Secret))
}

// hmacSHA256Base64 computes HMAC-SHA256 of message using key and returns the
// result as a base64 standard-encoded string.
func hmacSHA256Base64(key []byte, message string) string {
	mac := hmac.New(sha256.New, key)
	mac.Write([]byte(message))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}
