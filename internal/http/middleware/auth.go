// README: Caller identity for quotas: verified Firebase ID token, else client IP. X-Client-ID is only a log label.
package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"

	"ecotravel/internal/infra"
)

const (
	ClientIDHeader = "X-Client-ID"
	callerUIDKey   = "caller_uid"
	clientIDKey    = "client_id"
	maxClientIDLen = 64
)

// Identity resolves the uid that quotas are charged to. Only a verified token or the
// client IP can select it; X-Client-ID is caller-chosen, so it is kept as a label only.
// When verifier is nil the Authorization header is ignored; otherwise a present but
// invalid bearer token is rejected with 401.
func Identity(verifier infra.CallerVerifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		var uid string

		if header := c.GetHeader("Authorization"); header != "" && verifier != nil {
			raw, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || strings.TrimSpace(raw) == "" {
				Unauthorized(c, "authorization header must be a bearer token")
				return
			}
			verified, err := verifier.VerifyCaller(c.Request.Context(), strings.TrimSpace(raw))
			if err != nil {
				_ = c.Error(err)
				Unauthorized(c, "invalid ID token")
				return
			}
			uid = verified
		}

		if id := strings.TrimSpace(c.GetHeader(ClientIDHeader)); isValidClientID(id) {
			c.Set(clientIDKey, id)
		}
		if uid == "" {
			uid = "ip:" + c.ClientIP()
		}

		c.Set(callerUIDKey, uid)
		c.Next()
	}
}

// CallerUID returns the uid set by Identity, or the client IP when Identity did not run.
func CallerUID(c *gin.Context) string {
	if uid := c.GetString(callerUIDKey); uid != "" {
		return uid
	}
	return "ip:" + c.ClientIP()
}

// ClientID returns the caller-supplied X-Client-ID label, or "" when absent or invalid.
func ClientID(c *gin.Context) string {
	return c.GetString(clientIDKey)
}

func isValidClientID(v string) bool {
	if v == "" || len(v) > maxClientIDLen {
		return false
	}
	for _, c := range v {
		if (c >= '0' && c <= '9') || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || c == '-' || c == '_' {
			continue
		}
		return false
	}
	return true
}
