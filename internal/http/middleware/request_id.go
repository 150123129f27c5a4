package middleware

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/gin-gonic/gin"
)

const (
	RequestIDHeader = "X-Request-ID"

	// Incoming ids longer than this are discarded rather than truncated;
	// an oversized header is not a correlation id.
	maxRequestIDLen = 64
)

// RequestID propagates the caller's correlation id or mints a fresh one, and
// echoes it on the response so clients can quote it in bug reports.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(RequestIDHeader)
		if id == "" || len(id) > maxRequestIDLen {
			id = newRequestID()
		}
		c.Set(RequestIDHeader, id)
		c.Writer.Header().Set(RequestIDHeader, id)
		c.Next()
	}
}

func newRequestID() string {
	buf := make([]byte, 16)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing is effectively fatal elsewhere; an empty id
		// here is better than a panic in middleware.
		return "unknown"
	}
	return hex.EncodeToString(buf)
}
