// Package middleware contains shared Gin middleware used by the HTTP layer.
//
// This file enforces the one-split-per-client-per-window business rule on
// the split endpoint. The window check lives in the store (an atomic
// read-check-write per key); this middleware only translates a denial into
// HTTP: 429, a Retry-After header, and the seconds left in the body.
package middleware

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/docslice/go-pdf-splitter/internal/store"
)

// DailyLimit returns a Gin middleware that consumes the client's window in
// limits, keyed by client IP. Apply it only to routes that should count
// against the quota; a denied request never reaches the handler and never
// mutates the table.
func DailyLimit(limits store.RateLimitStore, now func() time.Time) gin.HandlerFunc {
	if now == nil {
		now = time.Now
	}
	return func(c *gin.Context) {
		key := "ip:" + c.ClientIP()
		allowed, retryAfter := limits.CheckAndRecord(key, now().UTC())
		if allowed {
			c.Next()
			return
		}

		secs := int64(math.Ceil(retryAfter.Seconds()))
		if secs < 1 {
			secs = 1
		}
		c.Header("Retry-After", strconv.FormatInt(secs, 10))
		c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{
			"request_id":          c.Writer.Header().Get("X-Request-ID"),
			"code":                codeTooManyRequests,
			"message":             "rate limit exceeded, one split allowed per window",
			"retry_after_seconds": secs,
		})
	}
}
