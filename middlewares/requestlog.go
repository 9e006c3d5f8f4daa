package middlewares

import (
	"bytes"
	"encoding/json"
	"io"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const maxLoggedBody = 4 << 10

// RequestID tags every request with an X-Request-ID, generating one when
// the client did not send one.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Request.Header.Get("X-Request-ID")
		if id == "" {
			id = uuid.NewString()
		}
		c.Set("request_id", id)
		c.Writer.Header().Set("X-Request-ID", id)
		c.Next()
	}
}

// RequestLogger logs every request with method, path, status and duration.
// Small JSON bodies are logged too, with the password field redacted.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()

		entry := log.WithField("method", c.Request.Method).
			WithField("path", c.Request.URL.Path)
		if id, ok := c.Get("request_id"); ok {
			entry = entry.WithField("request_id", id)
		}

		if body := peekBody(c); body != nil {
			entry = entry.WithField("body", body)
		}

		c.Next()

		entry.WithField("status", c.Writer.Status()).
			WithField("duration", time.Since(start).String()).
			Info("request")
	}
}

// peekBody reads and restores a small JSON body, redacting credentials.
func peekBody(c *gin.Context) map[string]interface{} {
	if c.Request.Body == nil || c.ContentType() != "application/json" {
		return nil
	}
	if c.Request.ContentLength <= 0 || c.Request.ContentLength > maxLoggedBody {
		return nil
	}

	raw, err := io.ReadAll(io.LimitReader(c.Request.Body, maxLoggedBody))
	if err != nil {
		return nil
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(raw))

	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil
	}
	if _, ok := body["password"]; ok {
		body["password"] = "***"
	}
	return body
}
