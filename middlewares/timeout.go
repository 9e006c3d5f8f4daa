package middlewares

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/apex/log"
	"github.com/gin-gonic/gin"
)

// RequestBudget bounds the wall-clock time of a whole request. Storage
// calls inherit the deadline through the request context; if the handler
// finishes without writing after the deadline passed, the gateway answers
// with a timeout itself and logs the discrepancy.
func RequestBudget(budget time.Duration) gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx, cancel := context.WithTimeout(c.Request.Context(), budget)
		defer cancel()
		c.Request = c.Request.WithContext(ctx)

		c.Next()

		if errors.Is(ctx.Err(), context.DeadlineExceeded) && !c.Writer.Written() {
			log.WithField("path", c.Request.URL.Path).
				WithField("budget", budget.String()).
				Error("request exceeded its budget without a response")
			c.JSON(http.StatusGatewayTimeout, gin.H{"message": "Request timeout. Please try again."})
		}
	}
}
