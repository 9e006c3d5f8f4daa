// Package controllers holds the gin handlers. They bind the transport
// shape, delegate to a service, and translate typed failures to status
// codes in exactly one place.
package controllers

import (
	"github.com/apex/log"
	"github.com/gin-gonic/gin"

	"streeteye-be/apperr"
)

// respondError is the single service-error → HTTP translation point.
// Clients only ever see the short message; causes stay in the logs.
func respondError(c *gin.Context, err error) {
	status := apperr.Status(err)
	if status >= 500 {
		log.WithError(err).
			WithField("path", c.FullPath()).
			WithField("status", status).
			Error("request failed")
	}
	c.JSON(status, gin.H{"message": apperr.ClientMessage(err)})
}
