// Package handlers adapts services to gin routes.
package handlers

import (
	"strconv"

	"github.com/Nina932/nyx/pkg/logger"
	"github.com/Nina932/nyx/pkg/response"
	"github.com/gin-gonic/gin"
)

const invalidBody = "Invalid request body"

// fail writes err and logs it when it is not a client error.
func fail(c *gin.Context, err error) {
	if kind := response.KindOf(err); kind.Status() >= 500 {
		log := logger.For(c)
		log.Error().Err(err).Str("path", c.FullPath()).Msg("request failed")
	}
	response.Error(c, err)
}

// parseID reads the :id path parameter, writing a 400 with msg when it is
// not a positive integer.
func parseID(c *gin.Context, msg string) (uint, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 32)
	if err != nil || id == 0 {
		response.BadRequest(c, msg)
		return 0, false
	}
	return uint(id), true
}
