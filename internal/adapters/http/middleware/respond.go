package middleware

import (
	"github.com/gin-gonic/gin"

	"github.com/jsamuelsen/quote-finder/internal/adapters/http/dto"
)

// abortWith stops the chain with the standard error envelope. Once the
// handler has written, only the abort is recorded.
func abortWith(c *gin.Context, status int, code, message string) {
	if c.Writer.Written() {
		c.Abort()
		return
	}

	c.AbortWithStatusJSON(status, dto.NewErrorResponse(code, message).WithTraceID(dto.GetTraceID(c)))
}
