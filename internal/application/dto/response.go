package dto

import (
	"github.com/gin-gonic/gin"

	"github.com/turtacn/tips/pkg/errors"
)

// SendSuccess writes data as the JSON body with the given status.
func SendSuccess(c *gin.Context, status int, data interface{}) {
	c.JSON(status, data)
}

// SendError maps err to its HTTP status and error body.
// 内部错误不会把细节返回给调用方。
func SendError(c *gin.Context, err error) {
	status, body := errors.ToGenericErrorResponse(err)
	if c.Writer.Written() {
		return
	}
	c.AbortWithStatusJSON(status, body)
}
