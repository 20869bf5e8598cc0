package server

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/thev1ndu/xp/errors"
	"github.com/thev1ndu/xp/shop"
	"github.com/thev1ndu/xp/types"
)

// Error sends an error response with the HTTP status mapped from the error code.
// Debug messages are only sent while gin runs in debug mode, which New selects
// for the development environment.
func Error(c *gin.Context, err error) {
	code := errors.GetCode(err)
	status := errors.HTTPStatusFromCode(code)

	if appErr, ok := errors.As(err); ok {
		c.JSON(status, appErr.Response(gin.IsDebugging()))
		return
	}

	c.JSON(status, types.ErrorResponse{
		Error: errors.PublicMessage(err),
		Code:  code,
	})
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	Error(c, errors.New(errors.ErrInvalidRequest, message))
}

// PurchaseOK sends the confirmation of a completed purchase
func PurchaseOK(c *gin.Context, result *shop.PurchaseResult) {
	c.JSON(http.StatusOK, types.PurchaseResponse{
		Success:    true,
		Message:    result.Message(),
		NewBalance: result.NewBalance,
	})
}

// OK sends a 200 OK response
func OK(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}
