package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrNotFound is the sentinel handlers push via c.Error when a named
// resource (area, origin) does not exist.
var ErrNotFound = errors.New("resource not found")

// ErrorHandler centralizes error handling for handlers that push onto
// c.Errors instead of writing a response directly.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		err := c.Errors.Last().Err
		status := http.StatusInternalServerError
		message := "internal server error"

		switch {
		case errors.Is(err, context.DeadlineExceeded):
			status = http.StatusRequestTimeout
			message = "request timeout"
		case errors.Is(err, ErrNotFound):
			status = http.StatusNotFound
			message = "resource not found"
		}

		c.JSON(status, gin.H{"error": message})
	}
}
