package fakeapi

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/jrsteele09/fintrack-client/internal/errors"
	"github.com/jrsteele09/fintrack-client/validation"
)

func abortError(c *gin.Context, status int, msg string) {
	c.AbortWithStatusJSON(status, gin.H{"message": msg})
}

// abortValidation answers 400 with {"message", "errors": {field: [msg]}}
func abortValidation(c *gin.Context, err error) {
	var fields validation.Errors
	if !errors.As(err, &fields) {
		abortError(c, http.StatusBadRequest, err.Error())
		return
	}
	body := make(map[string][]string, len(fields))
	for field, msg := range fields {
		body[field] = []string{msg}
	}
	c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{
		"message": "Validation failed",
		"errors":  body,
	})
}

// bindJSON decodes the body into dst, answering 400 itself when it cannot
func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		abortError(c, http.StatusBadRequest, "Invalid request body")
		return false
	}
	return true
}

func message(c *gin.Context, status int, msg string) {
	c.JSON(status, gin.H{"message": msg})
}

func queryInt(c *gin.Context, key string) int {
	n, err := strconv.Atoi(c.Query(key))
	if err != nil {
		return 0
	}
	return n
}
