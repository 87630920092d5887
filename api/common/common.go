// Package common carries the JSON envelope every API endpoint answers
// with.
package common

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	statusSuccess = "success"
	statusError   = "error"
)

// Response is the wire envelope. Data is omitted from the JSON when
// empty, so bodyless responses stay small.
type Response struct {
	Status string      `json:"status"`
	Msg    string      `json:"msg"`
	Data   interface{} `json:"data,omitempty"`
}

// Respond writes an envelope with an explicit status string. The
// handler helpers below cover the common cases.
func Respond(c *gin.Context, httpStatus int, status, message string, data interface{}) {
	c.JSON(httpStatus, Response{
		Status: status,
		Msg:    message,
		Data:   data,
	})
}

// RespondSuccess answers 200 with data and no message.
func RespondSuccess(c *gin.Context, data interface{}) {
	Respond(c, http.StatusOK, statusSuccess, "", data)
}

// RespondSuccessMessage answers 200 with a message alongside data.
func RespondSuccessMessage(c *gin.Context, message string, data interface{}) {
	Respond(c, http.StatusOK, statusSuccess, message, data)
}

// RespondError answers httpStatus with an error message and no data.
func RespondError(c *gin.Context, httpStatus int, message string) {
	Respond(c, httpStatus, statusError, message, nil)
}
