package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "github.com/safetrace/safetrace-backend-go/pkg/errors"
)

// Response represents a standard API response
type Response struct {
	Code    int         `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
	Error   *ErrorBody  `json:"error,omitempty"`
}

// ErrorBody describes a classified failure
type ErrorBody struct {
	Type    string                 `json:"type"`
	Code    string                 `json:"code"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Success sends a successful response
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, Response{
		Code:    0,
		Message: "success",
		Data:    data,
	})
}

// Created sends a 201 response
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, Response{
		Code:    0,
		Message: "created",
		Data:    data,
	})
}

// Error sends an error response
func Error(c *gin.Context, code int, message string) {
	c.JSON(code, Response{
		Code:    code,
		Message: message,
	})
}

// Fail sends the response for err. Domain errors keep their classification;
// anything else is an internal error whose message is not exposed.
func Fail(c *gin.Context, err error) {
	_ = c.Error(err)

	de, ok := apperrors.AsDomain(err)
	if !ok {
		InternalError(c, "internal server error")
		return
	}

	status := de.StatusCode()
	message := de.Message
	if status >= http.StatusInternalServerError {
		message = "internal server error"
	}

	c.JSON(status, Response{
		Code:    status,
		Message: message,
		Error: &ErrorBody{
			Type:    string(de.Type),
			Code:    de.Code,
			Details: de.Details,
		},
	})
}

// BadRequest sends a 400 bad request response
func BadRequest(c *gin.Context, message string) {
	Error(c, http.StatusBadRequest, message)
}

// NotFound sends a 404 not found response
func NotFound(c *gin.Context, message string) {
	Error(c, http.StatusNotFound, message)
}

// InternalError sends a 500 internal server error response
func InternalError(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}
