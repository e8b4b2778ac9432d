// Package response renders the uniform reply envelope. A Result is a plain
// value built per request, so nothing is shared between in-flight requests.
package response

import (
	"github.com/gin-gonic/gin"
)

// Body is the JSON envelope written to clients.
type Body struct {
	Status  int    `json:"status"`
	Message string `json:"message"`
	Payload any    `json:"payload,omitempty"`
}

// Result is a pending outcome for a single request.
type Result struct {
	Status  int
	Message string
	Payload any
}

// Success builds a result that carries an optional payload.
func Success(status int, message string, payload any) Result {
	return Result{Status: status, Message: message, Payload: payload}
}

// Error builds a result without payload.
func Error(status int, message string) Result {
	return Result{Status: status, Message: message}
}

// Body returns the envelope for r.
func (r Result) Body() Body {
	return Body{Status: r.Status, Message: r.Message, Payload: r.Payload}
}

// Send writes r to c. Error statuses abort the remaining handler chain.
func (r Result) Send(c *gin.Context) {
	if r.Status >= 400 {
		c.AbortWithStatusJSON(r.Status, r.Body())
		return
	}
	c.JSON(r.Status, r.Body())
}
