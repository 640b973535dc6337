package httpresult

import (
	"github.com/gin-gonic/gin"

	"github.com/bjaus/mediator"
)

// Write adapts res and writes it as JSON.
//
// Example:
//
//	r.GET("/users/:id", func(c *gin.Context) {
//	    res, err := m.Ask(c.Request.Context(), users.GetUser{ID: c.Param("id")})
//	    httpresult.Respond(c, res, err)
//	})
func Write(c *gin.Context, res mediator.Result[any], opts ...Option) {
	status, body := Adapt(res, opts...)
	c.JSON(status, body)
}

// Respond writes err through FromError when it is non-nil, and res
// otherwise. It takes Dispatch's return values as they are.
func Respond(c *gin.Context, res mediator.Result[any], err error, opts ...Option) {
	if err != nil {
		_ = c.Error(err)
		res = FromError(err)
	}
	Write(c, res, opts...)
}
