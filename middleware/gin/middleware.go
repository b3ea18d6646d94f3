// Package ginmw adapts paramshape request checking to gin.
package ginmw

import (
	"github.com/gin-gonic/gin"

	"github.com/reoring/paramshape/middleware"
	"github.com/reoring/paramshape/pipeline"
	"github.com/reoring/paramshape/schema"
)

// Params checks query, path and JSON body input against shape. Accepted
// parameters are stored in the request context; failures abort with the
// issue payload.
func Params(p *pipeline.Pipeline, shape *schema.Shape) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := make(map[string]string, len(c.Params))
		for _, kv := range c.Params {
			path[kv.Key] = kv.Value
		}
		params, err := middleware.Check(p, shape, c.Request, path, middleware.DefaultMaxBody)
		if err != nil {
			c.AbortWithStatusJSON(middleware.Reject(err))
			return
		}
		c.Request = c.Request.WithContext(middleware.ContextWithParams(c.Request.Context(), params))
		c.Next()
	}
}

// GetParams fetches accepted parameters from gin.Context.
func GetParams(c *gin.Context) (map[string]any, bool) {
	return middleware.ParamsFromContext(c.Request.Context())
}
