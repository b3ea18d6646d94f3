// Package echomw adapts paramshape request checking to echo.
package echomw

import (
	"github.com/labstack/echo/v4"

	"github.com/reoring/paramshape/middleware"
	"github.com/reoring/paramshape/pipeline"
	"github.com/reoring/paramshape/schema"
)

// Params checks query, path and JSON body input against shape and stores the
// accepted parameters in the request context.
func Params(p *pipeline.Pipeline, shape *schema.Shape) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			names, values := c.ParamNames(), c.ParamValues()
			path := make(map[string]string, len(names))
			for i, n := range names {
				if i < len(values) {
					path[n] = values[i]
				}
			}
			params, err := middleware.Check(p, shape, c.Request(), path, middleware.DefaultMaxBody)
			if err != nil {
				return c.JSON(middleware.Reject(err))
			}
			c.SetRequest(c.Request().WithContext(middleware.ContextWithParams(c.Request().Context(), params)))
			return next(c)
		}
	}
}

// GetParams fetches accepted parameters from echo.Context.
func GetParams(c echo.Context) (map[string]any, bool) {
	return middleware.ParamsFromContext(c.Request().Context())
}
