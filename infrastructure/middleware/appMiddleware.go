package middlewares

import (
	"facemark.io/application/interfaces"
	"github.com/gin-gonic/gin"
)

// DeviceContextMiddleware seeds the per-request application context from
// the capture device headers.
func DeviceContextMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		ctx.Set("AppContext", &interfaces.ApplicationContext[any]{
			Ctx:      ctx,
			Keys:     ctx.Keys,
			Header:   ctx.Request.Header,
			DeviceID: ctx.Request.Header.Get("X-Device-Id"),
		})
		ctx.Next()
	}
}
