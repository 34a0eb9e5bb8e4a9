package middlewares

import (
	"facemark.io/application/interfaces"
	app_middlewares "facemark.io/application/middlewares"
	"github.com/gin-gonic/gin"
)

func AdminAuthMiddleware() gin.HandlerFunc {
	return func(ctx *gin.Context) {
		appContext, next := app_middlewares.AdminAuthenticationMiddleware(&interfaces.ApplicationContext[any]{
			Ctx:      ctx,
			Keys:     ctx.Keys,
			Header:   ctx.Request.Header,
			DeviceID: ctx.Request.Header.Get("X-Device-Id"),
		})
		if next {
			ctx.Set("AppContext", appContext)
			ctx.Next()
		}
	}
}
