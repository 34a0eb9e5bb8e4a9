package routev1

import (
	apperrors "facemark.io/application/appErrors"
	"facemark.io/application/controller"
	"facemark.io/application/controller/dto"
	"facemark.io/application/interfaces"
	middlewares "facemark.io/infrastructure/middleware"
	"github.com/gin-gonic/gin"
)

func SubjectRouter(router *gin.RouterGroup) {
	subjectRouter := router.Group("/subjects")
	subjectRouter.Use(middlewares.AdminAuthMiddleware())
	{
		subjectRouter.POST("/enroll", func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			var body dto.EnrollSubjectDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			controller.EnrollSubject(&interfaces.ApplicationContext[dto.EnrollSubjectDTO]{
				Ctx:      ctx,
				Body:     &body,
				Keys:     appContext.Keys,
				DeviceID: appContext.DeviceID,
			})
		})

		subjectRouter.GET("/", func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			controller.ListSubjects(&interfaces.ApplicationContext[any]{
				Ctx:      ctx,
				Keys:     appContext.Keys,
				DeviceID: appContext.DeviceID,
			})
		})

		subjectRouter.POST("/reset", func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			controller.ResetSystem(&interfaces.ApplicationContext[any]{
				Ctx:      ctx,
				Keys:     appContext.Keys,
				DeviceID: appContext.DeviceID,
			})
		})
	}
}
