package routev1

import (
	apperrors "facemark.io/application/appErrors"
	"facemark.io/application/controller"
	"facemark.io/application/controller/dto"
	"facemark.io/application/interfaces"
	middlewares "facemark.io/infrastructure/middleware"
	"github.com/gin-gonic/gin"
)

func AttendanceRouter(router *gin.RouterGroup) {
	attendanceRouter := router.Group("/attendance")
	{
		attendanceRouter.POST("/verify", func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			var body dto.VerifyAttendanceDTO
			if err := ctx.ShouldBindJSON(&body); err != nil {
				apperrors.ErrorProcessingPayload(ctx)
				return
			}
			controller.VerifyAttendance(&interfaces.ApplicationContext[dto.VerifyAttendanceDTO]{
				Ctx:      ctx,
				Body:     &body,
				DeviceID: appContext.DeviceID,
			})
		})

		attendanceRouter.GET("/records/:subjectKey", middlewares.AdminAuthMiddleware(), func(ctx *gin.Context) {
			appContext := ctx.MustGet("AppContext").(*interfaces.ApplicationContext[any])
			controller.AttendanceRecords(&interfaces.ApplicationContext[any]{
				Ctx:      ctx,
				Keys:     appContext.Keys,
				Param:    map[string]any{"subjectKey": ctx.Param("subjectKey")},
				DeviceID: appContext.DeviceID,
			})
		})
	}
}
