package router

import (
	"github.com/cloudwego/hertz/pkg/app/server"

	"HustleHeroes/internal/handler"
	"HustleHeroes/internal/middleware"
)

func Register(h *server.Hertz) {

	h.Use(middleware.RecoverMiddleware())
	//h.Use(middleware.CSRFMiddleware()) csrf 中间件，移动端 App 用不到，给 Web 端预留
	h.Use(middleware.CORSMiddleware())
	h.Use(middleware.OpenTelemetryMiddleware())
	v1 := h.Group("/v1")

	// 岗位浏览路由，公开只读
	jobs := v1.Group("/jobs")
	{
		jobs.GET("", handler.ListJobs)
		jobs.GET("/:id", handler.GetJobDetail)
	}

	// 申请与考勤路由
	applications := v1.Group("/applications")
	applications.Use(middleware.AuthMiddleware(), middleware.GeneralRateLimitMiddleware())
	{
		applications.GET("", handler.ListApplications)
		applications.POST("", middleware.ApplyRateLimitMiddleware(), handler.Apply) // 开抢热门班次时限流
		applications.POST("/:id/cancel", handler.Cancel)
		applications.POST("/:id/clock-in", handler.ClockIn)
		applications.POST("/:id/clock-out", handler.ClockOut)
		applications.POST("/:id/complete", handler.Complete)
	}

	// 雇主侧二维码签发路由
	qrCodes := v1.Group("/qr-codes")
	qrCodes.Use(middleware.AuthMiddleware())
	{
		qrCodes.POST("", middleware.QRIssueRateLimitMiddleware(), handler.IssueQR)
	}
}
