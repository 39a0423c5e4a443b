package router

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mp_report_v1/internal/controller"
	"mp_report_v1/internal/middleware"
)

// SetupRouter 注册所有路由
func SetupRouter(reportCtl *controller.ReportController, log *zap.Logger) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLog(log))

	v1 := r.Group("/v1")
	{
		// GET /v1/download/excel-MP-report
		download := v1.Group("/download")
		{
			download.GET("/excel-MP-report", reportCtl.Download)
		}
	}

	return r
}
