package controller

import (
	"bytes"
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"mp_report_v1/internal/model"
	"mp_report_v1/internal/service"
)

// ==================== 报表控制器 ====================

// ReportBuilder 聚合能力（AggregatorService 实现）
type ReportBuilder interface {
	BuildReport(ctx context.Context) (*model.Report, error)
}

// ReportRenderer 渲染能力（ReportService 实现）
type ReportRenderer interface {
	Render(rep *model.Report) (*bytes.Buffer, error)
}

// ReportController 报表下载控制器
type ReportController struct {
	aggregator ReportBuilder
	renderer   ReportRenderer
	log        *zap.Logger
}

func NewReportController(aggregator ReportBuilder, renderer ReportRenderer, log *zap.Logger) *ReportController {
	return &ReportController{
		aggregator: aggregator,
		renderer:   renderer,
		log:        log,
	}
}

// Download 下载三平台六张表的汇总报表
// GET /v1/download/excel-MP-report
//
// 局部失败仍返回 200 与可下载文件（对应 Sheet 可能为空表），
// 告警条数通过 X-Report-Warnings 响应头暴露；
// 仅当所有数据源全部失败时返回 502，渲染失败返回 500
func (c *ReportController) Download(ctx *gin.Context) {
	rep, err := c.aggregator.BuildReport(ctx.Request.Context())
	if err != nil {
		var aggErr *model.AggregateError
		if errors.As(err, &aggErr) {
			c.log.Error("聚合全部失败", zap.Int("warnings", len(aggErr.Warnings)))
			ctx.JSON(http.StatusBadGateway, gin.H{
				"code":    http.StatusBadGateway,
				"message": "所有平台拉取失败，请稍后重试",
			})
			return
		}
		// 调用方断开等其它失败
		c.log.Error("聚合中断", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "报表聚合失败",
		})
		return
	}

	buf, err := c.renderer.Render(rep)
	if err != nil {
		c.log.Error("报表渲染失败", zap.Error(err))
		ctx.JSON(http.StatusInternalServerError, gin.H{
			"code":    http.StatusInternalServerError,
			"message": "报表文件生成失败",
		})
		return
	}

	if n := len(rep.Warnings); n > 0 {
		ctx.Header("X-Report-Warnings", strconv.Itoa(n))
	}
	ctx.Header("Content-Disposition", "attachment; filename=orders_and_stocks.xlsx")
	ctx.Data(http.StatusOK, service.ContentTypeXLSX, buf.Bytes())
}
