package controller

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"mp_report_v1/internal/model"
	"mp_report_v1/internal/service"
)

func init() {
	gin.SetMode(gin.TestMode)
}

// ==================== 测试替身 ====================

type stubBuilder struct {
	rep *model.Report
	err error
}

func (s *stubBuilder) BuildReport(context.Context) (*model.Report, error) {
	return s.rep, s.err
}

type stubRenderer struct {
	buf *bytes.Buffer
	err error
}

func (s *stubRenderer) Render(*model.Report) (*bytes.Buffer, error) {
	return s.buf, s.err
}

func performDownload(builder ReportBuilder, renderer ReportRenderer) *httptest.ResponseRecorder {
	r := gin.New()
	ctl := NewReportController(builder, renderer, zap.NewNop())
	r.GET("/v1/download/excel-MP-report", ctl.Download)

	req, _ := http.NewRequest(http.MethodGet, "/v1/download/excel-MP-report", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

// ==================== 场景 ====================

func TestDownload_Success(t *testing.T) {
	builder := &stubBuilder{rep: model.NewReport()}
	renderer := &stubRenderer{buf: bytes.NewBufferString("xlsx-bytes")}

	w := performDownload(builder, renderer)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, service.ContentTypeXLSX, w.Header().Get("Content-Type"))
	assert.Equal(t, "attachment; filename=orders_and_stocks.xlsx", w.Header().Get("Content-Disposition"))
	assert.Empty(t, w.Header().Get("X-Report-Warnings"))
	assert.Equal(t, "xlsx-bytes", w.Body.String())
}

// 局部失败仍返回 200 文件，告警条数走响应头
func TestDownload_PartialFailureStill200(t *testing.T) {
	rep := model.NewReport()
	rep.Warnings = []model.Warning{
		{Marketplace: model.MarketplaceWB, Account: "PA-dead", Op: "orders", Message: "timeout"},
		{Marketplace: model.MarketplaceWB, Account: "PA-dead", Op: "stocks", Message: "timeout"},
	}
	builder := &stubBuilder{rep: rep}
	renderer := &stubRenderer{buf: bytes.NewBufferString("xlsx-bytes")}

	w := performDownload(builder, renderer)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "2", w.Header().Get("X-Report-Warnings"))
}

// 全量失败 -> 502，无文件体
func TestDownload_AggregateError(t *testing.T) {
	builder := &stubBuilder{err: &model.AggregateError{
		Warnings: []model.Warning{{Marketplace: model.MarketplaceWB, Account: "PA-1"}},
	}}

	w := performDownload(builder, &stubRenderer{})

	assert.Equal(t, http.StatusBadGateway, w.Code)
	assert.Contains(t, w.Header().Get("Content-Type"), "application/json")
	assert.NotContains(t, w.Header(), "Content-Disposition")
}

// 渲染失败 -> 500
func TestDownload_RenderError(t *testing.T) {
	builder := &stubBuilder{rep: model.NewReport()}
	renderer := &stubRenderer{err: &model.RenderError{Err: assert.AnError}}

	w := performDownload(builder, renderer)
	require.Equal(t, http.StatusInternalServerError, w.Code)
}
